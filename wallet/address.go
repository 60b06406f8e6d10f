package wallet

import (
	"fmt"
	"strings"

	"github.com/decred/dcrd/bech32"
)

// AddressPrefix is the bech32 human-readable part of Secret Network accounts.
const AddressPrefix = "secret"

const (
	accountAddressBytes  = 20 // accounts and legacy contracts
	contractAddressBytes = 32
)

// ValidateAddress decodes a bech32 address and checks its prefix and payload
// length. Mixed case, bad checksums and non-zero padding are rejected.
func ValidateAddress(address string) error {
	if !strings.HasPrefix(address, AddressPrefix+"1") {
		return fmt.Errorf("address %q must start with %s1", address, AddressPrefix)
	}

	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return fmt.Errorf("address %q: %w", address, err)
	}
	if hrp != AddressPrefix {
		return fmt.Errorf("address %q has prefix %q, want %q", address, hrp, AddressPrefix)
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return fmt.Errorf("address %q does not decode to bytes: %w", address, err)
	}
	if len(payload) != accountAddressBytes && len(payload) != contractAddressBytes {
		return fmt.Errorf("address %q decodes to %d bytes, want %d or %d",
			address, len(payload), accountAddressBytes, contractAddressBytes)
	}
	return nil
}
