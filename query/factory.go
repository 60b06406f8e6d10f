package query

// The factory functions below pair a builder with a freshly constructed auth
// method. They return configured builders; callers invoke Build.

// TokenBalanceWithPermit returns a balance query authenticated by raw.
func TokenBalanceWithPermit(raw RawPermit) (*SimpleQuery, error) {
	auth, err := NewPermitAuth(raw)
	if err != nil {
		return nil, err
	}
	return NewBalanceQuery().WithAuth(auth), nil
}

// TokenBalanceWithViewingKey returns a balance query authenticated by a
// viewing key.
func TokenBalanceWithViewingKey(address, viewingKey string) (*SimpleQuery, error) {
	auth, err := NewViewingKeyAuth(address, viewingKey)
	if err != nil {
		return nil, err
	}
	return NewBalanceQuery().WithAuth(auth), nil
}

// TokenInfo returns an unauthenticated token_info query.
func TokenInfo() *SimpleQuery {
	return NewTokenInfoQuery().WithAuth(NoAuth{})
}

// AllowanceWithPermit returns an allowance query authenticated by raw.
func AllowanceWithPermit(owner, spender string, raw RawPermit) (*AllowanceQuery, error) {
	auth, err := NewPermitAuth(raw)
	if err != nil {
		return nil, err
	}
	return AllowanceBetween(owner, spender).WithAuth(auth), nil
}

// AllowanceWithViewingKey returns an allowance query authenticated by the
// viewing key of address, which must be the owner or the spender.
func AllowanceWithViewingKey(owner, spender, address, viewingKey string) (*AllowanceQuery, error) {
	auth, err := NewViewingKeyAuth(address, viewingKey)
	if err != nil {
		return nil, err
	}
	return AllowanceBetween(owner, spender).WithAuth(auth), nil
}

// NFTOwnershipWithPermit returns a tokens query for owner authenticated by raw.
func NFTOwnershipWithPermit(owner string, raw RawPermit) (*NFTOwnershipQuery, error) {
	auth, err := NewPermitAuth(raw)
	if err != nil {
		return nil, err
	}
	return NFTOwnershipFor(owner).WithAuth(auth), nil
}

// NFTOwnershipWithViewingKey returns a tokens query for owner authenticated by
// the owner's viewing key.
func NFTOwnershipWithViewingKey(owner, viewingKey string) (*NFTOwnershipQuery, error) {
	auth, err := NewViewingKeyAuth(owner, viewingKey)
	if err != nil {
		return nil, err
	}
	return NFTOwnershipFor(owner).WithAuth(auth), nil
}

// TransferHistoryWithAuth returns a transfer_history query for address using
// whichever credential is supplied. Exactly one of viewingKey and raw must be
// set.
func TransferHistoryWithAuth(address, viewingKey string, raw RawPermit) (*HistoryQuery, error) {
	auth, err := CredentialAuth(address, viewingKey, raw)
	if err != nil {
		return nil, err
	}
	if auth.Type() == AuthNone {
		return nil, &UnsupportedAuthError{
			AuthType:  AuthNone,
			QueryType: "transfer_history",
			Reason:    "transfer history requires a viewing key or permit",
		}
	}
	return NewTransferHistoryQuery().ForAddress(address).WithAuth(auth), nil
}

// CredentialAuth picks the auth method for at most one supplied credential.
// With neither credential it returns NoAuth.
func CredentialAuth(address, viewingKey string, raw RawPermit) (AuthMethod, error) {
	switch {
	case viewingKey != "" && raw != nil:
		return nil, &UnsupportedAuthError{
			AuthType: AuthViewingKey + "+" + AuthPermit,
			Reason:   "supply either a viewing key or a permit, not both",
		}
	case raw != nil:
		return NewPermitAuth(raw)
	case viewingKey != "":
		return NewViewingKeyAuth(address, viewingKey)
	default:
		return NoAuth{}, nil
	}
}
