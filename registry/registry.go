// Package registry maps token symbols to contract addresses and code hashes.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/MrGarbonzo/secret-network-mcp/wallet"
)

// Kind is the contract standard a token implements.
type Kind string

const (
	KindSNIP20  Kind = "snip20"
	KindSNIP721 Kind = "snip721"
)

// ErrTokenNotFound is returned by Lookup for unknown symbols and addresses.
var ErrTokenNotFound = errors.New("token not found")

// Token describes a known contract.
type Token struct {
	Symbol   string `toml:"symbol" json:"symbol"`
	Name     string `toml:"name" json:"name"`
	Address  string `toml:"address" json:"address"`
	CodeHash string `toml:"code_hash,omitempty" json:"code_hash,omitempty"`
	Decimals int    `toml:"decimals" json:"decimals"`
	Kind     Kind   `toml:"kind" json:"kind"`
}

// Validate checks the fields every entry needs.
func (t Token) Validate() error {
	if t.Symbol == "" {
		return errors.New("token symbol cannot be empty")
	}
	if err := wallet.ValidateAddress(t.Address); err != nil {
		return fmt.Errorf("token %s: %w", t.Symbol, err)
	}
	switch t.Kind {
	case KindSNIP20, KindSNIP721:
	default:
		return fmt.Errorf("token %s: unknown kind %q", t.Symbol, t.Kind)
	}
	if t.Decimals < 0 || t.Decimals > 18 {
		return fmt.Errorf("token %s: decimals %d out of range", t.Symbol, t.Decimals)
	}
	return nil
}

// Mainnet tokens known without configuration. Code hashes are resolved from
// the chain on first use.
var builtins = []Token{
	{Symbol: "SSCRT", Name: "Secret SCRT", Address: "secret1k0jntykt7e4g3y88ltc60czgjuqdy4c9e8fzek", Decimals: 6, Kind: KindSNIP20},
	{Symbol: "SHD", Name: "Shade", Address: "secret153wu605vvp934xhd4k9dtd640zsep5jkesstdm", Decimals: 8, Kind: KindSNIP20},
	{Symbol: "SILK", Name: "Silk Stablecoin", Address: "secret1fl449muk5yq8dlad7a22nje4p5d2pnsgymhjfd", Decimals: 6, Kind: KindSNIP20},
}

// Registry is an immutable set of tokens indexed by symbol and address.
type Registry struct {
	bySymbol  map[string]Token
	byAddress map[string]Token
}

// New builds a registry from tokens. Later entries override earlier ones with
// the same symbol.
func New(tokens ...Token) (*Registry, error) {
	r := &Registry{
		bySymbol:  make(map[string]Token, len(tokens)),
		byAddress: make(map[string]Token, len(tokens)),
	}
	for _, t := range tokens {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToUpper(t.Symbol)
		if prev, ok := r.bySymbol[key]; ok {
			delete(r.byAddress, prev.Address)
		}
		r.bySymbol[key] = t
		r.byAddress[t.Address] = t
	}
	return r, nil
}

// Default returns the built-in mainnet registry.
func Default() *Registry {
	r, err := New(builtins...)
	if err != nil {
		panic(err)
	}
	return r
}

// tokenFile is the on-disk shape: a list of [[token]] tables.
type tokenFile struct {
	Tokens []Token `toml:"token"`
}

// LoadFile returns the built-ins merged with the tokens in a TOML file.
func LoadFile(path string) (*Registry, error) {
	var file tokenFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	tokens := append(append([]Token{}, builtins...), file.Tokens...)
	r, err := New(tokens...)
	if err != nil {
		return nil, fmt.Errorf("validating token file: %w", err)
	}
	return r, nil
}

// WriteFile writes the registry as a TOML token file. An existing file is
// replaced atomically and kept as path.bak.
func (r *Registry) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating token file directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tokenFile{Tokens: r.List("")}); err != nil {
		return fmt.Errorf("encoding token file: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Lookup resolves a symbol (case-insensitive) or an exact contract address.
func (r *Registry) Lookup(symbolOrAddress string) (Token, error) {
	if t, ok := r.byAddress[symbolOrAddress]; ok {
		return t, nil
	}
	if t, ok := r.bySymbol[strings.ToUpper(symbolOrAddress)]; ok {
		return t, nil
	}
	return Token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, symbolOrAddress)
}

// List returns tokens of kind sorted by symbol. An empty kind lists all.
func (r *Registry) List(kind Kind) []Token {
	out := make([]Token, 0, len(r.bySymbol))
	for _, t := range r.bySymbol {
		if kind == "" || t.Kind == kind {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Filter returns tokens whose symbol or name matches the glob pattern,
// case-insensitively.
func (r *Registry) Filter(pattern string) ([]Token, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid token pattern %q", pattern)
	}
	pattern = strings.ToLower(pattern)

	var out []Token
	for _, t := range r.List("") {
		for _, candidate := range []string{t.Symbol, t.Name} {
			if ok, _ := doublestar.Match(pattern, strings.ToLower(candidate)); ok {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

// Len returns the number of tokens.
func (r *Registry) Len() int { return len(r.bySymbol) }
