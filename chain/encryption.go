package chain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/miscreant/miscreant.go"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	keySize   = 32
	nonceSize = 32
)

// hkdfSalt is the fixed salt the compute module uses to derive query keys.
var hkdfSalt, _ = hex.DecodeString("000000000000000000024bead8df69990852c202db0e0097c1a12ea637d7e96d")

var encryptedErrorPattern = regexp.MustCompile(`encrypted: ([A-Za-z0-9+/=]+)`)

// Encryptor seals contract queries for the enclave and opens its answers.
// It holds a long-lived x25519 keypair; a fresh nonce is drawn per query.
type Encryptor struct {
	privKey    []byte
	pubKey     []byte
	consensus  []byte
	randReader io.Reader
}

// NewEncryptor derives a keypair from seed, or from crypto/rand when seed is
// nil. consensusIOKey is the chain's registration tx-key.
func NewEncryptor(seed, consensusIOKey []byte) (*Encryptor, error) {
	if len(consensusIOKey) != keySize {
		return nil, fmt.Errorf("consensus io key must be %d bytes, got %d", keySize, len(consensusIOKey))
	}
	if seed == nil {
		seed = make([]byte, keySize)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("failed to generate key seed: %w", err)
		}
	}
	if len(seed) != keySize {
		return nil, fmt.Errorf("key seed must be %d bytes, got %d", keySize, len(seed))
	}

	priv := make([]byte, keySize)
	copy(priv, seed)
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}

	consensus := make([]byte, keySize)
	copy(consensus, consensusIOKey)

	return &Encryptor{privKey: priv, pubKey: pub, consensus: consensus, randReader: rand.Reader}, nil
}

// PublicKey returns the client's x25519 public key.
func (e *Encryptor) PublicKey() []byte {
	out := make([]byte, len(e.pubKey))
	copy(out, e.pubKey)
	return out
}

func (e *Encryptor) txKey(nonce []byte) ([]byte, error) {
	shared, err := curve25519.X25519(e.privKey, e.consensus)
	if err != nil {
		return nil, fmt.Errorf("failed to compute shared secret: %w", err)
	}
	ikm := make([]byte, 0, len(shared)+len(nonce))
	ikm = append(ikm, shared...)
	ikm = append(ikm, nonce...)

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, hkdfSalt, nil), key); err != nil {
		return nil, fmt.Errorf("failed to derive query key: %w", err)
	}
	return key, nil
}

func newSIV(key []byte) (*miscreant.Cipher, error) {
	siv, err := miscreant.NewAESCMACSIV(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init AES-SIV: %w", err)
	}
	return siv, nil
}

// Encrypt seals codeHash followed by the JSON of msg. It returns the wire
// message nonce||pubkey||ciphertext and the nonce needed to decrypt the reply.
func (e *Encryptor) Encrypt(codeHash string, msg any) ([]byte, []byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(e.randReader, nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := e.txKey(nonce)
	if err != nil {
		return nil, nil, err
	}
	siv, err := newSIV(key)
	if err != nil {
		return nil, nil, err
	}

	plaintext := append([]byte(codeHash), payload...)
	ciphertext, err := siv.Seal(nil, plaintext, []byte{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to seal query: %w", err)
	}

	out := make([]byte, 0, nonceSize+keySize+len(ciphertext))
	out = append(out, nonce...)
	out = append(out, e.pubKey...)
	out = append(out, ciphertext...)
	return out, nonce, nil
}

// Decrypt opens ciphertext sealed by the enclave under nonce.
func (e *Encryptor) Decrypt(ciphertext, nonce []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return []byte{}, nil
	}
	key, err := e.txKey(nonce)
	if err != nil {
		return nil, err
	}
	siv, err := newSIV(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := siv.Open(nil, ciphertext, []byte{})
	if err != nil {
		return nil, fmt.Errorf("failed to open response: %w", err)
	}
	return plaintext, nil
}

// DecryptResponse turns the base64 data field of a compute query response into
// the contract's JSON answer.
func (e *Encryptor) DecryptResponse(data string, nonce []byte) (json.RawMessage, error) {
	sealed, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("response data is not base64: %w", err)
	}
	opened, err := e.Decrypt(sealed, nonce)
	if err != nil {
		return nil, err
	}
	answer, err := base64.StdEncoding.DecodeString(string(opened))
	if err != nil {
		return nil, fmt.Errorf("decrypted response is not base64: %w", err)
	}
	if !json.Valid(answer) {
		return nil, errors.New("decrypted response is not JSON")
	}
	return json.RawMessage(answer), nil
}

// DecryptError extracts and opens an "encrypted: <b64>" contract error. It
// returns the message unchanged when nothing is encrypted or it cannot be
// opened.
func (e *Encryptor) DecryptError(message string, nonce []byte) string {
	match := encryptedErrorPattern.FindStringSubmatch(message)
	if match == nil {
		return message
	}
	sealed, err := base64.StdEncoding.DecodeString(match[1])
	if err != nil {
		return message
	}
	opened, err := e.Decrypt(sealed, nonce)
	if err != nil {
		return message
	}
	return string(opened)
}
