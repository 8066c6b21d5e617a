package restic

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/poly1305"
)

// Encrypted repository files use the format's fixed construction:
//
//	blob = nonce(16) || AES-256-CTR(data) || Poly1305-AES(MAC, 16)
//
// The MAC covers only the encrypted portion. The Poly1305 key for a blob is
// R || AES-K(nonce), with the key pair (K, R) carried alongside the AES key.
const (
	nonceSize = 16
	macSize   = 16

	aesKeySize = 32
	macKeySize = 32

	// KeySize is the combined key material a key derivation must produce.
	KeySize = aesKeySize + macKeySize
)

// ErrUnauthenticated is returned when a blob's MAC does not verify, which
// covers both corruption and a wrong key.
var ErrUnauthenticated = errors.New("ciphertext verification failed")

// MACKey is the Poly1305-AES key pair.
type MACKey struct {
	K [16]byte
	R [16]byte
}

// Key is a repository encryption key: AES-256 for confidentiality and
// Poly1305-AES for authenticity. Both the password-derived intermediate key
// and the repository master key have this shape.
type Key struct {
	EncryptionKey [32]byte
	MACKey        MACKey
}

// masterKeyJSON is the wire form of a master key as stored, encrypted,
// inside a key file.
type masterKeyJSON struct {
	MAC struct {
		K []byte `json:"k"`
		R []byte `json:"r"`
	} `json:"mac"`
	Encrypt []byte `json:"encrypt"`
}

// parseMasterKey parses the decrypted contents of a key file's data field.
func parseMasterKey(data []byte) (*Key, error) {
	var wire masterKeyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parsing master key: %w", err)
	}
	if len(wire.Encrypt) != aesKeySize {
		return nil, fmt.Errorf("master key has %d-byte encryption key, want %d", len(wire.Encrypt), aesKeySize)
	}
	if len(wire.MAC.K) != 16 || len(wire.MAC.R) != 16 {
		return nil, errors.New("master key has malformed MAC key pair")
	}

	key := &Key{}
	copy(key.EncryptionKey[:], wire.Encrypt)
	copy(key.MACKey.K[:], wire.MAC.K)
	copy(key.MACKey.R[:], wire.MAC.R)
	return key, nil
}

// marshalMasterKey is the inverse of parseMasterKey, used when writing key
// files in tests.
func marshalMasterKey(key *Key) ([]byte, error) {
	var wire masterKeyJSON
	wire.Encrypt = key.EncryptionKey[:]
	wire.MAC.K = key.MACKey.K[:]
	wire.MAC.R = key.MACKey.R[:]
	return json.Marshal(wire)
}

// NewRandomKey generates a fresh key pair from the system's entropy source.
func NewRandomKey() (*Key, error) {
	key := &Key{}
	if _, err := rand.Read(key.EncryptionKey[:]); err != nil {
		return nil, fmt.Errorf("generating encryption key: %w", err)
	}
	if _, err := rand.Read(key.MACKey.K[:]); err != nil {
		return nil, fmt.Errorf("generating MAC key: %w", err)
	}
	if _, err := rand.Read(key.MACKey.R[:]); err != nil {
		return nil, fmt.Errorf("generating MAC key: %w", err)
	}
	return key, nil
}

// poly1305Key builds the per-blob Poly1305 key R || AES-K(nonce). The
// Poly1305 implementation clamps R internally.
func (k *Key) poly1305Key(nonce []byte) (*[32]byte, error) {
	block, err := aes.NewCipher(k.MACKey.K[:])
	if err != nil {
		return nil, err
	}

	var pk [32]byte
	copy(pk[:16], k.MACKey.R[:])
	block.Encrypt(pk[16:], nonce)
	return &pk, nil
}

// Decrypt verifies and decrypts a blob, returning the plaintext.
func (k *Key) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize+macSize {
		return nil, fmt.Errorf("blob of %d bytes is too short to be encrypted", len(ciphertext))
	}

	nonce := ciphertext[:nonceSize]
	data := ciphertext[nonceSize : len(ciphertext)-macSize]
	var mac [macSize]byte
	copy(mac[:], ciphertext[len(ciphertext)-macSize:])

	pk, err := k.poly1305Key(nonce)
	if err != nil {
		return nil, err
	}
	if !poly1305.Verify(&mac, data, pk) {
		return nil, ErrUnauthenticated
	}

	block, err := aes.NewCipher(k.EncryptionKey[:])
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(data))
	cipher.NewCTR(block, nonce).XORKeyStream(plaintext, data)
	return plaintext, nil
}

// Encrypt encrypts and authenticates plaintext with a fresh random nonce.
func (k *Key) Encrypt(plaintext []byte) ([]byte, error) {
	out := make([]byte, nonceSize+len(plaintext)+macSize)
	nonce := out[:nonceSize]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	block, err := aes.NewCipher(k.EncryptionKey[:])
	if err != nil {
		return nil, err
	}

	data := out[nonceSize : nonceSize+len(plaintext)]
	cipher.NewCTR(block, nonce).XORKeyStream(data, plaintext)

	pk, err := k.poly1305Key(nonce)
	if err != nil {
		return nil, err
	}
	var mac [macSize]byte
	poly1305.Sum(&mac, data, pk)
	copy(out[nonceSize+len(plaintext):], mac[:])

	return out, nil
}
