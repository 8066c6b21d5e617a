package restic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/scrypt"

	"github.com/robinvandernoord/r2-d2/internal/logger"
	"github.com/robinvandernoord/r2-d2/pkg/r2"
)

// ErrWrongPassword is returned when no key file under keys/ can be opened
// with the supplied password.
var ErrWrongPassword = errors.New("wrong password or no key found")

// KeyFile is the plaintext JSON wrapper around an encrypted master key, one
// object per known password under keys/.
type KeyFile struct {
	Created  time.Time `json:"created"`
	Username string    `json:"username"`
	Hostname string    `json:"hostname"`

	KDF  string `json:"kdf"`
	N    int    `json:"N"`
	R    int    `json:"r"`
	P    int    `json:"p"`
	Salt []byte `json:"salt"`
	Data []byte `json:"data"`
}

// deriveKey runs the key file's scrypt parameters over the password and
// splits the output into an intermediate key pair: the first 32 bytes are
// the AES key, the next 16 the MAC key K, the last 16 the MAC key R.
func deriveKey(password string, salt []byte, n, r, p int) (*Key, error) {
	if n <= 0 || r <= 0 || p <= 0 {
		return nil, fmt.Errorf("invalid scrypt parameters N=%d r=%d p=%d", n, r, p)
	}

	buf, err := scrypt.Key([]byte(password), salt, n, r, p, KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	key := &Key{}
	copy(key.EncryptionKey[:], buf[:aesKeySize])
	copy(key.MACKey.K[:], buf[aesKeySize:aesKeySize+16])
	copy(key.MACKey.R[:], buf[aesKeySize+16:])
	return key, nil
}

// OpenKeyFile derives the intermediate key from password and unwraps the
// master key carried in kf. Returns ErrUnauthenticated when the password
// does not fit this key file.
func OpenKeyFile(kf *KeyFile, password string) (*Key, error) {
	if kf.KDF != "scrypt" {
		return nil, fmt.Errorf("unsupported key derivation function %q", kf.KDF)
	}

	derived, err := deriveKey(password, kf.Salt, kf.N, kf.R, kf.P)
	if err != nil {
		return nil, err
	}

	plaintext, err := derived.Decrypt(kf.Data)
	if err != nil {
		return nil, err
	}

	return parseMasterKey(plaintext)
}

// SearchKey tries the password against every key file under the
// repository's keys/ namespace and returns the master key of the first one
// it opens. Returns ErrWrongPassword when none match.
func SearchKey(ctx context.Context, store r2.Store, prefix, password string) (*Key, error) {
	prefix = NormalizePrefix(prefix)

	it := store.List(ctx, prefix+"keys/")
	for it.Next() {
		obs := it.Object()

		raw, err := store.Get(ctx, obs.Key)
		if err != nil {
			return nil, fmt.Errorf("reading key file %s: %w", obs.Key, err)
		}

		var kf KeyFile
		if err := json.Unmarshal(raw, &kf); err != nil {
			logger.Warn("skipping malformed key file", "key", obs.Key, "error", err)
			continue
		}

		master, err := OpenKeyFile(&kf, password)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				logger.Debug("password does not open key file", "key", obs.Key)
				continue
			}
			logger.Warn("skipping unusable key file", "key", obs.Key, "error", err)
			continue
		}

		logger.Debug("opened repository key",
			"key", obs.Key,
			"created", kf.Created,
			"username", kf.Username,
			"hostname", kf.Hostname,
		)
		return master, nil
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	return nil, ErrWrongPassword
}
