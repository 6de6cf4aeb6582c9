// Package access decides whether a user may join a room and generates the
// access keys that gate private rooms.
package access

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/chatwave/chat_backend/models"
)

var (
	ErrMissingKey  = errors.New("access key required for private room")
	ErrKeyExpired  = errors.New("access key has expired")
	ErrKeyMismatch = errors.New("invalid access key")
)

const (
	keyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyLength  = 8
)

// ValidateJoin reports whether suppliedKey grants entry to the room.
// Public rooms always accept. Private rooms require a non-empty, unexpired,
// matching key.
func ValidateJoin(room *models.Room, suppliedKey string) error {
	if !room.IsPrivate {
		return nil
	}
	if suppliedKey == "" {
		return ErrMissingKey
	}
	if room.KeyExpiresAt != nil && room.KeyExpiresAt.Before(time.Now()) {
		return ErrKeyExpired
	}
	if room.AccessKey == nil || *room.AccessKey != suppliedKey {
		return ErrKeyMismatch
	}
	return nil
}

// GenerateAccessKey returns an 8-character code drawn uniformly from
// uppercase letters and digits. Uniqueness against existing rooms is
// enforced by the store's unique index, not here.
func GenerateAccessKey() (string, error) {
	key := make([]byte, keyLength)
	max := big.NewInt(int64(len(keyCharset)))
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		key[i] = keyCharset[n.Int64()]
	}
	return string(key), nil
}
