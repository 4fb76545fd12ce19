package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/zalando/go-keyring"
)

// CredentialStore resolves the password of a remote catalog user.
type CredentialStore interface {
	Password(user string) (string, error)
}

// KeyringStore keeps passwords in the OS keyring, never in the config file.
type KeyringStore struct {
	Service string
}

// NewKeyringStore returns a store bound to the application keyring service.
func NewKeyringStore() KeyringStore {
	return KeyringStore{Service: config.KeyringService}
}

// Password returns the stored password for user. A missing entry is not an
// error: the catalog may be public, so an empty password is returned.
func (k KeyringStore) Password(user string) (string, error) {
	if user == "" {
		return "", nil
	}
	pass, err := keyring.Get(k.Service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		slog.Debug(config.MsgPassMissing,
			config.LogKeyComponent, config.CompKeyring,
			config.LogKeyUser, user)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return pass, nil
}

// SetPassword stores pass for user.
func (k KeyringStore) SetPassword(user, pass string) error {
	if err := keyring.Set(k.Service, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	return nil
}
