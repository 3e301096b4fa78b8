package config

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringService identifies our credential store namespace.
const KeyringService = "telemetrydash"

// ErrNoSecret is returned when no password is stored for a connection.
var ErrNoSecret = errors.New("no stored password")

// Secrets stores connection passwords outside the config file.
type Secrets interface {
	Password(connection string) (string, error)
	SetPassword(connection, password string) error
	DeletePassword(connection string) error
}

// Keyring keeps passwords in the OS credential store.
type Keyring struct {
	Service string
}

// NewKeyring returns a Keyring for the default service name.
func NewKeyring() *Keyring {
	return &Keyring{Service: KeyringService}
}

// Password returns the stored password, or ErrNoSecret.
func (k *Keyring) Password(connection string) (string, error) {
	pw, err := keyring.Get(k.Service, connection)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoSecret
	}
	return pw, err
}

// SetPassword stores the password for a connection.
func (k *Keyring) SetPassword(connection, password string) error {
	return keyring.Set(k.Service, connection, password)
}

// DeletePassword removes a stored password. A missing one is not an error.
func (k *Keyring) DeletePassword(connection string) error {
	err := keyring.Delete(k.Service, connection)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
