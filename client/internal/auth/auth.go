package auth

import (
	"errors"
	"github.com/zalando/go-keyring"
)

const (
	appName = "accordee"
	keyName = "session-token"
)

func Save(token string) error {
	return keyring.Set(appName, keyName, token)
}

// Get returns the stored session token, or an empty string when nobody has logged in.
func Get() (string, error) {
	token, err := keyring.Get(appName, keyName)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

func Clear() error {
	err := keyring.Delete(appName, keyName)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
