// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// DefaultService is the keyring service under which provider keys are kept.
const DefaultService = "filesearch"

// KeyringStore implements Store with the OS keyring: Keychain on macOS,
// secret-service on Linux and Credential Manager on Windows.
type KeyringStore struct{}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Set(service, key, value string) error {
	if err := checkInput("set", service, key); err != nil {
		return err
	}
	if value == "" {
		return fserr.New(fserr.CodeSecretInvalidInput, "secret set: value must not be empty")
	}

	if err := keyring.Set(service, key, value); err != nil {
		return fserr.Wrapf(err, fserr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return nil
}

func (s *KeyringStore) Get(service, key string) (string, error) {
	if err := checkInput("get", service, key); err != nil {
		return "", err
	}

	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fserr.Errorf(fserr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", fserr.Wrapf(err, fserr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := checkInput("delete", service, key); err != nil {
		return err
	}

	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fserr.Errorf(fserr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return fserr.Wrapf(err, fserr.CodeSecretStoreFailure, "deleting secret %s/%s", service, key)
	}
	return nil
}

func checkInput(op, service, key string) error {
	if service == "" {
		return fserr.Errorf(fserr.CodeSecretInvalidInput, "secret %s: service must not be empty", op)
	}
	if key == "" {
		return fserr.Errorf(fserr.CodeSecretInvalidInput, "secret %s: key must not be empty", op)
	}
	return nil
}
