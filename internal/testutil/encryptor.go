package testutil

import (
	"listify/internal/encryption"
	"listify/internal/listify"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() listify.Encryptor {
	return encryption.NewTestEncryptor()
}
