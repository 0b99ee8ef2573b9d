package testutil

import (
	"olaaf-go/internal/encryption"
	"olaaf-go/internal/olaaf"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() olaaf.Encryptor {
	return encryption.NewTestEncryptor()
}
