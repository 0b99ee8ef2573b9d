package testutil

import (
	"olaaf-go/internal/olaaf"
	"olaaf-go/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() olaaf.Vault {
	return vault.NewMemoryVault("test-vault")
}
