package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"olaaf-go/internal/olaaf"
)

// testHeader marks TestEncryptor output so a sealed snapshot never equals
// the plain database file.
var testHeader = []byte("OLAAFENC")

var errNotSealed = errors.New("missing test encryption header")

// TestEncryptor frames data with a fixed header instead of encrypting it.
// Any passphrase unlocks it.
type TestEncryptor struct {
	setupCalled bool
}

var (
	_ olaaf.Encryptor         = (*TestEncryptor)(nil)
	_ olaaf.DecryptionContext = (*TestDecryptionContext)(nil)
)

func NewTestEncryptor() *TestEncryptor { return &TestEncryptor{} }

func (e *TestEncryptor) Setup(string) error {
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, io.MultiReader(bytes.NewReader(testHeader), r)); err != nil {
		return fmt.Errorf("sealing snapshot: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(string) (olaaf.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool { return true }

// TestDecryptionContext removes the header written by TestEncryptor.
type TestDecryptionContext struct{}

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	got := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, got); err != nil || !bytes.Equal(got, testHeader) {
		return errNotSealed
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("unsealing snapshot: %w", err)
	}
	return nil
}
