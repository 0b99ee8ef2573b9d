package encryption

import (
	"fmt"
	"io"

	"olaaf-go/internal/olaaf"
)

// PlainEncryptor passes snapshots through unchanged. It backs
// encryption type "none", for vaults that are already private.
type PlainEncryptor struct{}

var _ olaaf.Encryptor = PlainEncryptor{}

func (PlainEncryptor) Setup(string) error { return nil }

func (PlainEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (PlainEncryptor) Unlock(string) (olaaf.DecryptionContext, error) {
	return plainDecryption{}, nil
}

func (PlainEncryptor) IsConfigured() bool { return true }

type plainDecryption struct{}

func (plainDecryption) Decrypt(r io.Reader, w io.Writer) error {
	return PlainEncryptor{}.Encrypt(r, w)
}
