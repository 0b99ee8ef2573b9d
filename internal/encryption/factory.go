package encryption

import (
	"fmt"

	"olaaf-go/internal/config"
	"olaaf-go/internal/olaaf"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (olaaf.Encryptor, error) {
	switch cfg.Type {
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "none", "":
		return PlainEncryptor{}, nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
