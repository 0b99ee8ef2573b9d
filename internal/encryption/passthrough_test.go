package encryption

import (
	"bytes"
	"strings"
	"testing"

	"olaaf-go/internal/config"
	"olaaf-go/internal/olaaf"
)

func TestPassthroughEncryptors(t *testing.T) {
	t.Parallel()

	encryptors := map[string]olaaf.Encryptor{
		"plain": PlainEncryptor{},
		"test":  NewTestEncryptor(),
	}
	inputs := [][]byte{
		[]byte("SQLite format 3\x00"),
		{},
		bytes.Repeat([]byte("abcdef"), 10000),
	}

	for name, e := range encryptors {
		t.Run(name, func(t *testing.T) {
			if !e.IsConfigured() {
				t.Error("IsConfigured() = false, want true")
			}
			if err := e.Setup("any"); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			dec, err := e.Unlock("any")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}

			for _, input := range inputs {
				var sealed bytes.Buffer
				if err := e.Encrypt(bytes.NewReader(input), &sealed); err != nil {
					t.Fatalf("Encrypt() error = %v", err)
				}
				var opened bytes.Buffer
				if err := dec.Decrypt(&sealed, &opened); err != nil {
					t.Fatalf("Decrypt() error = %v", err)
				}
				if !bytes.Equal(opened.Bytes(), input) {
					t.Errorf("round-trip failed: got %d bytes, want %d", opened.Len(), len(input))
				}
			}
		})
	}
}

func TestTestEncryptor_Header(t *testing.T) {
	t.Parallel()

	var sealed bytes.Buffer
	if err := NewTestEncryptor().Encrypt(strings.NewReader("snapshot"), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !bytes.HasPrefix(sealed.Bytes(), testHeader) {
		t.Error("encrypted output does not start with test header")
	}

	tests := []struct {
		name  string
		input string
	}{
		{"invalid header", "NOT_VALID_HEADER_data"},
		{"truncated header", "OL"},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := (&TestDecryptionContext{}).Decrypt(strings.NewReader(tt.input), &out); err == nil {
				t.Error("Decrypt() expected error")
			}
		})
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ     string
		want    string
		wantErr bool
	}{
		{"age", "*encryption.AgeEncryptor", false},
		{"none", "encryption.PlainEncryptor", false},
		{"", "encryption.PlainEncryptor", false},
		{"test", "*encryption.TestEncryptor", false},
		{"rot13", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if typeName(got) != tt.want {
				t.Errorf("NewEncryptorFromConfig() = %s, want %s", typeName(got), tt.want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *AgeEncryptor:
		return "*encryption.AgeEncryptor"
	case PlainEncryptor:
		return "encryption.PlainEncryptor"
	case *TestEncryptor:
		return "*encryption.TestEncryptor"
	}
	return "unknown"
}
