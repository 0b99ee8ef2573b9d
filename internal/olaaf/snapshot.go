package olaaf

import (
	"fmt"
	"io"
	"os"
)

// SnapshotName is the vault key under which index snapshots are stored.
const SnapshotName = "olaaf.db"

// Vault stores versioned snapshots of the hash history index.
// All operations stream through io.Reader/io.Writer.
type Vault interface {
	// PutSnapshot stores a named snapshot. size is the number of bytes that
	// will be read from r. version is stored alongside for consistency checks.
	PutSnapshot(name string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the named snapshot to w.
	GetSnapshot(name string, w io.Writer) error

	// GetSnapshotVersion returns the version of the named snapshot, or 0 if
	// none has been stored.
	GetSnapshotVersion(name string) (int64, error)

	// ValidateSetup verifies that the vault is reachable and configured.
	ValidateSetup() error
}

// Encryptor seals snapshots before they leave the machine.
// Encryption needs only the public key; decryption requires unlocking the
// private key with a passphrase.
type Encryptor interface {
	// Setup generates a key pair, storing the private key sealed with passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock opens the private key and returns a DecryptionContext.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether the key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key for one session.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// PublishSnapshot copies the database, encrypts the copy and uploads it to
// vault as version.
func PublishSnapshot(db Database, vault Vault, enc Encryptor, version int64) error {
	plain, err := tempPath("olaaf-snapshot-*.db")
	if err != nil {
		return err
	}
	defer os.Remove(plain)

	if err := db.BackupTo(plain); err != nil {
		return fmt.Errorf("copying database: %w", err)
	}

	sealed, err := tempPath("olaaf-snapshot-*.db.enc")
	if err != nil {
		return err
	}
	defer os.Remove(sealed)

	if err := transform(plain, sealed, enc.Encrypt); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}

	f, err := os.Open(sealed)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}
	if err := vault.PutSnapshot(SnapshotName, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	return nil
}

// RestoreSnapshot downloads the latest snapshot, decrypts it and writes it
// to destPath. It returns the restored version. An existing file at destPath
// is only replaced once the snapshot has been fully decrypted.
func RestoreSnapshot(vault Vault, dec DecryptionContext, destPath string) (int64, error) {
	version, err := vault.GetSnapshotVersion(SnapshotName)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("vault holds no snapshot")
	}

	sealed, err := tempPath("olaaf-restore-*.db.enc")
	if err != nil {
		return 0, err
	}
	defer os.Remove(sealed)

	f, err := os.Create(sealed)
	if err != nil {
		return 0, fmt.Errorf("creating download file: %w", err)
	}
	if err := vault.GetSnapshot(SnapshotName, f); err != nil {
		f.Close()
		return 0, fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing download file: %w", err)
	}

	partial := destPath + ".partial"
	if err := transform(sealed, partial, dec.Decrypt); err != nil {
		os.Remove(partial)
		return 0, fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := os.Rename(partial, destPath); err != nil {
		return 0, fmt.Errorf("replacing database: %w", err)
	}
	return version, nil
}

func tempPath(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()
	f.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(name)
	return name, nil
}

func transform(src, dst string, fn func(io.Reader, io.Writer) error) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := fn(in, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
