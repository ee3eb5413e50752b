package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"listify/internal/listify"
)

// sealMagic starts every record written by TestEncryptor. The plaintext
// follows unchanged so sealed fixtures stay readable.
var sealMagic = []byte("LSTSEAL\x00")

// ErrNotSealed is returned when decrypting data TestEncryptor did not write.
var ErrNotSealed = errors.New("record is not sealed")

// TestEncryptor seals records without cryptography, for tests and for trying
// encrypted storage without keys. It follows the age backend's passphrase
// rules: before Setup any passphrase unlocks it, afterwards only the one
// given to Setup.
type TestEncryptor struct {
	mu         sync.Mutex
	passphrase string
}

var _ listify.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.passphrase != "" {
		return ErrAlreadyConfigured
	}
	e.passphrase = passphrase
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	record, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading record: %w", err)
	}
	if _, err := w.Write(append(append([]byte(nil), sealMagic...), record...)); err != nil {
		return fmt.Errorf("writing sealed record: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (listify.DecryptionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return testOpener{}, nil
}

// IsConfigured is always true: the test backend needs no key files.
func (e *TestEncryptor) IsConfigured() bool {
	return true
}

type testOpener struct{}

func (testOpener) Decrypt(r io.Reader, w io.Writer) error {
	sealed, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading sealed record: %w", err)
	}
	record, ok := bytes.CutPrefix(sealed, sealMagic)
	if !ok {
		return ErrNotSealed
	}
	if _, err := w.Write(record); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}
