package records

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"listify/internal/listify"
)

// ErrLocked is returned when reading a sealed record without a decryption
// context.
var ErrLocked = errors.New("records are encrypted and locked")

// SealedRecordStore encrypts records before handing them to the wrapped
// store and decrypts them on the way out. Writing needs only the public key;
// reading needs the DecryptionContext obtained from Encryptor.Unlock.
type SealedRecordStore struct {
	inner listify.RecordStore
	enc   listify.Encryptor

	mu  sync.Mutex
	dec listify.DecryptionContext
}

// NewSealedRecordStore wraps inner. dec may be nil, in which case every Get
// fails with ErrLocked until Unlock is called.
func NewSealedRecordStore(inner listify.RecordStore, enc listify.Encryptor, dec listify.DecryptionContext) *SealedRecordStore {
	return &SealedRecordStore{inner: inner, enc: enc, dec: dec}
}

// Unlock unlocks the private key with passphrase so records can be read.
func (s *SealedRecordStore) Unlock(passphrase string) error {
	dec, err := s.enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking records: %w", err)
	}
	s.mu.Lock()
	s.dec = dec
	s.mu.Unlock()
	return nil
}

func (s *SealedRecordStore) Get(key string) ([]byte, error) {
	ciphertext, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dec == nil {
		return nil, ErrLocked
	}

	var plain bytes.Buffer
	if err := s.dec.Decrypt(bytes.NewReader(ciphertext), &plain); err != nil {
		return nil, fmt.Errorf("decrypting record %s: %w", key, err)
	}
	return plain.Bytes(), nil
}

func (s *SealedRecordStore) Put(key string, data []byte) error {
	var sealed bytes.Buffer

	s.mu.Lock()
	err := s.enc.Encrypt(bytes.NewReader(data), &sealed)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encrypting record %s: %w", key, err)
	}
	return s.inner.Put(key, sealed.Bytes())
}

func (s *SealedRecordStore) Close() error {
	return s.inner.Close()
}

var _ listify.RecordStore = (*SealedRecordStore)(nil)
