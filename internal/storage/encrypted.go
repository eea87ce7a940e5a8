package storage

import (
	"context"
	"fmt"
)

// Cipher encrypts and decrypts stored values
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Encrypted wraps a KV so that values are encrypted at rest. Keys are
// stored in the clear.
type Encrypted struct {
	kv     KV
	cipher Cipher
}

// NewEncrypted creates an encrypting KV over kv
func NewEncrypted(kv KV, cipher Cipher) *Encrypted {
	return &Encrypted{kv: kv, cipher: cipher}
}

// Get returns the decrypted value for key
func (e *Encrypted) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := e.kv.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	plain, err := e.cipher.Decrypt(value)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return plain, true, nil
}

// Set encrypts value and stores it under key
func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	sealed, err := e.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return e.kv.Set(ctx, key, sealed)
}

// Remove deletes key
func (e *Encrypted) Remove(ctx context.Context, key string) error {
	return e.kv.Remove(ctx, key)
}
