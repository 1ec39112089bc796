package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// envelopeKey holds the ciphertext inside the stored JSON document.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte

	// Kinds restricts encryption to these collections. Empty means every kind.
	Kinds []domain.Kind
}

// DefaultSensitiveKinds hold personal data or third party account details.
var DefaultSensitiveKinds = []domain.Kind{
	domain.KindUser,
	domain.KindAccountProvision,
}

type encryptionMiddleware struct {
	next   ports.DocumentStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts documents using AES-GCM.
// The stored document is a JSON envelope so backends indexing JSON (postgres JSONB) keep working.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) covers(kind domain.Kind) bool {
	return len(m.config.Kinds) == 0 || slices.Contains(m.config.Kinds, kind)
}

func (m *encryptionMiddleware) NextID(ctx context.Context, kind domain.Kind) (int64, error) {
	return m.next.NextID(ctx, kind)
}

func (m *encryptionMiddleware) Save(ctx context.Context, kind domain.Kind, id int64, data []byte) error {
	if !m.covers(kind) {
		return m.next.Save(ctx, kind, id, data)
	}

	ciphertext, err := encrypt(data, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s %d: %w", kind, id, err)
	}

	envelope, err := json.Marshal(map[string]string{
		envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return err
	}
	return m.next.Save(ctx, kind, id, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, kind domain.Kind, id int64) ([]byte, error) {
	data, err := m.next.Load(ctx, kind, id)
	if err != nil || !m.covers(kind) {
		return data, err
	}

	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to read envelope of %s %d: %w", kind, id, err)
	}

	// Fail secure: a covered kind without an envelope was not written by us.
	encryptedStr, ok := envelope[envelopeKey].(string)
	if !ok {
		return nil, fmt.Errorf("%s %d is missing encrypted data envelope", kind, id)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s %d: %w", kind, id, err)
	}
	return plainText, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	return m.next.Delete(ctx, kind, id)
}

func (m *encryptionMiddleware) List(ctx context.Context, kind domain.Kind) ([]int64, error) {
	return m.next.List(ctx, kind)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
