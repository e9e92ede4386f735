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

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
)

// EnvelopeStateID marks the single placeholder state that carries the ciphertext.
const EnvelopeStateID = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without rewriting every stored automaton.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next ports.AutomatonStore
	keys keyring
}

// NewEncryptionMiddleware creates a middleware that stores each document
// AES-GCM encrypted inside an envelope document. Only the kind stays readable.
// The automaton ID is authenticated with the ciphertext, so an envelope
// copied to another ID does not decrypt. Keys must be 32 bytes (AES-256).
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	keys, err := newKeyring(config)
	if err != nil {
		panic(err)
	}
	return func(next ports.AutomatonStore) ports.AutomatonStore {
		return &encryptionMiddleware{next: next, keys: keys}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, id string, doc domain.Document) error {
	plainText, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	ciphertext, err := m.keys.seal(plainText, []byte(id))
	if err != nil {
		return fmt.Errorf("failed to encrypt document: %w", err)
	}

	envelope := domain.Document{
		Kind:        doc.Kind,
		States:      []domain.State{{ID: EnvelopeStateID, Label: base64.StdEncoding.EncodeToString(ciphertext)}},
		Transitions: []domain.Transition{},
	}
	return m.next.Save(ctx, id, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (domain.Document, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}

	// a plain document is refused rather than silently accepted
	if len(envelope.States) != 1 || envelope.States[0].ID != EnvelopeStateID {
		return domain.Document{}, errors.New("document is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.States[0].Label)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := m.keys.open(ciphertext, []byte(id))
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to decrypt document: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(plainText, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("failed to unmarshal decrypted document: %w", err)
	}
	return doc, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// keyring holds one AEAD per key; index 0 is the active key.
type keyring []cipher.AEAD

func newKeyring(config EncryptionConfig) (keyring, error) {
	keys := append([][]byte{config.ActiveKey}, config.FallbackKeys...)
	ring := make(keyring, 0, len(keys))
	for i, key := range keys {
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption key %d must be 32 bytes (AES-256), got %d", i, len(key))
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		ring = append(ring, gcm)
	}
	return ring, nil
}

// seal encrypts with the active key. The nonce is prepended to the output.
func (k keyring) seal(plaintext, aad []byte) ([]byte, error) {
	gcm := k[0]
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, aad), nil
}

// open tries the active key, then each fallback in order.
func (k keyring) open(ciphertext, aad []byte) ([]byte, error) {
	for _, gcm := range k {
		n := gcm.NonceSize()
		if len(ciphertext) < n {
			return nil, errors.New("ciphertext too short")
		}
		if plain, err := gcm.Open(nil, ciphertext[:n], ciphertext[n:], aad); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}
