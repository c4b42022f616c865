package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MessageCipher 消息加密能力边界。会话密钥由双方用户 ID 约束，
// 底层原语可整体替换而不影响消息/配对逻辑。
type MessageCipher interface {
	EncryptForPair(user1ID, user2ID uint64, plaintext string) (string, error)
	DecryptForPair(user1ID, user2ID uint64, ciphertext string) (string, error)
}

// AESGCMCipher AES-256-GCM 实现：HKDF 按会话派生密钥，随机 nonce 前置密文，base64 存储
type AESGCMCipher struct {
	master []byte
}

func NewAESGCMCipher(masterKey string) (*AESGCMCipher, error) {
	if masterKey == "" {
		return nil, errors.New("crypto master key is empty")
	}
	return &AESGCMCipher{master: []byte(masterKey)}, nil
}

// conversationKey 派生会话级密钥；用户对先排序，保证双方得到同一把密钥
func (c *AESGCMCipher) conversationKey(user1ID, user2ID uint64) ([]byte, error) {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}
	info := fmt.Sprintf("duet:conv:%d:%d", user1ID, user2ID)

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, c.master, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive conversation key: %w", err)
	}
	return key, nil
}

func (c *AESGCMCipher) EncryptForPair(user1ID, user2ID uint64, plaintext string) (string, error) {
	key, err := c.conversationKey(user1ID, user2ID)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *AESGCMCipher) DecryptForPair(user1ID, user2ID uint64, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not valid base64: %w", err)
	}

	key, err := c.conversationKey(user1ID, user2ID)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.New("decryption failed")
	}
	return string(plain), nil
}
