package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAESGCMCipherRoundTrip(t *testing.T) {
	c, err := NewAESGCMCipher("test-master-key")
	require.NoError(t, err)

	plaintext := "今晚老地方见"
	ciphertext, err := c.EncryptForPair(1, 2, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	got, err := c.DecryptForPair(1, 2, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestAESGCMCipherPairOrderSymmetry(t *testing.T) {
	c, err := NewAESGCMCipher("test-master-key")
	require.NoError(t, err)

	ciphertext, err := c.EncryptForPair(7, 3, "hello")
	require.NoError(t, err)

	// 用户对顺序不影响密钥派生
	got, err := c.DecryptForPair(3, 7, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestAESGCMCipherDistinctNonces(t *testing.T) {
	c, err := NewAESGCMCipher("test-master-key")
	require.NoError(t, err)

	first, err := c.EncryptForPair(1, 2, "same plaintext")
	require.NoError(t, err)
	second, err := c.EncryptForPair(1, 2, "same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestAESGCMCipherWrongPairFails(t *testing.T) {
	c, err := NewAESGCMCipher("test-master-key")
	require.NoError(t, err)

	ciphertext, err := c.EncryptForPair(1, 2, "secret")
	require.NoError(t, err)

	_, err = c.DecryptForPair(1, 3, ciphertext)
	assert.Error(t, err)
}

func TestAESGCMCipherTamperedCiphertextFails(t *testing.T) {
	c, err := NewAESGCMCipher("test-master-key")
	require.NoError(t, err)

	ciphertext, err := c.EncryptForPair(1, 2, "secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = c.DecryptForPair(1, 2, tampered)
	assert.Error(t, err)

	_, err = c.DecryptForPair(1, 2, "not base64 at all!!!")
	assert.Error(t, err)
}

func TestNewAESGCMCipherEmptyKey(t *testing.T) {
	_, err := NewAESGCMCipher("")
	assert.Error(t, err)
}
