package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// codeAlphabet 去掉了 0/O/1/I 这类易混淆字符；只含大写，规范化后大小写不敏感
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePairingCode 用加密随机源生成指定长度的配对码
func GeneratePairingCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate pairing code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// CanonicalCode 规范化用户输入的配对码：去空白并统一大写
func CanonicalCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
