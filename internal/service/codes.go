package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/dujiao-next/storefront/internal/constants"
)

const maxCodeAttempts = 5

// randomString 从字母表中均匀抽取 length 个字符
func randomString(alphabet string, length int) (string, error) {
	if length <= 0 || alphabet == "" {
		return "", nil
	}
	limit := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// GeneratePaymentCode 生成 8 位付款码（A-Z0-9）
func GeneratePaymentCode() (string, error) {
	return randomString(constants.PaymentCodeAlphabet, constants.PaymentCodeLength)
}

// GenerateGiftCode 生成 XXXX-XXXX-XXXX-XXXX 格式的兑换码
func GenerateGiftCode() (string, error) {
	raw, err := randomString(constants.GiftCodeAlphabet, constants.GiftCodeLength)
	if err != nil {
		return "", err
	}
	return groupGiftCode(raw), nil
}

func groupGiftCode(raw string) string {
	size := constants.GiftCodeGroupSize
	groups := make([]string, 0, len(raw)/size+1)
	for start := 0; start < len(raw); start += size {
		end := start + size
		if end > len(raw) {
			end = len(raw)
		}
		groups = append(groups, raw[start:end])
	}
	return strings.Join(groups, "-")
}

// NormalizePaymentCode 付款码统一去空格转大写
func NormalizePaymentCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// giftCodeCandidates 返回兑换码的候选写法：去掉连字符后重新分组的格式，以及原样大写的格式
func giftCodeCandidates(code string) []string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		return nil
	}
	stripped := strings.NewReplacer("-", "", " ", "").Replace(upper)
	grouped := groupGiftCode(stripped)
	if grouped == upper {
		return []string{grouped}
	}
	return []string{grouped, upper}
}
