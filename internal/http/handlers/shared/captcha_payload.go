package shared

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/service"
)

// CaptchaPayloadRequest 人机验证载荷，challengeToken 为 Turnstile token。
type CaptchaPayloadRequest struct {
	CaptchaID      string `json:"captchaId"`
	CaptchaCode    string `json:"captchaCode"`
	ChallengeToken string `json:"challengeToken"`
}

// ToServicePayload 转换为 service 层验证码载荷。
func (r CaptchaPayloadRequest) ToServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:      strings.TrimSpace(r.CaptchaID),
		CaptchaCode:    strings.TrimSpace(r.CaptchaCode),
		TurnstileToken: strings.TrimSpace(r.ChallengeToken),
	}
}
