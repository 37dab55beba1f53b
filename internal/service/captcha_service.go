package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/mojocn/base64Captcha"
)

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID      string `json:"captcha_id"`
	CaptchaCode    string `json:"captcha_code"`
	TurnstileToken string `json:"turnstile_token"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaPublicSetting 前端可见的验证码配置
type CaptchaPublicSetting struct {
	Provider         string          `json:"provider"`
	Scenes           map[string]bool `json:"scenes"`
	TurnstileSiteKey string          `json:"turnstile_site_key,omitempty"`
}

type turnstileVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// CaptchaService 人机验证服务
// provider 为 none 时已开启的场景只要求携带 challengeToken，不做远端校验；
// image 使用内存存储的图片验证码，turnstile 走远端校验并带退避重试
type CaptchaService struct {
	cfg        config.CaptchaConfig
	httpClient *http.Client

	mu         sync.Mutex
	imageStore base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	cfg = normalizeCaptchaConfig(cfg)
	return &CaptchaService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Turnstile.TimeoutMS) * time.Millisecond},
	}
}

// PublicSetting 返回前端需要的配置
func (s *CaptchaService) PublicSetting() CaptchaPublicSetting {
	setting := CaptchaPublicSetting{
		Provider: s.cfg.Provider,
		Scenes: map[string]bool{
			constants.CaptchaSceneCreateOrder: s.isSceneEnabled(constants.CaptchaSceneCreateOrder),
			constants.CaptchaSceneLogin:       s.isSceneEnabled(constants.CaptchaSceneLogin),
		},
	}
	if s.cfg.Provider == constants.CaptchaProviderTurnstile {
		setting.TurnstileSiteKey = s.cfg.Turnstile.SiteKey
	}
	return setting
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if s.cfg.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}
	image := s.cfg.Image
	driver := base64Captcha.NewDriverString(
		image.Height,
		image.Width,
		image.NoiseCount,
		image.ShowLine,
		image.Length,
		"23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ",
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.ensureImageStore())
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 按场景校验验证码
func (s *CaptchaService) Verify(ctx context.Context, scene string, payload CaptchaVerifyPayload, clientIP string) error {
	if !s.isSceneEnabled(scene) {
		return nil
	}
	switch s.cfg.Provider {
	case constants.CaptchaProviderNone:
		if strings.TrimSpace(payload.TurnstileToken) == "" {
			return ErrCaptchaRequired
		}
		return nil
	case constants.CaptchaProviderImage:
		captchaID := strings.TrimSpace(payload.CaptchaID)
		captchaCode := strings.TrimSpace(payload.CaptchaCode)
		if captchaID == "" || captchaCode == "" {
			return ErrCaptchaRequired
		}
		if !s.ensureImageStore().Verify(captchaID, captchaCode, true) {
			return ErrCaptchaInvalid
		}
		return nil
	case constants.CaptchaProviderTurnstile:
		token := strings.TrimSpace(payload.TurnstileToken)
		if token == "" {
			return ErrCaptchaRequired
		}
		return s.verifyTurnstile(ctx, token, strings.TrimSpace(clientIP))
	default:
		return ErrCaptchaConfigInvalid
	}
}

func (s *CaptchaService) isSceneEnabled(scene string) bool {
	switch scene {
	case constants.CaptchaSceneCreateOrder:
		return s.cfg.Scenes.CreateOrder
	case constants.CaptchaSceneLogin:
		return s.cfg.Scenes.Login
	default:
		return false
	}
}

// verifyTurnstile 网络错误与 5xx 会按指数退避重试，校验失败直接返回
func (s *CaptchaService) verifyTurnstile(ctx context.Context, token, clientIP string) error {
	secret := strings.TrimSpace(s.cfg.Turnstile.SecretKey)
	verifyURL := strings.TrimSpace(s.cfg.Turnstile.VerifyURL)
	if secret == "" || verifyURL == "" {
		return ErrCaptchaConfigInvalid
	}
	form := url.Values{}
	form.Set("secret", secret)
	form.Set("response", token)
	if clientIP != "" {
		form.Set("remoteip", clientIP)
	}

	var result turnstileVerifyResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("turnstile status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.cfg.Turnstile.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		logger.Warnw("captcha_turnstile_verify_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrCaptchaVerifyFailed, err)
	}
	if !result.Success {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) ensureImageStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageStore == nil {
		s.imageStore = base64Captcha.NewMemoryStore(s.cfg.Image.MaxStore, time.Duration(s.cfg.Image.ExpireSeconds)*time.Second)
	}
	return s.imageStore
}

func normalizeCaptchaConfig(cfg config.CaptchaConfig) config.CaptchaConfig {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case constants.CaptchaProviderImage, constants.CaptchaProviderTurnstile:
	default:
		cfg.Provider = constants.CaptchaProviderNone
	}
	cfg.Image.Length = clampInt(cfg.Image.Length, 4, 8, 5)
	cfg.Image.Width = clampInt(cfg.Image.Width, 80, 600, 240)
	cfg.Image.Height = clampInt(cfg.Image.Height, 30, 200, 80)
	cfg.Image.NoiseCount = clampInt(cfg.Image.NoiseCount, 0, 20, 2)
	cfg.Image.ShowLine = clampInt(cfg.Image.ShowLine, 0, 20, 2)
	cfg.Image.ExpireSeconds = clampInt(cfg.Image.ExpireSeconds, 30, 3600, 300)
	cfg.Image.MaxStore = clampInt(cfg.Image.MaxStore, 100, 100000, 10240)
	cfg.Turnstile.TimeoutMS = clampInt(cfg.Turnstile.TimeoutMS, 500, 10000, 2000)
	cfg.Turnstile.MaxRetries = clampInt(cfg.Turnstile.MaxRetries, 0, 5, 2)
	return cfg
}

// clampInt 超出范围时回退到默认值
func clampInt(value, lower, upper, fallback int) int {
	if value < lower || value > upper {
		return fallback
	}
	return value
}
