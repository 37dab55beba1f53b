package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// UserAuthService 用户注册、登录与会话服务
type UserAuthService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	sessionRepo repository.UserSessionRepository
	balanceSvc  *BalanceService
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, sessionRepo repository.UserSessionRepository, balanceSvc *BalanceService) *UserAuthService {
	return &UserAuthService{
		cfg:         cfg,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		balanceSvc:  balanceSvc,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email    string
	Password string
	Nickname string
	DeviceID string
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string
	Password string
	DeviceID string
}

// SessionResult 登录/注册成功后的会话
type SessionResult struct {
	User         *models.User
	SessionToken string
	ExpiresAt    time.Time
	BalanceID    string
}

// Register 注册并登录，携带设备ID时合并设备余额
func (s *UserAuthService) Register(ctx context.Context, input RegisterInput) (*SessionResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     strings.TrimSpace(input.Nickname),
		DeviceID:     strings.TrimSpace(input.DeviceID),
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		_, err := s.balanceSvc.MergeInTx(tx, user.DeviceID, AccountBalanceID(user.ID))
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "email", user.Email)
	return s.openSession(ctx, user)
}

// Login 邮箱密码登录，携带设备ID时记录设备并合并设备余额
func (s *UserAuthService) Login(ctx context.Context, input LoginInput) (*SessionResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || VerifyPassword(user.PasswordHash, input.Password) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}
	deviceID := strings.TrimSpace(input.DeviceID)
	if deviceID != "" {
		err = models.DB.Transaction(func(tx *gorm.DB) error {
			user.DeviceID = deviceID
			user.UpdatedAt = time.Now()
			if err := s.userRepo.WithTx(tx).Update(user); err != nil {
				return err
			}
			_, err := s.balanceSvc.MergeInTx(tx, deviceID, AccountBalanceID(user.ID))
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return s.openSession(ctx, user)
}

// Authenticate 校验会话 token，优先读取 Redis 快照
func (s *UserAuthService) Authenticate(ctx context.Context, token string) (*cache.SessionState, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionInvalid
	}
	state, hit, err := cache.GetSessionState(ctx, token)
	if err != nil {
		logger.Warnw("session_cache_read_failed", "error", err)
	}
	if hit && state.ExpiresAt > time.Now().Unix() {
		if state.Status == constants.UserStatusDisabled {
			return nil, ErrUserDisabled
		}
		return state, nil
	}

	session, err := s.sessionRepo.GetValidByToken(token, time.Now())
	if err != nil {
		return nil, err
	}
	if session == nil || session.User == nil {
		return nil, ErrSessionInvalid
	}
	if session.User.Status == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}
	state = cache.BuildSessionState(session)
	if err := cache.SetSessionState(ctx, token, state); err != nil {
		logger.Warnw("session_cache_write_failed", "error", err)
	}
	return state, nil
}

// GetUser 查询当前用户
func (s *UserAuthService) GetUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionInvalid
	}
	return user, nil
}

// Logout 注销会话
func (s *UserAuthService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteByToken(token); err != nil {
		return err
	}
	if err := cache.DelSessionState(ctx, token); err != nil {
		logger.Warnw("session_cache_delete_failed", "error", err)
	}
	return nil
}

// CleanupExpiredSessions 清理过期会话
func (s *UserAuthService) CleanupExpiredSessions() (int64, error) {
	return s.sessionRepo.DeleteExpired(time.Now())
}

func (s *UserAuthService) openSession(ctx context.Context, user *models.User) (*SessionResult, error) {
	days := s.cfg.Session.ExpireDays
	if days <= 0 {
		days = 30
	}
	now := time.Now()
	session := &models.UserSession{
		UserID:       user.ID,
		SessionToken: uuid.NewString(),
		ExpiresAt:    now.AddDate(0, 0, days),
		CreatedAt:    now,
		User:         user,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	if err := cache.SetSessionState(ctx, session.SessionToken, cache.BuildSessionState(session)); err != nil {
		logger.Warnw("session_cache_write_failed", "error", err)
	}
	return &SessionResult{
		User:         user,
		SessionToken: session.SessionToken,
		ExpiresAt:    session.ExpiresAt,
		BalanceID:    AccountBalanceID(user.ID),
	}, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
