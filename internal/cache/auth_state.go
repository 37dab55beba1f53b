package cache

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/models"
)

const sessionStateMaxTTL = 10 * time.Minute

// SessionState 会话鉴权快照，仅用于服务端 Redis 缓存
type SessionState struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	Status    string `json:"status"`
	ExpiresAt int64  `json:"expires_at"`
}

func sessionStateKey(token string) string {
	return "session:" + strings.TrimSpace(token)
}

// BuildSessionState 从会话模型构建快照
func BuildSessionState(session *models.UserSession) *SessionState {
	if session == nil || session.User == nil {
		return nil
	}
	return &SessionState{
		UserID:    session.UserID,
		Email:     session.User.Email,
		Nickname:  session.User.Nickname,
		Status:    session.User.Status,
		ExpiresAt: session.ExpiresAt.Unix(),
	}
}

// GetSessionState 读取会话快照
func GetSessionState(ctx context.Context, token string) (*SessionState, bool, error) {
	var state SessionState
	hit, err := GetJSON(ctx, sessionStateKey(token), &state)
	if err != nil || !hit {
		return nil, false, err
	}
	return &state, true, nil
}

// SetSessionState 写入会话快照，TTL 不超过会话剩余有效期
func SetSessionState(ctx context.Context, token string, state *SessionState) error {
	if state == nil {
		return nil
	}
	ttl := time.Until(time.Unix(state.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}
	if ttl > sessionStateMaxTTL {
		ttl = sessionStateMaxTTL
	}
	return SetJSON(ctx, sessionStateKey(token), state, ttl)
}

// DelSessionState 删除会话快照（登出）
func DelSessionState(ctx context.Context, token string) error {
	return Del(ctx, sessionStateKey(token))
}
