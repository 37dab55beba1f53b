package public

import (
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求，deviceId 用于合并设备余额
type UserRegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
	DeviceID string `json:"deviceId"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"deviceId"`
	shared.CaptchaPayloadRequest
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.UserAuthService.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		shared.RespondMappedError(c, err, userAuthErrorRules)
		return
	}
	response.Success(c, sessionPayload(result))
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CaptchaService.Verify(c.Request.Context(), constants.CaptchaSceneLogin, req.ToServicePayload(), c.ClientIP()); err != nil {
		shared.RespondMappedError(c, err, captchaErrorRules)
		return
	}
	result, err := h.UserAuthService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		shared.RespondMappedError(c, err, userAuthErrorRules)
		return
	}
	response.Success(c, sessionPayload(result))
}

// GetMe 当前登录用户，未登录时返回 null
func (h *Handler) GetMe(c *gin.Context) {
	uid, ok := shared.ContextUint(c, shared.ContextKeyUserID)
	if !ok {
		response.Success(c, gin.H{"user": nil})
		return
	}
	user, err := h.UserAuthService.GetUser(uid)
	if err != nil {
		shared.RespondMappedError(c, err, userAuthErrorRules)
		return
	}
	response.Success(c, gin.H{
		"user":      user,
		"balanceId": service.AccountBalanceID(user.ID),
	})
}

// Logout 注销当前会话
func (h *Handler) Logout(c *gin.Context) {
	token := shared.ContextString(c, shared.ContextKeySessionToken)
	if err := h.UserAuthService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func sessionPayload(result *service.SessionResult) gin.H {
	return gin.H{
		"user":         result.User,
		"sessionToken": result.SessionToken,
		"expiresAt":    result.ExpiresAt,
		"balanceId":    result.BalanceID,
	}
}
