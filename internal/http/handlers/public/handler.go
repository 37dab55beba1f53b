package public

import "github.com/dujiao-next/storefront/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：买家以设备ID或登录会话作为身份，不区分游客与会员路由。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
