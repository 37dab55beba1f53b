package admin

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	id, ok := handlershared.ContextUint(c, handlershared.ContextKeyAdminID)
	if !ok {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}

func currentUsername(c *gin.Context) string {
	return handlershared.ContextString(c, handlershared.ContextKeyAdminName)
}

func currentIsSuper(c *gin.Context) bool {
	value, exists := c.Get(handlershared.ContextKeyAdminIsSuper)
	if !exists {
		return false
	}
	flag, _ := value.(bool)
	return flag
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, ok := handlershared.ParamUint(c, name)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return id, true
}
