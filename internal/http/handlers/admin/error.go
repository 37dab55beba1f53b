package admin

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondMapped(c *gin.Context, err error, rules []handlershared.ErrorRule) {
	handlershared.RespondMappedError(c, err, rules)
}

var adminAccountErrorRules = []handlershared.ErrorRule{
	{Target: service.ErrAdminInvalidPassword, Code: response.CodeUnauthorized, Key: "error.admin_login_failed"},
	{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrAdminExists, Code: response.CodeBadRequest, Key: "error.admin_exists"},
	{Target: service.ErrAdminInputInvalid, Code: response.CodeBadRequest, Key: "error.admin_invalid"},
	{Target: service.ErrPasswordTooShort, Code: response.CodeBadRequest, Key: "error.password_too_short"},
}

var orderErrorRules = []handlershared.ErrorRule{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.payment_code_invalid"},
	{Target: service.ErrOrderMissing, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderAlreadyPaid, Code: response.CodeBadRequest, Key: "error.order_already_paid"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrFulfillmentNotNeeded, Code: response.CodeBadRequest, Key: "error.fulfillment_not_need"},
	{Target: service.ErrOrderUpdateFailed, Code: response.CodeInternal, Key: "error.order_update_failed"},
}

var productErrorRules = []handlershared.ErrorRule{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductInputInvalid, Code: response.CodeBadRequest, Key: "error.product_invalid"},
}

var couponErrorRules = []handlershared.ErrorRule{
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
	{Target: service.ErrCouponCodeExists, Code: response.CodeBadRequest, Key: "error.coupon_code_exists"},
	{Target: service.ErrCouponValueInvalid, Code: response.CodeBadRequest, Key: "error.coupon_value_invalid"},
}

var cardErrorRules = []handlershared.ErrorRule{
	{Target: service.ErrCardNotFound, Code: response.CodeNotFound, Key: "error.card_not_found"},
	{Target: service.ErrCardAlreadyUsed, Code: response.CodeBadRequest, Key: "error.card_already_used"},
	{Target: service.ErrCardImportEmpty, Code: response.CodeBadRequest, Key: "error.card_import_empty"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
}

var balanceErrorRules = []handlershared.ErrorRule{
	{Target: service.ErrBalanceUserRequired, Code: response.CodeBadRequest, Key: "error.user_id_required"},
	{Target: service.ErrBalanceAmountInvalid, Code: response.CodeBadRequest, Key: "error.amount_invalid"},
}
