package public

import (
	"github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"
)

var captchaErrorRules = []shared.ErrorRule{
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaConfigInvalid, Code: response.CodeInternal, Key: "error.captcha_unavailable"},
	{Target: service.ErrCaptchaVerifyFailed, Code: response.CodeInternal, Key: "error.captcha_unavailable"},
}

var orderCreateErrorRules = []shared.ErrorRule{
	{Target: service.ErrOrderInputInvalid, Code: response.CodeBadRequest, Key: "error.order_input_invalid"},
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest, Key: "error.order_item_invalid"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrProductNotFound, Code: response.CodeBadRequest, Key: "error.product_not_found"},
	{Target: service.ErrSaleEnded, Code: response.CodeBadRequest, Key: "error.sale_ended"},
	{Target: service.ErrPresaleNotStarted, Code: response.CodeBadRequest, Key: "error.presale_not_started"},
	{Target: service.ErrOutOfStock, Code: response.CodeBadRequest, Key: "error.out_of_stock"},
	{Target: service.ErrPerUserLimitExceeded, Code: response.CodeBadRequest, Key: "error.per_user_limit"},
	{Target: service.ErrCouponInvalid, Code: response.CodeBadRequest, Key: "error.coupon_invalid"},
	{Target: service.ErrBalanceInsufficient, Code: response.CodeBadRequest, Key: "error.balance_insufficient"},
	{Target: service.ErrBalanceUserRequired, Code: response.CodeBadRequest, Key: "error.user_id_required"},
	// ErrOrderCreateFailed 与 ErrPaymentCodeExhausted 属于服务端故障，保持 500
}

var orderQueryErrorRules = []shared.ErrorRule{
	{Target: service.ErrOrderInputInvalid, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrOrderMissing, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderForbidden, Code: response.CodeForbidden, Key: "error.order_forbidden"},
}

var giftErrorRules = []shared.ErrorRule{
	{Target: service.ErrGiftInvalidValue, Code: response.CodeBadRequest, Key: "error.gift_value_invalid"},
	{Target: service.ErrGiftCodeNotFound, Code: response.CodeNotFound, Key: "error.gift_code_not_found"},
	{Target: service.ErrGiftCodeRedeemed, Code: response.CodeBadRequest, Key: "error.gift_code_redeemed"},
	{Target: service.ErrGiftCodeExpired, Code: response.CodeBadRequest, Key: "error.gift_code_expired"},
	{Target: service.ErrBalanceUserRequired, Code: response.CodeBadRequest, Key: "error.user_id_required"},
	{Target: service.ErrBalanceAmountInvalid, Code: response.CodeBadRequest, Key: "error.amount_invalid"},
	{Target: service.ErrGiftOrderRequired, Code: response.CodeBadRequest, Key: "error.gift_order_required"},
	{Target: service.ErrGiftOrderInvalid, Code: response.CodeBadRequest, Key: "error.gift_order_invalid"},
	{Target: service.ErrOrderMissing, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderForbidden, Code: response.CodeForbidden, Key: "error.order_forbidden"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrBalanceInsufficient, Code: response.CodeBadRequest, Key: "error.balance_insufficient"},
}

var balanceErrorRules = []shared.ErrorRule{
	{Target: service.ErrBalanceUserRequired, Code: response.CodeBadRequest, Key: "error.user_id_required"},
}

var couponErrorRules = []shared.ErrorRule{
	{Target: service.ErrCouponInvalid, Code: response.CodeNotFound, Key: "error.coupon_invalid"},
}

var productErrorRules = []shared.ErrorRule{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
}

var userAuthErrorRules = []shared.ErrorRule{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrPasswordTooShort, Code: response.CodeBadRequest, Key: "error.password_too_short"},
	{Target: service.ErrEmailAlreadyExists, Code: response.CodeBadRequest, Key: "error.email_exists"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrSessionInvalid, Code: response.CodeUnauthorized, Key: "error.session_invalid"},
}
