package i18n

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":          "请求参数错误",
		"error.unauthorized":         "未登录或登录已失效",
		"error.forbidden":            "无权执行该操作",
		"error.not_found":            "资源不存在",
		"error.internal":             "服务器内部错误",
		"error.too_many_requests":    "操作过于频繁，请 %d 秒后重试",
		"error.login_too_many":       "登录尝试过多，请 %d 秒后重试",
		"error.order_too_many":       "下单过于频繁，请 %d 秒后重试",
		"error.redeem_too_many":      "兑换尝试过多，请 %d 秒后重试",
		"error.user_id_required":     "缺少用户标识",
		"error.order_input_invalid":  "订单信息不完整",
		"error.order_item_invalid":   "订单商品无效",
		"error.product_not_found":    "商品不存在",
		"error.sale_ended":           "商品已停止销售",
		"error.presale_not_started":  "商品尚未开售",
		"error.out_of_stock":         "商品库存不足",
		"error.per_user_limit":       "超出每人限购数量",
		"error.payment_code_invalid": "付款码不存在",
		"error.order_not_found":      "订单不存在",
		"error.order_already_paid":   "该订单已确认付款",
		"error.order_status_invalid": "订单状态不允许该操作",
		"error.order_forbidden":      "无权访问该订单",
		"error.order_create_failed":  "订单创建失败",
		"error.order_update_failed":  "订单更新失败",
		"error.fulfillment_not_need": "订单无需补发卡密",
		"error.coupon_invalid":       "优惠码无效或已过期",
		"error.coupon_not_found":     "优惠码不存在",
		"error.coupon_code_exists":   "优惠码已存在",
		"error.coupon_value_invalid": "优惠码数值无效",
		"error.balance_insufficient": "余额不足",
		"error.amount_invalid":       "金额无效",
		"error.balance_failed":       "余额更新失败",
		"error.gift_value_invalid":   "无效的卡面值",
		"error.gift_order_required":  "缺少消费卡订单",
		"error.gift_order_invalid":   "订单不包含可用的消费卡面值",
		"error.gift_code_not_found":  "无效的兑换码",
		"error.gift_code_redeemed":   "该兑换码已被使用",
		"error.gift_code_expired":    "该兑换码已过期",
		"error.gift_code_failed":     "兑换码生成失败",
		"error.card_not_found":       "卡密不存在",
		"error.card_already_used":    "卡密已售出，无法删除",
		"error.card_import_empty":    "没有可导入的卡密",
		"error.product_invalid":      "商品信息无效",
		"error.email_invalid":        "邮箱格式不正确",
		"error.password_too_short":   "密码至少 8 位",
		"error.email_exists":         "该邮箱已注册",
		"error.invalid_credentials":  "邮箱或密码错误",
		"error.user_disabled":        "账号已被禁用",
		"error.session_invalid":      "登录状态已失效",
		"error.admin_login_failed":   "用户名或密码错误",
		"error.admin_exists":         "管理员账号已存在",
		"error.admin_invalid":        "管理员信息无效",
		"error.captcha_required":     "请完成人机验证",
		"error.captcha_invalid":      "人机验证失败",
		"error.captcha_unavailable":  "验证码服务不可用",
		"error.captcha_not_image":    "当前未启用图片验证码",
		"error.role_invalid":         "角色无效",
	},
	LocaleEnUS: {
		"error.bad_request":          "Invalid request parameters",
		"error.unauthorized":         "Not signed in or session expired",
		"error.forbidden":            "Permission denied",
		"error.not_found":            "Resource not found",
		"error.internal":             "Internal server error",
		"error.too_many_requests":    "Too many requests, retry in %d seconds",
		"error.login_too_many":       "Too many login attempts, retry in %d seconds",
		"error.order_too_many":       "Too many orders, retry in %d seconds",
		"error.redeem_too_many":      "Too many redeem attempts, retry in %d seconds",
		"error.user_id_required":     "User ID is required",
		"error.order_input_invalid":  "Order information is incomplete",
		"error.order_item_invalid":   "Invalid order item",
		"error.product_not_found":    "Product not found",
		"error.sale_ended":           "Sale has ended",
		"error.presale_not_started":  "Product is not on sale yet",
		"error.out_of_stock":         "Out of stock",
		"error.per_user_limit":       "Per-user purchase limit exceeded",
		"error.payment_code_invalid": "Payment code not found",
		"error.order_not_found":      "Order not found",
		"error.order_already_paid":   "Order payment already confirmed",
		"error.order_status_invalid": "Order status does not allow this operation",
		"error.order_forbidden":      "You do not have access to this order",
		"error.order_create_failed":  "Failed to create order",
		"error.order_update_failed":  "Failed to update order",
		"error.fulfillment_not_need": "Order does not need card delivery",
		"error.coupon_invalid":       "Coupon is invalid or expired",
		"error.coupon_not_found":     "Coupon not found",
		"error.coupon_code_exists":   "Coupon code already exists",
		"error.coupon_value_invalid": "Invalid coupon value",
		"error.balance_insufficient": "Insufficient balance",
		"error.amount_invalid":       "Invalid amount",
		"error.balance_failed":       "Failed to update balance",
		"error.gift_value_invalid":   "Invalid card value",
		"error.gift_order_required":  "A paid balance-card order is required",
		"error.gift_order_invalid":   "The order has no remaining balance-card value",
		"error.gift_code_not_found":  "Invalid redemption code",
		"error.gift_code_redeemed":   "This code has already been redeemed",
		"error.gift_code_expired":    "This code has expired",
		"error.gift_code_failed":     "Failed to generate code",
		"error.card_not_found":       "Card not found",
		"error.card_already_used":    "Card already sold and cannot be deleted",
		"error.card_import_empty":    "No cards to import",
		"error.product_invalid":      "Invalid product information",
		"error.email_invalid":        "Invalid email address",
		"error.password_too_short":   "Password must be at least 8 characters",
		"error.email_exists":         "Email is already registered",
		"error.invalid_credentials":  "Incorrect email or password",
		"error.user_disabled":        "Account is disabled",
		"error.session_invalid":      "Session is no longer valid",
		"error.admin_login_failed":   "Incorrect username or password",
		"error.admin_exists":         "Admin account already exists",
		"error.admin_invalid":        "Invalid admin account details",
		"error.captcha_required":     "Please complete the verification",
		"error.captcha_invalid":      "Verification failed",
		"error.captcha_unavailable":  "Verification service unavailable",
		"error.captcha_not_image":    "Image captcha is not enabled",
		"error.role_invalid":         "Invalid role",
	},
}
