package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// 订单支付方式常量
const (
	PaymentMethodPaymentCode = "payment_code"
	PaymentMethodBalance     = "balance"
	PaymentMethodMixed       = "mixed"
)

// 订单交付状态常量
const (
	DeliveryStatusNone           = "none"
	DeliveryStatusDelivered      = "delivered"
	DeliveryStatusManualRequired = "manual_required"
)

// 卡密状态常量
const (
	CardStatusAvailable = "available"
	CardStatusUsed      = "used"
)

// 优惠码类型常量
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// 礼品码状态常量
const (
	GiftCodeStatusActive   = "active"
	GiftCodeStatusRedeemed = "redeemed"
	GiftCodeStatusExpired  = "expired"
)

// 余额流水类型常量
const (
	BalanceTxnTypeRecharge = "recharge"
	BalanceTxnTypeConsume  = "consume"
	BalanceTxnTypeRefund   = "refund"
)

// 余额流水方向常量
const (
	BalanceTxnDirectionIn  = "in"
	BalanceTxnDirectionOut = "out"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 订单访问类型常量
const (
	OrderAccessView    = "view"
	OrderAccessPayment = "payment"
	OrderAccessUpdate  = "update"
)

// 验证码提供方常量
const (
	CaptchaProviderNone      = "none"
	CaptchaProviderImage     = "image"
	CaptchaProviderTurnstile = "turnstile"
)

// 验证码场景常量
const (
	CaptchaSceneCreateOrder = "create_order"
	CaptchaSceneLogin       = "login"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型
const (
	TaskOrderCardShortage  = "order:card_shortage"
	TaskOrderPendingExpire = "order:pending_expire"
)

// 付款码与礼品码字符集
const (
	PaymentCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	PaymentCodeLength   = 8
	GiftCodeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	GiftCodeLength      = 16
	GiftCodeGroupSize   = 4
)
