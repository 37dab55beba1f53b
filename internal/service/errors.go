package service

import (
	"errors"
	"fmt"
)

// 订单与库存
var (
	ErrProductNotFound      = errors.New("商品不存在")
	ErrSaleEnded            = errors.New("商品已停止销售")
	ErrPresaleNotStarted    = errors.New("商品尚未开售")
	ErrOutOfStock           = errors.New("商品库存不足")
	ErrPerUserLimitExceeded = errors.New("超出每人限购数量")
	ErrInvalidOrderItem     = errors.New("订单商品无效")
	ErrOrderInputInvalid    = errors.New("订单信息不完整")
	ErrOrderNotFound        = errors.New("付款码不存在")
	ErrOrderMissing         = errors.New("订单不存在")
	ErrOrderAlreadyPaid     = errors.New("该订单已确认付款")
	ErrOrderStatusInvalid   = errors.New("订单状态不允许该操作")
	ErrOrderForbidden       = errors.New("无权访问该订单")
	ErrOrderCreateFailed    = errors.New("订单创建失败")
	ErrOrderUpdateFailed    = errors.New("订单更新失败")
	ErrPaymentCodeExhausted = errors.New("付款码生成失败")
	ErrFulfillmentNotNeeded = errors.New("订单无需补发卡密")
)

// 优惠码
var (
	ErrCouponInvalid      = errors.New("优惠码无效或已过期")
	ErrCouponCodeExists   = errors.New("优惠码已存在")
	ErrCouponNotFound     = errors.New("优惠码不存在")
	ErrCouponValueInvalid = errors.New("优惠码数值无效")
)

// 余额
var (
	ErrBalanceUserRequired    = errors.New("缺少用户标识")
	ErrBalanceAmountInvalid   = errors.New("金额无效")
	ErrBalanceInsufficient    = errors.New("余额不足")
	ErrBalanceUpdateFailed    = errors.New("余额更新失败")
	ErrBalanceTxnCreateFailed = errors.New("余额流水写入失败")
)

// 礼品码
var (
	ErrGiftInvalidValue  = errors.New("无效的卡面值")
	ErrGiftCodeNotFound  = errors.New("无效的兑换码")
	ErrGiftCodeRedeemed  = errors.New("该兑换码已被使用")
	ErrGiftCodeExpired   = errors.New("该兑换码已过期")
	ErrGiftCodeExhausted = errors.New("兑换码生成失败")
	ErrGiftOrderRequired = errors.New("缺少消费卡订单")
	ErrGiftOrderInvalid  = errors.New("订单不包含可用的消费卡面值")
)

// 卡密与商品
var (
	ErrCardNotFound        = errors.New("卡密不存在")
	ErrCardAlreadyUsed     = errors.New("卡密已售出，无法删除")
	ErrCardImportEmpty     = errors.New("没有可导入的卡密")
	ErrProductInputInvalid = errors.New("商品信息无效")
)

// 账号与鉴权
var (
	ErrInvalidEmail         = errors.New("邮箱格式不正确")
	ErrPasswordTooShort     = errors.New("密码至少 8 位")
	ErrEmailAlreadyExists   = errors.New("该邮箱已注册")
	ErrInvalidCredentials   = errors.New("邮箱或密码错误")
	ErrUserDisabled         = errors.New("账号已被禁用")
	ErrSessionInvalid       = errors.New("登录状态已失效")
	ErrAdminNotFound        = errors.New("管理员不存在")
	ErrAdminInvalidPassword = errors.New("用户名或密码错误")
	ErrAdminExists          = errors.New("管理员账号已存在")
	ErrAdminInputInvalid    = errors.New("管理员信息无效")
	ErrInvalidToken         = errors.New("无效的 token")
)

// 验证码
var (
	ErrCaptchaRequired      = errors.New("请完成人机验证")
	ErrCaptchaInvalid       = errors.New("人机验证失败")
	ErrCaptchaConfigInvalid = errors.New("验证码配置无效")
	ErrCaptchaVerifyFailed  = errors.New("验证码校验服务不可用")
)

// CheckError 携带面向用户的动态提示，Unwrap 返回对应的哨兵错误
type CheckError struct {
	Kind    error
	Message string
}

func (e *CheckError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return ""
}

// Unwrap 支持 errors.Is
func (e *CheckError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

func newCheckError(kind error, format string, args ...interface{}) *CheckError {
	return &CheckError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// UserMessage 提取可直接展示给用户的错误提示
func UserMessage(err error) string {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Error()
	}
	return ""
}
