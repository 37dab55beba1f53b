package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paidBalanceCardOrder 下单并确认一笔消费卡订单，返回订单 ID
func (env *serviceTestEnv) paidBalanceCardOrder(t *testing.T, userID, cardValue string, quantity int) uint {
	t.Helper()
	product := env.createProduct(t, "储值卡 "+cardValue, cardValue, func(p *models.Product) {
		p.IsBalanceCard = true
		p.CardValue = money(cardValue)
	})
	created, err := env.orders.CreateOrder(context.Background(), orderInput(userID, CreateOrderItem{ProductID: product.ID, Quantity: quantity}))
	require.NoError(t, err)
	_, err = env.orders.ConfirmPayment(context.Background(), created.PaymentCode)
	require.NoError(t, err)
	return created.OrderID
}

func uintPtr(v uint) *uint {
	return &v
}

func TestGiftCodeSelfUseCreditsCreatorOnce(t *testing.T) {
	env := setupServiceTest(t)
	orderID := env.paidBalanceCardOrder(t, "device-a", "50", 1)

	result, err := env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("50"),
		OrderID:   uintPtr(orderID),
		UserID:    "device-a",
	})
	require.NoError(t, err)
	assert.True(t, result.Redeemed)
	require.NotNil(t, result.NewBalance)
	assert.Equal(t, "50.00", result.NewBalance.String())
	assert.Empty(t, result.GiftURL)

	var gift models.GiftCode
	require.NoError(t, env.db.First(&gift).Error)
	assert.Equal(t, constants.GiftCodeStatusRedeemed, gift.Status)
	require.NotNil(t, gift.RecipientUserID)
	assert.Equal(t, "device-a", *gift.RecipientUserID)
	require.NotNil(t, gift.OrderID)
	assert.Equal(t, orderID, *gift.OrderID)

	txns, err := env.balance.ListTransactions("device-a")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, constants.BalanceTxnTypeRecharge, txns[0].Type)
	assert.Equal(t, "50.00", env.balanceOf(t, "device-a").StringFixed(2))
}

func TestGiftCodeCreateRequiresOrder(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("1000000"),
		UserID:    "device-attacker",
	})
	require.ErrorIs(t, err, ErrGiftOrderRequired)

	_, err = env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("10"),
		OrderID:   uintPtr(9999),
		UserID:    "device-attacker",
	})
	require.ErrorIs(t, err, ErrOrderMissing)

	assert.True(t, env.balanceOf(t, "device-attacker").IsZero())
	var count int64
	require.NoError(t, env.db.Model(&models.GiftCode{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGiftCodeCreateChecksOrderOwnerStatusAndProduct(t *testing.T) {
	env := setupServiceTest(t)
	orderID := env.paidBalanceCardOrder(t, "device-a", "50", 1)

	_, err := env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("50"),
		OrderID:   uintPtr(orderID),
		UserID:    "device-b",
	})
	require.ErrorIs(t, err, ErrOrderForbidden)

	tee := env.createProduct(t, "Tee", "30.00", nil)
	pending, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: tee.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("30"),
		OrderID:   uintPtr(pending.OrderID),
		UserID:    "device-a",
	})
	require.ErrorIs(t, err, ErrOrderStatusInvalid)

	_, err = env.orders.ConfirmPayment(context.Background(), pending.PaymentCode)
	require.NoError(t, err)
	_, err = env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("30"),
		OrderID:   uintPtr(pending.OrderID),
		UserID:    "device-a",
	})
	require.ErrorIs(t, err, ErrGiftOrderInvalid)

	assert.True(t, env.balanceOf(t, "device-b").IsZero())
	assert.Equal(t, "50.00", env.balanceOf(t, "device-a").StringFixed(2))
}

func TestGiftCodeCreateCannotExceedOrderValue(t *testing.T) {
	env := setupServiceTest(t)
	orderID := env.paidBalanceCardOrder(t, "device-a", "25", 2)

	_, err := env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("30"),
		OrderID:   uintPtr(orderID),
		IsGift:    true,
		UserID:    "device-a",
	})
	require.NoError(t, err)

	_, err = env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("20.01"),
		OrderID:   uintPtr(orderID),
		UserID:    "device-a",
	})
	require.ErrorIs(t, err, ErrGiftOrderInvalid)

	_, err = env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("20"),
		OrderID:   uintPtr(orderID),
		UserID:    "device-a",
	})
	require.NoError(t, err)
	assert.Equal(t, "20.00", env.balanceOf(t, "device-a").StringFixed(2))
}

func TestGiftCodeRedeemOnlyOnce(t *testing.T) {
	env := setupServiceTest(t)
	orderID := env.paidBalanceCardOrder(t, "device-a", "50", 1)

	created, err := env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("50"),
		OrderID:   uintPtr(orderID),
		IsGift:    true,
		UserID:    "device-a",
	})
	require.NoError(t, err)
	assert.False(t, created.Redeemed)
	assert.Equal(t, "https://shop.example.com/redeem?code="+created.Code, created.GiftURL)
	assert.Len(t, strings.Split(created.Code, "-"), 4)
	assert.True(t, env.balanceOf(t, "device-a").IsZero())

	redeemed, err := env.gifts.Redeem(context.Background(), GiftRedeemInput{
		Code:   strings.ToLower(strings.ReplaceAll(created.Code, "-", "")),
		UserID: "device-b",
	})
	require.NoError(t, err)
	assert.Equal(t, "50.00", redeemed.CardValue.String())
	assert.Equal(t, "50.00", redeemed.NewBalance.String())

	_, err = env.gifts.Redeem(context.Background(), GiftRedeemInput{Code: created.Code, UserID: "device-c"})
	require.ErrorIs(t, err, ErrGiftCodeRedeemed)

	assert.True(t, env.balanceOf(t, "device-a").IsZero())
	assert.Equal(t, "50.00", env.balanceOf(t, "device-b").StringFixed(2))
	assert.True(t, env.balanceOf(t, "device-c").IsZero())
}

func TestGiftCodeIssueNeedsUnspentBalance(t *testing.T) {
	env := setupServiceTest(t)
	orderID := env.paidBalanceCardOrder(t, "device-a", "50", 1)
	tee := env.createProduct(t, "Tee", "40.00", nil)
	input := orderInput("device-a", CreateOrderItem{ProductID: tee.ID, Quantity: 1})
	input.UseBalance = true
	input.BalanceAmount = money("40")
	_, err := env.orders.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	_, err = env.gifts.Create(context.Background(), GiftCreateInput{
		CardValue: money("50"),
		OrderID:   uintPtr(orderID),
		IsGift:    true,
		UserID:    "device-a",
	})
	require.ErrorIs(t, err, ErrBalanceInsufficient)

	var count int64
	require.NoError(t, env.db.Model(&models.GiftCode{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGiftCodeRedeemUnknownAndExpired(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.gifts.Redeem(context.Background(), GiftRedeemInput{Code: "AAAA-BBBB-CCCC-DDDD", UserID: "device-a"})
	require.ErrorIs(t, err, ErrGiftCodeNotFound)

	past := time.Now().Add(-time.Hour)
	gift := &models.GiftCode{
		Code:          "EXPD-EXPD-EXPD-EXPD",
		CardValue:     money("10"),
		Status:        constants.GiftCodeStatusActive,
		CreatorUserID: "device-a",
		IsGift:        true,
		ExpiresAt:     &past,
	}
	require.NoError(t, env.db.Create(gift).Error)

	_, err = env.gifts.Redeem(context.Background(), GiftRedeemInput{Code: gift.Code, UserID: "device-b"})
	require.ErrorIs(t, err, ErrGiftCodeExpired)

	var reloaded models.GiftCode
	require.NoError(t, env.db.First(&reloaded, gift.ID).Error)
	assert.Equal(t, constants.GiftCodeStatusExpired, reloaded.Status)
	assert.True(t, env.balanceOf(t, "device-b").IsZero())
}

func TestGiftCodeRejectsNonPositiveValue(t *testing.T) {
	env := setupServiceTest(t)
	_, err := env.gifts.Create(context.Background(), GiftCreateInput{CardValue: money("0"), IsGift: true, UserID: "device-a"})
	require.ErrorIs(t, err, ErrGiftInvalidValue)
}

func TestGiftCodeCandidates(t *testing.T) {
	assert.Equal(t, []string{"ABCD-EFGH-JKLM-NPQR"}, giftCodeCandidates(" abcd-efgh-jklm-npqr "))
	assert.Equal(t, []string{"ABCD-EFGH-JKLM-NPQR", "ABCDEFGHJKLMNPQR"}, giftCodeCandidates("abcdefghjklmnpqr"))
	assert.Nil(t, giftCodeCandidates("  "))
}
