package service

import (
	"context"
	"strings"
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderLastUnitGoesToFirstBuyer(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "限量徽章", "10.00", func(p *models.Product) {
		p.TotalStock = intPtr(1)
	})

	first, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusPending, first.Status)
	assert.Len(t, first.PaymentCode, constants.PaymentCodeLength)

	_, err = env.orders.CreateOrder(context.Background(), orderInput("device-b", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Contains(t, UserMessage(err), "限量徽章")

	reloaded := env.reloadProduct(t, product.ID)
	assert.Equal(t, 1, reloaded.SoldCount)

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateOrderMixedBalancePayment(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Tee", "100.00", nil)
	env.seedBalance(t, "device-a", "30.00")

	input := orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1})
	input.UseBalance = true
	input.BalanceAmount = money("50.00")
	result, err := env.orders.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "30.00", result.BalanceUsed.String())
	assert.Equal(t, "70.00", result.RemainingPrice.String())
	assert.Equal(t, constants.OrderStatusPending, result.Status)
	assert.True(t, env.balanceOf(t, "device-a").IsZero())

	var order models.Order
	require.NoError(t, env.db.First(&order, result.OrderID).Error)
	assert.Equal(t, constants.PaymentMethodMixed, order.PaymentMethod)
	assert.Equal(t, "30.00", order.BalancePaid.String())
	assert.Equal(t, "100.00", order.FinalPrice.String())

	var txn models.BalanceTransaction
	require.NoError(t, env.db.Where("reference = ?", orderBalanceReference(order.ID, "balance_pay")).First(&txn).Error)
	assert.Equal(t, constants.BalanceTxnTypeConsume, txn.Type)
	assert.Equal(t, "30.00", txn.BalanceBefore.String())
	assert.Equal(t, "0.00", txn.BalanceAfter.String())
}

func TestCreateOrderFullBalancePaysAndDelivers(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Game Key", "15.00", func(p *models.Product) {
		p.UseCardDelivery = true
	})
	env.addCards(t, product.ID, "KEY-1")
	env.seedBalance(t, "device-a", "20.00")

	input := orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1})
	input.UseBalance = true
	input.BalanceAmount = money("100.00")
	result, err := env.orders.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, constants.OrderStatusPaid, result.Status)
	assert.False(t, result.IsFree)
	assert.Equal(t, "15.00", result.BalanceUsed.String())
	assert.True(t, result.RemainingPrice.Decimal.IsZero())
	assert.Equal(t, "5.00", env.balanceOf(t, "device-a").StringFixed(2))

	var order models.Order
	require.NoError(t, env.db.First(&order, result.OrderID).Error)
	assert.Equal(t, constants.PaymentMethodBalance, order.PaymentMethod)
	assert.Equal(t, constants.DeliveryStatusDelivered, order.DeliveryStatus)
	assert.Equal(t, "KEY-1", order.CardCodes)
	assert.NotNil(t, order.PaidAt)
}

func TestCreateOrderFreeWithFullCouponDeliversCards(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Gift Key", "40.00", func(p *models.Product) {
		p.UseCardDelivery = true
	})
	env.addCards(t, product.ID, "CARD-A", "CARD-B", "CARD-C")
	coupon := env.createCoupon(t, "FREE100", constants.CouponTypePercentage, "100", nil)

	input := orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 2})
	input.CouponCode = "FREE100"
	result, err := env.orders.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.IsFree)
	assert.Equal(t, constants.OrderStatusPaid, result.Status)

	var order models.Order
	require.NoError(t, env.db.First(&order, result.OrderID).Error)
	assert.Equal(t, "80.00", order.TotalPrice.String())
	assert.Equal(t, "80.00", order.DiscountAmount.String())
	assert.Equal(t, "0.00", order.FinalPrice.String())
	assert.Equal(t, constants.DeliveryStatusDelivered, order.DeliveryStatus)
	assert.Equal(t, "CARD-A,CARD-B", order.CardCodes)

	var used []models.ProductCard
	require.NoError(t, env.db.Where("status = ?", constants.CardStatusUsed).Order("id asc").Find(&used).Error)
	require.Len(t, used, 2)
	for _, card := range used {
		require.NotNil(t, card.OrderID)
		assert.Equal(t, order.ID, *card.OrderID)
		assert.NotNil(t, card.UsedAt)
	}
	var available models.ProductCard
	require.NoError(t, env.db.Where("card_code = ?", "CARD-C").First(&available).Error)
	assert.Equal(t, constants.CardStatusAvailable, available.Status)
	assert.Nil(t, available.OrderID)

	var reloaded models.Coupon
	require.NoError(t, env.db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)
}

func TestCreateOrderRejectsInvalidCoupon(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Tee", "20.00", nil)
	env.createCoupon(t, "ONCE", constants.CouponTypeFixed, "5", func(c *models.Coupon) {
		c.MaxUses = intPtr(1)
		c.UsedCount = 1
	})

	input := orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1})
	input.CouponCode = "ONCE"
	_, err := env.orders.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrCouponInvalid)

	input.CouponCode = "MISSING"
	_, err = env.orders.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrCouponInvalid)

	assert.Equal(t, 0, env.reloadProduct(t, product.ID).SoldCount)
}

func TestCreateOrderPerUserLimitCountsPendingOrders(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Limited", "5.00", func(p *models.Product) {
		p.MaxPerUser = intPtr(2)
	})

	_, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)

	_, err = env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.ErrorIs(t, err, ErrPerUserLimitExceeded)

	_, err = env.orders.CreateOrder(context.Background(), orderInput("device-b", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Sticker", "2.50", func(p *models.Product) {
		p.TotalStock = intPtr(3)
	})

	_, err := env.orders.CreateOrder(context.Background(), orderInput("device-a",
		CreateOrderItem{ProductID: product.ID, Quantity: 2},
		CreateOrderItem{ProductID: product.ID, Quantity: 2},
	))
	require.ErrorIs(t, err, ErrOutOfStock)

	result, err := env.orders.CreateOrder(context.Background(), orderInput("device-a",
		CreateOrderItem{ProductID: product.ID, Quantity: 1},
		CreateOrderItem{ProductID: product.ID, Quantity: 2},
	))
	require.NoError(t, err)

	var items []models.OrderItem
	require.NoError(t, env.db.Where("order_id = ?", result.OrderID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "2.50", items[0].Price.String())
}

func TestCreateOrderValidatesInput(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Tee", "20.00", nil)

	_, err := env.orders.CreateOrder(context.Background(), orderInput("device-a"))
	require.ErrorIs(t, err, ErrInvalidOrderItem)

	input := orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1})
	input.Email = "not-an-email"
	_, err = env.orders.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidEmail)

	input = orderInput("device-a", CreateOrderItem{ProductID: product.ID + 100, Quantity: 1})
	_, err = env.orders.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Game Key", "9.90", func(p *models.Product) {
		p.UseCardDelivery = true
	})
	env.addCards(t, product.ID, "KEY-1", "KEY-2")

	created, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	confirmed, err := env.orders.ConfirmPayment(context.Background(), " "+strings.ToLower(created.PaymentCode)+" ")
	require.NoError(t, err)
	assert.True(t, confirmed.Success)
	assert.Equal(t, created.OrderID, confirmed.OrderID)
	assert.Equal(t, []string{"KEY-1"}, confirmed.CardCodes)

	_, err = env.orders.ConfirmPayment(context.Background(), created.PaymentCode)
	require.ErrorIs(t, err, ErrOrderAlreadyPaid)

	var usedCount int64
	require.NoError(t, env.db.Model(&models.ProductCard{}).Where("status = ?", constants.CardStatusUsed).Count(&usedCount).Error)
	assert.EqualValues(t, 1, usedCount)

	_, err = env.orders.ConfirmPayment(context.Background(), "NOPE0000")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConfirmPaymentCardShortageMarksManualAndRetries(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Game Key", "9.90", func(p *models.Product) {
		p.UseCardDelivery = true
	})
	env.addCards(t, product.ID, "KEY-1")

	created, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)

	confirmed, err := env.orders.ConfirmPayment(context.Background(), created.PaymentCode)
	require.NoError(t, err)
	assert.Empty(t, confirmed.CardCodes)

	var order models.Order
	require.NoError(t, env.db.First(&order, created.OrderID).Error)
	assert.Equal(t, constants.OrderStatusPaid, order.Status)
	assert.Equal(t, constants.DeliveryStatusManualRequired, order.DeliveryStatus)

	var card models.ProductCard
	require.NoError(t, env.db.Where("card_code = ?", "KEY-1").First(&card).Error)
	assert.Equal(t, constants.CardStatusAvailable, card.Status)
	assert.Nil(t, card.OrderID)

	env.addCards(t, product.ID, "KEY-2")
	_, result, err := env.orders.RetryFulfillment(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, constants.DeliveryStatusDelivered, result.DeliveryStatus)
	assert.Equal(t, []string{"KEY-1", "KEY-2"}, result.CardCodes)

	_, _, err = env.orders.RetryFulfillment(context.Background(), created.OrderID)
	require.ErrorIs(t, err, ErrFulfillmentNotNeeded)
}

func TestConfirmPaymentCreditsBalanceCard(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "储值卡", "20.00", func(p *models.Product) {
		p.IsBalanceCard = true
		p.CardValue = money("25.00")
	})

	created, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)
	_, err = env.orders.ConfirmPayment(context.Background(), created.PaymentCode)
	require.NoError(t, err)

	assert.Equal(t, "50.00", env.balanceOf(t, "device-a").StringFixed(2))
	txns, err := env.balance.ListTransactions("device-a")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, constants.BalanceTxnTypeRecharge, txns[0].Type)
	assert.Equal(t, "购买消费卡充值 (2张)", txns[0].Description)
}

func TestCancelOrderCompensatesStockCouponAndBalance(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Hoodie", "50.00", func(p *models.Product) {
		p.TotalStock = intPtr(5)
	})
	coupon := env.createCoupon(t, "TEN", constants.CouponTypeFixed, "10", nil)
	env.seedBalance(t, "device-a", "20.00")

	input := orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 2})
	input.CouponCode = "TEN"
	input.UseBalance = true
	input.BalanceAmount = money("20.00")
	created, err := env.orders.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "70.00", created.RemainingPrice.String())
	assert.Equal(t, 2, env.reloadProduct(t, product.ID).SoldCount)

	cancelled, err := env.orders.CancelOrder(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusCancelled, cancelled.Status)

	assert.Equal(t, 0, env.reloadProduct(t, product.ID).SoldCount)
	assert.Equal(t, "20.00", env.balanceOf(t, "device-a").StringFixed(2))
	var reloaded models.Coupon
	require.NoError(t, env.db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 0, reloaded.UsedCount)

	_, err = env.orders.CancelOrder(context.Background(), created.OrderID)
	require.ErrorIs(t, err, ErrOrderStatusInvalid)
	_, err = env.orders.ConfirmPayment(context.Background(), created.PaymentCode)
	require.ErrorIs(t, err, ErrOrderStatusInvalid)
}

func TestExpirePendingOrderSkipsPaidOrders(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Tee", "20.00", nil)

	pending, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	paid, err := env.orders.CreateOrder(context.Background(), orderInput("device-b", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = env.orders.ConfirmPayment(context.Background(), paid.PaymentCode)
	require.NoError(t, err)

	require.NoError(t, env.orders.ExpirePendingOrder(context.Background(), pending.OrderID))
	require.NoError(t, env.orders.ExpirePendingOrder(context.Background(), paid.OrderID))
	require.NoError(t, env.orders.ExpirePendingOrder(context.Background(), 9999))

	status, err := env.orders.GetStatus(pending.OrderID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusCancelled, status)
	status, err = env.orders.GetStatus(paid.OrderID)
	require.NoError(t, err)
	assert.Equal(t, constants.OrderStatusPaid, status)
}

func TestOrderAccessRequiresOwner(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Tee", "20.00", nil)
	input := orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1})
	input.DeviceFingerprint = "fp-1"
	created, err := env.orders.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	order, err := env.orders.GetOrder(OrderAccessRequest{OrderID: created.OrderID, UserID: "device-a", DeviceFingerprint: "fp-1"})
	require.NoError(t, err)
	assert.Equal(t, created.PaymentCode, order.PaymentCode)

	_, err = env.orders.GetOrder(OrderAccessRequest{OrderID: created.OrderID, UserID: "device-b"})
	require.ErrorIs(t, err, ErrOrderForbidden)
	_, err = env.orders.GetOrder(OrderAccessRequest{OrderID: created.OrderID + 10, UserID: "device-a"})
	require.ErrorIs(t, err, ErrOrderMissing)

	verdict, err := env.access.Verify(created.OrderID, "device-a", "fp-2")
	require.NoError(t, err)
	assert.True(t, verdict.Authorized)
	assert.True(t, verdict.Suspicious)
	assert.Equal(t, accessNoteDeviceMismatch, verdict.Reason)

	var audits []models.OrderAccessAudit
	require.NoError(t, env.db.Where("order_id = ?", created.OrderID).Find(&audits).Error)
	assert.Len(t, audits, 2)
}

func TestSavePaymentInfoRoundTrip(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Tee", "20.00", nil)
	created, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	req := OrderAccessRequest{OrderID: created.OrderID, UserID: "device-a"}
	require.NoError(t, env.orders.SavePaymentInfo(req, map[string]interface{}{"payer": "Alice", "channel": "bank"}))

	info, err := env.orders.GetPaymentInfo(req)
	require.NoError(t, err)
	assert.Equal(t, "Alice", info["payer"])

	err = env.orders.SavePaymentInfo(OrderAccessRequest{OrderID: created.OrderID, UserID: "device-b"}, map[string]interface{}{"payer": "Mallory"})
	require.ErrorIs(t, err, ErrOrderForbidden)
}

func TestListUserOrdersNewestFirst(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "Tee", "20.00", nil)
	first, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	second, err := env.orders.CreateOrder(context.Background(), orderInput("device-a", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = env.orders.CreateOrder(context.Background(), orderInput("device-b", CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	orders, err := env.orders.ListUserOrders("device-a")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.OrderID, orders[0].ID)
	assert.Equal(t, first.OrderID, orders[1].ID)
	assert.Len(t, orders[0].Items, 1)
}

func TestMergeOrderLinesKeepsFirstOrder(t *testing.T) {
	merged := mergeOrderLines([]CreateOrderItem{
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 3},
	})
	require.Len(t, merged, 2)
	assert.Equal(t, uint(2), merged[0].ProductID)
	assert.Equal(t, 4, merged[0].Quantity)
	assert.Equal(t, uint(1), merged[1].ProductID)
}
