package repository

import (
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
)

func createTestOrder(t *testing.T, repo *GormOrderRepository, code, userID, status string, productID uint, quantity int) *models.Order {
	t.Helper()
	order := &models.Order{
		PaymentCode:    code,
		Status:         status,
		UserID:         userID,
		Email:          "buyer@example.com",
		Country:        "CN",
		AddressLine1:   "street",
		PaymentMethod:  constants.PaymentMethodPaymentCode,
		DeliveryStatus: constants.DeliveryStatusNone,
	}
	items := []models.OrderItem{{ProductID: productID, Quantity: quantity}}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestSumUserProductQuantityFiltersStatus(t *testing.T) {
	repo := NewOrderRepository(openRepositoryTestDB(t, "order_sum"))
	createTestOrder(t, repo, "AAAA0001", "u1", constants.OrderStatusPaid, 5, 2)
	createTestOrder(t, repo, "AAAA0002", "u1", constants.OrderStatusPending, 5, 1)
	createTestOrder(t, repo, "AAAA0003", "u1", constants.OrderStatusCancelled, 5, 4)
	createTestOrder(t, repo, "AAAA0004", "u2", constants.OrderStatusPaid, 5, 9)

	total, err := repo.SumUserProductQuantity("u1", 5, []string{constants.OrderStatusPending, constants.OrderStatusPaid})
	if err != nil {
		t.Fatalf("sum quantity failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("sum quantity want 3 got %d", total)
	}
}

func TestTransitionStatusOnlyFromExpected(t *testing.T) {
	repo := NewOrderRepository(openRepositoryTestDB(t, "order_transition"))
	order := createTestOrder(t, repo, "BBBB0001", "u1", constants.OrderStatusPending, 1, 1)

	affected, err := repo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, nil)
	if err != nil || affected != 1 {
		t.Fatalf("first transition want 1 got %d err=%v", affected, err)
	}
	affected, err = repo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid, nil)
	if err != nil {
		t.Fatalf("second transition failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second transition should affect 0 rows, got %d", affected)
	}
}

func TestPaymentCodeLookup(t *testing.T) {
	repo := NewOrderRepository(openRepositoryTestDB(t, "order_code"))
	createTestOrder(t, repo, "CCCC0001", "u1", constants.OrderStatusPending, 1, 1)

	exists, err := repo.PaymentCodeExists("CCCC0001")
	if err != nil || !exists {
		t.Fatalf("payment code should exist, err=%v", err)
	}
	order, err := repo.GetByPaymentCodeForUpdate("CCCC0001")
	if err != nil || order == nil {
		t.Fatalf("lookup by payment code failed: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("order items should be preloaded, got %d", len(order.Items))
	}
	missing, err := repo.GetByPaymentCode("ZZZZ9999")
	if err != nil || missing != nil {
		t.Fatalf("missing code should return nil, got %+v err=%v", missing, err)
	}
}
