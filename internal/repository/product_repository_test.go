package repository

import (
	"testing"

	"github.com/dujiao-next/storefront/internal/models"

	"github.com/shopspring/decimal"
)

func createStockProduct(t *testing.T, repo *GormProductRepository, name string, totalStock *int, sold int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		TotalStock: totalStock,
		SoldCount:  sold,
		IsActive:   true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestIncrementSoldCountRespectsTotalStock(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t, "product_sold_count"))
	product := createStockProduct(t, repo, "limited", intPtr(3), 1)

	affected, err := repo.IncrementSoldCount(product.ID, 2)
	if err != nil {
		t.Fatalf("increment sold count failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("increment within stock want 1 row got %d", affected)
	}

	affected, err = repo.IncrementSoldCount(product.ID, 1)
	if err != nil {
		t.Fatalf("increment beyond stock failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("increment beyond stock should affect 0 rows, got %d", affected)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.SoldCount != 3 {
		t.Fatalf("sold count want 3 got %d", reloaded.SoldCount)
	}
}

func TestIncrementSoldCountUnlimitedStock(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t, "product_unlimited"))
	product := createStockProduct(t, repo, "unlimited", nil, 0)

	for i := 0; i < 3; i++ {
		affected, err := repo.IncrementSoldCount(product.ID, 10)
		if err != nil {
			t.Fatalf("increment sold count failed: %v", err)
		}
		if affected != 1 {
			t.Fatalf("unlimited stock should always accept, got %d", affected)
		}
	}
}

func TestReleaseSoldCountNeverNegative(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t, "product_release"))
	product := createStockProduct(t, repo, "release", intPtr(5), 2)

	affected, err := repo.ReleaseSoldCount(product.ID, 3)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("release more than sold should be refused, got %d", affected)
	}
	affected, err = repo.ReleaseSoldCount(product.ID, 2)
	if err != nil || affected != 1 {
		t.Fatalf("release sold count want 1 row got %d err=%v", affected, err)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t, "product_missing"))
	product, err := repo.GetByID(999)
	if err != nil {
		t.Fatalf("get missing product failed: %v", err)
	}
	if product != nil {
		t.Fatalf("missing product should be nil")
	}
}
