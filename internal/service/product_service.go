package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProductService 商品服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	Name             string
	Price            models.Money
	ImageURL         string
	Description      string
	Tags             []string
	UseCardDelivery  bool
	MaxPerUser       *int
	TotalStock       *int
	SaleEndTime      *time.Time
	IsPresale        bool
	PresaleStartTime *time.Time
	IsBalanceCard    bool
	CardValue        models.Money
	IsActive         *bool
}

// ListPublic 前台商品列表（仅上架）
func (s *ProductService) ListPublic(page, pageSize int, search string) ([]models.Product, int64, error) {
	page, pageSize = repository.NormalizePagination(page, pageSize)
	return s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OnlyActive: true,
	})
}

// ListAdmin 管理端商品列表
func (s *ProductService) ListAdmin(page, pageSize int, search string) ([]models.Product, int64, error) {
	page, pageSize = repository.NormalizePagination(page, pageSize)
	return s.repo.List(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
	})
}

// GetPublic 前台商品详情，下架商品视为不存在
func (s *ProductService) GetPublic(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	product.IsActive = true
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	// 布尔默认值为 true 的列，创建时的 false 会被忽略，需单独回写
	if input.IsActive != nil && !*input.IsActive {
		product.IsActive = false
		if err := s.repo.Update(product); err != nil {
			return nil, err
		}
	}
	logger.Infow("product_created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// Update 更新商品，已售数量不受影响
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}

func applyProductInput(product *models.Product, input ProductInput) error {
	name := strings.TrimSpace(input.Name)
	price := input.Price.Decimal.Round(2)
	if name == "" || price.LessThan(decimal.Zero) {
		return ErrProductInputInvalid
	}
	if input.MaxPerUser != nil && *input.MaxPerUser <= 0 {
		return ErrProductInputInvalid
	}
	if input.TotalStock != nil && *input.TotalStock < 0 {
		return ErrProductInputInvalid
	}
	cardValue := input.CardValue.Decimal.Round(2)
	if input.IsBalanceCard && cardValue.LessThanOrEqual(decimal.Zero) {
		return ErrProductInputInvalid
	}
	tags := datatypes.JSON([]byte("[]"))
	if len(input.Tags) > 0 {
		raw, err := json.Marshal(normalizeTags(input.Tags))
		if err != nil {
			return ErrProductInputInvalid
		}
		tags = datatypes.JSON(raw)
	}

	product.Name = name
	product.Price = models.NewMoneyFromDecimal(price)
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Description = strings.TrimSpace(input.Description)
	product.Tags = tags
	product.UseCardDelivery = input.UseCardDelivery
	product.MaxPerUser = input.MaxPerUser
	product.TotalStock = input.TotalStock
	product.SaleEndTime = input.SaleEndTime
	product.IsPresale = input.IsPresale
	product.PresaleStartTime = input.PresaleStartTime
	product.IsBalanceCard = input.IsBalanceCard
	product.CardValue = models.NewMoneyFromDecimal(cardValue)
	return nil
}

func normalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			result = append(result, tag)
		}
	}
	return result
}
