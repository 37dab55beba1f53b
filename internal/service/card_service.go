package service

import (
	"context"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// CardService 卡密库存服务
type CardService struct {
	cardRepo    repository.ProductCardRepository
	productRepo repository.ProductRepository
}

// CardImportResult 导入结果
type CardImportResult struct {
	Success bool `json:"success"`
	Added   int  `json:"added"`
	Skipped int  `json:"skipped"`
}

// CardStockView 商品卡密库存统计
type CardStockView struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Total       int64  `json:"total"`
	Available   int64  `json:"available"`
	Used        int64  `json:"used"`
}

// NewCardService 创建卡密服务
func NewCardService(cardRepo repository.ProductCardRepository, productRepo repository.ProductRepository) *CardService {
	return &CardService{cardRepo: cardRepo, productRepo: productRepo}
}

// Import 批量导入卡密：去空白并丢弃空行，已存在于任意商品的卡密跳过
func (s *CardService) Import(ctx context.Context, productID uint, codes []string) (*CardImportResult, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	normalized := normalizeCardCodes(codes)
	if len(normalized) == 0 {
		return nil, ErrCardImportEmpty
	}

	existing, err := s.cardRepo.ListExistingCodes(normalized)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cards := make([]models.ProductCard, 0, len(normalized))
	for _, code := range normalized {
		if _, ok := existing[code]; ok {
			continue
		}
		cards = append(cards, models.ProductCard{
			ProductID: productID,
			CardCode:  code,
			Status:    constants.CardStatusAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	added, err := s.cardRepo.CreateBatch(cards)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)

	result := &CardImportResult{
		Success: true,
		Added:   int(added),
		Skipped: len(codes) - int(added),
	}
	logger.Infow("product_cards_imported",
		"product_id", productID,
		"submitted", len(codes),
		"added", result.Added,
		"skipped", result.Skipped,
	)
	return result, nil
}

// Stats 卡密发货商品的库存统计，短暂缓存于 Redis
func (s *CardService) Stats(ctx context.Context) ([]CardStockView, error) {
	var cached []CardStockView
	hit, err := cache.GetCardStats(ctx, &cached)
	if err != nil {
		logger.Warnw("card_stats_cache_read_failed", "error", err)
	}
	if hit {
		return cached, nil
	}

	products, err := s.productRepo.ListCardDelivery()
	if err != nil {
		return nil, err
	}
	stats, err := s.cardRepo.CountStats()
	if err != nil {
		return nil, err
	}
	byProduct := make(map[uint]repository.CardStockStat, len(stats))
	for _, stat := range stats {
		byProduct[stat.ProductID] = stat
	}
	views := make([]CardStockView, 0, len(products))
	for _, product := range products {
		stat := byProduct[product.ID]
		views = append(views, CardStockView{
			ProductID:   product.ID,
			ProductName: product.Name,
			Total:       stat.Total,
			Available:   stat.Available,
			Used:        stat.Used,
		})
	}
	if err := cache.SetCardStats(ctx, views); err != nil {
		logger.Warnw("card_stats_cache_write_failed", "error", err)
	}
	return views, nil
}

// ListByProduct 分页查询商品卡密
func (s *CardService) ListByProduct(filter repository.CardListFilter) ([]models.ProductCard, int64, error) {
	filter.Page, filter.PageSize = repository.NormalizePagination(filter.Page, filter.PageSize)
	return s.cardRepo.List(filter)
}

// BatchDelete 批量删除，仅删除未售出的卡密
func (s *CardService) BatchDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrCardNotFound
	}
	deleted, err := s.cardRepo.DeleteAvailable(ids)
	if err != nil {
		return 0, err
	}
	s.invalidateStats(ctx)
	logger.Infow("product_cards_deleted", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// Delete 删除单张卡密，已售出的卡密不可删除
func (s *CardService) Delete(ctx context.Context, id uint) error {
	card, err := s.cardRepo.GetByID(id)
	if err != nil {
		return err
	}
	if card == nil {
		return ErrCardNotFound
	}
	if card.Status != constants.CardStatusAvailable {
		return ErrCardAlreadyUsed
	}
	deleted, err := s.cardRepo.DeleteAvailable([]uint{id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrCardAlreadyUsed
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *CardService) invalidateStats(ctx context.Context) {
	if err := cache.InvalidateCardStats(ctx); err != nil {
		logger.Warnw("card_stats_cache_invalidate_failed", "error", err)
	}
}

// normalizeCardCodes 去除首尾空白与空行，同一批次内去重
func normalizeCardCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		result = append(result, code)
	}
	return result
}
