package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GiftCodeService 消费卡兑换码服务
type GiftCodeService struct {
	giftRepo    repository.GiftCodeRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	balanceSvc  *BalanceService
	appURL      string
	expireDays  int
}

// GiftCreateInput 创建兑换码输入，OrderID 必须指向调用人已支付的消费卡订单
type GiftCreateInput struct {
	CardValue models.Money
	OrderID   *uint
	IsGift    bool
	UserID    string
}

// GiftCreateResult 创建结果：自用时直接标记已兑换，赠送时返回兑换链接
type GiftCreateResult struct {
	Success    bool          `json:"success"`
	Redeemed   bool          `json:"redeemed,omitempty"`
	NewBalance *models.Money `json:"newBalance,omitempty"`
	Code       string        `json:"code,omitempty"`
	CardValue  *models.Money `json:"cardValue,omitempty"`
	GiftURL    string        `json:"giftUrl,omitempty"`
	ExpiresAt  *time.Time    `json:"expiresAt,omitempty"`
}

// GiftRedeemInput 兑换输入，RecipientUserID 仅在登录时填写
type GiftRedeemInput struct {
	Code            string
	UserID          string
	RecipientUserID string
}

// GiftRedeemResult 兑换结果
type GiftRedeemResult struct {
	Success    bool         `json:"success"`
	CardValue  models.Money `json:"cardValue"`
	NewBalance models.Money `json:"newBalance"`
}

// NewGiftCodeService 创建兑换码服务
func NewGiftCodeService(
	giftRepo repository.GiftCodeRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	balanceSvc *BalanceService,
	appURL string,
	expireDays int,
) *GiftCodeService {
	return &GiftCodeService{
		giftRepo:    giftRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		balanceSvc:  balanceSvc,
		appURL:      strings.TrimRight(strings.TrimSpace(appURL), "/"),
		expireDays:  expireDays,
	}
}

// Create 从已支付的消费卡订单中划出面值生成兑换码。
// 订单支付时面值已计入买家余额：自用只登记为已兑换，赠送则从创建人余额扣回同等金额。
func (s *GiftCodeService) Create(ctx context.Context, input GiftCreateInput) (*GiftCreateResult, error) {
	value := input.CardValue.Decimal.Round(2)
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, ErrGiftInvalidValue
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrBalanceUserRequired
	}
	if input.OrderID == nil || *input.OrderID == 0 {
		return nil, ErrGiftOrderRequired
	}
	orderID := *input.OrderID
	selfUse := !input.IsGift
	now := time.Now()

	gift := &models.GiftCode{
		CardValue:     models.NewMoneyFromDecimal(value),
		Status:        constants.GiftCodeStatusActive,
		CreatorUserID: userID,
		IsGift:        input.IsGift,
		OrderID:       &orderID,
		CreatedAt:     now,
	}
	if !selfUse && s.expireDays > 0 {
		expiresAt := now.AddDate(0, 0, s.expireDays)
		gift.ExpiresAt = &expiresAt
	}

	var account *models.UserBalance
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.reserveOrderValue(tx, orderID, userID, value); err != nil {
			return err
		}
		giftRepo := s.giftRepo.WithTx(tx)
		if err := s.assignUniqueCode(giftRepo, gift); err != nil {
			return err
		}
		if err := giftRepo.Create(gift); err != nil {
			return err
		}
		if !selfUse {
			_, _, err := s.balanceSvc.DebitInTx(tx, BalanceChangeInput{
				UserID:      userID,
				Amount:      value,
				TxnType:     constants.BalanceTxnTypeConsume,
				Reference:   fmt.Sprintf("gift:%d:issue", gift.ID),
				Description: "消费卡转为礼品码",
				OrderID:     &orderID,
			})
			return err
		}
		affected, err := giftRepo.MarkRedeemed(gift.ID, &userID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrGiftCodeRedeemed
		}
		gift.Status = constants.GiftCodeStatusRedeemed
		account, err = s.balanceSvc.balanceRepo.WithTx(tx).GetByUserID(userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("gift_code_created",
		"gift_code_id", gift.ID,
		"order_id", orderID,
		"creator_user_id", userID,
		"card_value", value.StringFixed(2),
		"self_use", selfUse,
	)
	if selfUse {
		balance := models.NewMoneyFromDecimal(decimal.Zero)
		if account != nil {
			balance = account.Balance
		}
		return &GiftCreateResult{Success: true, Redeemed: true, NewBalance: &balance}, nil
	}
	cardValue := gift.CardValue
	return &GiftCreateResult{
		Success:   true,
		Code:      gift.Code,
		CardValue: &cardValue,
		GiftURL:   s.appURL + "/redeem?code=" + gift.Code,
		ExpiresAt: gift.ExpiresAt,
	}, nil
}

// reserveOrderValue 锁定订单并校验剩余可划出面值：
// 已支付、属于调用人，且消费卡面值合计不小于已生成兑换码加本次面值。
func (s *GiftCodeService) reserveOrderValue(tx *gorm.DB, orderID uint, userID string, value decimal.Decimal) error {
	order, err := s.orderRepo.WithTx(tx).GetByIDForUpdate(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderMissing
	}
	if order.UserID != userID {
		return ErrOrderForbidden
	}
	if order.Status != constants.OrderStatusPaid {
		return ErrOrderStatusInvalid
	}

	ids := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.WithTx(tx).ListByIDs(ids)
	if err != nil {
		return err
	}
	balanceCards := make(map[uint]decimal.Decimal, len(products))
	for _, product := range products {
		if product.IsBalanceCard {
			balanceCards[product.ID] = product.CardValue.Decimal
		}
	}
	allotment := decimal.Zero
	for _, item := range order.Items {
		if cardValue, ok := balanceCards[item.ProductID]; ok {
			allotment = allotment.Add(cardValue.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	minted, err := s.giftRepo.WithTx(tx).ListByOrder(orderID)
	if err != nil {
		return err
	}
	used := decimal.Zero
	for _, code := range minted {
		used = used.Add(code.CardValue.Decimal)
	}
	if used.Add(value).GreaterThan(allotment.Round(2)) {
		return ErrGiftOrderInvalid
	}
	return nil
}

// Redeem 兑换礼品码并为兑换人充值
func (s *GiftCodeService) Redeem(ctx context.Context, input GiftRedeemInput) (*GiftRedeemResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrBalanceUserRequired
	}
	candidates := giftCodeCandidates(input.Code)
	if len(candidates) == 0 {
		return nil, ErrGiftCodeNotFound
	}

	var (
		gift      *models.GiftCode
		account   *models.UserBalance
		expiredID uint
	)
	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		giftRepo := s.giftRepo.WithTx(tx)
		var err error
		gift, err = giftRepo.GetByCodes(candidates)
		if err != nil {
			return err
		}
		if gift == nil {
			return ErrGiftCodeNotFound
		}
		switch gift.Status {
		case constants.GiftCodeStatusRedeemed:
			return ErrGiftCodeRedeemed
		case constants.GiftCodeStatusExpired:
			return ErrGiftCodeExpired
		}
		if gift.ExpiresAt != nil && now.After(*gift.ExpiresAt) {
			expiredID = gift.ID
			return ErrGiftCodeExpired
		}

		var recipient *string
		if r := strings.TrimSpace(input.RecipientUserID); r != "" {
			recipient = &r
		}
		affected, err := giftRepo.MarkRedeemed(gift.ID, recipient, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrGiftCodeRedeemed
		}
		account, _, err = s.balanceSvc.CreditInTx(tx, BalanceChangeInput{
			UserID:      userID,
			Amount:      gift.CardValue.Decimal,
			TxnType:     constants.BalanceTxnTypeRecharge,
			Reference:   fmt.Sprintf("gift:%d:redeem", gift.ID),
			Description: "兑换礼品卡",
		})
		return err
	})
	if expiredID != 0 {
		if _, markErr := s.giftRepo.MarkExpired(expiredID); markErr != nil {
			logger.Warnw("gift_code_mark_expired_failed", "gift_code_id", expiredID, "error", markErr)
		}
	}
	if err != nil {
		if !errors.Is(err, ErrGiftCodeNotFound) && !errors.Is(err, ErrGiftCodeRedeemed) && !errors.Is(err, ErrGiftCodeExpired) {
			logger.Errorw("gift_code_redeem_failed", "user_id", userID, "error", err)
		}
		return nil, err
	}

	logger.Infow("gift_code_redeemed",
		"gift_code_id", gift.ID,
		"user_id", userID,
		"card_value", gift.CardValue.String(),
	)
	return &GiftRedeemResult{
		Success:    true,
		CardValue:  gift.CardValue,
		NewBalance: account.Balance,
	}, nil
}

// ListByCreator 查询创建人名下的兑换码
func (s *GiftCodeService) ListByCreator(userID string) ([]models.GiftCode, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrBalanceUserRequired
	}
	return s.giftRepo.ListByCreator(userID)
}

func (s *GiftCodeService) assignUniqueCode(giftRepo *repository.GormGiftCodeRepository, gift *models.GiftCode) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateGiftCode()
		if err != nil {
			return err
		}
		exists, err := giftRepo.CodeExists(code)
		if err != nil {
			return err
		}
		if !exists {
			gift.Code = code
			return nil
		}
	}
	return ErrGiftCodeExhausted
}
