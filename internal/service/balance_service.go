package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const balanceTransactionListLimit = 50

// BalanceService 余额与流水服务
type BalanceService struct {
	balanceRepo repository.BalanceRepository
}

// BalanceChangeInput 事务内余额变动输入，Amount 为正数
type BalanceChangeInput struct {
	UserID      string
	Amount      decimal.Decimal
	TxnType     string
	Reference   string
	Description string
	OrderID     *uint
}

// Reservation 订单余额抵扣结果
type Reservation struct {
	Used      decimal.Decimal
	Remaining decimal.Decimal
	Method    string
}

// AdminRechargeInput 管理员充值输入
type AdminRechargeInput struct {
	UserID      string
	Amount      models.Money
	OrderID     *uint
	Description string
}

// NewBalanceService 创建余额服务
func NewBalanceService(balanceRepo repository.BalanceRepository) *BalanceService {
	return &BalanceService{balanceRepo: balanceRepo}
}

// AccountBalanceID 登录用户的余额身份
func AccountBalanceID(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// GetOrCreate 获取余额（不存在时创建为 0）
func (s *BalanceService) GetOrCreate(userID string) (*models.UserBalance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrBalanceUserRequired
	}
	balance, err := s.balanceRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	if err := s.balanceRepo.CreateIfAbsent(newUserBalance(userID)); err != nil {
		return nil, err
	}
	return s.balanceRepo.GetByUserID(userID)
}

// ListTransactions 查询最近 50 条流水
func (s *BalanceService) ListTransactions(userID string) ([]models.BalanceTransaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrBalanceUserRequired
	}
	return s.balanceRepo.ListTransactions(userID, balanceTransactionListLimit)
}

// Reserve 在订单事务内按 min(申请额, 余额, 应付) 抵扣余额
func (s *BalanceService) Reserve(tx *gorm.DB, userID string, requested, finalPrice decimal.Decimal, orderID uint) (*Reservation, error) {
	finalPrice = finalPrice.Round(2)
	result := &Reservation{
		Used:      decimal.Zero,
		Remaining: finalPrice,
		Method:    constants.PaymentMethodPaymentCode,
	}
	requested = requested.Round(2)
	if requested.LessThanOrEqual(decimal.Zero) || finalPrice.LessThanOrEqual(decimal.Zero) {
		return result, nil
	}
	repo := s.balanceRepo.WithTx(tx)
	account, err := s.ensureAccountForUpdate(repo, userID)
	if err != nil {
		return nil, err
	}
	used := decimal.Min(requested, account.Balance.Decimal.Round(2), finalPrice)
	if used.LessThanOrEqual(decimal.Zero) {
		return result, nil
	}
	if _, _, err := s.changeBalance(repo, account, BalanceChangeInput{
		UserID:      userID,
		Amount:      used,
		TxnType:     constants.BalanceTxnTypeConsume,
		Reference:   orderBalanceReference(orderID, "balance_pay"),
		Description: "订单支付",
		OrderID:     &orderID,
	}, constants.BalanceTxnDirectionOut); err != nil {
		return nil, err
	}
	result.Used = used
	result.Remaining = finalPrice.Sub(used).Round(2)
	if result.Remaining.GreaterThan(decimal.Zero) {
		result.Method = constants.PaymentMethodMixed
	} else {
		result.Method = constants.PaymentMethodBalance
	}
	return result, nil
}

// CreditInTx 在事务内入账，按参考号幂等
func (s *BalanceService) CreditInTx(tx *gorm.DB, input BalanceChangeInput) (*models.UserBalance, *models.BalanceTransaction, error) {
	repo := s.balanceRepo.WithTx(tx)
	account, err := s.ensureAccountForUpdate(repo, input.UserID)
	if err != nil {
		return nil, nil, err
	}
	return s.changeBalance(repo, account, input, constants.BalanceTxnDirectionIn)
}

// DebitInTx 在事务内扣款，余额不足时拒绝
func (s *BalanceService) DebitInTx(tx *gorm.DB, input BalanceChangeInput) (*models.UserBalance, *models.BalanceTransaction, error) {
	repo := s.balanceRepo.WithTx(tx)
	account, err := s.ensureAccountForUpdate(repo, input.UserID)
	if err != nil {
		return nil, nil, err
	}
	return s.changeBalance(repo, account, input, constants.BalanceTxnDirectionOut)
}

// AdminRecharge 管理员为指定身份充值
func (s *BalanceService) AdminRecharge(input AdminRechargeInput) (*models.UserBalance, *models.BalanceTransaction, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrBalanceAmountInvalid
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = "管理员充值"
	}
	var (
		account *models.UserBalance
		txn     *models.BalanceTransaction
	)
	err := s.balanceRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		account, txn, err = s.CreditInTx(tx, BalanceChangeInput{
			UserID:      input.UserID,
			Amount:      amount,
			TxnType:     constants.BalanceTxnTypeRecharge,
			Reference:   "admin:recharge:" + uuid.NewString(),
			Description: description,
			OrderID:     input.OrderID,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Infow("balance_admin_recharged",
		"user_id", input.UserID,
		"amount", amount.StringFixed(2),
		"balance_after", account.Balance.String(),
	)
	return account, txn, nil
}

// MergeInTx 将设备余额整体转入账号余额，返回转入金额
func (s *BalanceService) MergeInTx(tx *gorm.DB, fromUserID, toUserID string) (decimal.Decimal, error) {
	fromUserID = strings.TrimSpace(fromUserID)
	toUserID = strings.TrimSpace(toUserID)
	if fromUserID == "" || toUserID == "" || fromUserID == toUserID {
		return decimal.Zero, nil
	}
	repo := s.balanceRepo.WithTx(tx)
	source, err := repo.GetByUserIDForUpdate(fromUserID)
	if err != nil {
		return decimal.Zero, err
	}
	if source == nil {
		return decimal.Zero, nil
	}
	if err := repo.SetLinkedUser(source.ID, toUserID); err != nil {
		return decimal.Zero, ErrBalanceUpdateFailed
	}
	amount := source.Balance.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	mergeID := uuid.NewString()
	if _, _, err := s.changeBalance(repo, source, BalanceChangeInput{
		UserID:      fromUserID,
		Amount:      amount,
		TxnType:     constants.BalanceTxnTypeConsume,
		Reference:   "merge:" + mergeID + ":out",
		Description: "余额合并至账号",
	}, constants.BalanceTxnDirectionOut); err != nil {
		return decimal.Zero, err
	}
	target, err := s.ensureAccountForUpdate(repo, toUserID)
	if err != nil {
		return decimal.Zero, err
	}
	if _, _, err := s.changeBalance(repo, target, BalanceChangeInput{
		UserID:      toUserID,
		Amount:      amount,
		TxnType:     constants.BalanceTxnTypeRecharge,
		Reference:   "merge:" + mergeID + ":in",
		Description: "设备余额合并",
	}, constants.BalanceTxnDirectionIn); err != nil {
		return decimal.Zero, err
	}
	logger.Infow("balance_device_merged", "from_user_id", fromUserID, "to_user_id", toUserID, "amount", amount.StringFixed(2))
	return amount, nil
}

func (s *BalanceService) ensureAccountForUpdate(repo *repository.GormBalanceRepository, userID string) (*models.UserBalance, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrBalanceUserRequired
	}
	account, err := repo.GetByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	if err := repo.CreateIfAbsent(newUserBalance(userID)); err != nil {
		return nil, ErrBalanceUpdateFailed
	}
	account, err = repo.GetByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrBalanceUpdateFailed
	}
	return account, nil
}

// changeBalance 写入新余额并追加流水，参考号已存在时直接返回既有流水
func (s *BalanceService) changeBalance(repo *repository.GormBalanceRepository, account *models.UserBalance, input BalanceChangeInput, direction string) (*models.UserBalance, *models.BalanceTransaction, error) {
	amount := input.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrBalanceAmountInvalid
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, nil, ErrBalanceTxnCreateFailed
	}
	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, nil, err
	}
	if exists != nil {
		return account, exists, nil
	}

	before := account.Balance.Decimal.Round(2)
	after := before.Add(amount)
	if direction == constants.BalanceTxnDirectionOut {
		after = before.Sub(amount)
	}
	after = after.Round(2)
	if after.LessThan(decimal.Zero) {
		return nil, nil, ErrBalanceInsufficient
	}
	if err := repo.UpdateBalance(account.ID, models.NewMoneyFromDecimal(after)); err != nil {
		return nil, nil, ErrBalanceUpdateFailed
	}
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = time.Now()

	txn := &models.BalanceTransaction{
		UserID:        account.UserID,
		Type:          input.TxnType,
		Direction:     direction,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		OrderID:       input.OrderID,
		Reference:     reference,
		Description:   input.Description,
		CreatedAt:     time.Now(),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, nil, ErrBalanceTxnCreateFailed
	}
	return account, txn, nil
}

func newUserBalance(userID string) *models.UserBalance {
	now := time.Now()
	return &models.UserBalance{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func orderBalanceReference(orderID uint, suffix string) string {
	return fmt.Sprintf("order:%d:%s", orderID, suffix)
}
