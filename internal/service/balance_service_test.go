package service

import (
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBalanceLedgerChainsBeforeAndAfter(t *testing.T) {
	env := setupServiceTest(t)
	env.seedBalance(t, "device-a", "10.00")
	env.seedBalance(t, "device-a", "5.50")

	_, _, err := env.balance.AdminRecharge(AdminRechargeInput{UserID: "device-a", Amount: money("4.50")})
	require.NoError(t, err)
	require.NoError(t, models.DB.Transaction(func(tx *gorm.DB) error {
		_, _, err := env.balance.DebitInTx(tx, BalanceChangeInput{
			UserID:    "device-a",
			Amount:    decimal.RequireFromString("7.25"),
			TxnType:   constants.BalanceTxnTypeConsume,
			Reference: "test:debit",
		})
		return err
	}))

	var txns []models.BalanceTransaction
	require.NoError(t, env.db.Where("user_id = ?", "device-a").Order("id asc").Find(&txns).Error)
	require.Len(t, txns, 4)
	running := decimal.Zero
	for _, txn := range txns {
		assert.True(t, txn.BalanceBefore.Decimal.Equal(running), "before %s running %s", txn.BalanceBefore.String(), running.StringFixed(2))
		delta := txn.Amount.Decimal
		if txn.Direction == constants.BalanceTxnDirectionOut {
			delta = delta.Neg()
		}
		assert.True(t, txn.BalanceAfter.Decimal.Equal(txn.BalanceBefore.Decimal.Add(delta)))
		running = txn.BalanceAfter.Decimal
	}
	assert.Equal(t, "12.75", running.StringFixed(2))
	assert.True(t, env.balanceOf(t, "device-a").Equal(running))
	assert.Equal(t, "管理员充值", txns[2].Description)
}

func TestBalanceCreditIsIdempotentByReference(t *testing.T) {
	env := setupServiceTest(t)
	credit := func() error {
		return models.DB.Transaction(func(tx *gorm.DB) error {
			_, _, err := env.balance.CreditInTx(tx, BalanceChangeInput{
				UserID:    "device-a",
				Amount:    decimal.RequireFromString("8"),
				TxnType:   constants.BalanceTxnTypeRecharge,
				Reference: "order:1:balance_card:1",
			})
			return err
		})
	}
	require.NoError(t, credit())
	require.NoError(t, credit())

	assert.Equal(t, "8.00", env.balanceOf(t, "device-a").StringFixed(2))
	txns, err := env.balance.ListTransactions("device-a")
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestBalanceDebitRejectsOverdraft(t *testing.T) {
	env := setupServiceTest(t)
	env.seedBalance(t, "device-a", "3.00")

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		_, _, err := env.balance.DebitInTx(tx, BalanceChangeInput{
			UserID:    "device-a",
			Amount:    decimal.RequireFromString("3.01"),
			TxnType:   constants.BalanceTxnTypeConsume,
			Reference: "test:overdraft",
		})
		return err
	})
	require.ErrorIs(t, err, ErrBalanceInsufficient)
	assert.Equal(t, "3.00", env.balanceOf(t, "device-a").StringFixed(2))
}

func TestBalanceReserveUsesSmallestAmount(t *testing.T) {
	cases := []struct {
		name      string
		seed      string
		requested string
		final     string
		used      string
		remaining string
		method    string
	}{
		{name: "requested limits", seed: "100", requested: "10", final: "50", used: "10.00", remaining: "40.00", method: constants.PaymentMethodMixed},
		{name: "balance limits", seed: "30", requested: "50", final: "100", used: "30.00", remaining: "70.00", method: constants.PaymentMethodMixed},
		{name: "price limits", seed: "80", requested: "80", final: "25", used: "25.00", remaining: "0.00", method: constants.PaymentMethodBalance},
		{name: "empty balance", seed: "", requested: "20", final: "25", used: "0.00", remaining: "25.00", method: constants.PaymentMethodPaymentCode},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupServiceTest(t)
			if tc.seed != "" {
				env.seedBalance(t, "device-a", tc.seed)
			}
			var reservation *Reservation
			require.NoError(t, models.DB.Transaction(func(tx *gorm.DB) error {
				var err error
				reservation, err = env.balance.Reserve(tx, "device-a",
					decimal.RequireFromString(tc.requested),
					decimal.RequireFromString(tc.final),
					uint(i+1))
				return err
			}))
			assert.Equal(t, tc.used, reservation.Used.StringFixed(2))
			assert.Equal(t, tc.remaining, reservation.Remaining.StringFixed(2))
			assert.Equal(t, tc.method, reservation.Method)
		})
	}
}

func TestBalanceMergeMovesDeviceFunds(t *testing.T) {
	env := setupServiceTest(t)
	env.seedBalance(t, "device-a", "12.00")
	env.seedBalance(t, "user_1", "3.00")

	var moved decimal.Decimal
	require.NoError(t, models.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		moved, err = env.balance.MergeInTx(tx, "device-a", "user_1")
		return err
	}))
	assert.Equal(t, "12.00", moved.StringFixed(2))
	assert.True(t, env.balanceOf(t, "device-a").IsZero())
	assert.Equal(t, "15.00", env.balanceOf(t, "user_1").StringFixed(2))

	source, err := env.balance.GetOrCreate("device-a")
	require.NoError(t, err)
	require.NotNil(t, source.LinkedUserID)
	assert.Equal(t, "user_1", *source.LinkedUserID)

	require.NoError(t, models.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		moved, err = env.balance.MergeInTx(tx, "device-a", "user_1")
		return err
	}))
	assert.True(t, moved.IsZero())
	assert.Equal(t, "15.00", env.balanceOf(t, "user_1").StringFixed(2))
}

func TestAccountBalanceID(t *testing.T) {
	assert.Equal(t, "user_42", AccountBalanceID(42))
}
