package ledger

import (
	"testing"
	"time"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func mustCalc(t *testing.T, params models.CampaignParams, freeUsed int64) models.TokenSpendCalculation {
	t.Helper()
	calc, err := pricing.CalculateTokenCost(params, freeUsed)
	require.NoError(t, err)
	return *calc
}

func TestNewWallet(t *testing.T) {
	w := NewWallet("w1", "user1", 27500, testNow)

	assert.Equal(t, int64(27500), w.TotalTokens)
	assert.Equal(t, int64(22000), w.MediaTokens)
	assert.Equal(t, int64(5500), w.CreativeTokens)
	assert.Equal(t, testNow, w.LastUpdated)
	assert.Empty(t, w.Transactions)
	assert.NoError(t, CheckInvariant(w))
}

func TestCredit(t *testing.T) {
	w := NewWallet("w1", "user1", 15000, testNow)
	later := testNow.Add(time.Hour)

	require.NoError(t, Credit(&w, 5000, later))
	assert.Equal(t, int64(20000), w.TotalTokens)
	assert.Equal(t, int64(16000), w.MediaTokens)
	assert.Equal(t, int64(4000), w.CreativeTokens)
	assert.Equal(t, later, w.LastUpdated)

	// an amount that does not split evenly keeps the invariant
	require.NoError(t, Credit(&w, 7, later))
	assert.NoError(t, CheckInvariant(w))
	assert.Equal(t, int64(20007), w.TotalTokens)
}

func TestCredit_RejectsNonPositive(t *testing.T) {
	w := NewWallet("w1", "user1", 100, testNow)
	before := w

	assert.ErrorIs(t, Credit(&w, 0, testNow), ErrInvalidArgument)
	assert.ErrorIs(t, Credit(&w, -5, testNow), ErrInvalidArgument)
	assert.Equal(t, before, w)
}

func TestDebit(t *testing.T) {
	w := NewWallet("w1", "user1", 27500, testNow)
	calc := mustCalc(t, models.CampaignParams{
		Impressions:          5000,
		HasAdvancedTargeting: true,
		HasPriorityQueue:     true,
		CreativeAssets:       15,
		AbVariants:           2,
	}, 0)

	require.NoError(t, Debit(&w, calc, testNow))
	assert.Equal(t, int64(27500-9500), w.TotalTokens)
	assert.Equal(t, int64(5500-3000), w.CreativeTokens)
	assert.Equal(t, int64(22000-6500), w.MediaTokens)
	assert.NoError(t, CheckInvariant(w))
}

func TestDebit_InsufficientLeavesWalletUntouched(t *testing.T) {
	w := NewWallet("w1", "user1", 900, testNow)
	Append(&w, models.TokenTransaction{Id: "tx1", Amount: 900, Type: models.TransactionEarned})
	before := *(&models.Account{Wallet: w}).Clone()

	err := Debit(&w, mustCalc(t, models.DefaultCampaignParams(), 0), testNow.Add(time.Hour))
	require.ErrorIs(t, err, ErrInsufficientTokens)
	assert.Equal(t, before.Wallet, w)
}

func TestDebit_CreativeOverflowsToMedia(t *testing.T) {
	// creative cost larger than the creative balance
	w := models.Wallet{Id: "w1", TotalTokens: 10000, MediaTokens: 9500, CreativeTokens: 500}
	calc := mustCalc(t, models.CampaignParams{CreativeAssets: 14}, 0)
	require.Equal(t, int64(2000), calc.TotalTokens)

	require.NoError(t, Debit(&w, calc, testNow))
	assert.Equal(t, int64(0), w.CreativeTokens)
	assert.Equal(t, int64(8000), w.MediaTokens)
	assert.NoError(t, CheckInvariant(w))
}

func TestDebit_MediaOverflowsToCreative(t *testing.T) {
	w := models.Wallet{Id: "w1", TotalTokens: 3000, MediaTokens: 1000, CreativeTokens: 2000}
	calc := mustCalc(t, models.CampaignParams{Impressions: 2500}, 0)

	require.NoError(t, Debit(&w, calc, testNow))
	assert.Equal(t, int64(500), w.TotalTokens)
	assert.Equal(t, int64(0), w.MediaTokens)
	assert.Equal(t, int64(500), w.CreativeTokens)
}

func TestDebit_RejectsInconsistentCalculation(t *testing.T) {
	w := NewWallet("w1", "user1", 10000, testNow)
	before := w

	err := Debit(&w, models.TokenSpendCalculation{MediaTokens: 100, TotalTokens: 50}, testNow)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = Debit(&w, models.TokenSpendCalculation{MediaTokens: -100, CreativeTokens: 200, TotalTokens: 100}, testNow)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, before, w)
}

func TestPurchaseThenSpendRoundTrip(t *testing.T) {
	w := NewWallet("w1", "user1", 15000, testNow)
	start := w.TotalTokens

	require.NoError(t, Credit(&w, 5001, testNow))
	calc := models.TokenSpendCalculation{MediaTokens: 5001, TotalTokens: 5001}
	require.NoError(t, Debit(&w, calc, testNow))

	assert.Equal(t, start, w.TotalTokens)
	assert.NoError(t, CheckInvariant(w))
}

func TestAppend(t *testing.T) {
	w := NewWallet("w1", "user1", 1000, testNow)

	tx := Append(&w, models.TokenTransaction{Id: "tx1", Amount: 1000})
	assert.Equal(t, "w1", tx.WalletId)
	assert.Equal(t, "user1", tx.UserId)
	assert.Equal(t, int64(1000), tx.BalanceAfter)
	require.Len(t, w.Transactions, 1)
	assert.Equal(t, tx, w.Transactions[0])
}

func TestCheckInvariant(t *testing.T) {
	assert.ErrorIs(t, CheckInvariant(models.Wallet{TotalTokens: 10, MediaTokens: 5, CreativeTokens: 4}), ErrInvariantViolated)
	assert.ErrorIs(t, CheckInvariant(models.Wallet{TotalTokens: 0, MediaTokens: 5, CreativeTokens: -5}), ErrInvariantViolated)
}
