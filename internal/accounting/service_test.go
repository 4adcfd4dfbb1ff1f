package accounting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ad-token-ledger/internal/catalog"
	"ad-token-ledger/internal/memstore"
	"ad-token-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type mockJournal struct {
	mock.Mock
}

func (m *mockJournal) Post(ctx context.Context, posting models.JournalPosting) error {
	args := m.Called(ctx, posting)
	return args.Error(0)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *memstore.Store, *testClock) {
	t.Helper()
	st := memstore.New()
	clock := &testClock{now: t0}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewService(st, catalog.Default(), opts...), st, clock
}

func subscribed(t *testing.T, svc *Service, userId, planId string) *models.Account {
	t.Helper()
	acct, err := svc.Subscribe(context.Background(), userId, planId)
	require.NoError(t, err)
	return acct
}

func assertReconciles(t *testing.T, svc *Service, st *memstore.Store, userId string) {
	t.Helper()
	ctx := context.Background()
	acct, err := svc.GetAccount(ctx, userId)
	require.NoError(t, err)

	var sum int64
	for _, tx := range acct.Wallet.Transactions {
		sum += tx.Amount
	}
	assert.Equal(t, acct.Wallet.TotalTokens, sum)
	assert.Equal(t, acct.Wallet.TotalTokens, acct.Wallet.MediaTokens+acct.Wallet.CreativeTokens)
	assert.GreaterOrEqual(t, acct.Wallet.MediaTokens, int64(0))
	assert.GreaterOrEqual(t, acct.Wallet.CreativeTokens, int64(0))
	assert.NoError(t, st.ReconcileWallet(ctx, userId))
}

func TestNewService_PanicsOnMissingDependencies(t *testing.T) {
	assert.Panics(t, func() { NewService(nil, catalog.Default()) })
	assert.Panics(t, func() { NewService(memstore.New(), nil) })
}

func TestSubscribe(t *testing.T) {
	svc, st, _ := newTestService(t)

	acct := subscribed(t, svc, "user1", "growth")

	assert.Equal(t, "growth", acct.Subscription.PlanId)
	assert.Equal(t, models.SubscriptionActive, acct.Subscription.Status)
	assert.Equal(t, t0, acct.Subscription.CurrentPeriodStart)
	assert.Equal(t, t0.Add(DefaultBillingCycle), acct.Subscription.NextBillingDate)
	assert.Equal(t, int64(27500), acct.Subscription.TokensRemainingThisCycle)
	assert.Zero(t, acct.Subscription.TokensUsedThisCycle)
	assert.Zero(t, acct.Subscription.FreeCreativesUsed)

	assert.Equal(t, int64(27500), acct.Wallet.TotalTokens)
	assert.Equal(t, int64(22000), acct.Wallet.MediaTokens)
	assert.Equal(t, int64(5500), acct.Wallet.CreativeTokens)

	require.Len(t, acct.Wallet.Transactions, 1)
	tx := acct.Wallet.Transactions[0]
	assert.Equal(t, models.TransactionEarned, tx.Type)
	assert.Equal(t, models.CategorySubscription, tx.Category)
	assert.Equal(t, int64(27500), tx.Amount)
	assert.Equal(t, int64(27500), tx.BalanceAfter)
	assert.Equal(t, "Monthly token allocation - Growth Plan", tx.Description)

	assertReconciles(t, svc, st, "user1")
}

func TestSubscribe_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, "user1", "platinum")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.Subscribe(ctx, "", "growth")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	balance, err := svc.GetTokenBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestSubscribe_EnterpriseHasNoAllocation(t *testing.T) {
	svc, st, _ := newTestService(t)

	acct := subscribed(t, svc, "user1", "enterprise")

	assert.Zero(t, acct.Wallet.TotalTokens)
	assert.Empty(t, acct.Wallet.Transactions)
	assertReconciles(t, svc, st, "user1")
}

func TestSubscribe_ReplacesWalletAndForfeitsBalance(t *testing.T) {
	journal := &mockJournal{}
	svc, st, _ := newTestService(t, WithJournal(journal))
	ctx := context.Background()

	journal.On("Post", mock.Anything, mock.MatchedBy(func(p models.JournalPosting) bool {
		return p.Kind == models.PostingCredit
	})).Return(nil)
	journal.On("Post", mock.Anything, mock.MatchedBy(func(p models.JournalPosting) bool {
		return p.Kind == models.PostingForfeit && p.MediaTokens == 12000 && p.CreativeTokens == 3000
	})).Return(nil).Once()

	first := subscribed(t, svc, "user1", "starter")
	second := subscribed(t, svc, "user1", "pro")

	assert.NotEqual(t, first.Wallet.Id, second.Wallet.Id)
	assert.Equal(t, int64(50000), second.Wallet.TotalTokens)
	require.Len(t, second.Wallet.Transactions, 1)
	assert.Equal(t, "Monthly token allocation - Pro Plan", second.Wallet.Transactions[0].Description)

	history, err := svc.GetTransactionHistory(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assertReconciles(t, svc, st, "user1")
	journal.AssertExpectations(t)
}

func TestPurchaseTokens(t *testing.T) {
	journal := &mockJournal{}
	svc, st, _ := newTestService(t, WithJournal(journal))
	ctx := context.Background()

	journal.On("Post", mock.Anything, mock.MatchedBy(func(p models.JournalPosting) bool {
		return p.Kind == models.PostingCredit && p.MediaTokens == 22000
	})).Return(nil).Once()
	journal.On("Post", mock.Anything, mock.MatchedBy(func(p models.JournalPosting) bool {
		return p.Kind == models.PostingCredit && p.MediaTokens == 4000 && p.CreativeTokens == 1000
	})).Return(nil).Once()

	subscribed(t, svc, "user1", "growth")

	receipt, err := svc.PurchaseTokens(ctx, "user1", 5000)
	require.NoError(t, err)

	assert.True(t, receipt.Cost.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, models.TransactionPurchased, receipt.Transaction.Type)
	assert.Equal(t, models.CategoryMedia, receipt.Transaction.Category)
	assert.Equal(t, int64(5000), receipt.Transaction.Amount)
	assert.Equal(t, "Token Pack Purchase - 5,000 tokens ($60.00)", receipt.Transaction.Description)
	assert.Equal(t, int64(32500), receipt.Wallet.TotalTokens)
	assert.Equal(t, int64(26000), receipt.Wallet.MediaTokens)
	assert.Equal(t, int64(6500), receipt.Wallet.CreativeTokens)

	acct, err := svc.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(32500), acct.Subscription.TokensRemainingThisCycle)
	assert.Equal(t, int64(32500), acct.Wallet.TotalTokens)

	assertReconciles(t, svc, st, "user1")
	journal.AssertExpectations(t)
}

func TestPurchaseTokens_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PurchaseTokens(ctx, "user1", 1000)
	assert.ErrorIs(t, err, ErrNoSubscription)

	subscribed(t, svc, "user1", "starter")

	for _, amount := range []int64{0, -5} {
		_, err = svc.PurchaseTokens(ctx, "user1", amount)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}

	balance, err := svc.GetTokenBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), balance)
}

func TestSpendTokens(t *testing.T) {
	journal := &mockJournal{}
	svc, st, _ := newTestService(t, WithJournal(journal))
	ctx := context.Background()

	journal.On("Post", mock.Anything, mock.MatchedBy(func(p models.JournalPosting) bool {
		return p.Kind == models.PostingCredit
	})).Return(nil).Once()
	journal.On("Post", mock.Anything, mock.MatchedBy(func(p models.JournalPosting) bool {
		return p.Kind == models.PostingSpend && p.CampaignId == "camp-1" &&
			p.MediaTokens == 6500 && p.CreativeTokens == 1500
	})).Return(nil).Once()

	subscribed(t, svc, "user1", "growth")

	calc, err := svc.CalculateTokenCost(ctx, "user1", models.CampaignParams{
		Impressions:          5000,
		HasAdvancedTargeting: true,
		HasPriorityQueue:     true,
		CreativeAssets:       12,
		AbVariants:           2,
	})
	require.NoError(t, err)
	require.Equal(t, int64(8000), calc.TotalTokens)
	require.Equal(t, int64(1500), calc.CreativeTokens)

	order, err := svc.SpendTokens(ctx, "user1", *calc, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "camp-1", order.CampaignId)
	assert.Equal(t, int64(8000), order.TokensSpent.TotalTokens)
	assert.Equal(t, t0, order.CreatedAt)

	acct, err := svc.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(19500), acct.Wallet.TotalTokens)
	assert.Equal(t, int64(15500), acct.Wallet.MediaTokens)
	assert.Equal(t, int64(4000), acct.Wallet.CreativeTokens)
	assert.Equal(t, int64(8000), acct.Subscription.TokensUsedThisCycle)
	assert.Equal(t, int64(19500), acct.Subscription.TokensRemainingThisCycle)
	assert.Equal(t, int64(10), acct.Subscription.FreeCreativesUsed)

	require.Len(t, acct.Wallet.Transactions, 2)
	tx := acct.Wallet.Transactions[1]
	assert.Equal(t, models.TransactionSpent, tx.Type)
	assert.Equal(t, int64(-8000), tx.Amount)
	assert.Equal(t, int64(19500), tx.BalanceAfter)
	assert.Equal(t, "Campaign Launch: camp-1", tx.Description)
	assert.Equal(t, "camp-1", tx.CampaignId)
	require.NotNil(t, tx.Metadata)
	require.NotNil(t, tx.Metadata.Media)
	assert.Equal(t, int64(5000), tx.Metadata.Media.Impressions)
	assert.True(t, tx.Metadata.Media.CpmEquivalent.Equal(decimal.NewFromInt(10)))
	assert.True(t, tx.Metadata.Media.MediaSpend.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, tx.Metadata.Creative)
	assert.Equal(t, int64(12), tx.Metadata.Creative.Assets)

	orders, err := svc.ListOrders(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.Id, orders[0].Id)

	assertReconciles(t, svc, st, "user1")
	journal.AssertExpectations(t)
}

func TestSpendTokens_FreeCreativesRunOut(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	subscribed(t, svc, "user1", "growth")

	calc, err := svc.CalculateTokenCost(ctx, "user1", models.CampaignParams{CreativeAssets: 10})
	require.NoError(t, err)
	assert.Zero(t, calc.TotalTokens)
	_, err = svc.SpendTokens(ctx, "user1", *calc, "camp-free")
	require.NoError(t, err)

	calc, err = svc.CalculateTokenCost(ctx, "user1", models.CampaignParams{CreativeAssets: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(500), calc.CreativeTokens)
	assert.Zero(t, calc.FreeCreativesApplied)
}

func TestSpendTokens_InsufficientLeavesStateUntouched(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	before := subscribed(t, svc, "user1", "starter")

	calc, err := svc.CalculateTokenCost(ctx, "user1", models.CampaignParams{Impressions: 20000})
	require.NoError(t, err)

	_, err = svc.SpendTokens(ctx, "user1", *calc, "camp-big")
	assert.ErrorIs(t, err, ErrInsufficientTokens)

	after, err := svc.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, before.Wallet.TotalTokens, after.Wallet.TotalTokens)
	assert.Equal(t, before.Wallet.MediaTokens, after.Wallet.MediaTokens)
	assert.Equal(t, before.Subscription, after.Subscription)
	assert.Len(t, after.Wallet.Transactions, 1)

	orders, err := svc.ListOrders(ctx, "user1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assertReconciles(t, svc, st, "user1")
}

func TestSpendTokens_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	calc := models.TokenSpendCalculation{MediaTokens: 100, TotalTokens: 100}

	_, err := svc.SpendTokens(ctx, "nobody", calc, "camp-1")
	assert.ErrorIs(t, err, ErrNoSubscription)

	subscribed(t, svc, "user1", "starter")

	_, err = svc.SpendTokens(ctx, "user1", calc, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SpendTokens(ctx, "user1", models.TokenSpendCalculation{MediaTokens: 100, TotalTokens: 50}, "camp-1")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.CalculateTokenCost(ctx, "user1", models.CampaignParams{Impressions: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSpendTokens_ConcurrentSpendsNeverOverdraw(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	subscribed(t, svc, "user1", "starter")

	calc := models.TokenSpendCalculation{MediaTokens: 1000, TotalTokens: 1000, EstimatedImpressions: 1000}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SpendTokens(ctx, "user1", calc, "camp-concurrent")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrInsufficientTokens) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 15, succeeded)
	balance, err := svc.GetTokenBalance(ctx, "user1")
	require.NoError(t, err)
	assert.Zero(t, balance)
	assertReconciles(t, svc, st, "user1")
}

func TestJournalFailureDoesNotFailOperation(t *testing.T) {
	journal := &mockJournal{}
	journal.On("Post", mock.Anything, mock.Anything).Return(errors.New("ledger unavailable"))
	svc, _, _ := newTestService(t, WithJournal(journal))

	acct := subscribed(t, svc, "user1", "starter")
	assert.Equal(t, int64(15000), acct.Wallet.TotalTokens)
	journal.AssertNumberOfCalls(t, "Post", 1)
}

func TestQueries_WithoutAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	balance, err := svc.GetTokenBalance(ctx, "ghost")
	require.NoError(t, err)
	assert.Zero(t, balance)

	history, err := svc.GetTransactionHistory(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, history)

	ok, err := svc.CanAfford(ctx, "ghost", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanAfford(ctx, "ghost", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.GetAccount(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoSubscription)

	calc, err := svc.CalculateTokenCost(ctx, "ghost", models.CampaignParams{CreativeAssets: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), calc.FreeCreativesApplied)
}

func TestCanAfford(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	subscribed(t, svc, "user1", "starter")

	ok, err := svc.CanAfford(ctx, "user1", 15000)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanAfford(ctx, "user1", 15001)
	require.NoError(t, err)
	assert.False(t, ok)
}
