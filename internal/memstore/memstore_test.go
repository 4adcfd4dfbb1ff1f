package memstore

import (
	"context"
	"testing"
	"time"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newAccount(userId string, total int64) *models.Account {
	return &models.Account{
		UserId: userId,
		Subscription: models.Subscription{
			UserId:                   userId,
			PlanId:                   "growth",
			Status:                   models.SubscriptionActive,
			TokensRemainingThisCycle: total,
		},
		Wallet: models.Wallet{
			Id:             "wallet-" + userId,
			UserId:         userId,
			TotalTokens:    total,
			MediaTokens:    total * 4 / 5,
			CreativeTokens: total - total*4/5,
			LastUpdated:    testNow,
		},
	}
}

func earned(id string, amount int64) models.TokenTransaction {
	return models.TokenTransaction{
		Id:        id,
		Type:      models.TransactionEarned,
		Category:  models.CategorySubscription,
		Amount:    amount,
		Timestamp: testNow,
	}
}

func TestSaveAccount_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	acct := newAccount("user1", 27500)
	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{
		Account:      acct,
		NewWallet:    true,
		Transactions: []models.TokenTransaction{earned("tx1", 27500)},
	}))
	assert.Equal(t, int64(1), acct.Version)

	got, err := s.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, int64(27500), got.Wallet.TotalTokens)
	require.Len(t, got.Wallet.Transactions, 1)
	assert.Equal(t, "tx1", got.Wallet.Transactions[0].Id)

	// reads are copies
	got.Wallet.TotalTokens = 0
	again, err := s.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(27500), again.Wallet.TotalTokens)
}

func TestSaveAccount_OptimisticLocking(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{Account: newAccount("user1", 100)}))

	err := s.SaveAccount(ctx, store.SaveAccountParams{Account: newAccount("user1", 100)})
	assert.ErrorIs(t, err, store.ErrConcurrentModification)

	err = s.SaveAccount(ctx, store.SaveAccountParams{Account: newAccount("user1", 100), ExpectedVersion: 5})
	assert.ErrorIs(t, err, store.ErrConcurrentModification)

	err = s.SaveAccount(ctx, store.SaveAccountParams{Account: newAccount("user2", 100), ExpectedVersion: 1})
	assert.ErrorIs(t, err, store.ErrConcurrentModification)

	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{Account: newAccount("user1", 200), ExpectedVersion: 1}))
	got, err := s.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestSaveAccount_DuplicateTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{
		Account:      newAccount("user1", 100),
		Transactions: []models.TokenTransaction{earned("tx1", 100)},
	}))

	err := s.SaveAccount(ctx, store.SaveAccountParams{
		Account:         newAccount("user1", 200),
		ExpectedVersion: 1,
		Transactions:    []models.TokenTransaction{earned("tx1", 100)},
	})
	assert.ErrorIs(t, err, store.ErrDuplicateTransaction)

	got, err := s.GetAccount(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Wallet.TotalTokens)
	assert.Equal(t, int64(1), got.Version)
}

func TestSaveAccount_NewWalletDropsHistory(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{
		Account:      newAccount("user1", 100),
		Transactions: []models.TokenTransaction{earned("tx1", 100)},
	}))
	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{
		Account:         newAccount("user1", 500),
		ExpectedVersion: 1,
		NewWallet:       true,
		Transactions:    []models.TokenTransaction{earned("tx2", 500)},
	}))

	got, err := s.GetAccount(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, got.Wallet.Transactions, 1)
	assert.Equal(t, "tx2", got.Wallet.Transactions[0].Id)
	assert.NoError(t, s.ReconcileWallet(ctx, "user1"))

	// ids of replaced generations stay reserved
	err = s.SaveAccount(ctx, store.SaveAccountParams{
		Account:         newAccount("user1", 600),
		ExpectedVersion: 2,
		Transactions:    []models.TokenTransaction{earned("tx1", 100)},
	})
	assert.ErrorIs(t, err, store.ErrDuplicateTransaction)
}

func TestGetTransactionHistory_Paging(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{
		Account: newAccount("user1", 60),
		Transactions: []models.TokenTransaction{
			earned("tx1", 10), earned("tx2", 20), earned("tx3", 30),
		},
	}))

	history, err := s.GetTransactionHistory(ctx, "user1", 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "tx3", history[0].Id)
	assert.Equal(t, "tx2", history[1].Id)

	history, err = s.GetTransactionHistory(ctx, "user1", 2, 2)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "tx1", history[0].Id)

	history, err = s.GetTransactionHistory(ctx, "user1", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, history)

	history, err = s.GetTransactionHistory(ctx, "nobody", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReconcileWallet_Mismatch(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{
		Account:      newAccount("user1", 100),
		Transactions: []models.TokenTransaction{earned("tx1", 90)},
	}))

	assert.Error(t, s.ReconcileWallet(ctx, "user1"))
	assert.ErrorIs(t, s.ReconcileWallet(ctx, "nobody"), store.ErrAccountNotFound)
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s := New()

	order := &models.CampaignOrder{
		Id:         "order1",
		UserId:     "user1",
		CampaignId: "camp1",
		Status:     models.OrderPending,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{Account: newAccount("user1", 100), Order: order}))

	got, err := s.GetOrder(ctx, "order1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.Status)

	got.Status = models.OrderProcessing
	require.NoError(t, s.UpdateOrder(ctx, got))

	orders, err := s.ListOrders(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderProcessing, orders[0].Status)

	_, err = s.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
	assert.ErrorIs(t, s.UpdateOrder(ctx, &models.CampaignOrder{Id: "missing"}), store.ErrOrderNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateUser(ctx, "u1", "Alice", "alice@example.com")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "u2", "Alice Again", "alice@example.com")
	assert.ErrorIs(t, err, store.ErrUserExists)

	u, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.Id)

	_, err = s.GetUserById(ctx, "u2")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	users, err := s.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUsers_ReportsExistingSubscription(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateUser(ctx, "u1", " Bob ", "Bob@Example.com ")
	require.NoError(t, err)

	u, err := s.GetUserByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.False(t, u.HasAccount())

	_, err = s.CreateUser(ctx, "u2", "Bob Again", "bob@example.com")
	assert.ErrorIs(t, err, store.ErrUserExists)
	assert.Contains(t, err.Error(), "has no subscription")

	require.NoError(t, s.SaveAccount(ctx, store.SaveAccountParams{Account: newAccount("u1", 27500)}))

	u, err = s.GetUserById(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "growth", u.PlanId)

	_, err = s.CreateUser(ctx, "u1", "Bob Third", "other@example.com")
	assert.ErrorIs(t, err, store.ErrUserExists)
	assert.Contains(t, err.Error(), "subscribed to growth")

	_, err = s.CreateUser(ctx, "u3", "", "x@example.com")
	assert.Error(t, err)
}
