package database

import (
	"database/sql"
	"testing"
	"time"

	"ad-token-ledger/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestDb(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	service := newService(db)

	// Use the actual schema initialization
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return service, cleanup
}

func testAccount(userId, walletId string, total int64) *models.Account {
	media := total * 4 / 5
	return &models.Account{
		UserId: userId,
		Subscription: models.Subscription{
			UserId:                   userId,
			PlanId:                   "growth",
			Status:                   models.SubscriptionActive,
			CurrentPeriodStart:       testNow,
			CurrentPeriodEnd:         testNow.Add(720 * time.Hour),
			TokensRemainingThisCycle: total,
			NextBillingDate:          testNow.Add(720 * time.Hour),
		},
		Wallet: models.Wallet{
			Id:             walletId,
			UserId:         userId,
			TotalTokens:    total,
			MediaTokens:    media,
			CreativeTokens: total - media,
			LastUpdated:    testNow,
		},
	}
}

func testTransaction(id string, txType models.TransactionType, amount, balanceAfter int64) models.TokenTransaction {
	return models.TokenTransaction{
		Id:           id,
		Type:         txType,
		Category:     models.CategoryMedia,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  "test " + id,
		Timestamp:    testNow,
	}
}

func spendTransaction(id, campaignId string, tokens, balanceAfter int64) models.TokenTransaction {
	tx := testTransaction(id, models.TransactionSpent, -tokens, balanceAfter)
	tx.CampaignId = campaignId
	tx.Metadata = &models.TransactionMetadata{
		Media: &models.MediaMetadata{
			Impressions:   tokens,
			CpmEquivalent: decimal.NewFromInt(10),
			MediaSpend:    decimal.NewFromInt(tokens).Div(decimal.NewFromInt(100)),
		},
	}
	return tx
}
