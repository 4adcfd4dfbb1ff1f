package store

import (
	"context"
	"errors"

	"ad-token-ledger/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrOrderNotFound          = errors.New("campaign order not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user already exists")
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// SaveAccountParams describes one atomic account mutation.
type SaveAccountParams struct {
	// Account is the new state. Its Wallet.Transactions are ignored; only
	// Transactions below are appended.
	Account *models.Account

	// ExpectedVersion is the version the caller read. Zero means the account
	// must not exist yet.
	ExpectedVersion int64

	// NewWallet marks a wallet generation change (subscribe, renewal). The
	// previous generation's transactions stay in storage but drop out of the
	// account's history.
	NewWallet bool

	// Transactions are appended to the ledger in order.
	Transactions []models.TokenTransaction

	// Order is an optional campaign order created by the same mutation.
	Order *models.CampaignOrder
}

// AccountStore defines the contract that every backend (SQLite, in-memory) must satisfy.
type AccountStore interface {
	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, userId, name, email string) (*models.User, error)

	// --- Accounts ---
	GetAccount(ctx context.Context, userId string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	SaveAccount(ctx context.Context, params SaveAccountParams) error

	// --- Transactions ---
	GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.TokenTransaction, error)
	ReconcileWallet(ctx context.Context, userId string) error

	// --- Orders ---
	GetOrder(ctx context.Context, orderId string) (*models.CampaignOrder, error)
	ListOrders(ctx context.Context, userId string) ([]models.CampaignOrder, error)
	UpdateOrder(ctx context.Context, order *models.CampaignOrder) error

	// --- Lifecycle ---
	Close()
}
