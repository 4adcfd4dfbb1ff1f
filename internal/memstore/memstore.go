/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

// Compile-time check: *Store must satisfy store.AccountStore.
var _ store.AccountStore = (*Store)(nil)

// Store is a session-scoped backend. State lives for the life of the process.
type Store struct {
	mu sync.RWMutex

	users    map[string]models.User
	accounts map[string]*models.Account
	orders   map[string]*models.CampaignOrder

	// every transaction id ever written, across wallet generations
	txIds map[string]struct{}
}

func New() *Store {
	zap.L().Info("Using in-memory account store")
	return &Store{
		users:    make(map[string]models.User),
		accounts: make(map[string]*models.Account),
		orders:   make(map[string]*models.CampaignOrder),
		txIds:    make(map[string]struct{}),
	}
}

func (s *Store) Close() {}

// --- Users ---

func (s *Store) GetUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, s.withPlan(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Id < users[j].Id
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Store) GetUserById(_ context.Context, userId string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
	}
	u = s.withPlan(u)
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.userByEmail(normalizeEmail(email))
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, email)
	}
	u = s.withPlan(u)
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, userId, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if userId == "" || name == "" || email == "" {
		return nil, fmt.Errorf("user id, name and email are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[userId]
	if !ok {
		existing, ok = s.userByEmail(email)
	}
	if ok {
		existing = s.withPlan(existing)
		if existing.HasAccount() {
			return nil, fmt.Errorf("%w: %s (%s) is subscribed to %s", store.ErrUserExists, existing.Email, existing.Id, existing.PlanId)
		}
		return nil, fmt.Errorf("%w: %s (%s) has no subscription", store.ErrUserExists, existing.Email, existing.Id)
	}

	now := time.Now()
	u := models.User{Id: userId, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	s.users[userId] = u
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// callers hold s.mu
func (s *Store) userByEmail(email string) (models.User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

// callers hold s.mu
func (s *Store) withPlan(u models.User) models.User {
	u.PlanId = ""
	if acct, ok := s.accounts[u.Id]; ok {
		u.PlanId = acct.Subscription.PlanId
	}
	return u
}

// --- Accounts ---

func (s *Store) GetAccount(_ context.Context, userId string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[userId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, userId)
	}
	return acct.Clone(), nil
}

func (s *Store) ListAccounts(_ context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		a := *acct
		a.Wallet.Transactions = nil
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UserId < accounts[j].UserId })
	return accounts, nil
}

func (s *Store) SaveAccount(_ context.Context, params store.SaveAccountParams) error {
	if params.Account == nil {
		return fmt.Errorf("account cannot be nil")
	}
	userId := params.Account.UserId

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.accounts[userId]
	switch {
	case params.ExpectedVersion == 0 && exists:
		return fmt.Errorf("account %s already exists - %w", userId, store.ErrConcurrentModification)
	case params.ExpectedVersion > 0 && (!exists || existing.Version != params.ExpectedVersion):
		return fmt.Errorf("account %s version changed - %w", userId, store.ErrConcurrentModification)
	}

	seen := make(map[string]struct{}, len(params.Transactions))
	for _, tx := range params.Transactions {
		_, dup := s.txIds[tx.Id]
		if _, inBatch := seen[tx.Id]; dup || inBatch {
			return fmt.Errorf("%w: transaction %s already exists", store.ErrDuplicateTransaction, tx.Id)
		}
		seen[tx.Id] = struct{}{}
	}
	if params.Order != nil {
		if _, ok := s.orders[params.Order.Id]; ok {
			return fmt.Errorf("campaign order %s already exists", params.Order.Id)
		}
	}

	next := params.Account.Clone()
	next.Version = params.ExpectedVersion + 1
	next.Wallet.Transactions = nil
	if exists && !params.NewWallet {
		next.Wallet.Transactions = existing.Clone().Wallet.Transactions
	}
	for _, tx := range params.Transactions {
		next.Wallet.Transactions = append(next.Wallet.Transactions, tx.Clone())
		s.txIds[tx.Id] = struct{}{}
	}
	if next.Wallet.Transactions == nil {
		next.Wallet.Transactions = []models.TokenTransaction{}
	}

	s.accounts[userId] = next
	if params.Order != nil {
		s.orders[params.Order.Id] = params.Order.Clone()
	}
	params.Account.Version = next.Version

	zap.L().Debug("Account saved",
		zap.String("user_id", userId),
		zap.Int64("version", next.Version),
		zap.Int("transactions_appended", len(params.Transactions)))
	return nil
}

// --- Transactions ---

// GetTransactionHistory returns the current wallet's transactions, most recent first.
// A non-positive limit returns everything after offset.
func (s *Store) GetTransactionHistory(_ context.Context, userId string, limit, offset int) ([]models.TokenTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[userId]
	if !ok {
		return []models.TokenTransaction{}, nil
	}

	txs := acct.Wallet.Transactions
	history := make([]models.TokenTransaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		history = append(history, txs[i].Clone())
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(history) {
		return []models.TokenTransaction{}, nil
	}
	history = history[offset:]
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	return history, nil
}

// ReconcileWallet verifies that the wallet total matches the sum of its transactions
func (s *Store) ReconcileWallet(_ context.Context, userId string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[userId]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrAccountNotFound, userId)
	}

	var calculated int64
	for _, tx := range acct.Wallet.Transactions {
		calculated += tx.Amount
	}
	if calculated != acct.Wallet.TotalTokens {
		zap.L().Error("Wallet reconciliation failed",
			zap.String("user_id", userId),
			zap.Int64("current_balance", acct.Wallet.TotalTokens),
			zap.Int64("calculated_balance", calculated))
		return fmt.Errorf("balance mismatch: current=%d, calculated=%d", acct.Wallet.TotalTokens, calculated)
	}
	return nil
}

// --- Orders ---

func (s *Store) GetOrder(_ context.Context, orderId string) (*models.CampaignOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderId)
	}
	return o.Clone(), nil
}

// ListOrders returns a user's orders, newest first
func (s *Store) ListOrders(_ context.Context, userId string) ([]models.CampaignOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.CampaignOrder{}
	for _, o := range s.orders {
		if o.UserId == userId {
			orders = append(orders, *o.Clone())
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].Id > orders[j].Id
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Store) UpdateOrder(_ context.Context, order *models.CampaignOrder) error {
	if order == nil {
		return fmt.Errorf("order cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.Id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrOrderNotFound, order.Id)
	}
	s.orders[order.Id] = order.Clone()
	return nil
}
