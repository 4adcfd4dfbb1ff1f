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

package accounting

import (
	"context"
	"errors"
	"fmt"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"
)

// GetAccount returns a fresh copy of the user's subscription and wallet
func (s *Service) GetAccount(ctx context.Context, userId string) (*models.Account, error) {
	return s.loadAccount(ctx, userId)
}

// GetTokenBalance returns the wallet total, or zero when the user has no account
func (s *Service) GetTokenBalance(ctx context.Context, userId string) (int64, error) {
	acct, err := s.store.GetAccount(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load account: %w", err)
	}
	return acct.Wallet.TotalTokens, nil
}

// GetTransactionHistory returns the current wallet's transactions in insertion order
func (s *Service) GetTransactionHistory(ctx context.Context, userId string) ([]models.TokenTransaction, error) {
	acct, err := s.store.GetAccount(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return []models.TokenTransaction{}, nil
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return acct.Wallet.Transactions, nil
}

// ListOrders returns the user's campaign orders, newest first
func (s *Service) ListOrders(ctx context.Context, userId string) ([]models.CampaignOrder, error) {
	return s.store.ListOrders(ctx, userId)
}
