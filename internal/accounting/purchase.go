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
	"fmt"

	"ad-token-ledger/internal/ledger"
	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"
	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

// PurchaseTokens credits amount tokens à la carte. The cost is informational;
// no payment is taken.
func (s *Service) PurchaseTokens(ctx context.Context, userId string, amount int64) (*models.PurchaseReceipt, error) {
	if amount <= 0 {
		err := fmt.Errorf("%w: token amount must be positive, got %d", ErrInvalidArgument, amount)
		zap.L().Error("Token purchase failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	unlock := s.locks.Lock(userId)
	defer unlock()

	acct, err := s.loadAccount(ctx, userId)
	if err != nil {
		zap.L().Error("Token purchase failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	plan, err := s.catalog.Get(acct.Subscription.PlanId)
	if err != nil {
		zap.L().Error("Token purchase failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}
	cost := pricing.PurchaseCost(amount, plan)

	now := s.now()
	next := acct.Clone()
	if err := ledger.Credit(&next.Wallet, amount, now); err != nil {
		return nil, err
	}
	if err := ledger.RecordPurchase(&next.Subscription, amount); err != nil {
		return nil, err
	}
	tx := ledger.Append(&next.Wallet, models.TokenTransaction{
		Id:          s.newId(),
		Type:        models.TransactionPurchased,
		Category:    models.CategoryMedia,
		Amount:      amount,
		Description: fmt.Sprintf("Token Pack Purchase - %s tokens ($%s)", pricing.FormatTokens(amount), cost.StringFixed(2)),
		Timestamp:   now,
	})

	err = s.store.SaveAccount(ctx, store.SaveAccountParams{
		Account:         next,
		ExpectedVersion: acct.Version,
		Transactions:    []models.TokenTransaction{tx},
	})
	if err != nil {
		zap.L().Error("Token purchase failed", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.mirror(ctx, models.JournalPosting{
		Reference:      tx.Id,
		Kind:           models.PostingCredit,
		UserId:         userId,
		WalletId:       next.Wallet.Id,
		MediaTokens:    next.Wallet.MediaTokens - acct.Wallet.MediaTokens,
		CreativeTokens: next.Wallet.CreativeTokens - acct.Wallet.CreativeTokens,
		Description:    tx.Description,
		Timestamp:      now,
	})

	zap.L().Info("Tokens purchased",
		zap.String("user_id", userId),
		zap.Int64("amount", amount),
		zap.String("cost", cost.StringFixed(2)),
		zap.Int64("total_tokens", next.Wallet.TotalTokens))

	return &models.PurchaseReceipt{
		Transaction: tx,
		Cost:        cost,
		Wallet:      next.Wallet,
	}, nil
}
