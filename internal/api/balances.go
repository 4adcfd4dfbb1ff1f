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

package api

import (
	"context"
	"errors"
	"fmt"

	"ad-token-ledger/internal/accounting"
	"ad-token-ledger/internal/ledger"
	"ad-token-ledger/internal/models"

	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GetWalletSummary returns the user's balances alongside their billing cycle usage
func (s *LedgerService) GetWalletSummary(ctx context.Context, userId string) (*models.WalletSummary, error) {
	if userId == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	acct, err := s.accounts.GetAccount(ctx, userId)
	if err != nil {
		if errors.Is(err, accounting.ErrNoSubscription) {
			return nil, err
		}
		zap.L().Error("Failed to get wallet summary", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve wallet")
	}

	planName := acct.Subscription.PlanId
	if plan, err := s.accounts.Catalog().Get(acct.Subscription.PlanId); err == nil {
		planName = plan.Name
	}

	return &models.WalletSummary{
		UserId:                   userId,
		PlanId:                   acct.Subscription.PlanId,
		PlanName:                 planName,
		Status:                   acct.Subscription.Status,
		TotalTokens:              acct.Wallet.TotalTokens,
		MediaTokens:              acct.Wallet.MediaTokens,
		CreativeTokens:           acct.Wallet.CreativeTokens,
		TokensUsedThisCycle:      acct.Subscription.TokensUsedThisCycle,
		TokensRemainingThisCycle: acct.Subscription.TokensRemainingThisCycle,
		FreeCreativesRemaining:   ledger.FreeCreativesRemaining(acct.Subscription),
		NextBillingDate:          acct.Subscription.NextBillingDate,
		LastUpdated:              acct.Wallet.LastUpdated,
	}, nil
}

// GetTransactionHistory returns paginated transaction history for a user, most recent first
func (s *LedgerService) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.TransactionRecord, error) {
	if userId == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.store.GetTransactionHistory(ctx, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history")
	}

	result := make([]models.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		result[i] = models.TransactionRecord{
			Id:          tx.Id,
			Type:        tx.Type,
			Category:    tx.Category,
			Amount:      tx.Amount,
			Description: tx.Description,
			CampaignId:  tx.CampaignId,
			Timestamp:   tx.Timestamp,
		}
	}

	return result, nil
}
