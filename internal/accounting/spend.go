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

	"ad-token-ledger/internal/ledger"
	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"
	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

// CalculateTokenCost prices a campaign against the user's remaining free
// creatives. Users without an account get the full free allowance.
func (s *Service) CalculateTokenCost(ctx context.Context, userId string, params models.CampaignParams) (*models.TokenSpendCalculation, error) {
	var freeCreativesUsed int64
	acct, err := s.store.GetAccount(ctx, userId)
	switch {
	case err == nil:
		freeCreativesUsed = acct.Subscription.FreeCreativesUsed
	case !errors.Is(err, store.ErrAccountNotFound):
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	calc, err := pricing.CalculateTokenCost(params, freeCreativesUsed)
	if err != nil {
		zap.L().Error("Token cost calculation failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}
	return calc, nil
}

// CanAfford reports whether the wallet holds at least cost tokens
func (s *Service) CanAfford(ctx context.Context, userId string, cost int64) (bool, error) {
	balance, err := s.GetTokenBalance(ctx, userId)
	if err != nil {
		return false, err
	}
	return balance >= cost, nil
}

// SpendTokens debits a campaign's tokens and opens a pending campaign order.
// On failure nothing is written.
func (s *Service) SpendTokens(ctx context.Context, userId string, calc models.TokenSpendCalculation, campaignId string) (*models.CampaignOrder, error) {
	if campaignId == "" {
		err := fmt.Errorf("%w: campaign id cannot be empty", ErrInvalidArgument)
		zap.L().Error("Token spend failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}
	if err := ledger.ValidateCalculation(calc); err != nil {
		zap.L().Error("Token spend failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	unlock := s.locks.Lock(userId)
	defer unlock()

	acct, err := s.loadAccount(ctx, userId)
	if err != nil {
		zap.L().Error("Token spend failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	now := s.now()
	next := acct.Clone()
	if err := ledger.Debit(&next.Wallet, calc, now); err != nil {
		zap.L().Warn("Token spend rejected",
			zap.String("user_id", userId),
			zap.String("campaign_id", campaignId),
			zap.Int64("required", calc.TotalTokens),
			zap.Int64("available", acct.Wallet.TotalTokens),
			zap.Error(err))
		return nil, err
	}
	if err := ledger.RecordSpend(&next.Subscription, calc.TotalTokens, calc.FreeCreativesApplied); err != nil {
		return nil, err
	}

	tx := ledger.Append(&next.Wallet, models.TokenTransaction{
		Id:          s.newId(),
		Type:        models.TransactionSpent,
		Category:    models.CategoryMedia,
		Amount:      -calc.TotalTokens,
		Description: "Campaign Launch: " + campaignId,
		CampaignId:  campaignId,
		Timestamp:   now,
		Metadata:    spendMetadata(calc),
	})

	order := &models.CampaignOrder{
		Id:          s.newId(),
		UserId:      userId,
		CampaignId:  campaignId,
		TokensSpent: calc.Clone(),
		Status:      models.OrderPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.SaveAccount(ctx, store.SaveAccountParams{
		Account:         next,
		ExpectedVersion: acct.Version,
		Transactions:    []models.TokenTransaction{tx},
		Order:           order,
	})
	if err != nil {
		zap.L().Error("Token spend failed", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.mirror(ctx, models.JournalPosting{
		Reference:      tx.Id,
		Kind:           models.PostingSpend,
		UserId:         userId,
		WalletId:       next.Wallet.Id,
		CampaignId:     campaignId,
		MediaTokens:    acct.Wallet.MediaTokens - next.Wallet.MediaTokens,
		CreativeTokens: acct.Wallet.CreativeTokens - next.Wallet.CreativeTokens,
		Description:    tx.Description,
		Timestamp:      now,
	})

	zap.L().Info("Tokens spent",
		zap.String("user_id", userId),
		zap.String("campaign_id", campaignId),
		zap.String("order_id", order.Id),
		zap.Int64("tokens", calc.TotalTokens),
		zap.Int64("total_tokens", next.Wallet.TotalTokens))
	return order.Clone(), nil
}

func spendMetadata(calc models.TokenSpendCalculation) *models.TransactionMetadata {
	meta := &models.TransactionMetadata{
		Media: &models.MediaMetadata{
			Impressions:   calc.EstimatedImpressions,
			CpmEquivalent: pricing.DefaultCPM,
			MediaSpend:    calc.EstimatedMediaSpend,
		},
	}
	if calc.CreativeAssets > 0 || calc.AbVariants > 0 {
		meta.Creative = &models.CreativeMetadata{
			Assets:   calc.CreativeAssets,
			Variants: calc.AbVariants,
		}
	}
	return meta
}
