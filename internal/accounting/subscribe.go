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
	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

// Subscribe puts the user on planId with a fresh billing cycle and a freshly
// seeded wallet. Any unspent balance of the previous wallet is forfeited.
func (s *Service) Subscribe(ctx context.Context, userId, planId string) (*models.Account, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user id cannot be empty", ErrInvalidArgument)
	}

	plan, err := s.catalog.Get(planId)
	if err != nil {
		zap.L().Error("Subscribe failed", zap.String("user_id", userId), zap.String("plan_id", planId), zap.Error(err))
		return nil, err
	}

	unlock := s.locks.Lock(userId)
	defer unlock()

	prev, err := s.store.GetAccount(ctx, userId)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		zap.L().Error("Subscribe failed", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	account, err := s.startCycle(ctx, userId, plan, prev)
	if err != nil {
		zap.L().Error("Subscribe failed", zap.String("user_id", userId), zap.String("plan_id", planId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("Subscribed to plan",
		zap.String("user_id", userId),
		zap.String("plan_id", plan.Id),
		zap.Int64("tokens_included", plan.TokensIncluded),
		zap.Time("next_billing_date", account.Subscription.NextBillingDate))
	return account, nil
}

// startCycle replaces prev (nil for a new account) with a new wallet generation
// funded by the plan's allotment. Callers hold the user lock.
func (s *Service) startCycle(ctx context.Context, userId string, plan models.SubscriptionPlan, prev *models.Account) (*models.Account, error) {
	now := s.now()
	account := &models.Account{
		UserId:       userId,
		Subscription: ledger.NewCycle(userId, plan, now, s.cycle),
		Wallet:       ledger.NewWallet(s.newId(), userId, plan.TokensIncluded, now),
	}

	var txs []models.TokenTransaction
	if plan.TokensIncluded > 0 {
		tx := ledger.Append(&account.Wallet, models.TokenTransaction{
			Id:          s.newId(),
			Type:        models.TransactionEarned,
			Category:    models.CategorySubscription,
			Amount:      plan.TokensIncluded,
			Description: fmt.Sprintf("Monthly token allocation - %s Plan", plan.Name),
			Timestamp:   now,
		})
		txs = append(txs, tx)
	}

	var expectedVersion int64
	if prev != nil {
		expectedVersion = prev.Version
		if prev.Wallet.TotalTokens > 0 {
			zap.L().Warn("Unspent tokens forfeited by new billing cycle",
				zap.String("user_id", userId),
				zap.String("wallet_id", prev.Wallet.Id),
				zap.Int64("tokens", prev.Wallet.TotalTokens))
		}
	}

	err := s.store.SaveAccount(ctx, store.SaveAccountParams{
		Account:         account,
		ExpectedVersion: expectedVersion,
		NewWallet:       true,
		Transactions:    txs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	if prev != nil && prev.Wallet.TotalTokens > 0 {
		s.mirror(ctx, models.JournalPosting{
			Reference:      "forfeit-" + prev.Wallet.Id,
			Kind:           models.PostingForfeit,
			UserId:         userId,
			WalletId:       prev.Wallet.Id,
			MediaTokens:    prev.Wallet.MediaTokens,
			CreativeTokens: prev.Wallet.CreativeTokens,
			Description:    "Unspent tokens forfeited",
			Timestamp:      now,
		})
	}
	for _, tx := range txs {
		s.mirror(ctx, models.JournalPosting{
			Reference:      tx.Id,
			Kind:           models.PostingCredit,
			UserId:         userId,
			WalletId:       account.Wallet.Id,
			MediaTokens:    account.Wallet.MediaTokens,
			CreativeTokens: account.Wallet.CreativeTokens,
			Description:    tx.Description,
			Timestamp:      now,
		})
	}

	return account.Clone(), nil
}

// CancelSubscription stops renewals. The wallet stays spendable until the
// period ends.
func (s *Service) CancelSubscription(ctx context.Context, userId string) (*models.Account, error) {
	return s.updateSubscription(ctx, userId, func(sub *models.Subscription) error {
		if sub.Status == models.SubscriptionCancelled {
			return nil
		}
		sub.Status = models.SubscriptionCancelled
		sub.PendingPlanChange = ""
		return nil
	})
}

// SchedulePlanChange switches the user to planId at the next renewal
func (s *Service) SchedulePlanChange(ctx context.Context, userId, planId string) (*models.Account, error) {
	if _, err := s.catalog.Get(planId); err != nil {
		zap.L().Error("Plan change failed", zap.String("user_id", userId), zap.String("plan_id", planId), zap.Error(err))
		return nil, err
	}
	return s.updateSubscription(ctx, userId, func(sub *models.Subscription) error {
		if sub.Status == models.SubscriptionCancelled {
			return fmt.Errorf("%w: subscription is cancelled", ErrInvalidArgument)
		}
		if sub.PlanId == planId {
			sub.PendingPlanChange = ""
		} else {
			sub.PendingPlanChange = planId
		}
		return nil
	})
}

func (s *Service) updateSubscription(ctx context.Context, userId string, mutate func(*models.Subscription) error) (*models.Account, error) {
	unlock := s.locks.Lock(userId)
	defer unlock()

	acct, err := s.loadAccount(ctx, userId)
	if err != nil {
		zap.L().Error("Subscription update failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	next := acct.Clone()
	if err := mutate(&next.Subscription); err != nil {
		zap.L().Error("Subscription update failed", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	if err := s.store.SaveAccount(ctx, store.SaveAccountParams{Account: next, ExpectedVersion: acct.Version}); err != nil {
		zap.L().Error("Subscription update failed", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	zap.L().Info("Subscription updated",
		zap.String("user_id", userId),
		zap.String("status", string(next.Subscription.Status)),
		zap.String("pending_plan_change", next.Subscription.PendingPlanChange))
	return next, nil
}
