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

	"go.uber.org/zap"
)

// RenewDue starts a new billing cycle for every active subscription whose
// period has ended, applying any pending plan change. Cancelled subscriptions
// are left alone. Returns the number of renewed accounts; per-account
// failures are joined into the returned error.
func (s *Service) RenewDue(ctx context.Context) (int, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	now := s.now()
	renewed := 0
	var errs []error
	for _, acct := range accounts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !renewable(acct.Subscription) || !acct.Subscription.IsDue(now) {
			continue
		}

		ok, err := s.renew(ctx, acct.UserId)
		if err != nil {
			zap.L().Error("Renewal failed", zap.String("user_id", acct.UserId), zap.Error(err))
			errs = append(errs, fmt.Errorf("user %s: %w", acct.UserId, err))
			continue
		}
		if ok {
			renewed++
		}
	}

	zap.L().Info("Renewal run complete", zap.Int("accounts", len(accounts)), zap.Int("renewed", renewed))
	return renewed, errors.Join(errs...)
}

func renewable(sub models.Subscription) bool {
	return sub.Status == models.SubscriptionActive || sub.Status == models.SubscriptionPastDue
}

func (s *Service) renew(ctx context.Context, userId string) (bool, error) {
	unlock := s.locks.Lock(userId)
	defer unlock()

	// re-check under the lock; another caller may have renewed already
	acct, err := s.loadAccount(ctx, userId)
	if err != nil {
		return false, err
	}
	if !renewable(acct.Subscription) || !acct.Subscription.IsDue(s.now()) {
		return false, nil
	}

	planId := acct.Subscription.PlanId
	if acct.Subscription.PendingPlanChange != "" {
		planId = acct.Subscription.PendingPlanChange
	}
	plan, err := s.catalog.Get(planId)
	if err != nil {
		return false, err
	}

	next, err := s.startCycle(ctx, userId, plan, acct)
	if err != nil {
		return false, err
	}

	zap.L().Info("Subscription renewed",
		zap.String("user_id", userId),
		zap.String("previous_plan", acct.Subscription.PlanId),
		zap.String("plan_id", next.Subscription.PlanId),
		zap.Int64("forfeited_tokens", acct.Wallet.TotalTokens),
		zap.Time("next_billing_date", next.Subscription.NextBillingDate))
	return true, nil
}
