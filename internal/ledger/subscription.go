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

package ledger

import (
	"fmt"
	"time"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"
)

// NewCycle starts a fresh billing cycle on the given plan
func NewCycle(userId string, plan models.SubscriptionPlan, now time.Time, cycle time.Duration) models.Subscription {
	end := now.Add(cycle)
	return models.Subscription{
		UserId:                   userId,
		PlanId:                   plan.Id,
		Status:                   models.SubscriptionActive,
		CurrentPeriodStart:       now,
		CurrentPeriodEnd:         end,
		TokensUsedThisCycle:      0,
		TokensRemainingThisCycle: plan.TokensIncluded,
		FreeCreativesUsed:        0,
		NextBillingDate:          end,
	}
}

// RecordSpend moves tokens from the remaining pool to the used counter.
// Remaining is clamped at zero.
func RecordSpend(s *models.Subscription, tokens, freeCreatives int64) error {
	if tokens < 0 || freeCreatives < 0 {
		return fmt.Errorf("%w: spend must be non-negative", ErrInvalidArgument)
	}
	s.TokensUsedThisCycle += tokens
	s.TokensRemainingThisCycle = max(0, s.TokensRemainingThisCycle-tokens)
	s.FreeCreativesUsed += freeCreatives
	return nil
}

// RecordPurchase grows the remaining pool by out-of-cycle purchased tokens
func RecordPurchase(s *models.Subscription, tokens int64) error {
	if tokens <= 0 {
		return fmt.Errorf("%w: token amount must be positive, got %d", ErrInvalidArgument, tokens)
	}
	s.TokensRemainingThisCycle += tokens
	return nil
}

// FreeCreativesRemaining returns the free creative assets left this cycle
func FreeCreativesRemaining(s models.Subscription) int64 {
	return max(0, pricing.FreeCreativeLimit-s.FreeCreativesUsed)
}
