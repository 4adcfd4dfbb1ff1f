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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseReceipt is returned by an a-la-carte token purchase
type PurchaseReceipt struct {
	Transaction TokenTransaction `json:"transaction"`
	Cost        decimal.Decimal  `json:"cost"`
	Wallet      Wallet           `json:"wallet"`
}

// WalletSummary is the read model for a user's wallet and cycle state
type WalletSummary struct {
	UserId                   string             `json:"user_id"`
	PlanId                   string             `json:"plan_id"`
	PlanName                 string             `json:"plan_name"`
	Status                   SubscriptionStatus `json:"status"`
	TotalTokens              int64              `json:"total_tokens"`
	MediaTokens              int64              `json:"media_tokens"`
	CreativeTokens           int64              `json:"creative_tokens"`
	TokensUsedThisCycle      int64              `json:"tokens_used_this_cycle"`
	TokensRemainingThisCycle int64              `json:"tokens_remaining_this_cycle"`
	FreeCreativesRemaining   int64              `json:"free_creatives_remaining"`
	NextBillingDate          time.Time          `json:"next_billing_date"`
	LastUpdated              time.Time          `json:"last_updated"`
}

// TransactionRecord represents a transaction in the user's history
type TransactionRecord struct {
	Id          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Category    TokenCategory   `json:"category"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	CampaignId  string          `json:"campaign_id,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}
