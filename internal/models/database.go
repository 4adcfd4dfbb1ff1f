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

import "time"

// User represents an account holder in the identity directory
type User struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// PlanId is the plan of the user's current subscription, empty for
	// users that never subscribed
	PlanId string `db:"plan_id"`
}

// HasAccount reports whether the user holds a token wallet
func (u User) HasAccount() bool {
	return u.PlanId != ""
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionTrialing  SubscriptionStatus = "trialing"
)

// Subscription tracks the selected plan and the current billing cycle counters
type Subscription struct {
	UserId                   string             `db:"user_id"`
	PlanId                   string             `db:"plan_id"`
	Status                   SubscriptionStatus `db:"status"`
	CurrentPeriodStart       time.Time          `db:"current_period_start"`
	CurrentPeriodEnd         time.Time          `db:"current_period_end"`
	TokensUsedThisCycle      int64              `db:"tokens_used"`
	TokensRemainingThisCycle int64              `db:"tokens_remaining"`
	FreeCreativesUsed        int64              `db:"free_creatives_used"`
	NextBillingDate          time.Time          `db:"next_billing_date"`
	PendingPlanChange        string             `db:"pending_plan_change"`
}

// IsDue reports whether the billing period has ended at now
func (s Subscription) IsDue(now time.Time) bool {
	return !now.Before(s.CurrentPeriodEnd)
}

// Wallet holds the token balances of one wallet generation.
// TotalTokens always equals MediaTokens + CreativeTokens.
type Wallet struct {
	Id             string             `db:"wallet_id"`
	UserId         string             `db:"user_id"`
	TotalTokens    int64              `db:"total_tokens"`
	MediaTokens    int64              `db:"media_tokens"`
	CreativeTokens int64              `db:"creative_tokens"`
	LastUpdated    time.Time          `db:"last_updated"`
	Transactions   []TokenTransaction `db:"-"`
}

// Account is the unit of persistence: a subscription and the wallet it funds.
// Version is bumped by the store on every save.
type Account struct {
	UserId       string
	Subscription Subscription
	Wallet       Wallet
	Version      int64
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.Wallet.Transactions != nil {
		c.Wallet.Transactions = make([]TokenTransaction, len(a.Wallet.Transactions))
		for i, tx := range a.Wallet.Transactions {
			c.Wallet.Transactions[i] = tx.Clone()
		}
	}
	return &c
}
