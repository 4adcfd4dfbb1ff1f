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
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignParams describes the campaign being priced. The zero value of every
// field is an explicit value; use DefaultCampaignParams for the builder defaults.
type CampaignParams struct {
	Impressions          int64 `json:"impressions"`
	HasAdvancedTargeting bool  `json:"has_advanced_targeting"`
	HasPriorityQueue     bool  `json:"has_priority_queue"`
	CreativeAssets       int64 `json:"creative_assets"`
	AbVariants           int64 `json:"ab_variants"`
}

// DefaultCampaignParams returns 1000 impressions and no add-ons
func DefaultCampaignParams() CampaignParams {
	return CampaignParams{Impressions: 1000}
}

// BreakdownItem is one priced line of a token spend calculation
type BreakdownItem struct {
	Category    TokenCategory `json:"category"`
	Label       string        `json:"label"`
	Tokens      int64         `json:"tokens"`
	Description string        `json:"description"`
}

// TokenSpendCalculation is the transient cost breakdown of a campaign
type TokenSpendCalculation struct {
	MediaTokens          int64           `json:"media_tokens"`
	CreativeTokens       int64           `json:"creative_tokens"`
	TargetingTokens      int64           `json:"targeting_tokens"`
	PriorityTokens       int64           `json:"priority_tokens"`
	TotalTokens          int64           `json:"total_tokens"`
	EstimatedImpressions int64           `json:"estimated_impressions"`
	EstimatedMediaSpend  decimal.Decimal `json:"estimated_media_spend"`
	CreativeAssets       int64           `json:"creative_assets"`
	AbVariants           int64           `json:"ab_variants"`
	FreeCreativesApplied int64           `json:"free_creatives_applied"`
	Breakdown            []BreakdownItem `json:"breakdown"`
}

// Clone returns a deep copy of the calculation
func (c TokenSpendCalculation) Clone() TokenSpendCalculation {
	c.Breakdown = slices.Clone(c.Breakdown)
	return c
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderActive     OrderStatus = "active"
	OrderCompleted  OrderStatus = "completed"
	OrderFailed     OrderStatus = "failed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderFailed},
	OrderProcessing: {OrderActive, OrderFailed},
	OrderActive:     {OrderCompleted, OrderFailed},
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return slices.Contains(orderTransitions[s], next)
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderFailed
}

// FulfillmentData is reported by the ad platforms once media is bought
type FulfillmentData struct {
	MediaSpendAllocated  decimal.Decimal `json:"media_spend_allocated"`
	ImpressionsDelivered int64           `json:"impressions_delivered"`
	PlatformsUsed        []string        `json:"platforms_used"`
	CpmAchieved          decimal.Decimal `json:"cpm_achieved"`
}

// CampaignOrder is created when tokens are spent against a campaign
type CampaignOrder struct {
	Id          string                `json:"id"`
	UserId      string                `json:"user_id"`
	CampaignId  string                `json:"campaign_id"`
	TokensSpent TokenSpendCalculation `json:"tokens_spent"`
	Status      OrderStatus           `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Fulfillment *FulfillmentData      `json:"fulfillment,omitempty"`
}

// Clone returns a deep copy of the order
func (o *CampaignOrder) Clone() *CampaignOrder {
	if o == nil {
		return nil
	}
	c := *o
	c.TokensSpent = o.TokensSpent.Clone()
	if o.Fulfillment != nil {
		f := *o.Fulfillment
		f.PlatformsUsed = slices.Clone(o.Fulfillment.PlatformsUsed)
		c.Fulfillment = &f
	}
	return &c
}
