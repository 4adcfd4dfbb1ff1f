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

type TransactionType string

const (
	TransactionEarned    TransactionType = "earned"
	TransactionSpent     TransactionType = "spent"
	TransactionPurchased TransactionType = "purchased"
)

type TokenCategory string

const (
	CategoryMedia        TokenCategory = "media"
	CategoryCreative     TokenCategory = "creative"
	CategoryTargeting    TokenCategory = "targeting"
	CategoryPriority     TokenCategory = "priority"
	CategorySubscription TokenCategory = "subscription"
)

// TokenTransaction is an immutable wallet ledger entry (cold data).
// Amount is positive for earned/purchased and negative for spent.
type TokenTransaction struct {
	Id           string               `json:"id"`
	UserId       string               `json:"user_id"`
	WalletId     string               `json:"wallet_id"`
	Type         TransactionType      `json:"type"`
	Category     TokenCategory        `json:"category"`
	Amount       int64                `json:"amount"`
	BalanceAfter int64                `json:"balance_after"`
	Description  string               `json:"description"`
	CampaignId   string               `json:"campaign_id,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
	Metadata     *TransactionMetadata `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the transaction
func (t TokenTransaction) Clone() TokenTransaction {
	t.Metadata = t.Metadata.Clone()
	return t
}

// TransactionMetadata carries one optional sub-record per category
type TransactionMetadata struct {
	Media     *MediaMetadata     `json:"media,omitempty"`
	Creative  *CreativeMetadata  `json:"creative,omitempty"`
	Targeting *TargetingMetadata `json:"targeting,omitempty"`
}

type MediaMetadata struct {
	Impressions   int64           `json:"impressions"`
	CpmEquivalent decimal.Decimal `json:"cpm_equivalent"`
	MediaSpend    decimal.Decimal `json:"media_spend"`
}

type CreativeMetadata struct {
	CreativeType string `json:"creative_type,omitempty"`
	Assets       int64  `json:"assets,omitempty"`
	Variants     int64  `json:"variants,omitempty"`
}

type TargetingMetadata struct {
	Options []string `json:"options,omitempty"`
}

// Clone returns a deep copy of the metadata, or nil
func (m *TransactionMetadata) Clone() *TransactionMetadata {
	if m == nil {
		return nil
	}
	c := &TransactionMetadata{}
	if m.Media != nil {
		media := *m.Media
		c.Media = &media
	}
	if m.Creative != nil {
		creative := *m.Creative
		c.Creative = &creative
	}
	if m.Targeting != nil {
		c.Targeting = &TargetingMetadata{Options: slices.Clone(m.Targeting.Options)}
	}
	return c
}
