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

package pricing

import "github.com/shopspring/decimal"

// Token costs. One token buys one impression of media.
const (
	MediaImpressionRate   int64 = 1
	CreativeAssetMinRate  int64 = 500
	CreativeAssetMaxRate  int64 = 2000
	FreeCreativeLimit     int64 = 10
	AbVariantRate         int64 = 250
	AdvancedTargetingFlat int64 = 500
	PriorityQueueFlat     int64 = 1000
)

// MaxCampaignUnits caps impressions, creative assets and A/B variants so every
// token amount stays far below the int64 range
const MaxCampaignUnits int64 = 1_000_000_000_000

// CPM mapping: 1000 tokens = $10 of media spend.
const (
	TokensPerDollar int64 = 100

	// campaign builder estimate for budget-driven campaigns
	ImpressionsPerBudgetDollar int64 = 10

	// share of every allocation earmarked for media, in percent
	MediaSharePercent int64 = 80
)

var DefaultCPM = decimal.NewFromInt(10)
