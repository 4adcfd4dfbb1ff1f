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

import "github.com/shopspring/decimal"

// SubscriptionPlan is an immutable catalog entry
type SubscriptionPlan struct {
	Id                 string          `json:"id"`
	Name               string          `json:"name"`
	MonthlyFee         decimal.Decimal `json:"monthly_fee"`
	TokensIncluded     int64           `json:"tokens_included"`
	CostPerToken       decimal.Decimal `json:"cost_per_token"`
	AlaCarteTokenPrice decimal.Decimal `json:"ala_carte_token_price"`
	Features           []string        `json:"features"`
	IsPopular          bool            `json:"is_popular"`
}

// IsCustom reports whether the plan is priced per contract (enterprise)
func (p SubscriptionPlan) IsCustom() bool {
	return p.MonthlyFee.IsZero() && p.TokensIncluded == 0
}
