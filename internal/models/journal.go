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

type PostingKind string

const (
	PostingCredit  PostingKind = "credit"
	PostingSpend   PostingKind = "spend"
	PostingForfeit PostingKind = "forfeit"
)

// JournalPosting is one token movement mirrored to an external ledger.
// Token amounts are the sub-balance deltas actually applied to the wallet.
type JournalPosting struct {
	Reference      string
	Kind           PostingKind
	UserId         string
	WalletId       string
	CampaignId     string
	MediaTokens    int64
	CreativeTokens int64
	Description    string
	Timestamp      time.Time
}
