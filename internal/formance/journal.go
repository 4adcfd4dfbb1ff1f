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

package formance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ad-token-ledger/internal/models"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// leg is one send statement of a posting script
type leg struct {
	amountVar   string
	amount      int64
	source      string
	destination string
}

func userAccount(bucket string) string {
	return "@users:$user_id:" + bucket
}

// postingLegs returns the non-zero sends for a posting.
// Credits: @world -> @users:{id}:media|creative
// Spends: @users:{id}:media|creative -> @campaigns:{campaignId}
// Forfeits: @users:{id}:media|creative -> @forfeited
func postingLegs(p models.JournalPosting) ([]leg, error) {
	var legs []leg
	add := func(amountVar string, amount int64, source, destination string) {
		if amount > 0 {
			legs = append(legs, leg{amountVar, amount, source, destination})
		}
	}

	switch p.Kind {
	case models.PostingCredit:
		add("media", p.MediaTokens, "@world", userAccount("media"))
		add("creative", p.CreativeTokens, "@world", userAccount("creative"))
	case models.PostingSpend:
		if p.CampaignId == "" {
			return nil, fmt.Errorf("spend posting %s has no campaign id", p.Reference)
		}
		add("media", p.MediaTokens, userAccount("media"), "@campaigns:$campaign_id")
		add("creative", p.CreativeTokens, userAccount("creative"), "@campaigns:$campaign_id")
	case models.PostingForfeit:
		add("media", p.MediaTokens, userAccount("media"), "@forfeited")
		add("creative", p.CreativeTokens, userAccount("creative"), "@forfeited")
	default:
		return nil, fmt.Errorf("unknown posting kind %q", p.Kind)
	}

	if p.MediaTokens < 0 || p.CreativeTokens < 0 {
		return nil, fmt.Errorf("posting %s has negative token amounts", p.Reference)
	}
	return legs, nil
}

// buildScript renders the Numscript program and its variables for a posting
func buildScript(p models.JournalPosting, legs []leg) (string, map[string]string) {
	var b strings.Builder
	b.WriteString("vars {\n  asset $asset\n  account $user_id\n")
	if p.Kind == models.PostingSpend {
		b.WriteString("  account $campaign_id\n")
	}
	for _, l := range legs {
		fmt.Fprintf(&b, "  number $%s\n", l.amountVar)
	}
	b.WriteString("  string $wallet_id\n  string $description\n}\n")

	vars := map[string]string{
		"asset":       tokenAsset,
		"user_id":     p.UserId,
		"wallet_id":   p.WalletId,
		"description": p.Description,
	}
	if p.Kind == models.PostingSpend {
		vars["campaign_id"] = p.CampaignId
	}

	for _, l := range legs {
		source := l.source
		if source != "@world" {
			// the mirror may lag the wallet when it was enabled mid-cycle
			source += " allowing unbounded overdraft"
		}
		fmt.Fprintf(&b, "\nsend [$asset $%s] (\n  source = %s\n  destination = %s\n)\n", l.amountVar, source, l.destination)
		vars[l.amountVar] = strconv.FormatInt(l.amount, 10)
	}

	fmt.Fprintf(&b, "\nset_tx_meta(\"event_type\", \"token_%s\")\n", p.Kind)
	b.WriteString("set_tx_meta(\"wallet_id\", $wallet_id)\n")
	b.WriteString("set_tx_meta(\"description\", $description)\n")
	return b.String(), vars
}

// Post records a posting in the ledger. The reference makes replays conflict
// instead of double-posting; conflicts are treated as success.
func (s *Service) Post(ctx context.Context, p models.JournalPosting) error {
	legs, err := postingLegs(p)
	if err != nil {
		return err
	}
	if len(legs) == 0 {
		return nil
	}

	plain, vars := buildScript(p, legs)
	postTx := shared.V2PostTransaction{
		Reference: strPtr(p.Reference),
		Script: &shared.V2PostTransactionScript{
			Plain: plain,
			Vars:  vars,
		},
	}
	if !p.Timestamp.IsZero() {
		ts := p.Timestamp
		postTx.Timestamp = &ts
	}

	_, err = s.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            s.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			zap.L().Debug("Posting already recorded in Formance", zap.String("reference", p.Reference))
			return nil // idempotent
		}
		return fmt.Errorf("error recording %s posting: %w", p.Kind, err)
	}

	zap.L().Info("Posting recorded in Formance",
		zap.String("kind", string(p.Kind)),
		zap.String("user_id", p.UserId),
		zap.String("reference", p.Reference),
		zap.Int64("media_tokens", p.MediaTokens),
		zap.Int64("creative_tokens", p.CreativeTokens))
	return nil
}
