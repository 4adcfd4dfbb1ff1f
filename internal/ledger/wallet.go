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
	"errors"
	"fmt"
	"time"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"
)

var (
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrInvalidArgument    = pricing.ErrInvalidArgument
	ErrInvariantViolated  = errors.New("wallet invariant violated")
)

// NewWallet seeds a wallet generation with tokens split 80/20 between media and creative
func NewWallet(walletId, userId string, tokens int64, now time.Time) models.Wallet {
	media, creative := pricing.SplitTokens(tokens)
	return models.Wallet{
		Id:             walletId,
		UserId:         userId,
		TotalTokens:    tokens,
		MediaTokens:    media,
		CreativeTokens: creative,
		LastUpdated:    now,
		Transactions:   []models.TokenTransaction{},
	}
}

// Credit adds purchased tokens to the wallet using the 80/20 split
func Credit(w *models.Wallet, amount int64, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: token amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	media, creative := pricing.SplitTokens(amount)
	w.TotalTokens += amount
	w.MediaTokens += media
	w.CreativeTokens += creative
	w.LastUpdated = now
	return nil
}

// Debit removes the tokens of a spend calculation from the wallet. The wallet is
// left untouched on error.
//
// Creative tokens come out of the creative balance first; everything else
// (media, targeting, priority) comes out of media, and whatever media cannot
// cover falls back to creative. Neither sub-balance can go negative.
func Debit(w *models.Wallet, calc models.TokenSpendCalculation, now time.Time) error {
	if err := ValidateCalculation(calc); err != nil {
		return err
	}
	if calc.TotalTokens > w.TotalTokens {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientTokens, calc.TotalTokens, w.TotalTokens)
	}
	if err := CheckInvariant(*w); err != nil {
		return err
	}

	creativeDebit := min(calc.CreativeTokens, w.CreativeTokens)
	mediaDebit := calc.TotalTokens - creativeDebit
	if mediaDebit > w.MediaTokens {
		creativeDebit += mediaDebit - w.MediaTokens
		mediaDebit = w.MediaTokens
	}

	w.TotalTokens -= calc.TotalTokens
	w.MediaTokens -= mediaDebit
	w.CreativeTokens -= creativeDebit
	w.LastUpdated = now
	return nil
}

// ValidateCalculation rejects calculations with negative parts or an
// inconsistent total
func ValidateCalculation(calc models.TokenSpendCalculation) error {
	if calc.MediaTokens < 0 || calc.CreativeTokens < 0 || calc.TargetingTokens < 0 || calc.PriorityTokens < 0 {
		return fmt.Errorf("%w: token counts must be non-negative", ErrInvalidArgument)
	}
	sum := calc.MediaTokens + calc.CreativeTokens + calc.TargetingTokens + calc.PriorityTokens
	if calc.TotalTokens != sum {
		return fmt.Errorf("%w: total %d does not match sum of parts %d", ErrInvalidArgument, calc.TotalTokens, sum)
	}
	if calc.FreeCreativesApplied < 0 {
		return fmt.Errorf("%w: free creatives applied must be non-negative", ErrInvalidArgument)
	}
	return nil
}

// Append adds a transaction to the wallet history, stamping the wallet id and
// the balance after the mutation
func Append(w *models.Wallet, tx models.TokenTransaction) models.TokenTransaction {
	tx.WalletId = w.Id
	tx.UserId = w.UserId
	tx.BalanceAfter = w.TotalTokens
	w.Transactions = append(w.Transactions, tx)
	return tx
}

// CheckInvariant verifies total == media + creative and no negative balances
func CheckInvariant(w models.Wallet) error {
	if w.TotalTokens != w.MediaTokens+w.CreativeTokens {
		return fmt.Errorf("%w: total %d != media %d + creative %d",
			ErrInvariantViolated, w.TotalTokens, w.MediaTokens, w.CreativeTokens)
	}
	if w.MediaTokens < 0 || w.CreativeTokens < 0 {
		return fmt.Errorf("%w: negative sub-balance (media %d, creative %d)",
			ErrInvariantViolated, w.MediaTokens, w.CreativeTokens)
	}
	return nil
}
