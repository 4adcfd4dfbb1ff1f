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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

// ReconcileWallet verifies that the current wallet total matches the sum of its transactions
func (s *Service) ReconcileWallet(ctx context.Context, userId string) error {
	zap.L().Info("Reconciling wallet", zap.String("user_id", userId))

	var calculated, current int64
	err := s.db.QueryRowContext(ctx, queryReconcileWallet, userId).Scan(&calculated, &current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", store.ErrAccountNotFound, userId)
		}
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	if current != calculated {
		zap.L().Error("Wallet reconciliation failed",
			zap.String("user_id", userId),
			zap.Int64("current_balance", current),
			zap.Int64("calculated_balance", calculated),
			zap.Int64("difference", current-calculated))
		return fmt.Errorf("balance mismatch: current=%d, calculated=%d", current, calculated)
	}

	zap.L().Info("Wallet reconciliation successful",
		zap.String("user_id", userId),
		zap.Int64("balance", current))
	return nil
}

// VerifyJournal checks that the journal balances and that the user's token
// account carries the current wallet total
func (s *Service) VerifyJournal(ctx context.Context, userId string) error {
	var debits, credits int64
	if err := s.db.QueryRowContext(ctx, queryJournalTotals).Scan(&debits, &credits); err != nil {
		return fmt.Errorf("failed to sum journal entries: %w", err)
	}
	if debits != credits {
		zap.L().Error("Journal out of balance", zap.Int64("debits", debits), zap.Int64("credits", credits))
		return fmt.Errorf("journal out of balance: debits=%d, credits=%d", debits, credits)
	}

	var journalBalance, current int64
	if err := s.db.QueryRowContext(ctx, queryJournalUserTokens, userId).Scan(&journalBalance); err != nil {
		return fmt.Errorf("failed to sum user token entries: %w", err)
	}
	err := s.db.QueryRowContext(ctx, queryGetWalletVersion, userId).Scan(new(string), &current, new(int64))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", store.ErrAccountNotFound, userId)
		}
		return fmt.Errorf("failed to get current wallet: %w", err)
	}

	if journalBalance != current {
		zap.L().Error("Journal disagrees with wallet",
			zap.String("user_id", userId),
			zap.Int64("journal_balance", journalBalance),
			zap.Int64("wallet_balance", current))
		return fmt.Errorf("journal mismatch: journal=%d, wallet=%d", journalBalance, current)
	}

	zap.L().Info("Journal verification successful", zap.String("user_id", userId), zap.Int64("balance", current))
	return nil
}
