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

// initSchema creates the account tables. Wallets and subscriptions hold the
// current state (hot data); token_transactions and journal_entries are the
// append-only audit trail (cold data).
func (s *Service) initSchema() error {
	schema := `
	-- Create users table
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_active ON users(active);

	-- Subscriptions Table (one row per user)
	CREATE TABLE IF NOT EXISTS subscriptions (
		user_id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		status TEXT NOT NULL,
		current_period_start TIMESTAMP NOT NULL,
		current_period_end TIMESTAMP NOT NULL,
		tokens_used INTEGER NOT NULL DEFAULT 0,
		tokens_remaining INTEGER NOT NULL DEFAULT 0,
		free_creatives_used INTEGER NOT NULL DEFAULT 0,
		next_billing_date TIMESTAMP NOT NULL,
		pending_plan_change TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_subscriptions_period_end ON subscriptions(current_period_end);

	-- Wallets Table (current wallet generation per user)
	CREATE TABLE IF NOT EXISTS wallets (
		user_id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL UNIQUE,
		total_tokens INTEGER NOT NULL DEFAULT 0,
		media_tokens INTEGER NOT NULL DEFAULT 0,
		creative_tokens INTEGER NOT NULL DEFAULT 0,
		last_updated TIMESTAMP NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		CHECK (total_tokens = media_tokens + creative_tokens),
		CHECK (media_tokens >= 0 AND creative_tokens >= 0)
	);

	-- Token Transactions Table (Audit Trail - Cold Data)
	CREATE TABLE IF NOT EXISTS token_transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		wallet_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		category TEXT NOT NULL,
		amount INTEGER NOT NULL,
		balance_after INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		campaign_id TEXT NOT NULL DEFAULT '',
		metadata TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_token_transactions_wallet_id ON token_transactions(wallet_id);
	CREATE INDEX IF NOT EXISTS idx_token_transactions_user_id ON token_transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_token_transactions_campaign_id ON token_transactions(campaign_id);

	-- Campaign Orders Table
	CREATE TABLE IF NOT EXISTS campaign_orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		campaign_id TEXT NOT NULL,
		calculation TEXT NOT NULL,
		status TEXT NOT NULL,
		fulfillment TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_campaign_orders_user_id ON campaign_orders(user_id);

	-- Journal Entries for Double-Entry Bookkeeping
	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		account_type TEXT NOT NULL,
		account_id TEXT NOT NULL,
		debit_amount INTEGER DEFAULT 0,
		credit_amount INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_journal_transaction_id ON journal_entries(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_journal_account ON journal_entries(account_type, account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
