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

const (
	// User queries
	queryGetActiveUsers = `
		SELECT u.id, u.name, u.email, u.created_at, u.updated_at, COALESCE(s.plan_id, '')
		FROM users u
		LEFT JOIN subscriptions s ON s.user_id = u.id
		WHERE u.active = 1
		ORDER BY u.created_at`

	queryInsertUser = `
		INSERT OR IGNORE INTO users (id, name, email) VALUES (?, ?, ?)`

	queryGetUserById = `
		SELECT u.id, u.name, u.email, u.created_at, u.updated_at, COALESCE(s.plan_id, '')
		FROM users u
		LEFT JOIN subscriptions s ON s.user_id = u.id
		WHERE u.id = ? AND u.active = 1`

	queryGetUserByEmail = `
		SELECT u.id, u.name, u.email, u.created_at, u.updated_at, COALESCE(s.plan_id, '')
		FROM users u
		LEFT JOIN subscriptions s ON s.user_id = u.id
		WHERE u.email = ? AND u.active = 1`

	// Account queries
	queryGetAccount = `
		SELECT w.user_id, w.wallet_id, w.total_tokens, w.media_tokens, w.creative_tokens, w.last_updated, w.version,
		       s.plan_id, s.status, s.current_period_start, s.current_period_end,
		       s.tokens_used, s.tokens_remaining, s.free_creatives_used, s.next_billing_date, s.pending_plan_change
		FROM wallets w
		JOIN subscriptions s ON s.user_id = w.user_id
		WHERE w.user_id = ?`

	queryListAccounts = `
		SELECT w.user_id, w.wallet_id, w.total_tokens, w.media_tokens, w.creative_tokens, w.last_updated, w.version,
		       s.plan_id, s.status, s.current_period_start, s.current_period_end,
		       s.tokens_used, s.tokens_remaining, s.free_creatives_used, s.next_billing_date, s.pending_plan_change
		FROM wallets w
		JOIN subscriptions s ON s.user_id = w.user_id
		ORDER BY w.user_id`

	queryGetWalletVersion = `
		SELECT wallet_id, total_tokens, version
		FROM wallets
		WHERE user_id = ?`

	queryInsertWallet = `
		INSERT INTO wallets (user_id, wallet_id, total_tokens, media_tokens, creative_tokens, last_updated, version)
		VALUES (?, ?, ?, ?, ?, ?, 1)`

	queryUpdateWallet = `
		UPDATE wallets
		SET wallet_id = ?, total_tokens = ?, media_tokens = ?, creative_tokens = ?, last_updated = ?, version = version + 1
		WHERE user_id = ? AND version = ?`

	queryUpsertSubscription = `
		INSERT INTO subscriptions (
			user_id, plan_id, status, current_period_start, current_period_end,
			tokens_used, tokens_remaining, free_creatives_used, next_billing_date, pending_plan_change, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			plan_id = excluded.plan_id,
			status = excluded.status,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			tokens_used = excluded.tokens_used,
			tokens_remaining = excluded.tokens_remaining,
			free_creatives_used = excluded.free_creatives_used,
			next_billing_date = excluded.next_billing_date,
			pending_plan_change = excluded.pending_plan_change,
			updated_at = CURRENT_TIMESTAMP`

	// Transaction queries
	queryCheckDuplicateTransaction = `
		SELECT id FROM token_transactions WHERE id = ? LIMIT 1`

	queryInsertTransaction = `
		INSERT INTO token_transactions (
			id, wallet_id, user_id, type, category, amount, balance_after,
			description, campaign_id, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetWalletTransactions = `
		SELECT id, wallet_id, user_id, type, category, amount, balance_after,
		       description, campaign_id, metadata, created_at
		FROM token_transactions
		WHERE wallet_id = ?
		ORDER BY seq`

	queryGetTransactionHistory = `
		SELECT t.id, t.wallet_id, t.user_id, t.type, t.category, t.amount, t.balance_after,
		       t.description, t.campaign_id, t.metadata, t.created_at
		FROM token_transactions t
		JOIN wallets w ON w.wallet_id = t.wallet_id
		WHERE w.user_id = ?
		ORDER BY t.seq DESC
		LIMIT ? OFFSET ?`

	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, transaction_id, account_type, account_id, debit_amount, credit_amount)
		VALUES (?, ?, ?, ?, ?, ?)`

	// Balance queries
	queryReconcileWallet = `
		SELECT COALESCE(SUM(t.amount), 0) AS calculated_balance, w.total_tokens
		FROM wallets w
		LEFT JOIN token_transactions t ON t.wallet_id = w.wallet_id
		WHERE w.user_id = ?
		GROUP BY w.wallet_id, w.total_tokens`

	queryJournalTotals = `
		SELECT COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0)
		FROM journal_entries`

	queryJournalUserTokens = `
		SELECT COALESCE(SUM(debit_amount), 0) - COALESCE(SUM(credit_amount), 0)
		FROM journal_entries
		WHERE account_type = 'user_tokens' AND account_id = ?`

	// Order queries
	queryInsertOrder = `
		INSERT INTO campaign_orders (id, user_id, campaign_id, calculation, status, fulfillment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetOrder = `
		SELECT id, user_id, campaign_id, calculation, status, fulfillment, created_at, updated_at
		FROM campaign_orders
		WHERE id = ?`

	queryListOrders = `
		SELECT id, user_id, campaign_id, calculation, status, fulfillment, created_at, updated_at
		FROM campaign_orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`

	queryUpdateOrder = `
		UPDATE campaign_orders
		SET status = ?, fulfillment = ?, updated_at = ?
		WHERE id = ?`
)
