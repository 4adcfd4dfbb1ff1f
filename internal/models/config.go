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

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig
	Store      StoreConfig
	Accounting AccountingConfig
	Formance   FormanceConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// StoreConfig selects the account store backend ("sqlite" or "memory")
type StoreConfig struct {
	Backend string
}

// AccountingConfig holds token accounting settings
type AccountingConfig struct {
	PlansFile           string
	BillingCycle        time.Duration
	RenewalPollInterval time.Duration
}

// FormanceConfig holds the optional Formance ledger mirror settings.
// The mirror is disabled when StackURL is empty.
type FormanceConfig struct {
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
	Required     bool
}

// Enabled reports whether the Formance mirror is configured
func (c FormanceConfig) Enabled() bool {
	return c.StackURL != ""
}
