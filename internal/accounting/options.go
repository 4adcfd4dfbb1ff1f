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

package accounting

import "time"

// Option configures a Service instance.
type Option func(*Service)

// WithJournal mirrors every token movement into j.
func WithJournal(j Journal) Option {
	return func(s *Service) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIdGenerator overrides the uuid generator used for wallet, transaction and order ids.
func WithIdGenerator(newId func() string) Option {
	return func(s *Service) {
		if newId != nil {
			s.newId = newId
		}
	}
}

// WithBillingCycle sets the subscription period. Non-positive values are ignored.
func WithBillingCycle(cycle time.Duration) Option {
	return func(s *Service) {
		if cycle > 0 {
			s.cycle = cycle
		}
	}
}
