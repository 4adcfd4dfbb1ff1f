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

package renewal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultPollInterval = time.Minute

// Renewer starts new billing cycles for subscriptions whose period has ended
type Renewer interface {
	RenewDue(ctx context.Context) (int, error)
}

// WorkerConfig contains configuration for Worker
type WorkerConfig struct {
	Renewer      Renewer
	PollInterval time.Duration
}

// Worker periodically renews due subscriptions
type Worker struct {
	renewer      Renewer
	pollInterval time.Duration

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewWorker(cfg WorkerConfig) *Worker {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Worker{
		renewer:      cfg.Renewer,
		pollInterval: interval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start launches the polling loop. A renewal pass runs immediately.
func (w *Worker) Start(ctx context.Context) error {
	if w.renewer == nil {
		return fmt.Errorf("renewer is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("renewal worker already stopped")
	}
	if w.started {
		return fmt.Errorf("renewal worker already started")
	}
	w.started = true

	zap.L().Info("Starting renewal worker", zap.Duration("poll_interval", w.pollInterval))
	go w.pollLoop(ctx)
	return nil
}

// Stop gracefully stops the worker and waits for the in-flight pass to finish.
// A worker that was never started is marked done right away.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stopOnce.Do(func() {
		zap.L().Info("Stopping renewal worker")
		w.stopped = true
		close(w.stopChan)
		if !w.started {
			close(w.doneChan)
		}
	})
	w.mu.Unlock()
	<-w.doneChan
	zap.L().Info("Renewal worker stopped")
}

// Done is closed once the polling loop has exited
func (w *Worker) Done() <-chan struct{} {
	return w.doneChan
}

func (w *Worker) pollLoop(ctx context.Context) {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorGray  = "\033[90m"
)

func (w *Worker) runOnce(ctx context.Context) {
	renewed, err := w.renewer.RenewDue(ctx)
	stamp := time.Now().Format("15:04:05")

	switch {
	case err != nil:
		fmt.Printf("%s[%s] Renewal pass: %d renewed, errors: %v%s\n", colorRed, stamp, renewed, err, colorReset)
		zap.L().Error("Renewal pass failed", zap.Int("renewed", renewed), zap.Error(err))
	case renewed > 0:
		fmt.Printf("%s[%s] Renewal pass: %d subscriptions renewed%s\n", colorGreen, stamp, renewed, colorReset)
	default:
		fmt.Printf("%s[%s] Renewal pass: nothing due%s\n", colorGray, stamp, colorReset)
	}
}
