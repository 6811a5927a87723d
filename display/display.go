// Copyright 2025 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

// Package display is the seam towards the LCD application. Rendering, fonts
// and glucose formatting live behind these interfaces; the update engine
// only pushes short textual progress through a Notifier and hands control
// to the App once it concludes without an update.
package display

import (
	"context"
	"time"

	"github.com/mendersoftware/go-lib-micro/log"
)

// Status strings shown in the on-device status bar.
const (
	StatusConnecting = "Connecting"
	StatusChecking   = "Checking"
	StatusUpdating   = "Updating"
	StatusRebooting  = "Rebooting"
)

// Error codes shown as "ERR:<code>" in the status bar.
const (
	ErrCodeWifiFailed = 0
	ErrCodeNoConfig   = 20
	ErrCodeUpdate     = 30
)

// Notifier receives textual progress from the update engine.
//
//go:generate ../utils/mockgen.sh
type Notifier interface {
	Status(status string, percent int)
	Error(code int)
}

// NopNotifier discards all progress.
type NopNotifier struct{}

func (NopNotifier) Status(status string, percent int) {}

func (NopNotifier) Error(code int) {}

// App is the display application entry point, invoked after the update
// engine concludes with no update performed.
type App interface {
	Run(ctx context.Context) error
}

// IdleFunc runs between display refresh iterations, on the display
// goroutine. Background work (the periodic control poll) goes through it so
// it never overlaps a refresh or runs concurrently with an update attempt.
type IdleFunc func(ctx context.Context)

type logNotifier struct {
	l *log.Logger
}

// NewLogNotifier returns a Notifier writing progress to the log. Appliance
// builds replace it with the LCD status bar implementation.
func NewLogNotifier(l *log.Logger) Notifier {
	return &logNotifier{l: l}
}

func (n *logNotifier) Status(status string, percent int) {
	n.l.Infof("status: %s (%d%%)", status, percent)
}

func (n *logNotifier) Error(code int) {
	n.l.Errorf("status: ERR:%03d", code)
}

type logApp struct {
	notifier Notifier
	idle     IdleFunc
	interval time.Duration
}

// NewApp returns a placeholder display application which invokes idle every
// interval until the context is cancelled. The LCD rendering loop is
// provided by the appliance build.
func NewApp(notifier Notifier, idle IdleFunc, interval time.Duration) App {
	return &logApp{
		notifier: notifier,
		idle:     idle,
		interval: interval,
	}
}

func (a *logApp) Run(ctx context.Context) error {
	l := log.FromContext(ctx)
	l.Info("display application started")

	if a.idle == nil || a.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.idle(ctx)
		}
	}
}
