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

package system

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// WatchdogDevice is the hardware timeout primitive. If it is not fed within
// its timeout the hardware forces an unconditional reset, independent of any
// software error handling.
type WatchdogDevice interface {
	SetTimeout(seconds int) error
	Feed() error
	// Disarm stops the hardware countdown and releases the device.
	Disarm() error
}

type watchdogDevice struct {
	f *os.File
}

// OpenWatchdog opens a Linux watchdog device (e.g. /dev/watchdog). Opening
// the device starts the hardware countdown.
func OpenWatchdog(path string) (WatchdogDevice, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, errors.Wrap(err, "watchdog: failed to open device")
	}
	return &watchdogDevice{f: f}, nil
}

func (d *watchdogDevice) SetTimeout(seconds int) error {
	err := unix.IoctlSetPointerInt(int(d.f.Fd()), unix.WDIOC_SETTIMEOUT, seconds)
	return errors.Wrap(err, "watchdog: failed to set timeout")
}

func (d *watchdogDevice) Feed() error {
	_, err := d.f.Write([]byte{0})
	return errors.Wrap(err, "watchdog: failed to feed device")
}

func (d *watchdogDevice) Disarm() error {
	// Magic close: tells the driver the shutdown is intentional so the
	// countdown stops instead of firing after the agent exits.
	if _, err := d.f.Write([]byte("V")); err != nil {
		_ = d.f.Close()
		return errors.Wrap(err, "watchdog: failed to disarm device")
	}
	return errors.Wrap(d.f.Close(), "watchdog: failed to close device")
}

// Watchdog feeds a WatchdogDevice at a fixed interval while long-running
// phases (network connect, download loop) are in flight. If the agent hangs
// the feeding stops and the hardware resets the device.
type Watchdog struct {
	device   WatchdogDevice
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWatchdog returns a supervisor feeding device every interval.
func NewWatchdog(device WatchdogDevice, timeout, interval time.Duration) (*Watchdog, error) {
	if err := device.SetTimeout(int(timeout / time.Second)); err != nil {
		return nil, err
	}
	return &Watchdog{
		device:   device,
		interval: interval,
	}, nil
}

// Start launches the feeding loop. It keeps feeding until Stop is called or
// the context is cancelled.
func (w *Watchdog) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	l := log.FromContext(ctx)

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.device.Feed(); err != nil {
					// Keep trying; a missed feed means the
					// hardware takes over.
					l.Warn(err)
				}
			}
		}
	}()
}

// Stop ends the feeding loop and disarms the hardware countdown.
func (w *Watchdog) Stop() error {
	var err error
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
		err = w.device.Disarm()
	})
	return err
}
