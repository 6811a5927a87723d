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

package daemon

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
	"golang.org/x/sys/unix"

	api "github.com/NorthernTechHQ/iris-agent/api/http"
	"github.com/NorthernTechHQ/iris-agent/app"
	"github.com/NorthernTechHQ/iris-agent/client/control"
	"github.com/NorthernTechHQ/iris-agent/client/registry"
	dconfig "github.com/NorthernTechHQ/iris-agent/config"
	"github.com/NorthernTechHQ/iris-agent/display"
	"github.com/NorthernTechHQ/iris-agent/model"
	"github.com/NorthernTechHQ/iris-agent/netif"
	"github.com/NorthernTechHQ/iris-agent/store"
	"github.com/NorthernTechHQ/iris-agent/system"
)

// Runtime bundles the update engine with the collaborators the boot
// sequence drives directly.
type Runtime struct {
	Engine   app.UpdateEngine
	NetIf    netif.Manager
	Rebooter system.Rebooter
	Notifier display.Notifier
}

// NewRuntime wires the update engine and its collaborators from the
// configuration.
func NewRuntime(conf config.Reader, ds store.DataStore) (*Runtime, error) {
	timeout := time.Duration(conf.GetInt(dconfig.SettingHTTPTimeout)) * time.Second

	agentPath, err := os.Executable()
	if err != nil {
		agentPath = filepath.Join(
			conf.GetString(dconfig.SettingFirmwareDir), "iris-agent")
	}

	notifier := display.NewLogNotifier(log.NewEmpty())
	net := netif.NewManager()
	reb := system.NewRebooter()

	engine := app.NewUpdateEngine(
		app.Config{
			FirmwareDir:    conf.GetString(dconfig.SettingFirmwareDir),
			AgentPath:      agentPath,
			ConfigFile:     conf.GetString(dconfig.SettingConfigFile),
			ProtectedFiles: conf.GetStringSlice(dconfig.SettingProtectedFiles),
		},
		ds,
		registry.NewClient(registry.Config{
			ServerURL:    conf.GetString(dconfig.SettingServerURL),
			ManifestPath: conf.GetString(dconfig.SettingManifestPath),
			Token:        conf.GetString(dconfig.SettingServerToken),
			Timeout:      timeout,
			ChunkSize:    conf.GetInt(dconfig.SettingDownloadChunkSize),
		}),
		control.NewClient(control.Config{
			ServerURL:   conf.GetString(dconfig.SettingServerURL),
			ControlPath: conf.GetString(dconfig.SettingControlPath),
			Token:       conf.GetString(dconfig.SettingServerToken),
			Timeout:     timeout,
		}),
		net,
		reb,
		notifier,
	)

	return &Runtime{
		Engine:   engine,
		NetIf:    net,
		Rebooter: reb,
		Notifier: notifier,
	}, nil
}

// InitAndRun executes the boot sequence: staged self-update, device
// identity, connectivity, control poll, update check, then hands over to
// the display application. Update failures never keep the device from
// reaching the display application.
func InitAndRun(conf config.Reader, ds store.DataStore) error {
	log.Setup(conf.GetBool(dconfig.SettingDebugLog))
	ctx, cancel := signal.NotifyContext(
		context.Background(), unix.SIGINT, unix.SIGTERM)
	defer cancel()
	l := log.FromContext(ctx)

	rt, err := NewRuntime(conf, ds)
	if err != nil {
		return err
	}

	applied, err := rt.Engine.ApplyStagedSelfUpdate(ctx)
	if err != nil {
		// The previous agent keeps running; the mismatching version
		// marker drives a retry on the next update cycle.
		l.Error(err)
	}
	if applied {
		l.Info("staged agent applied, rebooting")
		return rt.Rebooter.Reboot()
	}

	deviceID, err := rt.Engine.GetOrCreateDeviceID(ctx)
	if err != nil {
		l.Warnf("device identity unavailable: %s", err.Error())
	}

	ssid := conf.GetString(dconfig.SettingWifiSSID)
	if ssid == "" {
		// Unprovisioned device: serve the setup portal until it is
		// configured and rebooted.
		rt.Notifier.Error(display.ErrCodeNoConfig)
		return api.RunPortal(conf, ds, rt.Rebooter)
	}

	watchdog := startWatchdog(ctx, conf)
	connected := connect(ctx, conf, rt, ssid)

	force := false
	if connected {
		action, err := rt.Engine.EvaluateControl(ctx, deviceID)
		if err != nil {
			l.Warnf("control poll skipped: %s", err.Error())
		}
		switch action {
		case model.ActionReboot:
			stopWatchdog(ctx, watchdog)
			if err := rt.NetIf.Disconnect(); err != nil {
				l.Warn(err)
			}
			return rt.Rebooter.Reboot()
		case model.ActionForceUpdate:
			force = true
		}

		if err := rt.Engine.Run(ctx, force); err != nil {
			if app.IsFatalForBoot(err) {
				// No in-place repair: the version marker was
				// not advanced, the next boot re-runs the
				// whole cycle.
				l.Error(err)
				rt.Notifier.Error(display.ErrCodeUpdate)
			} else {
				l.Warnf("update attempt skipped: %s", err.Error())
			}
		}
	}

	stopWatchdog(ctx, watchdog)

	// The periodic control poll runs between display refresh iterations,
	// never concurrently with one: one logical sequence at a time, same as
	// the boot path.
	var idle display.IdleFunc
	if connected {
		idle = func(ctx context.Context) {
			pollControl(ctx, rt, deviceID)
		}
	}
	interval := time.Duration(
		conf.GetInt(dconfig.SettingControlPollInterval)) * time.Second
	return display.NewApp(rt.Notifier, idle, interval).Run(ctx)
}

// pollControl polls the control channel once, so a reboot or force-update
// command reaches devices that stay powered for weeks between boots.
func pollControl(ctx context.Context, rt *Runtime, deviceID string) {
	l := log.FromContext(ctx)

	action, err := rt.Engine.EvaluateControl(ctx, deviceID)
	if err != nil {
		l.Debugf("control poll skipped: %s", err.Error())
		return
	}
	switch action {
	case model.ActionReboot:
		if err := rt.NetIf.Disconnect(); err != nil {
			l.Warn(err)
		}
		if err := rt.Rebooter.Reboot(); err != nil {
			l.Error(err)
		}
	case model.ActionForceUpdate:
		if err := rt.Engine.Run(ctx, true); err != nil {
			l.Warnf("forced update attempt failed: %s", err.Error())
		}
	}
}

// connect establishes wireless connectivity with the configured number of
// attempts. Failure is non-fatal: the boot falls through to the display
// application, mirroring a failed fetch.
func connect(
	ctx context.Context,
	conf config.Reader,
	rt *Runtime,
	ssid string,
) bool {
	l := log.FromContext(ctx)
	if rt.NetIf.IsConnected() {
		return true
	}

	rt.Notifier.Status(display.StatusConnecting, 0)
	password := conf.GetString(dconfig.SettingWifiPassword)
	timeout := time.Duration(conf.GetInt(dconfig.SettingWifiTimeout)) * time.Second
	retries := conf.GetInt(dconfig.SettingWifiRetries)

	for attempt := 0; attempt < retries; attempt++ {
		err := rt.NetIf.Connect(ctx, ssid, password, timeout)
		if err == nil {
			return true
		}
		l.Warnf("connect attempt %d/%d failed: %s",
			attempt+1, retries, err.Error())
	}
	rt.Notifier.Error(display.ErrCodeWifiFailed)
	return false
}

// startWatchdog arms the hardware watchdog around the long-running phases.
// A missing watchdog device (bench setups) only costs the hard backstop.
func startWatchdog(ctx context.Context, conf config.Reader) *system.Watchdog {
	l := log.FromContext(ctx)

	device, err := system.OpenWatchdog(conf.GetString(dconfig.SettingWatchdogPath))
	if err != nil {
		l.Warnf("running without hardware watchdog: %s", err.Error())
		return nil
	}
	watchdog, err := system.NewWatchdog(device,
		time.Duration(conf.GetInt(dconfig.SettingWatchdogTimeout))*time.Second,
		time.Duration(conf.GetInt(dconfig.SettingWatchdogFeedInterval))*time.Second,
	)
	if err != nil {
		l.Warn(err)
		_ = device.Disarm()
		return nil
	}
	watchdog.Start(ctx)
	return watchdog
}

func stopWatchdog(ctx context.Context, watchdog *system.Watchdog) {
	if watchdog == nil {
		return
	}
	if err := watchdog.Stop(); err != nil {
		log.FromContext(ctx).Warn(err)
	}
}
