// Copyright 2024 Northern.tech AS
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

package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/looplab/fsm"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/NorthernTechHQ/iris-agent/client/control"
	"github.com/NorthernTechHQ/iris-agent/client/registry"
	"github.com/NorthernTechHQ/iris-agent/display"
	"github.com/NorthernTechHQ/iris-agent/model"
	"github.com/NorthernTechHQ/iris-agent/netif"
	"github.com/NorthernTechHQ/iris-agent/store"
	"github.com/NorthernTechHQ/iris-agent/system"
)

// Suffixes of the staged and backup copies next to each update target.
const (
	StagedSuffix = ".new"
	BackupSuffix = ".bak"
)

// StagedAgentSuffix marks the staged replacement of the agent itself,
// applied by the self-update stager on the next boot.
const StagedAgentSuffix = ".next"

// Update engine errors. Pre-swap errors (fetch, parse, download) surface
// from the clients; the errors below can only occur once the filesystem is
// being mutated and are fatal for the current boot.
var (
	ErrSwapFailed       = errors.New("update: file swap failed")
	ErrCommitFailed     = errors.New("update: version commit failed")
	ErrSelfUpdateFailed = errors.New("update: applying staged agent failed")
)

// Engine phases
const (
	StateIdle        = "idle"
	StateComparing   = "comparing_versions"
	StateDownloading = "downloading"
	StateSwapping    = "swapping"
	StateCommitting  = "committing"
	StateRebooting   = "rebooting"
)

// Engine phase transitions
const (
	eventCheck    = "event_check"
	eventDownload = "event_download"
	eventSwap     = "event_swap"
	eventCommit   = "event_commit"
	eventReboot   = "event_reboot"
	eventAbort    = "event_abort"
)

// UpdateEngine orchestrates manifest comparison, staged download, atomic
// file swap and version persistence.
//
//go:generate ../utils/mockgen.sh
type UpdateEngine interface {
	// GetOrCreateDeviceID loads the device identity, deriving and
	// persisting a new one on first boot.
	GetOrCreateDeviceID(ctx context.Context) (string, error)
	// EvaluateControl polls the control channel and resolves the pending
	// action for this device, de-duplicated by content hash.
	EvaluateControl(ctx context.Context, deviceID string) (model.Action, error)
	// ApplyStagedSelfUpdate installs a previously staged replacement of
	// the agent binary. It reports whether a replacement was applied, in
	// which case the caller must reboot immediately.
	ApplyStagedSelfUpdate(ctx context.Context) (bool, error)
	// Run performs one full update attempt. It returns without touching
	// the filesystem when no update is needed; after a committed update
	// it reboots the device and does not return.
	Run(ctx context.Context, force bool) error
}

// Config holds the engine configuration.
type Config struct {
	// FirmwareDir is the directory manifest targets are installed into.
	FirmwareDir string
	// AgentPath is the absolute path of the running agent binary.
	AgentPath string
	// ConfigFile is the absolute path of the agent configuration file.
	ConfigFile string
	// ProtectedFiles are extra targets the engine must never overwrite.
	ProtectedFiles []string
}

type engine struct {
	conf     Config
	store    store.DataStore
	registry registry.Client
	control  control.Client
	netif    netif.Manager
	rebooter system.Rebooter
	notifier display.Notifier

	protected map[string]struct{}
}

// NewUpdateEngine initializes a new update engine.
func NewUpdateEngine(
	conf Config,
	ds store.DataStore,
	reg registry.Client,
	ctl control.Client,
	net netif.Manager,
	reb system.Rebooter,
	notifier display.Notifier,
) UpdateEngine {
	if notifier == nil {
		notifier = display.NopNotifier{}
	}
	return &engine{
		conf:      conf,
		store:     ds,
		registry:  reg,
		control:   ctl,
		netif:     net,
		rebooter:  reb,
		notifier:  notifier,
		protected: protectedSet(conf),
	}
}

// protectedSet lists the targets a manifest can never replace: the agent's
// own code, its configuration and credentials, and the persisted state
// markers. A bad manifest must not be able to brick the device.
func protectedSet(conf Config) map[string]struct{} {
	names := []string{
		filepath.Base(conf.AgentPath),
		filepath.Base(conf.ConfigFile),
		"device_id",
		"local_version",
		"last_control_hash",
	}
	names = append(names, conf.ProtectedFiles...)
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name != "" && name != "." {
			set[filepath.Clean(name)] = struct{}{}
		}
	}
	return set
}

func (e *engine) isProtected(target string) bool {
	_, ok := e.protected[filepath.Clean(target)]
	return ok
}

// newPhases returns the transient phase machine of one update attempt.
func newPhases() *fsm.FSM {
	return fsm.NewFSM(StateIdle, fsm.Events{
		{Name: eventCheck, Src: []string{StateIdle}, Dst: StateComparing},
		{Name: eventDownload, Src: []string{StateComparing}, Dst: StateDownloading},
		{Name: eventSwap, Src: []string{StateDownloading}, Dst: StateSwapping},
		{Name: eventCommit, Src: []string{StateSwapping}, Dst: StateCommitting},
		{Name: eventReboot, Src: []string{StateCommitting}, Dst: StateRebooting},
		// Pre-swap failures and version matches leave the filesystem
		// untouched and return to idle.
		{Name: eventAbort,
			Src: []string{StateComparing, StateDownloading},
			Dst: StateIdle},
	}, fsm.Callbacks{})
}

func (e *engine) Run(ctx context.Context, force bool) error {
	l := log.FromContext(ctx)
	phases := newPhases()

	e.enter(ctx, phases, eventCheck)
	e.notifier.Status(display.StatusChecking, 0)

	manifest, err := e.registry.GetManifest(ctx)
	if err != nil {
		e.enter(ctx, phases, eventAbort)
		return err
	}

	localVersion, err := e.store.GetLocalVersion(ctx)
	if err != nil {
		// A corrupt marker drives a full re-application.
		l.Warnf("failed to read local version, assuming %s: %s",
			model.VersionUnknown, err.Error())
		localVersion = model.VersionUnknown
	}

	if !force && localVersion == manifest.Version {
		l.Debugf("version %s up to date", localVersion)
		e.enter(ctx, phases, eventAbort)
		return nil
	}
	l.Infof("updating %s -> %s (force=%v)",
		localVersion, manifest.Version, force)

	workList := e.buildWorkList(ctx, manifest)

	e.enter(ctx, phases, eventDownload)
	if err := e.downloadAll(ctx, workList); err != nil {
		e.enter(ctx, phases, eventAbort)
		return err
	}

	e.enter(ctx, phases, eventSwap)
	for _, entry := range workList {
		if err := e.swapFile(e.targetPath(entry)); err != nil {
			return err
		}
	}

	e.enter(ctx, phases, eventCommit)
	if err := e.store.SetLocalVersion(ctx, manifest.Version); err != nil {
		return errors.Wrap(ErrCommitFailed, err.Error())
	}
	l.Infof("committed version %s", manifest.Version)

	e.enter(ctx, phases, eventReboot)
	return e.reboot(ctx)
}

// buildWorkList filters protected targets out of the manifest, in manifest
// order, and restores any backup left behind by a crashed swap so every
// target starts the attempt with a valid copy in place.
func (e *engine) buildWorkList(
	ctx context.Context,
	manifest *model.Manifest,
) []model.FileEntry {
	l := log.FromContext(ctx)

	workList := make([]model.FileEntry, 0, len(manifest.Files))
	for _, entry := range manifest.Files {
		target := entry.TargetPath()
		if e.isProtected(target) {
			l.Warnf("skipping protected target %q", target)
			continue
		}
		e.restoreBackup(ctx, e.targetPath(entry))
		workList = append(workList, entry)
	}
	return workList
}

// restoreBackup reconstructs the previous copy of a target when an earlier
// attempt crashed between the backup and install renames.
func (e *engine) restoreBackup(ctx context.Context, target string) {
	backup := target + BackupSuffix
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		return
	}
	if _, err := os.Stat(backup); err != nil {
		return
	}
	if err := os.Rename(backup, target); err != nil {
		log.FromContext(ctx).Warnf("failed to restore backup of %q: %s",
			target, err.Error())
		return
	}
	log.FromContext(ctx).Infof("restored %q from interrupted swap", target)
}

// downloadAll stages every work list entry next to its target. The first
// failure aborts the whole run and removes all staged files, leaving the
// originals untouched.
func (e *engine) downloadAll(
	ctx context.Context,
	workList []model.FileEntry,
) error {
	l := log.FromContext(ctx)

	staged := make([]string, 0, len(workList))
	cleanup := func() {
		for _, path := range staged {
			_ = os.Remove(path)
		}
	}

	total := len(workList)
	for i, entry := range workList {
		e.notifier.Status(display.StatusUpdating, i*100/max(total, 1))
		l.Infof("downloading %s (%d/%d)", entry.Path, i+1, total)

		stagedPath := e.targetPath(entry) + StagedSuffix
		if err := e.downloadToFile(ctx, entry.Path, stagedPath); err != nil {
			cleanup()
			return err
		}
		staged = append(staged, stagedPath)
	}
	return nil
}

func (e *engine) downloadToFile(
	ctx context.Context,
	remotePath, stagedPath string,
) error {
	if err := os.MkdirAll(filepath.Dir(stagedPath), 0755); err != nil {
		return errors.Wrap(registry.ErrDownloadFailed, err.Error())
	}
	f, err := os.OpenFile(stagedPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(registry.ErrDownloadFailed, err.Error())
	}
	err = e.registry.DownloadFile(ctx, remotePath, f)
	if err == nil {
		err = f.Sync()
	}
	if errClose := f.Close(); err == nil && errClose != nil {
		err = errors.Wrap(registry.ErrDownloadFailed, errClose.Error())
	}
	if err != nil {
		_ = os.Remove(stagedPath)
		return err
	}
	return nil
}

// swapFile atomically replaces target with its staged copy. The rename
// order guarantees that at every instant either the old or the new file
// exists under target or target.bak, so a crash mid-swap never loses the
// file; see restoreBackup for the recovery half.
func (e *engine) swapFile(target string) error {
	staged := target + StagedSuffix
	backup := target + BackupSuffix

	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(ErrSwapFailed, err.Error())
	}
	if info, err := os.Stat(target); err == nil {
		// Manifest validation already rejects targets naming a
		// directory; refusing here keeps a hand-crafted manifest from
		// renaming a whole tree away.
		if info.IsDir() {
			return errors.Wrapf(ErrSwapFailed,
				"target %q is a directory", target)
		}
		if err := os.Rename(target, backup); err != nil {
			return errors.Wrap(ErrSwapFailed, err.Error())
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrap(ErrSwapFailed, err.Error())
	}
	if err := os.Rename(staged, target); err != nil {
		return errors.Wrap(ErrSwapFailed, err.Error())
	}
	// Only housekeeping from here; a stale backup is removed on the
	// next swap of the same target.
	_ = os.Remove(backup)
	return nil
}

// reboot releases the network interface and forces a device reset so the
// freshly written files are loaded from a clean boot. It does not return
// on real hardware.
func (e *engine) reboot(ctx context.Context) error {
	l := log.FromContext(ctx)
	e.notifier.Status(display.StatusRebooting, 100)
	if err := e.netif.Disconnect(); err != nil {
		l.Warn(err)
	}
	return e.rebooter.Reboot()
}

func (e *engine) targetPath(entry model.FileEntry) string {
	return filepath.Join(e.conf.FirmwareDir, entry.TargetPath())
}

func (e *engine) enter(ctx context.Context, phases *fsm.FSM, event string) {
	if err := phases.Event(ctx, event); err != nil {
		// Transition table bug; the phases only document progress.
		log.FromContext(ctx).Errorf("phase transition %s: %s",
			event, err.Error())
	}
}

// IsFatalForBoot reports whether an update error occurred after swapping
// began. These errors are not repaired in place: the version marker was
// never advanced, so the next boot retries the whole cycle from scratch.
func IsFatalForBoot(err error) bool {
	return errors.Is(err, ErrSwapFailed) || errors.Is(err, ErrCommitFailed)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
