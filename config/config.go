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

package config

import (
	"github.com/mendersoftware/go-lib-micro/config"
)

const (
	// SettingConfigFile is the config key for the path of the loaded
	// configuration file itself; set from the command line, never from
	// the file
	SettingConfigFile = "config_file"

	// SettingServerURL is the config key for the update server base URL
	SettingServerURL = "server_url"
	// SettingServerURLDefault is the default value for the update server base URL
	SettingServerURLDefault = "https://updates.iris-display.io"

	// SettingServerToken is the config key for the static update server auth token
	SettingServerToken = "server_token"

	// SettingManifestPath is the config key for the manifest path on the update server
	SettingManifestPath = "manifest_path"
	// SettingManifestPathDefault is the default value for the manifest path
	SettingManifestPathDefault = "versions.json"

	// SettingControlPath is the config key for the control document path on the update server
	SettingControlPath = "control_path"
	// SettingControlPathDefault is the default value for the control document path
	SettingControlPathDefault = "control.json"

	// SettingHTTPTimeout is the config key for the HTTP client timeout, in seconds
	SettingHTTPTimeout = "http_timeout"
	// SettingHTTPTimeoutDefault is the default value for the HTTP client timeout
	SettingHTTPTimeoutDefault = 30

	// SettingDownloadChunkSize is the config key for the download copy
	// buffer size, in bytes; it bounds peak memory during file downloads
	SettingDownloadChunkSize = "download_chunk_size"
	// SettingDownloadChunkSizeDefault is the default value for the download copy buffer size
	SettingDownloadChunkSizeDefault = 4096

	// SettingDataDir is the config key for the directory holding the
	// persistent device state (identity, version and control markers)
	SettingDataDir = "data_dir"
	// SettingDataDirDefault is the default value for the data directory
	SettingDataDirDefault = "/var/lib/iris-agent"

	// SettingFirmwareDir is the config key for the directory manifest
	// targets are installed into
	SettingFirmwareDir = "firmware_dir"
	// SettingFirmwareDirDefault is the default value for the firmware directory
	SettingFirmwareDirDefault = "/opt/iris"

	// SettingProtectedFiles is the config key for extra target paths the
	// update engine must never overwrite, on top of the built-in set
	SettingProtectedFiles = "protected_files"

	// SettingWifiSSID is the config key for the wireless network name
	SettingWifiSSID = "wifi_ssid"

	// SettingWifiPassword is the config key for the wireless network password
	SettingWifiPassword = "wifi_password"

	// SettingWifiTimeout is the config key for the wireless connect timeout, in seconds
	SettingWifiTimeout = "wifi_timeout"
	// SettingWifiTimeoutDefault is the default value for the wireless connect timeout
	SettingWifiTimeoutDefault = 20

	// SettingWifiRetries is the config key for the wireless connect attempt count
	SettingWifiRetries = "wifi_retries"
	// SettingWifiRetriesDefault is the default value for the wireless connect attempt count
	SettingWifiRetriesDefault = 2

	// SettingControlPollInterval is the config key for the control channel
	// poll interval while the display application runs, in seconds
	SettingControlPollInterval = "control_poll_interval"
	// SettingControlPollIntervalDefault is the default value for the control poll interval
	SettingControlPollIntervalDefault = 30

	// SettingPortalListen is the config key for the setup portal listen address
	SettingPortalListen = "portal_listen"
	// SettingPortalListenDefault is the default value for the setup portal listen address
	SettingPortalListenDefault = ":80"

	// SettingWatchdogPath is the config key for the hardware watchdog device
	SettingWatchdogPath = "watchdog_path"
	// SettingWatchdogPathDefault is the default value for the hardware watchdog device
	SettingWatchdogPathDefault = "/dev/watchdog"

	// SettingWatchdogTimeout is the config key for the hardware watchdog timeout, in seconds
	SettingWatchdogTimeout = "watchdog_timeout"
	// SettingWatchdogTimeoutDefault is the default value for the hardware watchdog timeout
	SettingWatchdogTimeoutDefault = 60

	// SettingWatchdogFeedInterval is the config key for the watchdog feed interval, in seconds
	SettingWatchdogFeedInterval = "watchdog_feed_interval"
	// SettingWatchdogFeedIntervalDefault is the default value for the watchdog feed interval
	SettingWatchdogFeedIntervalDefault = 15

	// SettingDebugLog is the config key for the turning on the debug log
	SettingDebugLog = "debug_log"
	// SettingDebugLogDefault is the default value for the debug log enabling
	SettingDebugLogDefault = false
)

var (
	// SettingProtectedFilesDefault is the default value for the extra
	// protected targets: the display application binary installed next to
	// the agent
	SettingProtectedFilesDefault = []string{"iris-display"}

	// Defaults are the default configuration settings
	Defaults = []config.Default{
		{Key: SettingServerURL, Value: SettingServerURLDefault},
		{Key: SettingManifestPath, Value: SettingManifestPathDefault},
		{Key: SettingControlPath, Value: SettingControlPathDefault},
		{Key: SettingHTTPTimeout, Value: SettingHTTPTimeoutDefault},
		{Key: SettingDownloadChunkSize, Value: SettingDownloadChunkSizeDefault},
		{Key: SettingDataDir, Value: SettingDataDirDefault},
		{Key: SettingFirmwareDir, Value: SettingFirmwareDirDefault},
		{Key: SettingProtectedFiles, Value: SettingProtectedFilesDefault},
		{Key: SettingWifiTimeout, Value: SettingWifiTimeoutDefault},
		{Key: SettingWifiRetries, Value: SettingWifiRetriesDefault},
		{Key: SettingControlPollInterval, Value: SettingControlPollIntervalDefault},
		{Key: SettingPortalListen, Value: SettingPortalListenDefault},
		{Key: SettingWatchdogPath, Value: SettingWatchdogPathDefault},
		{Key: SettingWatchdogTimeout, Value: SettingWatchdogTimeoutDefault},
		{Key: SettingWatchdogFeedInterval, Value: SettingWatchdogFeedIntervalDefault},
		{Key: SettingDebugLog, Value: SettingDebugLogDefault},
	}
)
