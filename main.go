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

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/urfave/cli"

	dconfig "github.com/NorthernTechHQ/iris-agent/config"
	"github.com/NorthernTechHQ/iris-agent/daemon"
	store "github.com/NorthernTechHQ/iris-agent/store/file"
)

var Version string = "unknown"

func main() {
	doMain(os.Args)
}

func doMain(args []string) {
	var configPath string

	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name: "config",
				Usage: "Configuration `FILE`. " +
					"Supports JSON, TOML, YAML and HCL " +
					"formatted configs.",
				Value:       "/etc/iris-agent/iris-agent.yaml",
				Destination: &configPath,
			},
		},
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "Run the update agent boot sequence",
				Action: cmdDaemon,
			},
			{
				Name:   "check-update",
				Usage:  "Run a single update cycle and exit",
				Action: cmdCheckUpdate,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Update even when the local version matches.",
					},
				},
			},
			{
				Name:   "show-id",
				Usage:  "Print the device identity, provisioning it if missing",
				Action: cmdShowID,
			},
			{
				Name:   "factory-reset",
				Usage:  "Remove the device configuration (identity is preserved)",
				Action: cmdFactoryReset,
			},
		},
	}
	app.Usage = "Iris Update Agent"
	app.Version = Version
	app.Action = cmdDaemon

	app.Before = func(args *cli.Context) error {
		path := configPath
		// A fresh device has no configuration yet; the daemon serves
		// the setup portal in that case, so only defaults are loaded.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
		err := config.FromConfigFile(path, dconfig.Defaults)
		if err != nil {
			return cli.NewExitError(
				fmt.Sprintf("error loading configuration: %s", err),
				1)
		}
		config.Config.Set(dconfig.SettingConfigFile, configPath)

		// Enable setting config values by environment variables
		config.Config.SetEnvPrefix("IRISAGENT")
		config.Config.AutomaticEnv()
		config.Config.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

		return nil
	}

	err := app.Run(args)
	if err != nil {
		log.Fatal(err)
	}
}

func cmdDaemon(args *cli.Context) error {
	dataStore, err := store.NewDataStore(
		config.Config.GetString(dconfig.SettingDataDir))
	if err != nil {
		return err
	}
	defer dataStore.Close()
	return daemon.InitAndRun(config.Config, dataStore)
}

func cmdCheckUpdate(args *cli.Context) error {
	dataStore, err := store.NewDataStore(
		config.Config.GetString(dconfig.SettingDataDir))
	if err != nil {
		return err
	}
	defer dataStore.Close()

	rt, err := daemon.NewRuntime(config.Config, dataStore)
	if err != nil {
		return err
	}
	return rt.Engine.Run(context.Background(), args.Bool("force"))
}

func cmdShowID(args *cli.Context) error {
	dataStore, err := store.NewDataStore(
		config.Config.GetString(dconfig.SettingDataDir))
	if err != nil {
		return err
	}
	defer dataStore.Close()

	rt, err := daemon.NewRuntime(config.Config, dataStore)
	if err != nil {
		return err
	}
	deviceID, err := rt.Engine.GetOrCreateDeviceID(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(deviceID)
	return nil
}

func cmdFactoryReset(args *cli.Context) error {
	path := config.Config.GetString(dconfig.SettingConfigFile)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
