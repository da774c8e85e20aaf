package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	yogi "github.com/wippyai/yogi-go"
	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/resource"
	"github.com/wippyai/yogi-go/sim"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "yogi",
		Usage:   "Exercise the Yogi bindings against the in-process core",
		Version: core.BindingsVersion,
		Description: `yogi opens the bindings on the simulated core and drives
timers, signals and branches through the callback bridge.

Examples:
  yogi demo
  yogi demo --timeout 250ms
  yogi monitor
  yogi version --json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML file with binding options",
				Sources: cli.EnvVars(yogi.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the diagnostics log level",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print binding diagnostics to stderr",
			},
		},
		Commands: []*cli.Command{
			demoCommand(),
			monitorCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print binding and core versions",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output version information as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			c := sim.New()
			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"bindings": core.BindingsVersion,
					"core":     c.Version(),
				})
			}
			fmt.Printf("yogi bindings %s (core %s)\n", core.BindingsVersion, c.Version())
			return nil
		},
	}
}

// openLibrary loads options and opens the bindings on a fresh simulated
// core.
func openLibrary(cmd *cli.Command, extra ...yogi.OpenOption) (*yogi.Library, *sim.Core, error) {
	opts, err := yogi.LoadOptions(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		opts.LogLevel = lvl
	}

	log := zap.NewNop()
	if cmd.Bool("verbose") {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if log, err = cfg.Build(); err != nil {
			return nil, nil, err
		}
	}
	resource.SetLogger(log.Named("resource"))
	bridge.SetLogger(log.Named("bridge"))
	sim.SetLogger(log.Named("sim"))

	c := sim.New(sim.WithLogger(log.Named("sim")))
	lib, err := yogi.Open(c, opts, append([]yogi.OpenOption{yogi.WithLogger(log)}, extra...)...)
	if err != nil {
		return nil, nil, err
	}
	return lib, c, nil
}
