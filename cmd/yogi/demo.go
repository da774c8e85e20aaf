package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	yogi "github.com/wippyai/yogi-go"
	"github.com/wippyai/yogi-go/bridge"
	"github.com/wippyai/yogi-go/core"
	"github.com/wippyai/yogi-go/duration"
	"github.com/wippyai/yogi-go/result"
)

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Run a timer, a signal and a branch event through the bridge",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timer duration",
				Value: 500 * time.Millisecond,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Branch name",
				Value: "demo",
			},
		},
		Action: runDemo,
	}
}

func runDemo(ctx context.Context, cmd *cli.Command) error {
	lib, c, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.ConfigureConsoleLogging(core.VerbosityInfo, core.StreamStdout, false, "", ""); err != nil {
		return err
	}
	app := lib.AppLogger()

	yctx, err := lib.NewContext()
	if err != nil {
		return err
	}

	remaining := 0
	done := func(what string, res result.Result) {
		remaining--
		fmt.Printf("%-8s %s\n", what+":", res)
	}

	tmr, err := lib.NewTimer(yctx)
	if err != nil {
		return err
	}
	if err := tmr.StartAsync(duration.FromStd(cmd.Duration("timeout")), func(res result.Result) {
		done("timer", res)
	}); err != nil {
		return err
	}
	remaining++

	set, err := lib.NewSignalSet(yctx, core.SigInt|core.SigTerm|core.SigUsr1)
	if err != nil {
		return err
	}
	if err := set.AwaitSignalAsync(func(res result.Result, sig core.Signals, arg any) {
		done("signal", res)
		fmt.Printf("         %v arg=%v\n", sig, arg)
	}); err != nil {
		return err
	}
	remaining++

	stop := forwardSignals(ctx, lib)
	defer stop()

	if err := yctx.Post(func() {
		err := lib.RaiseSignalWithArg(core.SigUsr1, "hello from post", func(arg any) {
			app.Logf(core.VerbosityInfo, "signal argument %q released", arg)
		})
		if err != nil {
			app.Log(core.VerbosityError, err.Error())
		}
	}); err != nil {
		return err
	}

	br, err := newDemoBranch(lib, yctx, cmd.String("name"))
	if err != nil {
		return err
	}
	info, err := br.Info()
	if err != nil {
		return err
	}
	fmt.Printf("branch:  %s %s (timeout %.1fs)\n", info.Name, info.UUID, info.Timeout)

	if err := br.AwaitEventAsync(core.BranchEventDiscovered, 0, func(res result.Result, ev core.BranchEvents, evres result.Result, ei bridge.EventInfo) {
		done("branch", res)
		fmt.Printf("         %v from %s: %s (%v)\n", ev, ei.UUID, ei.JSON, evres)
	}); err != nil {
		return err
	}
	remaining++
	c.EmitBranchEvent(br.Handle(), core.BranchEventDiscovered, result.OK, uuid.New(), `{"name":"peer"}`)

	for remaining > 0 {
		if _, err := yctx.RunOne(duration.Inf); err != nil {
			return err
		}
	}

	fmt.Printf("objects: %d live, %d tokens outstanding\n", lib.Objects().Len(), lib.Bridge().Outstanding())
	return nil
}

func newDemoBranch(lib *yogi.Library, ctx *yogi.Context, name string) (*yogi.Branch, error) {
	cfg, err := lib.NewConfiguration(core.ConfigNone)
	if err != nil {
		return nil, err
	}
	defer cfg.Dispose()

	if err := cfg.UpdateFromJSON(fmt.Sprintf(`{"branch": {"name": %q, "description": "yogi demo"}}`, name)); err != nil {
		return nil, err
	}
	return lib.NewBranch(ctx, cfg, "branch")
}
