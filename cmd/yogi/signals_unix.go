//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	yogi "github.com/wippyai/yogi-go"
	"github.com/wippyai/yogi-go/core"
)

// forwardSignals raises SIGINT and SIGTERM as their Yogi counterparts until
// the returned function is called or ctx ends.
func forwardSignals(ctx context.Context, lib *yogi.Library) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-ch:
				sig := core.SigInt
				if s == unix.SIGTERM {
					sig = core.SigTerm
				}
				_ = lib.RaiseSignal(sig, nil)
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		cancel()
	}
}
