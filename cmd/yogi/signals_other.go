//go:build !unix

package main

import (
	"context"
	"os"
	"os/signal"

	yogi "github.com/wippyai/yogi-go"
	"github.com/wippyai/yogi-go/core"
)

func forwardSignals(ctx context.Context, lib *yogi.Library) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				_ = lib.RaiseSignal(core.SigInt, nil)
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		cancel()
	}
}
