package signalx

import (
	"context"
	"os"
	"os/signal"
)

// ExitContext returns a context that is cancelled when one of signals is received.
// A second signal calls exit with a non-zero code, so a stuck shutdown can still be interrupted.
// Calling the returned stop function releases the signal handler.
func ExitContext(parent context.Context, exit func(code int), signals ...os.Signal) (context.Context, context.CancelFunc) {
	if len(signals) == 0 {
		panic("no signals passed to ExitContext")
	}
	if exit == nil {
		exit = os.Exit
	}
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, signals...)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-done:
			return
		}
		select {
		case <-sigs:
			exit(1)
		case <-done:
		}
	}()
	stopped := false
	return ctx, func() {
		if stopped {
			return
		}
		stopped = true
		signal.Stop(sigs)
		close(done)
		cancel()
	}
}
