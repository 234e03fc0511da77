package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// ParsePick reads one compose pick written as ID, ID:OPTION_ID or ID=VALUE.
func ParsePick(s string) (domain.Pick, error) {
	var p domain.Pick
	idPart, value, hasValue := strings.Cut(s, "=")
	idPart, opt, hasOpt := strings.Cut(idPart, ":")

	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return p, fmt.Errorf("%w: pick %q: node id must be a positive integer", domain.ErrInvalidInput, s)
	}
	p.NodeID = id

	if hasOpt {
		optID, err := strconv.ParseInt(strings.TrimSpace(opt), 10, 64)
		if err != nil || optID <= 0 {
			return p, fmt.Errorf("%w: pick %q: option id must be a positive integer", domain.ErrInvalidInput, s)
		}
		p.OptionID = optID
	}
	if hasValue {
		p.Value = value
	}
	return p, nil
}

// ParsePicks applies ParsePick to each argument.
func ParsePicks(args []string) ([]domain.Pick, error) {
	picks := make([]domain.Pick, 0, len(args))
	for _, a := range args {
		p, err := ParsePick(a)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}
	return picks, nil
}
