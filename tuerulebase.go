package tuerulebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Catneko-0422/tuerulebase/internal/runtime"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/memory"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
)

// Engine is the high-level entry point for the library.
// It wraps the decoding runtime and the rule store behind one API.
type Engine struct {
	store         ports.RuleStore
	decoder       *runtime.Decoder
	hooks         domain.DecodeHooks
	logger        *slog.Logger
	maxCodeLength int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the rule store. Defaults to an empty in-memory store.
func WithStore(store ports.RuleStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.DecodeHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxCodeLength overrides DefaultMaxCodeLength.
func WithMaxCodeLength(n int) Option {
	return func(e *Engine) {
		e.maxCodeLength = n
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.decoder = runtime.NewDecoder(runtime.WithLogger(eng.logger))
	return eng
}

// Store returns the rule store the engine reads from.
func (e *Engine) Store() ports.RuleStore {
	return e.store
}

// Decode splits code into segments. With ruleID 0 every root of every rule
// is tried in store order; a positive ruleID limits the search to that rule.
//
// Errors wrap domain.ErrInvalidInput for a rejected code,
// domain.ErrRuleNotFound for an unknown ruleID and domain.ErrDecodeFailed
// when no root consumes the code exactly.
func (e *Engine) Decode(ctx context.Context, code string, ruleID int64) (domain.Decoding, error) {
	start := time.Now()
	event := &domain.DecodeEvent{Timestamp: start, Code: code}
	defer func() {
		event.Duration = time.Since(start)
		if e.hooks.OnDecode != nil {
			e.hooks.OnDecode(ctx, event)
		}
	}()

	clean, err := SanitizeCode(code, e.maxCodeLength)
	if err != nil {
		event.Outcome = domain.OutcomeInvalid
		e.logger.Warn("rejected code", "err", err)
		return domain.Decoding{}, err
	}
	event.Code = clean

	tree, err := e.snapshot(ctx, ruleID)
	if err != nil {
		event.Outcome = domain.OutcomeInvalid
		return domain.Decoding{}, err
	}

	res, err := e.decoder.Decode(tree, clean)
	if err != nil {
		event.Outcome = domain.OutcomeFailed
		e.logger.Info("decode failed", "code", clean, "rule_id", ruleID, "roots", len(tree.Roots()))
		return domain.Decoding{}, fmt.Errorf("decode %q: %w", clean, err)
	}

	event.Outcome = domain.OutcomeOK
	event.RootID = res.RootID
	event.Segments = res.Segments
	e.logger.Info("decoded code", "code", clean, "root_id", res.RootID, "segments", len(res.Segments))
	return res, nil
}

// Compose assembles a code from a root-to-node path of picks and checks
// its length against the owning rule.
func (e *Engine) Compose(ctx context.Context, picks []domain.Pick) (domain.Composition, error) {
	tree, err := e.snapshot(ctx, 0)
	if err != nil {
		return domain.Composition{}, err
	}
	comp, err := runtime.Compose(tree, picks)
	if err != nil {
		return domain.Composition{}, err
	}
	rule, err := e.store.GetRule(ctx, comp.RuleID)
	if err != nil && !errors.Is(err, domain.ErrRuleNotFound) {
		return domain.Composition{}, err
	}
	comp.LengthOK = err == nil && utf8.RuneCountInString(comp.Code) == rule.TotalLength
	return comp, nil
}

// Inspect returns a rule and all of its nodes in id order, for
// visualization and linting.
func (e *Engine) Inspect(ctx context.Context, ruleID int64) (domain.Rule, []domain.Node, error) {
	rule, err := e.store.GetRule(ctx, ruleID)
	if err != nil {
		return domain.Rule{}, nil, err
	}
	all, err := e.store.Snapshot(ctx)
	if err != nil {
		return domain.Rule{}, nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	var nodes []domain.Node
	for _, n := range all {
		if n.RuleID == ruleID {
			nodes = append(nodes, n)
		}
	}
	return rule, nodes, nil
}

func (e *Engine) snapshot(ctx context.Context, ruleID int64) (*runtime.Snapshot, error) {
	if ruleID > 0 {
		if _, err := e.store.GetRule(ctx, ruleID); err != nil {
			return nil, err
		}
	}
	nodes, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	tree := runtime.NewSnapshot(nodes)
	if ruleID > 0 {
		tree = tree.ForRule(ruleID)
	}
	return tree, nil
}
