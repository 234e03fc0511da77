package runtime

import (
	"io"
	"log/slog"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
)

// Decoder runs the root-level search over a tree.
type Decoder struct {
	logger *slog.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLogger sets the logger used for per-root tracing.
func WithLogger(logger *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDecoder creates a decoder. Without WithLogger it stays silent.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode tries every root in order and accepts the first chain that
// consumes code exactly. Partial decodes are never returned.
func (d *Decoder) Decode(tree ports.TreeReader, code string) (domain.Decoding, error) {
	for _, root := range tree.Roots() {
		chain, ok := DecodeChain(tree, root, code)
		if !ok {
			d.logger.Debug("root did not match", "root_id", root.ID, "root", root.Name)
			continue
		}
		if chain.Remaining != "" {
			d.logger.Debug("root left code unconsumed", "root_id", root.ID, "root", root.Name, "remaining", chain.Remaining)
			continue
		}
		d.logger.Debug("root decoded code", "root_id", root.ID, "root", root.Name, "segments", len(chain.Segments))
		return domain.Decoding{
			Code:     code,
			RootID:   root.ID,
			RuleID:   root.RuleID,
			Segments: chain.Segments,
		}, nil
	}
	return domain.Decoding{}, domain.ErrDecodeFailed
}

// Decode is a convenience wrapper around a silent Decoder.
func Decode(tree ports.TreeReader, code string) (domain.Decoding, error) {
	return NewDecoder().Decode(tree, code)
}
