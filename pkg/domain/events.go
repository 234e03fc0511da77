package domain

import (
	"context"
	"time"
)

// Outcome classifies a decode attempt.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeInvalid Outcome = "invalid"
)

// DecodeEvent describes one finished decode call.
type DecodeEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Code      string        `json:"code"`
	RootID    int64         `json:"root_id,omitempty"`
	Segments  []Segment     `json:"segments,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	Duration  time.Duration `json:"duration"`
}

// DecodeHooks defines callbacks for engine observability.
type DecodeHooks struct {
	OnDecode func(context.Context, *DecodeEvent)
}
