package domain

import "context"

// InboundMessage is one visitor turn received from a channel. History is the
// caller-owned conversation so far; the core never stores it between turns.
type InboundMessage struct {
	TurnID      string
	Content     string
	History     []Message
	ChannelName string
}

// OutboundMessage is the reply for one turn.
type OutboundMessage struct {
	TurnID  string
	Content string
}

// TurnHandler is invoked by a channel for each visitor message and returns
// the reply synchronously. A non-nil error means the caller violated the
// turn contract (e.g. malformed history); endpoint failures never surface
// here, they are converted to user-safe reply text.
type TurnHandler func(ctx context.Context, msg InboundMessage) (OutboundMessage, error)

// Channel is the interface for visitor-facing presentation adapters.
type Channel interface {
	Start(ctx context.Context, handler TurnHandler) error
	Stop(ctx context.Context) error
	Name() string
}
