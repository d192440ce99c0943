package domain

import "context"

// Command is a single candidate result: something that can be listed,
// previewed, executed and copied. Higher scores are preferred.
type Command interface {
	Score() int
	String() string
	Preview() Preview
	CopyText() string
	Execute() error
}

// Sink receives commands found by background search work.
// Put must return promptly once ctx is cancelled.
type Sink interface {
	Put(ctx context.Context, cmd Command) error
}

// Commander searches for commands matching keywords and pushes them into a sink.
// Implementations may block on external programs and must honour ctx.
type Commander interface {
	Order(ctx context.Context, keywords []string, sink Sink) error
}

// SyncCommander searches synchronously and returns a finite sequence.
type SyncCommander interface {
	Match(keywords []string) []Command
}

// Marker is implemented by commands that render a custom list marker.
type Marker interface {
	Marker() string
}
