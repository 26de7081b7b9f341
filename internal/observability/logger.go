package observability

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey string

const (
	ctxKeyConversation ctxKey = "conversation"
)

// basic global logger, JSON to stdout.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func Logger() *slog.Logger {
	return logger
}

// WithFields returns a logger with additional fields.
func WithFields(kv ...any) *slog.Logger {
	return logger.With(kv...)
}

// WithConversation stores the conversation scope (owner/partner) in the context.
func WithConversation(ctx context.Context, owner, partner string) context.Context {
	return context.WithValue(ctx, ctxKeyConversation, owner+"/"+partner)
}

// LoggerFromContext adds the conversation scope if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	conv, _ := ctx.Value(ctxKeyConversation).(string)
	if conv == "" {
		return logger
	}
	return logger.With("conversation", conv)
}
