package swapvault

import (
	"context"
	"regexp"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is the invocation context threaded through the host and programs.
type Context = context.Context

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeyChainID
)

var (
	// DefaultLogger is used for all context that have not
	// set anything themselves
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID is the RegExp to ensure valid chain IDs
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok {
		return DefaultLogger
	}
	return val
}

// WithChainID sets the chain id for this context. Transactions sign over it.
//
// Panics if the chain id was already set or is not valid.
func WithChainID(ctx Context, chainID string) Context {
	if _, ok := GetChainID(ctx); ok {
		panic("Chain ID already set in this context")
	}
	if !IsValidChainID(chainID) {
		panic("Invalid chain ID " + chainID)
	}
	return context.WithValue(ctx, contextKeyChainID, chainID)
}

// GetChainID returns the chain id set for this context, if any.
func GetChainID(ctx Context) (string, bool) {
	val, ok := ctx.Value(contextKeyChainID).(string)
	return val, ok
}
