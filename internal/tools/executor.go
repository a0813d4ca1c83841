package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/nutriverse/nutribot/internal/profile"
)

// Request carries the turn data handlers read.
type Request struct {
	UserID   string
	Message  string
	Image    []byte
	MIMEType string
	// Profile is a snapshot taken before the tools run.
	Profile profile.Profile
}

// Handler runs one tool. Returning an error wrapping ErrInsufficientInput
// marks the result as insufficient input instead of failed.
type Handler func(ctx context.Context, req Request) (any, error)

// Executor dispatches tool kinds to handlers.
type Executor struct {
	handlers    map[Kind]Handler
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithConcurrency caps how many handlers run at once.
func WithConcurrency(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithTimeout bounds each handler invocation.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithHandler installs or replaces the handler for kind.
func WithHandler(kind Kind, h Handler) ExecutorOption {
	return func(e *Executor) { e.handlers[kind] = h }
}

// NewExecutor creates an Executor with the handlers built from deps.
func NewExecutor(deps Deps, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Executor{
		handlers:    deps.handlers(),
		concurrency: 4,
		timeout:     30 * time.Second,
		logger:      logger.With("component", "tool_executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run invokes every requested tool and returns one result per distinct
// kind. A failing or panicking handler only affects its own result.
func (e *Executor) Run(ctx context.Context, req Request, kinds []Kind) map[Kind]Result {
	results := make(map[Kind]Result, len(kinds))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, kind := range lo.Uniq(kinds) {
		h, ok := e.handlers[kind]
		if !ok {
			e.logger.WarnContext(ctx, "Unknown tool requested", "tool", kind)
			mu.Lock()
			results[kind] = Result{Tool: kind, Status: StatusNotFound, Error: "tool not found"}
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			r := e.invoke(ctx, kind, h, req)
			mu.Lock()
			results[kind] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Executor) invoke(ctx context.Context, kind Kind, h Handler, req Request) (res Result) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "Tool panicked", "tool", kind, "panic", r)
			res = Result{Tool: kind, Status: StatusError, Error: fmt.Sprintf("panic: %v", r)}
		}
		e.logger.DebugContext(ctx, "Tool finished", "tool", kind, "status", res.Status, "duration", time.Since(start))
	}()

	payload, err := h(ctx, req)
	switch {
	case err == nil:
		return Result{Tool: kind, Status: StatusOK, Payload: payload}
	case errors.Is(err, ErrInsufficientInput):
		return Result{Tool: kind, Status: StatusInsufficientInput, Error: strings.TrimPrefix(err.Error(), ErrInsufficientInput.Error()+": ")}
	default:
		e.logger.WarnContext(ctx, "Tool failed", "tool", kind, "error", err)
		return Result{Tool: kind, Status: StatusError, Error: err.Error()}
	}
}
