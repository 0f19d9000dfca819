package transport

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mbx/internal/retry"
	"mbx/pkg/core"
)

// Executor runs calls through a Doer under a retry policy. Only transport
// failures are retried; any HTTP response ends the loop.
type Executor struct {
	doer   Doer
	policy *retry.Policy
	logger zerolog.Logger
}

func NewExecutor(doer Doer, policy *retry.Policy, logger zerolog.Logger) *Executor {
	if policy == nil {
		policy = retry.NewPolicy(1, 0, 0)
	}
	return &Executor{
		doer:   doer,
		policy: policy,
		logger: logger,
	}
}

// Execute sends call, bounding each attempt by call.Timeout and rebuilding
// the query through call.BuildQuery when it is set. When every
// attempt fails it returns a *core.TransportError wrapping the last failure.
func (e *Executor) Execute(ctx context.Context, call *Call) (*Response, error) {
	var resp *Response

	attempts, err := e.policy.Do(ctx, func(int) error {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if call.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, call.Timeout)
		}
		defer cancel()

		if call.BuildQuery != nil {
			call.Query = call.BuildQuery()
		}
		r, err := e.doer.Do(attemptCtx, call)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		e.logger.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("wait", wait).
			Str("method", call.Method).
			Str("url", call.URL).
			Msg("retrying transport failure")
	})
	if err != nil {
		return nil, &core.TransportError{
			Method:   call.Method,
			URL:      call.URL,
			Attempts: attempts,
			Err:      err,
		}
	}
	return resp, nil
}
