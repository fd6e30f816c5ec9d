package kit

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns a Middleware that logs every invocation of the wrapped
// endpoint with its transport, duration and outcome.
func Logging(logger *slog.Logger, name string) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				logger.Warn("kit: endpoint failed",
					"endpoint", name,
					"transport", GetTransport(ctx),
					"elapsed", time.Since(start),
					"error", err)
				return nil, err
			}
			logger.Debug("kit: endpoint served",
				"endpoint", name,
				"transport", GetTransport(ctx),
				"elapsed", time.Since(start))
			return resp, nil
		}
	}
}
