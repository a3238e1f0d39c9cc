package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/stoma-dev/stoma"
)

// Logging creates an interceptor that logs endpoint calls using slog.
// It logs the start and end of each call, including duration and error status.
func Logging(logger *slog.Logger) stoma.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req *stoma.RawRequest, next stoma.Invoker) (*stoma.RawResponse, error) {
		start := time.Now()

		logger.InfoContext(ctx, "request started",
			slog.String("method", req.Method),
			slog.String("url", req.URL),
		)

		resp, err := next(ctx, req)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "request failed",
				slog.String("method", req.Method),
				slog.String("url", req.URL),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "request completed",
				slog.String("method", req.Method),
				slog.String("url", req.URL),
				slog.Int("status", resp.Status),
				slog.Duration("duration", duration),
			)
		}

		return resp, err
	}
}

// SetHeader creates an interceptor that sets a static header on every
// outgoing request, e.g. an Authorization token shared by all endpoints.
func SetHeader(key, value string) stoma.Interceptor {
	return func(ctx context.Context, req *stoma.RawRequest, next stoma.Invoker) (*stoma.RawResponse, error) {
		if req.Header == nil {
			req.Header = http.Header{}
		}
		req.Header.Set(key, value)
		return next(ctx, req)
	}
}
