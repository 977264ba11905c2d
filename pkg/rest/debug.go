package rest

import (
	"context"
	"time"

	"github.com/veiloq/bitpin-connector/pkg/logging"
)

// DebugConfig holds configuration for the debug session wrapper.
type DebugConfig struct {
	LogRequestBody  bool
	LogResponseBody bool

	// MaxBodyLogSize caps logged bodies to keep log volume sane.
	MaxBodyLogSize int
}

// DefaultDebugConfig returns a default debug configuration
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		LogRequestBody:  true,
		LogResponseBody: true,
		MaxBodyLogSize:  4096,
	}
}

// DebugSession wraps a Doer and logs every exchange at debug level,
// including timing and truncated bodies. Useful when diagnosing signed
// requests against the live exchange.
type DebugSession struct {
	inner  Doer
	config *DebugConfig
	logger logging.Logger
}

// NewDebugSession wraps the given Doer. A nil config uses
// DefaultDebugConfig; a nil logger gets a debug-level zap logger so the
// wrapper is useful out of the box.
func NewDebugSession(inner Doer, config *DebugConfig, logger logging.Logger) *DebugSession {
	if config == nil {
		config = DefaultDebugConfig()
	}
	if logger == nil {
		logger = logging.NewZapLogger(logging.WithDebugLevel())
	}
	return &DebugSession{
		inner:  inner,
		config: config,
		logger: logger,
	}
}

// Do implements the Doer interface.
func (d *DebugSession) Do(ctx context.Context, req *Request) (*Response, error) {
	fields := []logging.Field{
		logging.String("method", req.Method),
		logging.String("url", req.URL),
	}
	if d.config.LogRequestBody && req.JSONBody != nil {
		fields = append(fields, logging.Field{Key: "request_body", Value: req.JSONBody})
	}
	d.logger.Debug("outgoing request", fields...)

	start := time.Now()
	resp, err := d.inner.Do(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		d.logger.Debug("request failed",
			logging.String("method", req.Method),
			logging.String("url", req.URL),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
		)
		return nil, err
	}

	respFields := []logging.Field{
		logging.String("method", req.Method),
		logging.String("url", req.URL),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", elapsed),
	}
	if d.config.LogResponseBody {
		respFields = append(respFields, logging.String("response_body", d.truncate(resp.Body)))
	}
	d.logger.Debug("incoming response", respFields...)

	return resp, nil
}

// Close implements the Doer interface.
func (d *DebugSession) Close() error {
	return d.inner.Close()
}

func (d *DebugSession) truncate(body []byte) string {
	if d.config.MaxBodyLogSize > 0 && len(body) > d.config.MaxBodyLogSize {
		return string(body[:d.config.MaxBodyLogSize]) + "...(truncated)"
	}
	return string(body)
}
