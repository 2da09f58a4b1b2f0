package observability

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-forecast/internal/config"
	"github.com/riskibarqy/fantasy-forecast/internal/platform/logging"
)

const pprofShutdownTimeout = 5 * time.Second

// Start brings up tracing, profiling and the pprof listener as configured.
// The returned shutdown flushes and stops them in reverse order.
func Start(cfg config.Config, logger *logging.Logger) (func(context.Context), error) {
	if logger == nil {
		logger = logging.Default()
	}

	shutdownUptrace, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, err
	}
	stopPyroscope, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownUptrace(context.Background())
		return nil, err
	}
	pprofServer, err := StartPprofServer(cfg, logger)
	if err != nil {
		_ = stopPyroscope()
		_ = shutdownUptrace(context.Background())
		return nil, err
	}

	return func(ctx context.Context) {
		if err := StopPprofServer(pprofServer, logger, pprofShutdownTimeout); err != nil {
			logger.Warn("pprof shutdown failed", "error", err)
		}
		if err := stopPyroscope(); err != nil {
			logger.Warn("pyroscope shutdown failed", "error", err)
		}
		if err := shutdownUptrace(ctx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}, nil
}
