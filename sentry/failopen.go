package sentry

import (
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/axil/redissentry-core/internal/metrics"
)

// failOpen runs fn and guarantees the caller always gets a usable string
// back: a store error or a recovered panic is logged, counted, and
// degraded to the empty string ("let this attempt through") rather than
// propagated. A broken rate limiter must never be the reason a login
// endpoint goes down.
func failOpen(logger *zap.Logger, op string, fn func() (string, error)) (result string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sentry recovered from panic",
				zap.String("op", op),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
			result = ""
		}
	}()

	msg, err := fn()
	if err != nil {
		logger.Error("sentry operation failed, failing open", zap.String("op", op), zap.Error(err))
		metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
		return ""
	}
	return msg
}
