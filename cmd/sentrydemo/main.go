// Command sentrydemo wires a Sentry coordinator to a real Redis instance
// and exercises it against a handful of simulated login attempts, the
// same boot order a real login service would follow: load config, build
// the logger, register metrics, connect to the store, then run.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/axil/redissentry-core/filter"
	"github.com/axil/redissentry-core/internal/config"
	"github.com/axil/redissentry-core/internal/logging"
	"github.com/axil/redissentry-core/internal/metrics"
	"github.com/axil/redissentry-core/internal/store"
	"github.com/axil/redissentry-core/sentry"
)

// knownAccounts stands in for a user directory lookup in this demo.
var knownAccounts = map[string]bool{"alice": true, "bob": true}

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	rdb := store.New(cfg.RedisHost+":"+cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
	rnd := filter.NewLockedSource(time.Now().UnixNano())

	caps := sentry.Capabilities{
		UserExists: func(_ context.Context, account string) (bool, error) {
			return knownAccounts[account], nil
		},
		History: func(_ context.Context, kind, subject, account string, count int) {
			logger.Info("history record",
				zap.String("kind", kind),
				zap.String("subject", subject),
				zap.String("account", account),
				zap.Int("count", count),
			)
		},
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		logger.Info("metrics listening", zap.String("addr", ":9090"))
		if err := http.ListenAndServe(":9090", mux); err != nil {
			log.Fatal("metrics server failed:", err)
		}
	}()

	runDemo(rdb, logger, rnd, caps)
}

// runDemo simulates repeated failed logins for one address/account pair
// so the escalation chain (FilterA -> ZA) is visible in the logs and in
// the /metrics endpoint: the fifth failure places the A-block and the
// ninth retry while blocked lands the ZA escalation. FilterB never blocks
// here, since all attempts come from a single address.
func runDemo(rdb store.Client, logger *zap.Logger, rnd filter.Source, caps sentry.Capabilities) {
	ctx := context.Background()
	ip := "203.0.113.7"
	account := "alice"

	for attempt := 1; attempt <= 14; attempt++ {
		s := sentry.New(ip, account, rdb, logger, rnd, caps)

		if msg := s.Ask(ctx); msg != "" {
			logger.Info("attempt rejected before auth", zap.Int("attempt", attempt), zap.String("message", msg))
			continue
		}

		msg := s.Inform(ctx, false)
		logger.Info("attempt recorded",
			zap.Int("attempt", attempt),
			zap.Bool("blocked", msg != ""),
			zap.String("message", msg),
		)
	}
}
