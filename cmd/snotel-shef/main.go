// Command snotel-shef scrapes SNOTEL observations from AWDB, encodes them as
// SHEF bulletin lines (or CSV) and publishes only what changed since the last
// run.
//
// Usage:
//
//	snotel-shef -locid all -params PREC,TOBS,WTEQ,SNWD -duration HOURLY -back 3
//
// With SCHEDULE_INTERVAL set the command keeps running, repeats the scrape on
// that interval and serves /healthz, /readyz, /status and /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/snotel-shef-etl/internal/adapter/awdb"
	httpadapter "github.com/couchcryptid/snotel-shef-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/snotel-shef-etl/internal/adapter/kafka"
	"github.com/couchcryptid/snotel-shef-etl/internal/adapter/snapshot"
	"github.com/couchcryptid/snotel-shef-etl/internal/adapter/stations"
	"github.com/couchcryptid/snotel-shef-etl/internal/config"
	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/couchcryptid/snotel-shef-etl/internal/observability"
	"github.com/couchcryptid/snotel-shef-etl/internal/pipeline"
	"github.com/couchcryptid/snotel-shef-etl/internal/scheduler"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

func main() {
	locID := flag.String("locid", domain.SelectAll, `station publish id, or "all"`)
	params := flag.String("params", "PREC,TOBS,WTEQ,SNWD", "comma separated AWDB element codes")
	duration := flag.String("duration", string(domain.Hourly), "HOURLY or DAILY")
	back := flag.Int("back", 3, "number of periods to look back")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		slog.Error("failed to open log file", "error", err, "path", cfg.LogFile)
		os.Exit(1)
	}
	defer closeLog()

	logger := observability.NewLogger(cfg, logOut)
	metrics := observability.NewMetrics()

	fs := afero.NewOsFs()
	refs, err := stations.LoadReferenceTable(fs, cfg.MetaFile)
	if err != nil {
		logger.Error("failed to load station reference table", "error", err, "path", cfg.MetaFile)
		os.Exit(1)
	}

	client := awdb.NewClient(cfg.AWDBBaseURL, cfg.UserAgent, cfg.RequestTimeout, metrics, logger)
	var metadata pipeline.MetadataFetcher = client
	if cfg.MetadataCacheSize > 0 && cfg.ScheduleInterval > 0 {
		metadata = awdb.NewCachedMetadata(client, cfg.MetadataCacheSize, metrics)
		logger.Info("station metadata cache enabled", "cache_size", cfg.MetadataCacheSize)
	}

	deps := pipeline.Deps{
		Observations: client,
		Metadata:     metadata,
		Store:        snapshot.NewStore(fs),
		Stations:     refs,
		Clock:        clockwork.NewRealClock(),
		Logger:       logger,
		Metrics:      metrics,
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		deps.Publisher = writer
		logger.Info("kafka delta publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(deps, pipeline.Options{
		Format:      domain.Format(strings.ToLower(cfg.OutputFormat)),
		ProductID:   cfg.ProductID,
		SourceCode:  cfg.SourceCode,
		NetworkCode: cfg.NetworkCode,
		MaxCallIDs:  cfg.MaxCallIDs,
		StateDir:    cfg.StateDir,
		PublishDir:  cfg.PublishDir,
	})

	req := pipeline.Request{
		Selector: strings.TrimSpace(*locID),
		Elements: splitList(*params),
		Duration: domain.Duration(strings.ToUpper(strings.TrimSpace(*duration))),
		Back:     *back,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var code int
	if cfg.ScheduleInterval > 0 {
		code = serve(ctx, cfg, p, req, logger)
	} else {
		code = runOnce(ctx, p, req, logger)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if code != 0 {
		closeLog()
		os.Exit(code)
	}
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, req pipeline.Request, logger *slog.Logger) int {
	logger.Info("run starting",
		"selector", req.Selector,
		"elements", req.Elements,
		"duration", req.Duration,
		"back", req.Back,
	)
	if _, err := p.Run(ctx, req); err != nil {
		return 1
	}
	return 0
}

// serve repeats the run on the configured interval until SIGINT or SIGTERM.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, req pipeline.Request, logger *slog.Logger) int {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	sched := scheduler.New(cfg.ScheduleInterval, logger)
	err := sched.Start(ctx, func(ctx context.Context) error {
		_, err := p.Run(ctx, req)
		return err
	})
	if err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return 1
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return 0
}

// openLog returns stdout, or path truncated for this process when set.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o664)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
