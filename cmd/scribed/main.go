// Command scribed is the transcription service: it accepts job submissions
// over HTTP, pulls recordings from object storage, cuts them into
// overlapping segments, transcribes the segments through a speech API, and
// stitches the results into a single transcript.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/scribe/config"
	"github.com/skillsenselab/scribe/jobstore"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/media"
	"github.com/skillsenselab/scribe/objectstore"
	"github.com/skillsenselab/scribe/objectstore/local"
	"github.com/skillsenselab/scribe/objectstore/s3"
	"github.com/skillsenselab/scribe/pipeline"
	"github.com/skillsenselab/scribe/server"
	"github.com/skillsenselab/scribe/speech/openai"
	"github.com/skillsenselab/scribe/version"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched if empty)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "scribed:", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Log, cfg.Name)
	build := version.Get()
	log.Info("starting", logger.Fields(
		"environment", cfg.Environment,
		"version", build.Version,
		"commit", build.GitCommit,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objects, err := newObjectStore(ctx, &cfg.ObjectStore)
	if err != nil {
		return err
	}

	jobs := jobstore.NewRedisStore(cfg.JobStore, log)
	defer jobs.Close()
	if err := jobs.Ping(ctx); err != nil {
		return fmt.Errorf("job store unreachable at %s: %w", cfg.JobStore.Addr, err)
	}

	provider := openai.NewProvider(cfg.Speech)

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Jobs:        jobs,
		Objects:     objects,
		Acquirer:    pipeline.NewAcquirer(objects, log),
		Prober:      media.NewProber(cfg.Pipeline.FFprobeBinary),
		Segmenter:   pipeline.NewSegmenter(media.NewCutter(cfg.Pipeline.FFmpegBinary), cfg.Pipeline.Segmenter, log),
		Transcriber: pipeline.NewScheduler(provider, cfg.Pipeline.Scheduler, log),
		Stitcher:    pipeline.NewStitcher(cfg.Pipeline.Segmenter.OverlapSeconds),
		WorkDir:     cfg.Pipeline.WorkDir,
		Logger:      log,
	})

	srv := server.New(cfg.Server, log)
	handler := server.NewHandler(jobs, orchestrator, map[string]server.HealthChecker{
		"jobstore": jobs.Ping,
		"speech": func(ctx context.Context) error {
			if !provider.IsAvailable(ctx) {
				return fmt.Errorf("%s not reachable", provider.Name())
			}
			return nil
		},
	}, log)
	handler.Register(srv.Engine(), srv.SubmitRateLimit())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func newObjectStore(ctx context.Context, cfg *objectstore.Config) (objectstore.Store, error) {
	switch cfg.Provider {
	case objectstore.ProviderS3:
		return s3.New(ctx, cfg)
	case objectstore.ProviderLocal:
		return local.New(cfg.BasePath)
	default:
		return nil, fmt.Errorf("unknown object store provider %q", cfg.Provider)
	}
}
