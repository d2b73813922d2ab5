package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/docify/internal/api"
	"github.com/jonesrussell/docify/internal/config"
	"github.com/jonesrussell/docify/internal/database"
	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/logger"
	"github.com/jonesrussell/docify/internal/pipeline"
	"github.com/jonesrussell/docify/internal/queue"
	"github.com/jonesrussell/docify/internal/reconciler"
)

// migrateTimeout bounds startup schema application.
const migrateTimeout = 30 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and analysis worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			return runServe(cmd.Context(), cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log logger.Interface) error {
	db, err := database.Connect(database.Config(cfg.Database))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(ctx, migrateTimeout)
	defer cancelMigrate()
	if migrateErr := database.Migrate(migrateCtx, db); migrateErr != nil {
		return migrateErr
	}

	repo := database.NewDocumentRepository(db)
	orchestrator := newOrchestrator(cfg, repo, log)

	var producer *queue.Producer
	var consumer *queue.Consumer

	if cfg.Redis.Enabled {
		streams, streamsErr := queue.NewStreamsClient(queue.StreamsConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if streamsErr != nil {
			return streamsErr
		}
		defer streams.Close()

		producer = queue.NewProducer(streams)

		consumer, err = queue.NewConsumer(streams, queue.ConsumerConfig{
			ConsumerID: "docify-" + uuid.New().String()[:8],
		})
		if err != nil {
			return err
		}
		if initErr := consumer.Initialize(ctx); initErr != nil {
			return initErr
		}
	}

	var enqueuer api.Enqueuer
	if producer != nil {
		enqueuer = producer
	}

	handler := api.NewDocumentsHandler(repo, orchestrator, enqueuer, log)
	server := api.NewServer(cfg.Server.Addr, api.SetupRouter(log, handler), log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if consumer != nil {
		go runWorker(workerCtx, consumer, repo, orchestrator, log)
	}

	var sweep *reconciler.Reconciler
	if cfg.Reconciler.Enabled && producer != nil {
		sweep = reconciler.New(repo, producer, log, reconciler.Config{
			Schedule:   cfg.Reconciler.Schedule,
			StaleAfter: cfg.Reconciler.StaleAfter,
		})
		if startErr := sweep.Start(); startErr != nil {
			return startErr
		}
		defer sweep.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutdown signal received", "signal", sig.String())
	case serveErr := <-errCh:
		if serveErr != nil {
			return serveErr
		}
	}

	cancelWorker()
	return server.Stop(context.Background())
}

// runWorker consumes analysis requests until the context is cancelled.
func runWorker(
	ctx context.Context,
	consumer *queue.Consumer,
	repo *database.DocumentRepository,
	orchestrator *pipeline.Orchestrator,
	log logger.Interface,
) {
	workerLog := log.WithComponent("worker")
	workerLog.Info("analysis worker started")

	for {
		if ctx.Err() != nil {
			workerLog.Info("analysis worker stopped")
			return
		}

		requests, err := consumer.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			workerLog.Error("failed to read analysis requests", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}

		for _, request := range requests {
			processRequest(ctx, request, consumer, repo, orchestrator, workerLog)
		}
	}
}

// processRequest runs one queued document and acknowledges the message.
// Pipeline failures are terminal for the document, so the message is
// acknowledged either way.
func processRequest(
	ctx context.Context,
	request *queue.AnalysisRequest,
	consumer *queue.Consumer,
	repo *database.DocumentRepository,
	orchestrator *pipeline.Orchestrator,
	log logger.Interface,
) {
	doc, err := repo.GetByID(ctx, request.DocumentID)
	if err != nil {
		log.Warn("queued document not found, dropping request",
			"document_id", request.DocumentID,
			"error", err.Error(),
		)
		_ = consumer.Acknowledge(ctx, request)
		return
	}

	if doc.Status != domain.StatusPending {
		log.Debug("skipping document not in pending state",
			"document_id", doc.ID,
			"status", string(doc.Status),
		)
		_ = consumer.Acknowledge(ctx, request)
		return
	}

	if runErr := orchestrator.Run(ctx, doc); runErr != nil {
		log.Warn("queued run failed", "document_id", doc.ID, "error", runErr.Error())
	}

	_ = consumer.Acknowledge(ctx, request)
}
