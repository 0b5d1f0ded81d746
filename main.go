package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/api"
	"github.com/comandaclub/comanda/internal/mongo"
	"github.com/comandaclub/comanda/internal/pos"
	"github.com/comandaclub/comanda/internal/state"
	"github.com/comandaclub/comanda/internal/stock"
	"github.com/comandaclub/comanda/internal/syncer"
	"github.com/comandaclub/comanda/pkg"
)

const (
	appNamespace = "COMANDA"
	appName      = "comanda"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	restaurantID, err := uuid.Parse(config.GetStringOrDef("restaurant.id", ""))
	if err != nil {
		log.Fatalf("%s(%s) needs a valid restaurant.id: %v", appName, appVersion, err)
	}

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	docStore := mongo.NewDocStore(db, logger)
	menuRepo := mongo.NewMenuItemRepo(db)
	tableRepo := mongo.NewTableRepo(db)
	receiptRepo := mongo.NewReceiptRepo(db)
	shiftRepo := mongo.NewShiftRepo(db)
	stockRepo := mongo.NewStockRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	menuCache := pos.NewMenuItemCache(menuRepo, logger)
	menuSub := pos.NewMenuSubscriber(sub, menuCache, logger)

	var computeClient stock.Client
	stockURL, _ := config.GetString("services.stock.url")
	if stockURL != "" {
		computeClient = stock.NewHTTPClient(stockURL)
	} else {
		logger.Info("stock compute endpoint not configured, applying inventory deltas locally")
		computeClient = stock.NewDisabledClient()
	}

	queue := syncer.NewQueue(computeClient, stockRepo, receiptRepo, pub, syncer.QueueOptions{
		Interval: durationOrDef(config, "sync.queue.interval", 10*time.Second),
		Logger:   logger,
	})

	container := state.NewContainer(restaurantID, logger)
	orchestrator := syncer.NewOrchestrator(container, docStore, menuCache, queue, pub, syncer.Options{
		DebounceDelay:        durationOrDef(config, "sync.debounce.delay", 500*time.Millisecond),
		DebounceMaxDelay:     durationOrDef(config, "sync.debounce.maxdelay", 5*time.Second),
		DedupeTTL:            durationOrDef(config, "sync.dedupe.ttl", 2*time.Second),
		CompletionRetryDelay: durationOrDef(config, "sync.completion.retrydelay", 3*time.Second),
		Logger:               logger,
	})

	hd := api.HandlerDeps{
		Container: container,
		MenuRepo:  menuRepo,
		MenuCache: menuCache,
		TableRepo: tableRepo,
		Receipts:  receiptRepo,
		Shifts:    shiftRepo,
		Publisher: pub,
	}
	handler := api.NewHandler(hd, config, logger)

	publisherLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	cacheLifecycle := aqm.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			if err := menuCache.Warm(ctx, restaurantID); err != nil {
				logger.Info("menu cache warmup failed", "error", err)
			}
			return nil
		},
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly())

	lifecycles := []interface{}{
		aqm.LifecycleHooks{OnStop: baseRepo.Stop},
		cacheLifecycle,
		menuSub,
		orchestrator,
		queue,
		publisherLifecycle,
		subLifecycle,
	}

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

func durationOrDef(config *aqm.Config, key string, def time.Duration) time.Duration {
	raw, err := config.GetString(key)
	if err != nil || raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
