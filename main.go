package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	_ "github.com/toncenter/ton-activity-go/docs"
	"github.com/toncenter/ton-activity-go/index/activities"
	"github.com/toncenter/ton-activity-go/index/cache"
	"github.com/toncenter/ton-activity-go/index/emulation"
	"github.com/toncenter/ton-activity-go/index/models"
	"github.com/toncenter/ton-activity-go/index/services"
	"github.com/toncenter/ton-activity-go/index/transfer"
)

type Settings struct {
	Bind           string
	InstanceName   string
	RedisDsn       string
	Prefork        bool
	Debug          bool
	Request        services.RequestSettings
	TestnetRequest services.RequestSettings
}

//	@title			TON Activity API
//	@version		0.1.0
//	@description	Wallet activity history with real fees, transfer emulation and broadcast on top of the toncenter indexer API.

func main() {
	var settings Settings
	var timeout_ms int

	flag.StringVar(&settings.Bind, "bind", ":8000", "Bind address")
	flag.StringVar(&settings.InstanceName, "name", "Go", "Instance name to show in Swagger UI")
	flag.StringVar(&settings.RedisDsn, "redis-dsn", "", "Redis DSN for token and wallet state caches")
	flag.StringVar(&settings.Request.Endpoint, "endpoint", "https://toncenter.com", "Mainnet toncenter API endpoint")
	flag.StringVar(&settings.Request.EmulateEndpoint, "emulate-endpoint", "", "Mainnet emulation endpoint, defaults to -endpoint")
	flag.StringVar(&settings.Request.ApiKey, "apikey", "", "Mainnet toncenter API key")
	flag.StringVar(&settings.TestnetRequest.Endpoint, "testnet-endpoint", "", "Testnet toncenter API endpoint, testnet is disabled when empty")
	flag.StringVar(&settings.TestnetRequest.EmulateEndpoint, "testnet-emulate-endpoint", "", "Testnet emulation endpoint")
	flag.StringVar(&settings.TestnetRequest.ApiKey, "testnet-apikey", "", "Testnet toncenter API key")
	flag.BoolVar(&settings.Prefork, "prefork", false, "Prefork workers")
	flag.BoolVar(&settings.Debug, "debug", false, "Run service in debug mode")
	flag.IntVar(&timeout_ms, "query-timeout", 3000, "Upstream request timeout in milliseconds")
	flag.IntVar(&settings.Request.DefaultLimit, "default-limit", 100, "Default value for limit")
	flag.IntVar(&settings.Request.MaxLimit, "max-limit", 1000, "Maximum value for limit")
	flag.Parse()
	settings.Request.Timeout = time.Duration(timeout_ms) * time.Millisecond
	settings.TestnetRequest.Timeout = settings.Request.Timeout
	settings.TestnetRequest.DefaultLimit = settings.Request.DefaultLimit
	settings.TestnetRequest.MaxLimit = settings.Request.MaxLimit

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if settings.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	var manager *cache.Manager
	if len(settings.RedisDsn) > 0 {
		redisOptions, err := redis.ParseURL(settings.RedisDsn)
		if err != nil {
			logger.WithError(err).Fatal("Failed to parse Redis DSN")
		}
		redisClient := redis.NewClient(redisOptions)
		defer redisClient.Close()
		manager = cache.NewManager(redisClient)
	} else {
		logger.Warn("Redis DSN is not set, caches are disabled")
	}

	clients := services.Clients{models.Mainnet: services.NewClient(settings.Request, logger)}
	if len(settings.TestnetRequest.Endpoint) > 0 {
		clients[models.Testnet] = services.NewClient(settings.TestnetRequest, logger)
	}
	indexers := make(map[models.Network]activities.Indexer, len(clients))
	emulators := make(map[models.Network]emulation.Backend, len(clients))
	backends := make(map[models.Network]transfer.Backend, len(clients))
	for network, client := range clients {
		indexers[network] = client
		emulators[network] = client
		backends[network] = client
	}

	coordinator := transfer.NewCoordinator(logger)
	server := &Server{
		Settings:  settings,
		Assembler: activities.NewAssembler(indexers, manager, logger),
		Submitter: transfer.NewSubmitter(backends, coordinator, emulation.NewEmulator(emulators, manager, logger), manager, logger),
		Log:       logger,
	}
	app := NewApp(server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("Received shutdown signal, stopping server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Warn("Failed to shut down server")
		}
	}()

	if err := app.Listen(settings.Bind); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
	// unconfirmed transfers keep their wallets locked until they settle
	coordinator.Wait()
	logger.Info("Shutdown complete")
}
