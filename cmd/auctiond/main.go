package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/rom1247/ntf-market/internal/auction/application"
	"github.com/rom1247/ntf-market/internal/auction/domain"
	"github.com/rom1247/ntf-market/internal/auction/engine"
	auctionhttp "github.com/rom1247/ntf-market/internal/auction/infra/http"
	"github.com/rom1247/ntf-market/internal/auction/infra/repository/postgres"
	"github.com/rom1247/ntf-market/internal/auction/pricing"
	"github.com/rom1247/ntf-market/internal/custody"
	"github.com/rom1247/ntf-market/internal/fees"
	"github.com/rom1247/ntf-market/internal/shared/config"
	"github.com/rom1247/ntf-market/internal/shared/db"
	"github.com/rom1247/ntf-market/internal/shared/db/migrations"
	"github.com/rom1247/ntf-market/internal/shared/httpserver"
	"github.com/rom1247/ntf-market/internal/shared/logger"
	ws "github.com/rom1247/ntf-market/internal/shared/websocket"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()

	log.Info("Starting auctiond...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration load failed", zap.Error(err))
	}
	log.Info("Configuration loaded",
		zap.Uint32("feeRateBps", cfg.FeeRateBps),
		zap.String("feeAdmin", cfg.FeeAdmin.String()),
	)

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(cfg); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.GetPostgresDBPool(ctx, cfg)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	// collaborators
	engineAccount := uuid.New()
	bank := custody.NewBank()
	vault := custody.NewAssetVault(engineAccount)
	accountant := fees.NewAccountant(cfg.FeeRateBps, cfg.FeeAdmin, engineAccount, bank)
	catalog := pricing.NewCatalog()
	feedRegistry := pricing.NewFeedRegistry()
	normalizer := pricing.NewNormalizer(feedRegistry, bank)

	// event stream
	hub := ws.NewHub()
	go hub.Run()
	broadcaster := ws.NewEventBroadcaster(hub)

	// the core
	eng := engine.New(engine.Options{
		Ledger:   domain.NewLedger(),
		Feeds:    feedRegistry,
		Norm:     normalizer,
		Custody:  vault,
		Bank:     bank,
		Fees:     accountant,
		Notifier: broadcaster,
		Account:  engineAccount,
	})

	// application layer
	auctionRepo := postgres.NewAuctionRepository(pool)
	bidRepo := postgres.NewBidRepository(pool)
	service := application.NewAuctionService(
		application.NewCreateAuctionUseCase(eng, auctionRepo, pool),
		application.NewPlaceBidUseCase(eng, auctionRepo, bidRepo, pool),
		application.NewEndAuctionUseCase(eng, auctionRepo, pool),
		application.NewGetAuctionUseCase(eng),
	)

	// transport
	server := httpserver.NewServer()
	auctionhttp.NewAuctionHandler(service, catalog).Register(server.App())
	auctionhttp.NewAdminHandler(catalog, bank, vault, accountant, engineAccount).Register(server.App())
	auctionhttp.RegisterEventStream(server.App(), hub)

	if err := server.Start(cfg.ListenAddr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
