package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/auth"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/infrastructure/postgres"
	httpRouter "github.com/oalvocuritiba/kg-do-amor-api/internal/interfaces/http"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/config"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	// Repositórios
	userRepo := postgres.NewUserRepository(pool)
	networkRepo := postgres.NewNetworkRepository(pool)
	cellRepo := postgres.NewCellRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)
	withdrawalRepo := postgres.NewWithdrawalRepository(pool)
	historyRepo := postgres.NewKGHistoryRepository(pool)
	stockReadRepo := postgres.NewStockReadRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)

	// Motores do ledger: estoque (chave produto) e doações (chave célula).
	stockEngine := ledger.New[int64](postgres.NewStockLedgerStore(pool), productRepo, log.Zerolog())
	cellEngine := ledger.New[int64](postgres.NewCellLedgerStore(pool), cellRepo, log.Zerolog())

	// Casos de uso
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.ExpMinutes,
		Issuer:     cfg.JWT.Issuer,
	})
	networkUC := usecase.NewNetworkUseCase(networkRepo)
	cellUC := usecase.NewCellUseCase(cellRepo, networkRepo, historyRepo, cellEngine)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	receiptUC := usecase.NewReceiptUseCase(receiptRepo, stockEngine, log.Zerolog())
	withdrawalUC := usecase.NewWithdrawalUseCase(withdrawalRepo, stockEngine, log.Zerolog())
	stockUC := usecase.NewStockUseCase(stockReadRepo, productRepo, stockEngine)
	dashboardUC := usecase.NewDashboardUseCase(dashboardRepo)

	// Varredura periódica de reconciliação dos dois ledgers.
	if cfg.Reconcile.SweepInterval > 0 {
		sweeper := usecase.NewReconcileSweeper(
			stockEngine, cellEngine,
			productRepo, cellRepo,
			cfg.Reconcile.Repair,
			log.Zerolog(),
		)
		go sweeper.Run(ctx, cfg.Reconcile.SweepInterval)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "KG do Amor API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		NetworkUC:    networkUC,
		CellUC:       cellUC,
		CategoryUC:   categoryUC,
		ProductUC:    productUC,
		ReceiptUC:    receiptUC,
		WithdrawalUC: withdrawalUC,
		StockUC:      stockUC,
		DashboardUC:  dashboardUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
