package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/auth"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	NetworkUC    *usecase.NetworkUseCase
	CellUC       *usecase.CellUseCase
	CategoryUC   *usecase.CategoryUseCase
	ProductUC    *usecase.ProductUseCase
	ReceiptUC    *usecase.ReceiptUseCase
	WithdrawalUC *usecase.WithdrawalUseCase
	StockUC      *usecase.StockUseCase
	DashboardUC  *usecase.DashboardUseCase
	JWTSecret    string
}

// Router registra as rotas da API. Login é público; todo o resto exige
// Bearer Token. Cadastro de usuários e remoções são restritos a ADMIN.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Rotas protegidas (exigem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(entity.RoleAdmin)

	// Administração de usuários (ADMIN)
	protected.Post("/auth/register", adminOnly, authHandler.Register)
	protected.Get("/auth/usuarios", adminOnly, authHandler.ListUsers)
	protected.Delete("/auth/usuarios/:id", adminOnly, authHandler.DeactivateUser)

	// Redes
	networks := protected.Group("/redes")
	networkHandler := NewNetworkHandler(deps.NetworkUC)
	networks.Post("/", networkHandler.Create)
	networks.Get("/", networkHandler.List)
	networks.Get("/:id", networkHandler.GetByID)
	networks.Put("/:id", networkHandler.Update)
	networks.Delete("/:id", adminOnly, networkHandler.Deactivate)

	// Células (CRUD + doações de kg + extrato)
	cells := protected.Group("/celulas")
	cellHandler := NewCellHandler(deps.CellUC)
	cells.Post("/", cellHandler.Create)
	cells.Get("/", cellHandler.List)
	cells.Get("/:id", cellHandler.GetByID)
	cells.Put("/:id", cellHandler.Update)
	cells.Delete("/:id", adminOnly, cellHandler.Deactivate)
	cells.Post("/:id/recebimento", cellHandler.RegisterDonation)
	cells.Get("/:id/historico", cellHandler.History)
	cells.Post("/:id/reconcile", adminOnly, cellHandler.Reconcile)

	// Categorias
	categories := protected.Group("/categorias")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	// Produtos
	products := protected.Group("/produtos")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Deactivate)

	// Recebimentos (entrada de estoque)
	receipts := protected.Group("/recebimentos")
	receiptHandler := NewReceiptHandler(deps.ReceiptUC)
	receipts.Post("/", receiptHandler.Create)
	receipts.Get("/", receiptHandler.List)
	receipts.Get("/:id", receiptHandler.GetByID)

	// Retiradas (saída de estoque)
	withdrawals := protected.Group("/retiradas")
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalUC)
	withdrawals.Post("/", withdrawalHandler.Create)
	withdrawals.Get("/", withdrawalHandler.List)
	withdrawals.Get("/:id", withdrawalHandler.GetByID)

	// Estoque (consulta + reconciliação)
	stock := protected.Group("/estoque")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/", stockHandler.List)
	stock.Get("/:produtoId", stockHandler.GetByProduct)
	stock.Get("/:produtoId/movimentos", stockHandler.Movements)
	stock.Post("/:produtoId/reconcile", adminOnly, stockHandler.Reconcile)

	// Relatórios
	reports := protected.Group("/relatorios")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	reports.Get("/dashboard", dashboardHandler.Get)
}
