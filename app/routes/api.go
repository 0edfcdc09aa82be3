package routes

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/billmate/app/controllers"
	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/realtime"
	"github.com/shashiranjanraj/billmate/pkg/metrics"
	"github.com/shashiranjanraj/billmate/pkg/middleware"
	"github.com/shashiranjanraj/billmate/pkg/rbac"
	"github.com/shashiranjanraj/billmate/pkg/reqid"
	"github.com/shashiranjanraj/billmate/pkg/router"
	"github.com/shashiranjanraj/billmate/pkg/ws"
)

// RegisterAPI wires the full HTTP surface. Catalog management is
// admin-only; selling and reporting are open to any authenticated staff.
func RegisterAPI(r *router.Router) {
	r.Use(reqid.Middleware())
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	authController := controllers.NewAuthController()
	productController := controllers.NewProductController()
	saleController := controllers.NewSaleController()
	reportController := controllers.NewReportController()

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")
	api.Post("/register", "auth.register", authController.Register)
	api.Post("/login", "auth.login", authController.Login)

	staff := api.Group("", middleware.AuthMiddleware)
	staff.Get("/profile", "auth.profile", authController.Profile)

	// Catalog reads — any staff member.
	staff.Get("/products", "products.index", productController.Index)
	staff.Get("/products/low-stock", "products.low_stock", productController.LowStock)
	staff.Get("/products/{id}", "products.show", productController.Show)

	// Catalog writes — admins only.
	admin := staff.Group("", rbac.HasRole(models.RoleAdmin))
	admin.Post("/products", "products.store", productController.Store)
	admin.Put("/products/{id}", "products.update", productController.Update)
	admin.Delete("/products/{id}", "products.destroy", productController.Destroy)
	admin.Post("/products/{id}/image", "products.image", productController.UploadImage)
	admin.Post("/products/{id}/stock/increment", "products.stock.increment", productController.IncrementStock)
	admin.Post("/products/{id}/stock/decrement", "products.stock.decrement", productController.DecrementStock)

	// Till.
	staff.Post("/sales", "sales.store", saleController.Store)
	staff.Get("/sales", "sales.index", saleController.Index)
	staff.Get("/sales/{id}", "sales.show", saleController.Show)

	// Reports.
	staff.Get("/reports/today", "reports.today", reportController.Today)
	staff.Get("/reports/range", "reports.range", reportController.Range)

	// Live dashboard feed.
	staff.Get("/ws/dashboard", "ws.dashboard", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, realtime.Dashboard)
	})
}
