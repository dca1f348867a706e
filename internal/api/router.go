package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-records-backend/config"
	"fleet-records-backend/internal/fleet"
	"fleet-records-backend/internal/mw"
)

var registerFieldNames sync.Once

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.Config) *gin.Engine {
	registerFieldNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(fleet.FieldName)
		}
	})

	r := gin.Default()

	// Global limit per client address, plus a tighter one on login
	rateLimiter := mw.RateLimit(
		mw.NewKeyedRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst),
		mw.ByIP,
	)
	loginLimiter := mw.RateLimit(
		mw.NewKeyedRateLimiter(rate.Limit(cfg.Auth.LoginRateLimitPerS), 5),
		mw.ByIP,
	)

	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL)

	r.Use(mw.RequestID(), rateLimiter, mw.Authenticate(h.tokens, h.svc, cfg.Auth.CookieName))

	// Public machine search
	r.GET("/", caching, h.LookupSerial)
	r.POST("/", h.LookupSerial)

	r.GET(mw.LoginPath, h.LoginForm)
	r.POST(mw.LoginPath, loginLimiter, h.Login)
	r.POST("/auth/logout", h.Logout)

	app := r.Group("/")
	app.Use(mw.RequireActor(), mw.Invalidate(cacheStore))
	{
		app.GET("/dashboard", h.GetDashboard)
		app.GET("/machines", h.ListMachines)
		app.GET("/maintenance", h.ListMaintenance)
		app.GET("/claims", h.ListClaims)
		app.GET("/export/machines", h.ExportMachines)

		app.GET("/machines/create", h.MachineForm)
		app.POST("/machines/create", h.CreateMachine)
		app.GET("/machines/:serial", h.GetMachine)
		app.GET("/machines/:serial/edit", h.EditMachineForm)
		app.POST("/machines/:serial/edit", h.UpdateMachine)
		app.POST("/machines/:serial/delete", h.DeleteMachine)

		app.GET("/machines/:serial/maintenance/create", h.MaintenanceForm)
		app.POST("/machines/:serial/maintenance/create", h.CreateMaintenance)
		app.GET("/maintenance/:id/edit", h.GetMaintenance)
		app.POST("/maintenance/:id/edit", h.UpdateMaintenance)
		app.POST("/maintenance/:id/delete", h.DeleteMaintenance)

		app.GET("/machines/:serial/claims/create", h.ClaimForm)
		app.POST("/machines/:serial/claims/create", h.CreateClaim)
		app.GET("/claims/:id/edit", h.GetClaim)
		app.POST("/claims/:id/edit", h.UpdateClaim)
		app.POST("/claim/:id/delete", h.DeleteClaim)

		app.GET("/lookups/:kind", caching, h.ListLookups)
		app.POST("/lookups/:kind", h.CreateLookup)
		app.POST("/lookups/:kind/:id/edit", h.UpdateLookup)
		app.POST("/lookups/:kind/:id/delete", h.DeleteLookup)

		app.GET("/users", h.ListUsers)
		app.POST("/users", h.CreateUser)
	}

	return r
}
