package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/auth"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/handler"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Event    *handler.EventHandler
	Prayer   *handler.PrayerHandler
	Donation *handler.DonationHandler
	Sermon   *handler.SermonHandler
	Health   *handler.HealthHandler
}

// NewRouter wires the full HTTP surface. Authenticate runs on every
// route so public endpoints still see the actor when a token is
// presented; RequireUser additionally gates the ones that need a
// logged-in caller.
func NewRouter(logger *slog.Logger, manager *auth.Manager, users repository.UserRepository, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Authenticate(manager, users, logger))

	requireUser := middleware.RequireUser(logger)

	// Health
	r.GET("/health/live", h.Health.Live)
	r.GET("/health/ready", h.Health.Ready)

	// Auth
	authGroup := r.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/logout", requireUser, h.Auth.Logout)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.GET("/verify", requireUser, h.Auth.Verify)
	authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
	authGroup.POST("/reset-password", h.Auth.ResetPassword)
	authGroup.POST("/change-password", requireUser, h.Auth.ChangePassword)
	authGroup.POST("/check-email", h.Auth.CheckEmail)

	// Users
	usersGroup := r.Group("/users", requireUser)
	usersGroup.POST("", h.User.Create)
	usersGroup.GET("", h.User.List)
	usersGroup.GET("/me", h.User.GetMe)
	usersGroup.GET("/by-email", h.User.GetByEmail)
	usersGroup.GET("/search", h.User.Search)
	usersGroup.GET("/role/:role", h.User.ListByRole)
	usersGroup.GET("/:id", h.User.GetByID)
	usersGroup.PUT("/:id", h.User.Update)
	usersGroup.PATCH("/:id/status", h.User.UpdateStatus)
	usersGroup.DELETE("/:id", h.User.Delete)

	// Events: reads are public, registration and management are not.
	events := r.Group("/events")
	events.GET("", h.Event.List)
	events.GET("/upcoming", h.Event.ListUpcoming)
	events.GET("/:id", h.Event.GetByID)
	events.POST("", requireUser, h.Event.Create)
	events.PUT("/:id", requireUser, h.Event.Update)
	events.DELETE("/:id", requireUser, h.Event.Delete)
	events.POST("/:id/register", requireUser, h.Event.Register)
	events.DELETE("/:id/register", requireUser, h.Event.CancelRegistration)
	events.GET("/:id/registrations", requireUser, h.Event.ListRegistrations)

	// Prayers: the list is privacy-filtered per viewer, so even GET
	// stays open to anonymous callers and narrows to public requests.
	prayers := r.Group("/prayers")
	prayers.GET("", h.Prayer.List)
	prayers.GET("/:id", h.Prayer.GetByID)
	prayers.POST("", requireUser, h.Prayer.Create)
	prayers.PUT("/:id", requireUser, h.Prayer.Update)
	prayers.DELETE("/:id", requireUser, h.Prayer.Delete)
	prayers.POST("/:id/pray", requireUser, h.Prayer.Pray)
	prayers.POST("/:id/answer", requireUser, h.Prayer.Answer)

	// Donations
	donations := r.Group("/donations", requireUser)
	donations.POST("", h.Donation.Record)
	donations.GET("", h.Donation.List)
	donations.GET("/summary", h.Donation.Summary)
	donations.GET("/:id", h.Donation.GetByID)

	// Sermons: the published catalog is public.
	sermons := r.Group("/sermons")
	sermons.GET("", h.Sermon.List)
	sermons.GET("/:id", h.Sermon.GetByID)
	sermons.POST("", requireUser, h.Sermon.Create)
	sermons.PUT("/:id", requireUser, h.Sermon.Update)
	sermons.POST("/:id/publish", requireUser, h.Sermon.Publish)
	sermons.DELETE("/:id", requireUser, h.Sermon.Delete)

	return r
}
