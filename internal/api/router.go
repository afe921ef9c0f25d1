package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/lenskyphoto/studio-backend/internal/app"
	iauth "github.com/lenskyphoto/studio-backend/internal/auth"
	"github.com/lenskyphoto/studio-backend/internal/handlers"
	"github.com/lenskyphoto/studio-backend/internal/middleware"
	"github.com/lenskyphoto/studio-backend/internal/policy"
	"github.com/lenskyphoto/studio-backend/internal/services"
	"github.com/lenskyphoto/studio-backend/internal/storage"
	"github.com/lenskyphoto/studio-backend/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, mailer mail.Mailer, store storage.Store) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if store == nil {
		return nil, fmt.Errorf("storage must be provided")
	}

	eval := policy.New(policy.UnscopedVisibility(cfg.Sharing.UnscopedCollections))
	baseURL := cfg.Storage.PublicBaseURL

	accounts, err := services.NewAccountService(db, eval)
	if err != nil {
		return nil, err
	}
	invites, err := services.NewInviteService(db, mailer, eval, services.WithInviteBaseURL(baseURL))
	if err != nil {
		return nil, err
	}
	companies, err := services.NewCompanyService(db, eval)
	if err != nil {
		return nil, err
	}
	stages, err := services.NewStageService(db, eval)
	if err != nil {
		return nil, err
	}
	projects, err := services.NewProjectService(db, eval, baseURL)
	if err != nil {
		return nil, err
	}
	collections, err := services.NewCollectionService(db, eval, baseURL)
	if err != nil {
		return nil, err
	}
	folders, err := services.NewFolderService(db, eval)
	if err != nil {
		return nil, err
	}
	photos, err := services.NewPhotoService(db, eval, store)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	accountHandler := handlers.NewAccountHandler(accounts, jwt)
	inviteHandler := handlers.NewInviteHandler(invites, accounts)
	companyHandler := handlers.NewCompanyHandler(companies, accounts)
	stageHandler := handlers.NewStageHandler(stages, accounts)
	projectHandler := handlers.NewProjectHandler(projects, accounts)
	collectionHandler := handlers.NewCollectionHandler(collections, accounts)
	folderHandler := handlers.NewFolderHandler(folders, accounts)
	photoHandler := handlers.NewPhotoHandler(photos, accounts)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/accounts/register", accountHandler.Register)
		public.POST("/accounts/login", accountHandler.Login)
		public.GET("/accounts/invitations/:token", inviteHandler.Validate)
		public.POST("/accounts/accept-invitation", inviteHandler.Accept)

		// Client-facing collection surface, reached through shared links
		public.GET("/filesharing/collections/:id/client", collectionHandler.ClientView)
		public.POST("/filesharing/collections/:id/client", collectionHandler.ClientSelect)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	accountsGroup := api.Group("/accounts")
	{
		accountsGroup.GET("/users", accountHandler.ListUsers)
		accountsGroup.POST("/invitations", inviteHandler.Create)
	}

	crm := api.Group("/crm")
	{
		crm.POST("/companies", companyHandler.Create)

		crm.GET("/stages", stageHandler.List)
		crm.POST("/stages", stageHandler.Create)
		crm.PUT("/stages/:id", stageHandler.Update)
		crm.DELETE("/stages/:id", stageHandler.Delete)

		crm.GET("/projects", projectHandler.List)
		crm.POST("/projects", projectHandler.Create)
		crm.PUT("/projects/:id", projectHandler.Update)
		crm.DELETE("/projects/:id", projectHandler.Delete)
	}

	sharing := api.Group("/filesharing")
	{
		sharing.GET("/collections", collectionHandler.List)
		sharing.POST("/collections", collectionHandler.Create)
		sharing.GET("/collections/:id", collectionHandler.Get)
		sharing.PATCH("/collections/:id", collectionHandler.Update)
		sharing.DELETE("/collections/:id", collectionHandler.Delete)
		sharing.POST("/collections/:id/link", collectionHandler.GenerateLink)

		sharing.POST("/folders", folderHandler.Create)

		sharing.POST("/collections/:id/photos", photoHandler.Upload)
		sharing.DELETE("/collections/:id/photos/:photoID", photoHandler.Delete)
	}

	return r, nil
}
