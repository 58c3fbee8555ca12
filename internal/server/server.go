package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"issueboard/internal/access"
	"issueboard/internal/auth"
	"issueboard/internal/board"
	"issueboard/internal/config"
	"issueboard/internal/handler"
	"issueboard/internal/middleware"
	"issueboard/internal/repository"
)

type Server struct {
	Engine *gin.Engine
	Views  *board.Registry
	Config *config.Config
	log    *slog.Logger
}

// Repositories are the backend endpoints the gateway talks to.
type Repositories struct {
	Issues   repository.IssueRepositoryInterface
	Projects repository.ProjectRepositoryInterface
	Members  repository.MemberRepositoryInterface
	Users    repository.UserRepositoryInterface
	Catalog  repository.CatalogRepositoryInterface
	Comments repository.CommentRepositoryInterface
}

// NewRepositories builds every repository on one client that forwards the caller's token.
func NewRepositories(baseURL string) Repositories {
	client := repository.NewClient(baseURL, auth.ContextToken{}, &http.Client{Timeout: 30 * time.Second})
	return Repositories{
		Issues:   repository.NewIssueRepository(client),
		Projects: repository.NewProjectRepository(client),
		Members:  repository.NewMemberRepository(client),
		Users:    repository.NewUserRepository(client),
		Catalog:  repository.NewCatalogRepository(client),
		Comments: repository.NewCommentRepository(client),
	}
}

func Init(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	policy, err := access.Load(cfg.AccessPolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load access policy: %w", err)
	}

	repos := NewRepositories(cfg.APIBaseURL)
	views := board.NewRegistry(repos.Issues, repos.Users, logger, cfg.PendingTTL, cfg.ResultTTL)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	Routes(r, repos, views, policy, cfg, logger)

	logger.Info("gateway configured", "backend", cfg.APIBaseURL, "origins", cfg.AllowedOrigins)
	return &Server{
		Engine: r,
		Views:  views,
		Config: cfg,
		log:    logger,
	}, nil
}

// Routes mounts the health check and the authenticated gateway API on r.
func Routes(r *gin.Engine, repos Repositories, views *board.Registry, policy *access.Policy, cfg *config.Config, logger *slog.Logger) {
	viewHandler := handler.NewViewHandler(views, repos.Projects, repos.Catalog, policy, cfg.ExportLocation, logger)
	notificationHandler := handler.NewNotificationHandler(views, cfg.AllowedOrigins, logger)
	commentHandler := handler.NewCommentHandler(repos.Comments, logger)
	projectHandler := handler.NewProjectHandler(repos.Projects, repos.Members, repos.Catalog, repos.Issues, logger)
	userHandler := handler.NewUserHandler(repos.Users, policy, logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "views": views.Len()})
	})

	authorized := r.Group("/")
	authorized.Use(middleware.BearerAuth())
	{
		// Board views
		authorized.POST("/views", viewHandler.Open)
		authorized.DELETE("/views/:id", viewHandler.Close)
		authorized.GET("/views/:id/board", viewHandler.Board)
		authorized.POST("/views/:id/refresh", viewHandler.Refresh)
		authorized.GET("/views/:id/notifications", notificationHandler.Stream)
		authorized.POST("/views/:id/issues", viewHandler.Create)
		authorized.PUT("/views/:id/issues/:issue_id", viewHandler.Edit)
		authorized.PUT("/views/:id/issues/:issue_id/status", viewHandler.ChangeStatus)
		authorized.PUT("/views/:id/issues/:issue_id/assignee", viewHandler.Assign)
		authorized.GET("/views/:id/export", viewHandler.Export)
		authorized.GET("/views/:id/export/preview", viewHandler.ExportPreview)

		// Comments
		authorized.GET("/issues/:issue_id/comments", commentHandler.List)
		authorized.POST("/issues/:issue_id/comments", commentHandler.Add)

		// Projects and catalog
		authorized.GET("/projects", projectHandler.List)
		authorized.POST("/projects", projectHandler.Create)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.GET("/projects/:id/members", projectHandler.Members)
		authorized.POST("/projects/:id/members", projectHandler.AddMember)
		authorized.DELETE("/projects/:id/members/:user_id", projectHandler.RemoveMember)
		authorized.GET("/projects/:id/work-items", projectHandler.WorkItems)
		authorized.GET("/projects/:id/sprints", projectHandler.Sprints)
		authorized.GET("/projects/:id/releases", projectHandler.Releases)
		authorized.GET("/issue-types", projectHandler.IssueTypes)
		authorized.GET("/clients", projectHandler.Clients)
		authorized.POST("/clients", projectHandler.CreateClient)

		// Users
		authorized.GET("/me", userHandler.Me)
		authorized.GET("/users", userHandler.List)
		authorized.PUT("/admin/users/:id/role", userHandler.SetRole)
		authorized.PUT("/admin/users/:id/active", userHandler.SetActive)
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.log.Info("server running", "port", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("failed to listen", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("server forced to shutdown", "error", err)
	}
	s.Views.CloseAll()

	s.log.Info("server exited properly")
}
