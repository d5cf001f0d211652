package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ridwanfathin/invoice-extractor-service/docs"
	"github.com/ridwanfathin/invoice-extractor-service/internal/config"
	"github.com/ridwanfathin/invoice-extractor-service/internal/handler"
	"github.com/ridwanfathin/invoice-extractor-service/internal/logging"
	"github.com/ridwanfathin/invoice-extractor-service/internal/middleware"
	"github.com/ridwanfathin/invoice-extractor-service/internal/model"
	"github.com/ridwanfathin/invoice-extractor-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server for the invoice extraction service
type Server struct {
	router         *gin.Engine
	httpServer     *http.Server
	invoiceService service.InvoiceService
	config         *config.Config
	logger         logrus.FieldLogger
}

// NewServer creates and configures a new server instance
func NewServer(cfg *config.Config, invoiceHandler *handler.InvoiceHandler, invoiceService service.InvoiceService, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.AllowedOrigins...))
	router.Use(middleware.RequestResponseLogger(middleware.LoggerConfig{Logger: logger}))

	server := &Server{
		router:         router,
		invoiceService: invoiceService,
		config:         cfg,
		logger:         logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}

	server.setupRoutes(invoiceHandler)

	return server
}

// GetRouter returns the gin router instance
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes(invoiceHandler *handler.InvoiceHandler) {
	s.router.GET("/health", s.health)

	// Access the Swagger UI at http://localhost:8080/api-docs/index.html
	swaggerHandler := ginSwagger.WrapHandler(swaggerFiles.Handler)
	s.router.GET("/api-docs/*any", swaggerHandler)

	s.router.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api-docs/index.html")
	})

	if invoiceHandler != nil {
		invoiceHandler.RegisterRoutes(s.router)
	}
}

// health reports liveness and the configured store
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status: "ok",
		Store:  s.config.StoreBackend,
	})
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM, then shuts down
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serveErr := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.config.Port).Info("Server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case sig := <-quit:
		s.logger.WithField("signal", sig.String()).Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server exited gracefully")
	return nil
}

// Shutdown stops accepting connections, then waits for in-flight invoice processing
func (s *Server) Shutdown(ctx context.Context) error {
	httpErr := s.httpServer.Shutdown(ctx)

	var svcErr error
	if s.invoiceService != nil {
		svcErr = s.invoiceService.Shutdown(ctx)
	}

	return errors.Join(httpErr, svcErr)
}
