package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"graphmem/internal/graph"
	"graphmem/pkg/config"
	apperrors "graphmem/pkg/errors"
	"graphmem/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting graph memory store server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Open the graph store
	store, err := graph.Open(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		log.Fatal("Failed to open graph store", zap.Error(err))
	}
	defer store.Close()

	// Verify Neo4j connection
	ctx := context.Background()
	if err := store.Driver().VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity",
			zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
	}

	// Declare constraints and indexes
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to initialize graph schema", zap.Error(err))
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health probe: boolean reachability, faults are never propagated
	router.GET("/health", func(c *gin.Context) {
		if store.HealthCheck(c.Request.Context()) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unreachable"})
	})

	api := router.Group("/api")
	registerThreadRoutes(api, store, log)
	registerMessageRoutes(api, store, log)
	registerResourceRoutes(api, store, log)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func registerThreadRoutes(api *gin.RouterGroup, store *graph.Store, log *zap.Logger) {
	// Create thread
	api.POST("/threads", func(c *gin.Context) {
		var req struct {
			ID         string         `json:"id"`
			ResourceID string         `json:"resourceId" binding:"required"`
			Title      string         `json:"title"`
			Metadata   map[string]any `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		thread, err := store.CreateThread(c.Request.Context(), graph.CreateThreadRequest{
			ID:         req.ID,
			ResourceID: req.ResourceID,
			Title:      req.Title,
			Metadata:   req.Metadata,
		})
		if err != nil {
			log.Error("Failed to create thread", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create thread"})
			return
		}

		c.JSON(http.StatusCreated, thread)
	})

	// Get thread
	api.GET("/threads/:id", func(c *gin.Context) {
		thread, err := store.GetThread(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Error("Failed to get thread", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get thread"})
			return
		}
		if thread == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
			return
		}

		c.JSON(http.StatusOK, thread)
	})

	// List threads by resource, optionally paginated
	api.GET("/threads", func(c *gin.Context) {
		resourceID := c.Query("resourceId")
		if resourceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resourceId is required"})
			return
		}
		sortBy := c.Query("sortBy")
		sortDir := graph.SortDirection(c.Query("sortDir"))

		if pageStr := c.Query("page"); pageStr != "" {
			page, _ := strconv.Atoi(pageStr)
			perPage, _ := strconv.Atoi(c.Query("perPage"))

			result, err := store.ThreadsByResourcePaginated(c.Request.Context(), graph.ListThreadsPageRequest{
				ResourceID: resourceID,
				SortBy:     sortBy,
				SortDir:    sortDir,
				Page:       page,
				PerPage:    perPage,
			})
			if err != nil {
				log.Error("Failed to list threads", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list threads"})
				return
			}
			c.JSON(http.StatusOK, result)
			return
		}

		threads, err := store.ThreadsByResource(c.Request.Context(), graph.ListThreadsRequest{
			ResourceID: resourceID,
			SortBy:     sortBy,
			SortDir:    sortDir,
		})
		if err != nil {
			log.Error("Failed to list threads", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list threads"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"threads": threads})
	})

	// Update thread
	api.PATCH("/threads/:id", func(c *gin.Context) {
		var req struct {
			Title    *string        `json:"title"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		thread, err := store.UpdateThread(c.Request.Context(), graph.UpdateThreadRequest{
			ID:       c.Param("id"),
			Title:    req.Title,
			Metadata: req.Metadata,
		})
		if err != nil {
			log.Error("Failed to update thread", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update thread"})
			return
		}
		if thread == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
			return
		}

		c.JSON(http.StatusOK, thread)
	})

	// Delete thread (messages under it survive; see DeleteThread)
	api.DELETE("/threads/:id", func(c *gin.Context) {
		if err := store.DeleteThread(c.Request.Context(), c.Param("id")); err != nil {
			log.Error("Failed to delete thread", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete thread"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}

func registerMessageRoutes(api *gin.RouterGroup, store *graph.Store, log *zap.Logger) {
	// Create message in a thread (auto-creates an unknown thread)
	api.POST("/threads/:id/messages", func(c *gin.Context) {
		var req struct {
			ID       string         `json:"id"`
			Role     string         `json:"role"`
			Content  string         `json:"content" binding:"required"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		message, err := store.CreateMessage(c.Request.Context(), graph.CreateMessageRequest{
			ID:       req.ID,
			ThreadID: c.Param("id"),
			Role:     req.Role,
			Content:  req.Content,
			Metadata: req.Metadata,
		})
		if err != nil {
			log.Error("Failed to create message", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
			return
		}

		c.JSON(http.StatusCreated, message)
	})

	// List messages in a thread, optionally paginated
	api.GET("/threads/:id/messages", func(c *gin.Context) {
		threadID := c.Param("id")

		if pageStr := c.Query("page"); pageStr != "" {
			page, _ := strconv.Atoi(pageStr)
			perPage, _ := strconv.Atoi(c.Query("perPage"))

			result, err := store.ListMessagesPaginated(c.Request.Context(), graph.ListMessagesPageRequest{
				ThreadID: threadID,
				Page:     page,
				PerPage:  perPage,
			})
			if err != nil {
				log.Error("Failed to list messages", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
				return
			}
			c.JSON(http.StatusOK, result)
			return
		}

		req := graph.ListMessagesRequest{ThreadID: threadID}
		if limitStr := c.Query("limit"); limitStr != "" {
			limit, err := strconv.Atoi(limitStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			req.Limit = &limit
		}
		if offsetStr := c.Query("offset"); offsetStr != "" {
			req.Offset, _ = strconv.Atoi(offsetStr)
		}

		messages, err := store.ListMessages(c.Request.Context(), req)
		if err != nil {
			log.Error("Failed to list messages", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"messages": messages})
	})

	// Get message
	api.GET("/messages/:id", func(c *gin.Context) {
		message, err := store.GetMessageByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Error("Failed to get message", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get message"})
			return
		}
		if message == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}

		c.JSON(http.StatusOK, message)
	})

	// Update message
	api.PATCH("/messages/:id", func(c *gin.Context) {
		var req struct {
			Role     *string        `json:"role"`
			Content  *string        `json:"content"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		message, err := store.UpdateMessage(c.Request.Context(), graph.UpdateMessageRequest{
			ID:       c.Param("id"),
			Role:     req.Role,
			Content:  req.Content,
			Metadata: req.Metadata,
		})
		if err != nil {
			log.Error("Failed to update message", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
			return
		}
		if message == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}

		c.JSON(http.StatusOK, message)
	})

	// Entities mentioned by a message
	api.GET("/messages/:id/entities", func(c *gin.Context) {
		entities, err := store.MessageEntities(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Error("Failed to get message entities", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get message entities"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entities": entities})
	})

	// Delete single message
	api.DELETE("/messages/:id", func(c *gin.Context) {
		if err := store.DeleteMessage(c.Request.Context(), c.Param("id")); err != nil {
			log.Error("Failed to delete message", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})

	// Bulk delete by id list; an empty list is a no-op success
	api.POST("/messages/delete", func(c *gin.Context) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := store.DeleteMessages(c.Request.Context(), req.IDs); err != nil {
			log.Error("Failed to delete messages", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "count": len(req.IDs)})
	})
}

func registerResourceRoutes(api *gin.RouterGroup, store *graph.Store, log *zap.Logger) {
	// Create resource
	api.POST("/resources", func(c *gin.Context) {
		var req struct {
			ID       string         `json:"id" binding:"required"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resource, err := store.CreateResource(c.Request.Context(), graph.CreateResourceRequest{
			ID:       req.ID,
			Metadata: req.Metadata,
		})
		if err != nil {
			log.Error("Failed to create resource", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create resource"})
			return
		}

		c.JSON(http.StatusCreated, resource)
	})

	// Get resource
	api.GET("/resources/:id", func(c *gin.Context) {
		resource, err := store.GetResource(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Error("Failed to get resource", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get resource"})
			return
		}
		if resource == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
			return
		}

		c.JSON(http.StatusOK, resource)
	})

	// Update resource metadata
	api.PATCH("/resources/:id", func(c *gin.Context) {
		var req struct {
			Metadata map[string]any `json:"metadata" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resource, err := store.UpdateResource(c.Request.Context(), graph.UpdateResourceRequest{
			ID:       c.Param("id"),
			Metadata: req.Metadata,
		})
		if err != nil {
			log.Error("Failed to update resource", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update resource"})
			return
		}
		if resource == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
			return
		}

		c.JSON(http.StatusOK, resource)
	})
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
