/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfchat-be/config"
	"github.com/tieubaoca/pdfchat-be/database"
	"github.com/tieubaoca/pdfchat-be/handler"
	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the PDF chat server",
	Long:  `Starts the HTTP server that handles uploads, document processing and chat`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		mongoClient, err := database.NewMongoClient(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		if err := mongoClient.Ping(context.Background(), nil); err != nil {
			log.Fatalf("Failed to ping MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database(cfg.MongoDatabase)

		// init repos
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))
		chatRepo := repository.NewChatRepo(mongoDb.Collection("chats"))

		// init services
		vectorStore, err := database.NewFileVectorStore(cfg.VectorDir)
		if err != nil {
			log.Fatalf("Failed to create vector store: %v", err)
		}
		embeddingProvider, err := newEmbeddingProvider(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to create embedding provider: %v", err)
		}
		vectorService := service.NewVectorService(embeddingProvider, vectorStore, cfg.Embedding.RequestDelayMs)
		textSearch := service.NewTextSearchService()
		retrievalService := service.NewRetrievalService(vectorService, textSearch, documentRepo)
		aiService := service.NewAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, retrievalService, documentRepo)

		pdfService := service.NewPDFService()
		wsService := service.NewWebSocketService()
		processor := service.NewProcessingService(pdfService, vectorService, documentRepo, wsService, service.ProcessingOptions{
			Workers:          cfg.Processing.Workers,
			QueueSize:        cfg.Processing.QueueSize,
			MaxRetries:       cfg.Processing.MaxRetries,
			RetryBaseDelayMs: cfg.Processing.RetryBaseDelayMs,
		})
		processor.Start()
		defer processor.Stop()

		fileService := service.NewFileService(cfg.UploadDir, documentRepo, chatRepo, vectorService, processor)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(fileService)
		chatHandler := handler.NewChatHandler(aiService, chatRepo, documentRepo)
		documentHandler := handler.NewDocumentHandler(documentRepo, fileService)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/upload", uploadHandler.HandleUpload)
			apiV1.GET("/documents", documentHandler.HandleListDocuments)
			apiV1.GET("/documents/:id", documentHandler.HandleGetDocument)
			apiV1.GET("/documents/:id/file", documentHandler.HandleServeDocument)
			apiV1.GET("/documents/:id/chats", chatHandler.HandleChatHistory)
			apiV1.GET("/documents/:id/suggestions", chatHandler.HandleSuggestions)
			apiV1.DELETE("/documents/:id", documentHandler.HandleDeleteDocument)
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.DELETE("/chat/:id", chatHandler.HandleDeleteChat)
		}
		router.GET("/ws/status", func(c *gin.Context) {
			wsService.HandleStatus(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

// newEmbeddingProvider builds the embedding provider named by the config.
func newEmbeddingProvider(ctx context.Context, cfg *config.Config) (service.EmbeddingProvider, error) {
	switch cfg.Embedding.Provider {
	case "openai", "":
		return service.NewOpenAIEmbeddingProvider(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Embedding.Model), nil
	case "gemini":
		return service.NewGeminiEmbeddingProvider(ctx, cfg.GoogleAPIKey, cfg.Embedding.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
