/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfchat-be/config"
	"github.com/tieubaoca/pdfchat-be/database"
	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/service"
	"github.com/tieubaoca/pdfchat-be/types"
	"github.com/tieubaoca/pdfchat-be/utils"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Index PDF documents from the command line",
	Long: `Extracts text from the given PDF files, creates document records and
builds their vector indexes synchronously, without going through the
HTTP upload endpoint.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		mongoClient, err := database.NewMongoClient(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database(cfg.MongoDatabase)
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))

		vectorStore, err := database.NewFileVectorStore(cfg.VectorDir)
		if err != nil {
			log.Fatalf("Failed to create vector store: %v", err)
		}
		embeddingProvider, err := newEmbeddingProvider(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create embedding provider: %v", err)
		}
		vectorService := service.NewVectorService(embeddingProvider, vectorStore, cfg.Embedding.RequestDelayMs)
		pdfService := service.NewPDFService()

		for _, sourcePath := range args {
			if err := ingestFile(ctx, sourcePath, cfg.UploadDir, pdfService, vectorService, documentRepo); err != nil {
				log.Fatalf("Failed to ingest %s: %v", sourcePath, err)
			}
			fmt.Println("Ingested", sourcePath)
		}
	},
}

func ingestFile(
	ctx context.Context,
	sourcePath, uploadDir string,
	pdfService *service.PDFService,
	vectorService *service.VectorService,
	documentRepo repository.DocumentRepo,
) error {
	destPath, err := utils.CopyFileWithTimestamp(sourcePath, uploadDir)
	if err != nil {
		return err
	}

	document := &types.Document{
		Filename:     filepath.Base(destPath),
		OriginalName: filepath.Base(sourcePath),
		FilePath:     destPath,
		Status:       types.DOCUMENT_STATUS_PROCESSING,
	}
	id, err := documentRepo.CreateDocument(ctx, document)
	if err != nil {
		return err
	}

	text, totalPages, err := pdfService.ExtractText(destPath)
	if err != nil {
		return err
	}
	pages, err := pdfService.ExtractTextByPage(destPath)
	if err != nil {
		return err
	}
	if err := documentRepo.SetExtractionResult(ctx, id, text, pages, totalPages); err != nil {
		return err
	}

	count, err := vectorService.BuildIndex(ctx, id, pages)
	if err != nil {
		log.Printf("Vector indexing failed for %s, text search will be used: %v", id, err)
	}
	if err := documentRepo.SetVectorized(ctx, id, count > 0); err != nil {
		return err
	}
	return documentRepo.UpdateDocumentStatus(ctx, id, types.DOCUMENT_STATUS_READY)
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
