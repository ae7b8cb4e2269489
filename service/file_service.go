package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/types"
)

// FileService accepts uploads, stores the PDF on disk, creates the
// document record and hands the document to the background processor.
// It also owns full document deletion: record, chats, vectors and file
// go together.
type FileService struct {
	uploadDir     string
	documentRepo  repository.DocumentRepo
	chatRepo      repository.ChatRepo
	vectorService *VectorService
	processor     *ProcessingService
}

func NewFileService(
	uploadDir string,
	documentRepo repository.DocumentRepo,
	chatRepo repository.ChatRepo,
	vectorService *VectorService,
	processor *ProcessingService,
) *FileService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &FileService{
		uploadDir:     uploadDir,
		documentRepo:  documentRepo,
		chatRepo:      chatRepo,
		vectorService: vectorService,
		processor:     processor,
	}
}

// UploadDocument saves the PDF and enqueues it for processing. The
// returned document is in the "uploading" state; callers watch the
// status endpoint or the websocket feed for completion.
func (s *FileService) UploadDocument(ctx context.Context, file *multipart.FileHeader) (*types.Document, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	filename := sanitizeFilename(fmt.Sprintf("%s_%d%s",
		strings.TrimSuffix(file.Filename, ext), time.Now().Unix(), ext))
	destPath := filepath.Join(s.uploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()
	if _, err = io.Copy(dst, src); err != nil {
		return nil, err
	}

	document := &types.Document{
		Filename:     filename,
		OriginalName: file.Filename,
		FilePath:     destPath,
		FileSize:     file.Size,
		Status:       types.DOCUMENT_STATUS_UPLOADING,
	}
	id, err := s.documentRepo.CreateDocument(ctx, document)
	if err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	if err := s.processor.Enqueue(id, destPath); err != nil {
		if statusErr := s.documentRepo.UpdateDocumentStatus(ctx, id, types.DOCUMENT_STATUS_ERROR); statusErr != nil {
			log.Printf("Failed to mark document %s as errored: %v", id, statusErr)
		}
		return nil, err
	}
	return document, nil
}

// DeleteDocument removes the record, its chats, its vector index and the
// stored file. Vector and file removal are best-effort once the record
// is gone.
func (s *FileService) DeleteDocument(ctx context.Context, id string) error {
	document, err := s.documentRepo.GetDocument(ctx, id)
	if err != nil {
		return types.ErrDocumentNotFound
	}

	if err := s.vectorService.DeleteDocumentVectors(id); err != nil {
		log.Printf("Failed to delete vectors for document %s: %v", id, err)
	}
	if document.FilePath != "" {
		if err := os.Remove(document.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to delete file from disk: %v", err)
		}
	}
	if err := s.chatRepo.DeleteChatsByDocument(ctx, id); err != nil {
		log.Printf("Failed to delete chats for document %s: %v", id, err)
	}
	return s.documentRepo.DeleteDocument(ctx, id)
}

// sanitizeFilename replaces characters that are unsafe in filenames.
func sanitizeFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, filename)
}
