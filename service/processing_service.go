package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/types"
)

const (
	defaultProcessingWorkers   = 2
	defaultProcessingQueueSize = 16
	defaultMaxRetries          = 3
	defaultRetryBaseDelay      = 2 * time.Second
)

// StatusNotifier pushes document processing status updates to connected
// clients. Implementations must not block.
type StatusNotifier interface {
	NotifyStatus(status types.ProcessingDocumentStatus)
}

type processJob struct {
	DocumentID string
	FilePath   string
}

// ProcessingService runs document extraction and vectorization in the
// background, decoupled from the upload request. Each document is
// submitted exactly once; a job retries up to maxRetries times with a
// doubling delay before the document lands in the terminal error state.
// Vectorization failure is not fatal — the document still becomes ready
// and retrieval uses text search.
type ProcessingService struct {
	jobs           chan processJob
	extractor      DocumentExtractor
	vectorService  *VectorService
	documentRepo   repository.DocumentRepo
	notifier       StatusNotifier
	workers        int
	maxRetries     int
	retryBaseDelay time.Duration
	wg             sync.WaitGroup
}

type ProcessingOptions struct {
	Workers          int
	QueueSize        int
	MaxRetries       int
	RetryBaseDelayMs int
}

func NewProcessingService(extractor DocumentExtractor, vectorService *VectorService, documentRepo repository.DocumentRepo, notifier StatusNotifier, opts ProcessingOptions) *ProcessingService {
	if opts.Workers <= 0 {
		opts.Workers = defaultProcessingWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultProcessingQueueSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	retryBaseDelay := defaultRetryBaseDelay
	if opts.RetryBaseDelayMs > 0 {
		retryBaseDelay = time.Duration(opts.RetryBaseDelayMs) * time.Millisecond
	}
	return &ProcessingService{
		jobs:           make(chan processJob, opts.QueueSize),
		extractor:      extractor,
		vectorService:  vectorService,
		documentRepo:   documentRepo,
		notifier:       notifier,
		workers:        opts.Workers,
		maxRetries:     opts.MaxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

func (s *ProcessingService) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Stop waits for queued jobs to drain. No new jobs may be enqueued after
// calling it.
func (s *ProcessingService) Stop() {
	close(s.jobs)
	s.wg.Wait()
}

// Enqueue submits a document for background processing.
func (s *ProcessingService) Enqueue(documentID, filePath string) error {
	select {
	case s.jobs <- processJob{DocumentID: documentID, FilePath: filePath}:
		return nil
	default:
		return errors.New("processing queue is full")
	}
}

func (s *ProcessingService) worker() {
	defer s.wg.Done()
	for job := range s.jobs {
		s.process(job)
	}
}

func (s *ProcessingService) process(job processJob) {
	ctx := context.Background()
	delay := s.retryBaseDelay
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.processOnce(ctx, job)
		if err == nil {
			log.Printf("Document %s processed successfully", job.DocumentID)
			return
		}
		log.Printf("Failed to process document %s, attempt %d: %v", job.DocumentID, attempt, err)
		if attempt == s.maxRetries {
			if err := s.documentRepo.UpdateDocumentStatus(ctx, job.DocumentID, types.DOCUMENT_STATUS_ERROR); err != nil {
				log.Printf("Failed to mark document %s as errored: %v", job.DocumentID, err)
			}
			s.notify(types.ProcessingDocumentStatus{
				DocumentID: job.DocumentID,
				Status:     types.DOCUMENT_STATUS_ERROR,
				Message:    "Document processing failed",
			})
			return
		}
		time.Sleep(delay)
		delay *= 2
	}
}

func (s *ProcessingService) processOnce(ctx context.Context, job processJob) error {
	if _, err := s.documentRepo.GetDocument(ctx, job.DocumentID); err != nil {
		// Document was deleted while queued, nothing to do.
		log.Printf("Document %s no longer exists, skipping: %v", job.DocumentID, err)
		return nil
	}
	if err := s.documentRepo.UpdateDocumentStatus(ctx, job.DocumentID, types.DOCUMENT_STATUS_PROCESSING); err != nil {
		return fmt.Errorf("failed to mark document processing: %w", err)
	}

	text, totalPages, err := s.extractor.ExtractText(job.FilePath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	pages, err := s.extractor.ExtractTextByPage(job.FilePath)
	if err != nil {
		return fmt.Errorf("page extraction failed: %w", err)
	}
	if err := s.documentRepo.SetExtractionResult(ctx, job.DocumentID, text, pages, totalPages); err != nil {
		return fmt.Errorf("failed to save extraction result: %w", err)
	}
	log.Printf("Extracted %d pages from document %s", len(pages), job.DocumentID)

	vectorCount, err := s.vectorService.BuildIndex(ctx, job.DocumentID, pages)
	if err != nil {
		// Text search still works without an index, so the document
		// becomes ready regardless.
		log.Printf("Vectorization failed for document %s, text search will be used: %v", job.DocumentID, err)
		vectorCount = 0
	}
	if err := s.documentRepo.SetVectorized(ctx, job.DocumentID, vectorCount > 0); err != nil {
		return fmt.Errorf("failed to update vectorized flag: %w", err)
	}
	if err := s.documentRepo.UpdateDocumentStatus(ctx, job.DocumentID, types.DOCUMENT_STATUS_READY); err != nil {
		return fmt.Errorf("failed to mark document ready: %w", err)
	}
	s.notify(types.ProcessingDocumentStatus{
		DocumentID:     job.DocumentID,
		Status:         types.DOCUMENT_STATUS_READY,
		Message:        "Document is ready for chat",
		Progress:       1,
		TotalPages:     totalPages,
		ProcessedPages: len(pages),
	})
	return nil
}

func (s *ProcessingService) notify(status types.ProcessingDocumentStatus) {
	if s.notifier != nil {
		s.notifier.NotifyStatus(status)
	}
}
