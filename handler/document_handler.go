package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/service"
	"github.com/tieubaoca/pdfchat-be/types"
)

type DocumentHandler struct {
	documentRepo repository.DocumentRepo
	fileService  *service.FileService
}

func NewDocumentHandler(documentRepo repository.DocumentRepo, fileService *service.FileService) *DocumentHandler {
	return &DocumentHandler{
		documentRepo: documentRepo,
		fileService:  fileService,
	}
}

func (h *DocumentHandler) HandleListDocuments(c *gin.Context) {
	documents, err := h.documentRepo.ListDocuments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to retrieve documents",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   documents,
	})
}

func (h *DocumentHandler) HandleGetDocument(c *gin.Context) {
	document, err := h.documentRepo.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Document not found",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   document,
	})
}

func (h *DocumentHandler) HandleServeDocument(c *gin.Context) {
	document, err := h.documentRepo.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Document not found",
		})
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", document.OriginalName))
	c.File(document.FilePath)
}

func (h *DocumentHandler) HandleDeleteDocument(c *gin.Context) {
	if err := h.fileService.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if err == types.ErrDocumentNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "Document deleted successfully",
	})
}
