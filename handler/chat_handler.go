package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/service"
	"github.com/tieubaoca/pdfchat-be/types"
)

type ChatHandler struct {
	aiService    *service.AIService
	chatRepo     repository.ChatRepo
	documentRepo repository.DocumentRepo
}

func NewChatHandler(aiService *service.AIService, chatRepo repository.ChatRepo, documentRepo repository.DocumentRepo) *ChatHandler {
	return &ChatHandler{
		aiService:    aiService,
		chatRepo:     chatRepo,
		documentRepo: documentRepo,
	}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if req.DocumentID == "" || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Document ID and question are required",
		})
		return
	}

	document, err := h.documentRepo.GetDocument(c.Request.Context(), req.DocumentID)
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Document not found",
		})
		return
	}
	if document.Status != types.DOCUMENT_STATUS_READY {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Document is not ready for chat. Please wait for processing to complete.",
		})
		return
	}

	result, err := h.aiService.GenerateResponse(c.Request.Context(), req.Question, req.DocumentID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrEmptyQuestion) {
			status = http.StatusBadRequest
		} else if errors.Is(err, types.ErrDocumentNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	chat := &types.Chat{
		DocumentID: req.DocumentID,
		Question:   req.Question,
		Answer:     result.Answer,
		Citations:  result.Citations,
		TokensUsed: result.TokensUsed,
	}
	if _, err := h.chatRepo.CreateChat(c.Request.Context(), chat); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to save chat message",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   chat,
	})
}

func (h *ChatHandler) HandleChatHistory(c *gin.Context) {
	documentID := c.Param("id")
	chats, err := h.chatRepo.GetChatsByDocument(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to retrieve chat history",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   chats,
	})
}

func (h *ChatHandler) HandleDeleteChat(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.chatRepo.GetChat(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Chat not found",
		})
		return
	}
	if err := h.chatRepo.DeleteChat(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to delete chat",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "Chat deleted successfully",
	})
}

func (h *ChatHandler) HandleSuggestions(c *gin.Context) {
	documentID := c.Param("id")
	document, err := h.documentRepo.GetDocument(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Document not found",
		})
		return
	}
	if document.Status != types.DOCUMENT_STATUS_READY {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Document is not ready. Please wait for processing to complete.",
		})
		return
	}

	suggestions, err := h.aiService.GenerateQuestionSuggestions(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Failed to generate question suggestions",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   types.SuggestionsResponse{Suggestions: suggestions},
	})
}
