package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/pdfchat-be/repository"
	"github.com/tieubaoca/pdfchat-be/types"
)

const answerSystemPrompt = `You are an AI assistant that helps users understand PDF documents.
Answer questions based on the provided context from the document.
Always cite the page numbers where you found the information.
If the information is not in the context, say so clearly.
Keep responses concise but informative.
Be helpful and accurate.`

const suggestionsSystemPrompt = `You are an AI assistant that generates relevant questions based on document content.
Generate 5 thoughtful, specific questions that would help users understand and explore the key topics in this document.
Make the questions diverse, covering different aspects of the content.
Return only the questions, one per line, without numbering or bullet points.`

const suggestionsContextLength = 3000

// chatCompleter is the slice of the OpenAI client the AI service needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService turns a question into an answer: it retrieves grounded
// context with citations and forwards both to the chat model. LLM
// failures never surface as errors — they become user-safe canned
// answers with empty citations.
type AIService struct {
	client       chatCompleter
	model        string
	retrieval    *RetrievalService
	documentRepo repository.DocumentRepo
}

func NewAIService(baseURL, apiKey, model string, retrieval *RetrievalService, documentRepo repository.DocumentRepo) *AIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &AIService{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		retrieval:    retrieval,
		documentRepo: documentRepo,
	}
}

// GenerateResponse answers a question about a document. The returned
// error is non-nil only for malformed input (empty question, unknown
// document); provider trouble degrades to an apology answer instead.
func (s *AIService) GenerateResponse(ctx context.Context, question, documentID string) (*types.ChatResult, error) {
	retrieval, err := s.retrieval.Retrieve(ctx, question, documentID, DefaultTopK)
	if err != nil {
		return nil, err
	}

	userPrompt := fmt.Sprintf(`Context from document:
%s

Question: %s

Please provide a helpful answer based on the context above, and indicate which pages contain the relevant information. If you cannot find relevant information in the context, please say so clearly.`, retrieval.ContextText, question)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.3,
		MaxTokens:   1024,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		log.Printf("AI response generation error: %v", err)
		return &types.ChatResult{
			Answer:    apologyForError(err),
			Citations: []types.Citation{},
		}, nil
	}
	if len(resp.Choices) == 0 {
		return &types.ChatResult{
			Answer:    genericApology,
			Citations: []types.Citation{},
		}, nil
	}

	return &types.ChatResult{
		Answer:     resp.Choices[0].Message.Content,
		Citations:  retrieval.Citations,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

const genericApology = "I apologize, but I'm having trouble processing your question right now. Please try again in a moment."

// apologyForError maps a provider failure to a user-safe answer.
func apologyForError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return "I'm currently experiencing high demand. Please try again in a moment."
		case http.StatusUnauthorized:
			return "AI service configuration error. Please contact the administrator."
		case http.StatusBadRequest:
			return "I encountered an issue processing your question. Please try rephrasing it."
		}
	}
	return genericApology
}

var suggestionNumberingRegexp = regexp.MustCompile(`^\d+\.?\s*`)

// GenerateQuestionSuggestions proposes questions a user might ask about
// the document, seeded from its opening pages. Falls back to a fixed list
// when the model is unavailable.
func (s *AIService) GenerateQuestionSuggestions(ctx context.Context, documentID string) ([]string, error) {
	document, err := s.documentRepo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, types.ErrDocumentNotFound
	}

	contextText := suggestionContext(document)
	if contextText == "" {
		return fallbackSuggestions(), nil
	}

	userPrompt := fmt.Sprintf(`Based on this document content, generate 5 relevant questions:

%s

Generate questions that would help users understand the main topics, key concepts, and important details in this document.`, contextText)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.7,
		MaxTokens:   500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestionsSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		log.Printf("Question suggestions generation error: %v", err)
		return fallbackSuggestions(), nil
	}
	if len(resp.Choices) == 0 {
		return fallbackSuggestions(), nil
	}

	suggestions := make([]string, 0, 5)
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || suggestionNumberingRegexp.MatchString(line) {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 5 {
			break
		}
	}
	if len(suggestions) == 0 {
		return fallbackSuggestions(), nil
	}
	return suggestions, nil
}

func suggestionContext(document *types.Document) string {
	if len(document.PagesData) > 0 {
		pages := document.PagesData
		if len(pages) > 3 {
			pages = pages[:3]
		}
		texts := make([]string, 0, len(pages))
		for _, page := range pages {
			texts = append(texts, page.Text)
		}
		return truncateText(strings.Join(texts, "\n\n"), suggestionsContextLength)
	}
	return truncateText(document.ExtractedText, suggestionsContextLength)
}

func fallbackSuggestions() []string {
	return []string{
		"What are the main topics covered in this document?",
		"Can you summarize the key points?",
		"What are the most important findings or conclusions?",
		"Are there any specific recommendations mentioned?",
		"What details should I know about this topic?",
	}
}
