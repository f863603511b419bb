package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// searchLimit mirrors the original's fixed "limit 5" similar-content fetch.
const searchLimit = 5

var ragContentTypes = []string{"project", "portfolio", "resource"}

// ContextCounts is the small deterministic context the original fetches
// alongside retrieved content: counts of each entity type.
type ContextCounts struct {
	Projects   int
	Portfolios int
	Resources  int
}

// ContextSource supplies the deterministic counts; kept as an interface so
// the RAG engine doesn't need every store dependency directly.
type ContextSource interface {
	CountContext(ctx context.Context) (ContextCounts, error)
}

// RAGResponse is the contract-stable output of ProcessRAGQuery (spec §4.6
// step 9).
type RAGResponse struct {
	Response         string
	Sources          []store.EmbeddingMatch
	Confidence       float64
	ConversationID   string
	ResponseTimeMs   int64
	OperationID      string
}

// Engine runs the RAG query pipeline and logs every operation.
type Engine struct {
	embeddings    store.EmbeddingStore
	conversations store.ConversationStore
	ops           store.AIOperationStore
	chat          ChatClient
	context       ContextSource
	log           *logger.Logger
}

// NewEngine constructs an Engine.
func NewEngine(embeddings store.EmbeddingStore, conversations store.ConversationStore, ops store.AIOperationStore, chat ChatClient, ctxSource ContextSource, log *logger.Logger) *Engine {
	return &Engine{embeddings: embeddings, conversations: conversations, ops: ops, chat: chat, context: ctxSource, log: log}
}

// ProcessRAGQuery runs the nine-step pipeline from spec §4.6: conversation
// id, search, deterministic context, prompt construction, completion,
// confidence, conversation persistence, operation logging, and the final
// response contract. A failure in the embedding/search or completion step
// is logged as a failed operation and returned as an
// apperr.DependencyUnavailable("ai_model", ...) error with an empty
// RAGResponse; the raw cause is never returned directly.
func (e *Engine) ProcessRAGQuery(ctx context.Context, query, userID, conversationID string) (RAGResponse, error) {
	started := time.Now()
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	operationID := uuid.NewString()

	sources, err := e.search(ctx, query)
	if err != nil {
		e.logFailure(ctx, operationID, userID, query, err)
		return RAGResponse{}, apperr.DependencyUnavailable("ai_model", err)
	}

	counts, err := e.context.CountContext(ctx)
	if err != nil {
		e.log.WithField("operation_id", operationID).Warnf("context counts unavailable: %v", err)
	}

	systemPrompt := buildSystemPrompt()
	userPrompt := buildUserPrompt(query, sources, counts)

	response, err := e.chat.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		e.logFailure(ctx, operationID, userID, query, err)
		return RAGResponse{}, apperr.DependencyUnavailable("ai_model", err)
	}

	confidence := calculateConfidence(sources, response)
	elapsed := time.Since(started)

	sourceRefs := make([]string, len(sources))
	for i, s := range sources {
		sourceRefs[i] = fmt.Sprintf("%s/%s", s.ContentType, s.ContentID)
	}
	if err := e.conversations.PersistConversationEntry(ctx, domain.ConversationEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		Query:          query,
		Response:       response,
		Sources:        sourceRefs,
		Confidence:     confidence,
		OperationID:    operationID,
		CreatedAt:      time.Now(),
	}); err != nil {
		e.log.WithField("operation_id", operationID).Warnf("conversation entry persist failed: %v", err)
	}

	_ = e.ops.LogOperation(ctx, domain.AIOperationRecord{
		OperationID:   operationID,
		OperationType: "rag_query",
		UserID:        userID,
		Inputs:        map[string]interface{}{"query": query, "conversation_id": conversationID},
		Outputs:       map[string]interface{}{"response": response},
		Confidence:    confidence,
		ResponseTime:  elapsed,
		Success:       true,
		Timestamp:     time.Now(),
	})

	return RAGResponse{
		Response:       response,
		Sources:        sources,
		Confidence:     confidence,
		ConversationID: conversationID,
		ResponseTimeMs: elapsed.Milliseconds(),
		OperationID:    operationID,
	}, nil
}

func (e *Engine) search(ctx context.Context, query string) ([]store.EmbeddingMatch, error) {
	vector, err := e.chat.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.embeddings.SearchSimilar(ctx, vector, ragContentTypes, searchLimit)
}

func (e *Engine) logFailure(ctx context.Context, operationID, userID, query string, cause error) {
	_ = e.ops.LogOperation(ctx, domain.AIOperationRecord{
		OperationID:   operationID,
		OperationType: "rag_query",
		UserID:        userID,
		Inputs:        map[string]interface{}{"query": query},
		Success:       false,
		ErrorMessage:  cause.Error(),
		Timestamp:     time.Now(),
	})
}

func buildSystemPrompt() string {
	return "You are an assistant for a project portfolio management system. " +
		"Answer using only the provided context. If the context does not contain " +
		"the answer, say so rather than guessing."
}

func buildUserPrompt(query string, sources []store.EmbeddingMatch, counts ContextCounts) string {
	var b []string
	b = append(b, fmt.Sprintf("Context: %d projects, %d portfolios, %d resources.", counts.Projects, counts.Portfolios, counts.Resources))
	for _, s := range sources {
		b = append(b, fmt.Sprintf("Source (%s/%s): %s", s.ContentType, s.ContentID, s.ContentText))
	}
	b = append(b, fmt.Sprintf("Question: %s", query))
	out := ""
	for i, line := range b {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}

// calculateConfidence implements spec §4.6 step 6 exactly:
// 0.7*mean(similarity) + 0.3*min(len(response)/500, 1), clamped to [0,1];
// 0.3 when there are no sources.
func calculateConfidence(sources []store.EmbeddingMatch, response string) float64 {
	if len(sources) == 0 {
		return 0.3
	}
	var sum float64
	for _, s := range sources {
		sum += s.Similarity
	}
	avgSimilarity := sum / float64(len(sources))

	lengthFactor := float64(len(response)) / 500
	if lengthFactor > 1 {
		lengthFactor = 1
	}

	confidence := avgSimilarity*0.7 + lengthFactor*0.3
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
