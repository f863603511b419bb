// Package ai implements the RAG query pipeline, content indexing, response
// validation, AI operation logging/feedback, and deterministic A/B routing.
// Grounded on the original backend/ai_agents.py's RAGReporterAgent and
// HallucinationValidator, adapted to this repo's EmbeddingStore/
// AIOperationStore interfaces and a pluggable chat-completion client
// contract instead of a direct OpenAI dependency.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// ChatClient is the minimal contract the RAG pipeline needs from a chat
// completion model; production wiring points this at whichever vendor
// AIConfig.BaseURL/ModelKey select, kept out of this package per spec §9
// ("the AI path is never in the critical path").
type ChatClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Indexer upserts canonical embeddings for business entities.
type Indexer struct {
	embeddings store.EmbeddingStore
	chat       ChatClient
}

// NewIndexer constructs an Indexer.
func NewIndexer(embeddings store.EmbeddingStore, chat ChatClient) *Indexer {
	return &Indexer{embeddings: embeddings, chat: chat}
}

// IndexProject synthesizes a canonical text for a project and upserts its
// embedding, mirroring the original's per-entity-type text synthesis.
func (i *Indexer) IndexProject(ctx context.Context, p domain.Project) error {
	text := fmt.Sprintf("Project: %s. Description: %s. Status: %s.", p.Name, p.Description, p.Status)
	return i.index(ctx, "project", p.ID, text)
}

// IndexPortfolio synthesizes and upserts a portfolio's embedding.
func (i *Indexer) IndexPortfolio(ctx context.Context, p domain.Portfolio) error {
	text := fmt.Sprintf("Portfolio: %s.", p.Name)
	return i.index(ctx, "portfolio", p.ID, text)
}

// IndexResource synthesizes and upserts a resource's embedding.
func (i *Indexer) IndexResource(ctx context.Context, r domain.Resource) error {
	text := fmt.Sprintf("Resource: %s. Role: %s. Skills: %s.", r.Name, r.Role, strings.Join(r.Skills, ", "))
	return i.index(ctx, "resource", r.ID, text)
}

func (i *Indexer) index(ctx context.Context, contentType, contentID, text string) error {
	vector, err := i.chat.Embed(ctx, text)
	if err != nil {
		return err
	}
	return i.embeddings.Upsert(ctx, domain.Embedding{
		ContentType: contentType,
		ContentID:   contentID,
		ContentText: text,
		Vector:      vector,
	})
}

// DeleteEmbedding removes the embedding for a deleted business entity; the
// deletion is fire-and-forget cleanup, never a blocker on the business
// operation that triggered it (spec §3's weak-reference note).
func (i *Indexer) DeleteEmbedding(ctx context.Context, contentType, contentID string) error {
	return i.embeddings.Delete(ctx, contentType, contentID)
}
