package memory

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

func embeddingKey(contentType, contentID string) string {
	return contentType + "|" + contentID
}

// --- EmbeddingStore ---

func (s *Store) Upsert(_ context.Context, e domain.Embedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddings[embeddingKey(e.ContentType, e.ContentID)] = e
	return nil
}

func (s *Store) Delete(_ context.Context, contentType, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.embeddings, embeddingKey(contentType, contentID))
	return nil
}

// SearchSimilar is the in-process fallback path: filter by content type,
// then rank by cosine similarity. A real relational store would prefer a
// native vector index; memory has none, so it always uses this fallback.
func (s *Store) SearchSimilar(_ context.Context, queryVector []float32, contentTypes []string, limit int) ([]store.EmbeddingMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := make(map[string]struct{}, len(contentTypes))
	for _, t := range contentTypes {
		allowed[t] = struct{}{}
	}

	var matches []store.EmbeddingMatch
	for _, e := range s.embeddings {
		if len(allowed) > 0 {
			if _, ok := allowed[e.ContentType]; !ok {
				continue
			}
		}
		matches = append(matches, store.EmbeddingMatch{
			ContentType: e.ContentType,
			ContentID:   e.ContentID,
			ContentText: e.ContentText,
			Metadata:    e.Metadata,
			Similarity:  cosineSimilarity(queryVector, e.Vector),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// --- ConversationStore ---

func (s *Store) PersistConversationEntry(_ context.Context, e domain.ConversationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = append(s.conversations, e)
	return nil
}

// ConversationEntries returns every persisted conversation turn, oldest
// first; used by tests to assert step 7 of the RAG pipeline ran.
func (s *Store) ConversationEntries() []domain.ConversationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ConversationEntry, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// --- AIOperationStore ---

func (s *Store) LogOperation(_ context.Context, rec domain.AIOperationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiOps = append(s.aiOps, rec)
	return nil
}

func (s *Store) LogFeedback(_ context.Context, fb domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbacks = append(s.feedbacks, fb)
	return nil
}

func (s *Store) Summary(_ context.Context, since time.Time, operationType string) (store.AIOperationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		count, successes, totalTokens int
		sumConfidence, sumResponseMs  float64
	)
	for _, rec := range s.aiOps {
		if rec.Timestamp.Before(since) {
			continue
		}
		if operationType != "" && rec.OperationType != operationType {
			continue
		}
		count++
		if rec.Success {
			successes++
		}
		sumConfidence += rec.Confidence
		sumResponseMs += float64(rec.ResponseTime.Milliseconds())
		totalTokens += rec.PromptTokens + rec.OutputTokens
	}
	if count == 0 {
		return store.AIOperationSummary{}, nil
	}
	return store.AIOperationSummary{
		Count:         count,
		SuccessRate:   float64(successes) / float64(count),
		AvgResponseMs: sumResponseMs / float64(count),
		AvgConfidence: sumConfidence / float64(count),
		TotalTokens:   totalTokens,
	}, nil
}
