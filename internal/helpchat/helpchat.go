// Package helpchat implements the context-aware help-chat variant of the
// RAG pipeline (spec §4.11): responses cached in-process in
// cache.RAGResponseCache (not in a Supabase table) keyed by
// (query, user, context, language), a degraded-performance fallback path,
// language detection/translation, a proactive tips engine, and analytics.
// Grounded on _examples/original_source/backend/routers/help_chat.py and
// the services it wires (help_rag_agent, proactive_tips_engine,
// translation_service, analytics_tracker), adapted onto internal/ai's
// Engine instead of a direct OpenAI client.
package helpchat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/ai"
	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/cache"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
)

// PageContext mirrors the original's PageContext: the current screen a user
// is asking for help on.
type PageContext struct {
	Route            string
	PageTitle        string
	UserRole         string
	CurrentProject   string
	CurrentPortfolio string
	RelevantData     map[string]interface{}
}

// QueryRequest is one incoming help-chat query.
type QueryRequest struct {
	Query                string
	UserID               string
	SessionID            string
	Context              PageContext
	Language             string
	IncludeProactiveTips bool
	Behavior             UserBehavior
	DismissedTips        []string
}

// QuickAction is a suggested follow-up action attached to a response or tip.
type QuickAction struct {
	ID     string
	Label  string
	Action string
	Target string
}

// QueryResponse is the contract-stable output of Service.Query.
type QueryResponse struct {
	Response         string
	SessionID        string
	Sources          []SourceReference
	Confidence       float64
	ResponseTimeMs   int64
	ProactiveTips    []Tip
	SuggestedActions []QuickAction
	IsCached         bool
	IsFallback       bool
}

// SourceReference is one retrieved source cited in a response.
type SourceReference struct {
	Type       string
	ID         string
	Title      string
	Similarity float64
}

// Service wires the RAG engine, response cache, tips engine, translator,
// and analytics tracker into the help-chat contract.
type Service struct {
	engine     *ai.Engine
	cache      *cache.RAGResponseCache
	tips       *TipsEngine
	translator Translator
	analytics  *AnalyticsTracker
	log        *logger.Logger
	degraded   func() bool
}

// New constructs a Service. degraded reports whether the fallback path
// should be used instead of a live model call (spec §4.11: "pluggable
// fallback path when performance is degraded"); pass a func that always
// returns false to disable it.
func New(engine *ai.Engine, responseCache *cache.RAGResponseCache, tips *TipsEngine, translator Translator, analytics *AnalyticsTracker, log *logger.Logger, degraded func() bool) *Service {
	if degraded == nil {
		degraded = func() bool { return false }
	}
	return &Service{engine: engine, cache: responseCache, tips: tips, translator: translator, analytics: analytics, log: log, degraded: degraded}
}

// track runs an analytics call and logs, rather than propagates, any
// failure — a dropped analytics event should never fail the user's query.
func (s *Service) track(err error, what string) {
	if err == nil || s.log == nil {
		return
	}
	s.log.WithFields(map[string]interface{}{"event": what, "error": err.Error()}).Warn("help-chat analytics tracking failed")
}

// translateResponse translates resp.Response into targetLanguage when it is
// set, supported, and not already English. Translation failures degrade to
// the untranslated response rather than failing the query, matching the
// original's resilience around TranslationService being unavailable.
func (s *Service) translateResponse(ctx context.Context, resp *QueryResponse, targetLanguage string) {
	if s.translator == nil || targetLanguage == "" || targetLanguage == "en" || !IsSupportedLanguage(targetLanguage) {
		return
	}
	translated, err := s.translator.Translate(ctx, resp.Response, "en", targetLanguage)
	if err != nil {
		s.track(err, "translate_response")
		return
	}
	resp.Response = translated
}

// Query runs the help-chat pipeline: cache lookup, degraded-mode fallback,
// live RAG query, confidence-scaled cache write, analytics tracking, and
// (optionally) proactive tips.
func (s *Service) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	started := time.Now()
	key := cacheKey(req.Query, req.UserID, req.Context, req.Language)

	if cached, ok := s.cache.Get(key); ok {
		resp, ok := cached.(QueryResponse)
		if ok {
			resp.IsCached = true
			resp.ResponseTimeMs = time.Since(started).Milliseconds()
			return resp, nil
		}
	}

	if s.degraded() {
		resp := s.fallback(req, started)
		s.track(s.analytics.TrackQuery(ctx, req.UserID, req.Query, resp.Response, resp.ResponseTimeMs, resp.Confidence, req.Context.Route, req.SessionID), "track_query")
		return resp, nil
	}

	result, err := s.engine.ProcessRAGQuery(ctx, req.Query, req.UserID, req.SessionID)
	if err != nil {
		if apperr.Is(err, apperr.ErrCodeDependencyUnavailable) {
			resp := s.fallback(req, started)
			s.track(s.analytics.TrackQuery(ctx, req.UserID, req.Query, resp.Response, resp.ResponseTimeMs, resp.Confidence, req.Context.Route, req.SessionID), "track_query")
			return resp, nil
		}
		return QueryResponse{}, err
	}

	sources := make([]SourceReference, 0, len(result.Sources))
	for _, src := range result.Sources {
		title, _ := src.Metadata["title"].(string)
		sources = append(sources, SourceReference{Type: src.ContentType, ID: src.ContentID, Title: title, Similarity: src.Similarity})
	}

	resp := QueryResponse{
		Response:       result.Response,
		SessionID:      result.ConversationID,
		Sources:        sources,
		Confidence:     result.Confidence,
		ResponseTimeMs: result.ResponseTimeMs,
	}

	s.translateResponse(ctx, &resp, req.Language)

	if req.IncludeProactiveTips {
		resp.ProactiveTips = s.tips.Generate(req.Context, req.Behavior, req.DismissedTips)
		for _, tip := range resp.ProactiveTips {
			s.track(s.analytics.TrackTip(ctx, req.UserID, tip.TipID, string(tip.TipType), "shown", req.Context.Route), "track_tip")
		}
	}

	s.cache.Set(key, resp, resp.Confidence)
	s.track(s.analytics.TrackQuery(ctx, req.UserID, req.Query, resp.Response, resp.ResponseTimeMs, resp.Confidence, req.Context.Route, req.SessionID), "track_query")

	return resp, nil
}

// fallback returns the canned degraded-mode response, grounded on the
// original's performance_service.get_fallback_response.
func (s *Service) fallback(req QueryRequest, started time.Time) QueryResponse {
	return QueryResponse{
		Response:       "The help assistant is temporarily running in a reduced mode. Here are some things you can try while it recovers:",
		SessionID:      req.SessionID,
		Confidence:     0.3,
		ResponseTimeMs: time.Since(started).Milliseconds(),
		IsFallback:     true,
		SuggestedActions: []QuickAction{
			{ID: "browse_docs", Label: "Browse documentation", Action: "navigate", Target: "/help/docs"},
			{ID: "contact_support", Label: "Contact support", Action: "navigate", Target: "/support"},
		},
	}
}

// cacheKey builds the (query, user, context, language) cache key the
// original keys its Supabase cache table on.
func cacheKey(query, userID string, ctx PageContext, language string) string {
	parts := struct {
		Query    string
		UserID   string
		Route    string
		Project  string
		Language string
	}{Query: query, UserID: userID, Route: ctx.Route, Project: ctx.CurrentProject, Language: language}

	encoded, _ := json.Marshal(parts)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// suggestedQueries returns canned follow-up questions for the current page
// route, grounded on the original's _generate_suggested_queries.
func suggestedQueries(route string) []string {
	all := map[string][]string{
		"dashboard": {
			"How do I customize my dashboard?",
			"What do the dashboard metrics mean?",
			"How can I add new widgets to my dashboard?",
		},
		"project": {
			"How do I create a new project?",
			"How can I track project progress?",
			"What are the different project statuses?",
		},
		"portfolio": {
			"How do I manage multiple projects in a portfolio?",
			"How can I compare project performance?",
			"What is portfolio optimization?",
		},
		"resource": {
			"How do I allocate resources to projects?",
			"How can I track resource utilization?",
			"What is resource optimization?",
		},
		"financial": {
			"How do I set up project budgets?",
			"How can I track spending vs budget?",
			"What are variance reports?",
		},
	}

	lower := routeBucket(route)
	if suggestions, ok := all[lower]; ok {
		return suggestions
	}
	return []string{
		"How do I navigate the platform?",
		"What features are available?",
		"How can I get started?",
	}
}

func routeBucket(route string) string {
	route = strings.ToLower(route)
	for _, b := range []string{"dashboard", "project", "portfolio", "resource", "financial"} {
		if strings.Contains(route, b) {
			return b
		}
	}
	return ""
}
