package service

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/ragline/ragline/domain/chat"
	"github.com/ragline/ragline/domain/document"
	"github.com/ragline/ragline/domain/model"
	"github.com/ragline/ragline/infrastructure/runtime"
	"github.com/ragline/ragline/infrastructure/search"
	"github.com/ragline/ragline/internal/config"
)

// SourceExcerptChars is the length of the excerpt returned with each source.
const SourceExcerptChars = 160

// ChatRequest describes one question to answer.
type ChatRequest struct {
	question    string
	modelID     string
	modelName   string
	documentIDs []int64
	topK        int
}

// NewChatRequest creates a ChatRequest. topK 0 means use the model profile's
// default retrieval depth.
func NewChatRequest(question, modelID, modelName string, documentIDs []int64, topK int) ChatRequest {
	ids := make([]int64, len(documentIDs))
	copy(ids, documentIDs)
	return ChatRequest{
		question:    question,
		modelID:     modelID,
		modelName:   modelName,
		documentIDs: ids,
		topK:        topK,
	}
}

// Question returns the user question.
func (r ChatRequest) Question() string { return r.question }

// ModelID returns the requested model identifier.
func (r ChatRequest) ModelID() string { return r.modelID }

// ModelName returns the requested model display name.
func (r ChatRequest) ModelName() string { return r.modelName }

// DocumentIDs returns the document scope. Empty means no retrieval: the
// question goes to the model as a plain exchange.
func (r ChatRequest) DocumentIDs() []int64 { return r.documentIDs }

// TopK returns the requested retrieval depth (0 for the profile default).
func (r ChatRequest) TopK() int { return r.topK }

// Source describes one retrieved chunk cited by an answer.
type Source struct {
	chunkID    int64
	documentID int64
	page       int
	title      string
	excerpt    string
	score      float64
}

// ChunkID returns the chunk identifier.
func (s Source) ChunkID() int64 { return s.chunkID }

// DocumentID returns the owning document identifier.
func (s Source) DocumentID() int64 { return s.documentID }

// Page returns the source page number.
func (s Source) Page() int { return s.page }

// Title returns the owning document title.
func (s Source) Title() string { return s.title }

// Excerpt returns the truncated chunk text.
func (s Source) Excerpt() string { return s.excerpt }

// Score returns the similarity score, rounded to four decimals.
func (s Source) Score() float64 { return s.score }

// ChatResult is a generated answer with its citations and model metadata.
type ChatResult struct {
	answer    string
	sources   []Source
	modelFile string
	strategy  model.Strategy
	cacheHit  bool
}

// Answer returns the generated answer text.
func (r ChatResult) Answer() string { return r.answer }

// Sources returns the cited chunks in rank order.
func (r ChatResult) Sources() []Source { return r.sources }

// ModelFile returns the base name of the model file that answered.
func (r ChatResult) ModelFile() string { return r.modelFile }

// Strategy returns the selection rule that picked the model.
func (r ChatResult) Strategy() model.Strategy { return r.strategy }

// CacheHit reports whether the runtime was already loaded.
func (r ChatResult) CacheHit() bool { return r.cacheHit }

// ChatService answers questions, optionally grounded in retrieved chunks.
type ChatService struct {
	store       document.Store
	embedder    document.Embedder
	resolver    *runtime.Resolver
	cache       *runtime.Cache
	profiles    config.ModelProfiles
	sampling    config.SamplingConfig
	defaultTopK int
	logger      *slog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(
	store document.Store,
	embedder document.Embedder,
	resolver *runtime.Resolver,
	cache *runtime.Cache,
	profiles config.ModelProfiles,
	sampling config.SamplingConfig,
	defaultTopK int,
	logger *slog.Logger,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		store:       store,
		embedder:    embedder,
		resolver:    resolver,
		cache:       cache,
		profiles:    profiles,
		sampling:    sampling,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Ask resolves the model selection, retrieves context when a document scope
// is given, and generates an answer. Without a document scope no retrieval
// happens at all: the question reaches the model as a plain exchange.
func (s *ChatService) Ask(ctx context.Context, req ChatRequest) (ChatResult, error) {
	match, err := s.resolver.Resolve(req.ModelID(), req.ModelName())
	if err != nil {
		return ChatResult{}, err
	}

	var ranked []document.ScoredChunk
	if len(req.DocumentIDs()) > 0 {
		ranked, err = s.retrieve(ctx, req)
		if err != nil {
			return ChatResult{}, err
		}
	}

	messages := chat.BuildMessages(req.Question(), ranked)

	rt, cacheHit, err := s.cache.Acquire(ctx, match.Model().Path())
	if err != nil {
		return ChatResult{}, err
	}

	modelFile := filepath.Base(match.Model().Path())
	answer, err := rt.Complete(ctx, messages, s.sampling)
	if err != nil {
		return ChatResult{}, chat.NewGenerationError(modelFile, err)
	}
	if answer == "" {
		answer = chat.FallbackAnswer
	}

	s.logger.Info("chat answered",
		"model_file", modelFile,
		"strategy", string(match.Strategy()),
		"cache_hit", cacheHit,
		"sources", len(ranked),
	)

	return ChatResult{
		answer:    answer,
		sources:   buildSources(ranked),
		modelFile: modelFile,
		strategy:  match.Strategy(),
		cacheHit:  cacheHit,
	}, nil
}

// retrieve embeds the question once and ranks the scoped candidates.
// Blank question text retrieves nothing; it never reaches the embedder.
func (s *ChatService) retrieve(ctx context.Context, req ChatRequest) ([]document.ScoredChunk, error) {
	if strings.TrimSpace(req.Question()) == "" {
		return nil, nil
	}

	query, err := s.embedder.Embed(ctx, req.Question())
	if err != nil {
		return nil, err
	}

	storedDim, err := s.store.Dimension(ctx)
	if err != nil {
		return nil, err
	}
	if storedDim > 0 && len(query) != storedDim {
		return nil, document.ErrDimensionMismatch
	}

	candidates, err := s.store.Candidates(ctx, req.DocumentIDs())
	if err != nil {
		return nil, err
	}

	k := req.TopK()
	if k <= 0 {
		k = s.profiles.TopKFor(model.Normalize(req.ModelID()), s.defaultTopK)
	}

	return search.TopK(query, candidates, k), nil
}

func buildSources(ranked []document.ScoredChunk) []Source {
	sources := make([]Source, len(ranked))
	for i, chunk := range ranked {
		sources[i] = Source{
			chunkID:    chunk.ChunkID(),
			documentID: chunk.DocumentID(),
			page:       chunk.Page(),
			title:      chunk.Title(),
			excerpt:    chat.Excerpt(chunk.Content(), SourceExcerptChars),
			score:      math.Round(chunk.Score()*10000) / 10000,
		}
	}
	return sources
}
