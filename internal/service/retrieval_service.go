package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"scheme-saathi/internal/dto"
	"scheme-saathi/internal/embedding"
	"scheme-saathi/internal/models"
	"scheme-saathi/internal/vectorstore"
	"scheme-saathi/pkg/config"

	"go.uber.org/zap"
)

// ErrRetrievalUnavailable means the vector index is empty or the
// embedder cannot produce a query vector. Callers degrade to a
// text-only reply; they must never substitute fabricated scheme data.
var ErrRetrievalUnavailable = errors.New("scheme retrieval is unavailable")

// SchemeLister is the slice of the scheme repository the retrieval
// layer needs. Tests satisfy it with an in-memory stub.
type SchemeLister interface {
	ListAll(ctx context.Context) ([]*models.Scheme, error)
}

// RetrievalService owns the in-memory scheme corpus and its vector
// index. The corpus is loaded once per rebuild and served from memory;
// at ~3,700 records a linear scan plus brute-force cosine search is
// well under a millisecond and removes a network hop per chat turn.
type RetrievalService struct {
	source   SchemeLister
	embedder embedding.Embedder
	store    vectorstore.Store
	cfg      config.RetrievalConfig
	minScore int
	logger   *zap.Logger

	mu       sync.RWMutex
	schemes map[string]*models.Scheme
	ordered []*models.Scheme
}

func NewRetrievalService(
	source SchemeLister,
	embedder embedding.Embedder,
	store vectorstore.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *RetrievalService {
	return &RetrievalService{
		source:   source,
		embedder: embedder,
		store:    store,
		cfg:      cfg.Retrieval,
		minScore: cfg.Corpus.MinQualityScore,
		logger:   logger,
		schemes:  make(map[string]*models.Scheme),
	}
}

// BuildIndex loads the corpus and rebuilds the vector index. Records
// below the quality floor are skipped. Stored embeddings are reused
// when their dimension matches the active embedder; everything else is
// re-embedded, which is the normal path for the TF-IDF embedder whose
// vocabulary depends on the corpus itself.
//
// The swap into serving state is atomic: searches during a rebuild see
// the old index, never a partial one.
func (s *RetrievalService) BuildIndex(ctx context.Context) error {
	all, err := s.source.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scheme corpus: %w", err)
	}

	kept := make([]*models.Scheme, 0, len(all))
	texts := make([]string, 0, len(all))
	for _, sc := range all {
		if sc.QualityScore < s.minScore {
			continue
		}
		kept = append(kept, sc)
		texts = append(texts, EmbeddingText(sc))
	}
	if len(kept) == 0 {
		return fmt.Errorf("no schemes passed the quality floor (%d loaded)", len(all))
	}

	if err := s.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("embedder prepare failed: %w", err)
	}

	ids := make([]string, len(kept))
	vectors := make([][]float32, len(kept))
	dim := s.embedder.Dimension()
	for i, sc := range kept {
		ids[i] = sc.ID
		if dim > 0 && len(sc.Embedding) == dim {
			vectors[i] = sc.Embedding
			continue
		}
		vec, err := s.embedder.Embed(ctx, texts[i])
		if err != nil {
			return fmt.Errorf("failed to embed scheme %s: %w", sc.ID, err)
		}
		vectors[i] = vec
	}

	if err := s.store.Rebuild(ids, vectors); err != nil {
		return fmt.Errorf("failed to rebuild vector index: %w", err)
	}

	byID := make(map[string]*models.Scheme, len(kept))
	for _, sc := range kept {
		byID[sc.ID] = sc
	}
	s.mu.Lock()
	s.schemes = byID
	s.ordered = kept
	s.mu.Unlock()

	s.logger.Info("Scheme index rebuilt",
		zap.Int("indexed", len(kept)),
		zap.Int("skipped", len(all)-len(kept)),
		zap.String("embedder", s.embedder.Name()),
	)
	return nil
}

// EmbeddingText is the document representation a scheme is indexed
// under. It concatenates every field users describe themselves
// against, so both "scholarship for SC students" and "crop insurance
// bihar" land near the right records. cmd/seed uses the same builder
// so stored vectors stay comparable with query-time embeddings.
func EmbeddingText(s *models.Scheme) string {
	parts := []string{
		s.Name,
		s.LocalName,
		s.Category,
		s.BriefDescription,
		s.DetailedDescription,
		s.Benefits.Summary,
		s.Benefits.Type,
		s.Eligibility.RawText,
		s.Eligibility.State,
		s.Eligibility.Occupation,
		s.GeographicalCoverage,
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " | ")
}

// Retrieve embeds an enriched form of the query and returns candidates
// above the similarity threshold, best first, at most topK.
func (s *RetrievalService) Retrieve(
	ctx context.Context,
	query string,
	profile models.UserProfile,
	history []dto.ChatTurn,
	topK int,
) ([]models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if s.store.Len() == 0 {
		return nil, ErrRetrievalUnavailable
	}

	enriched := s.enrichQuery(query, profile, history)
	vector, err := s.embedder.Embed(ctx, enriched)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Error("Query embedding failed", zap.Error(err))
		return nil, ErrRetrievalUnavailable
	}

	fetchK := topK * 3
	if fetchK > s.cfg.FetchK {
		fetchK = s.cfg.FetchK
	}
	hits, err := s.store.Search(vector, fetchK)
	if err != nil {
		s.logger.Error("Vector search failed", zap.Error(err))
		return nil, ErrRetrievalUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]models.Candidate, 0, len(hits))
	for _, hit := range hits {
		scheme, ok := s.schemes[hit.SchemeID]
		if !ok {
			continue
		}
		score := math.Max(0, hit.Score)
		if score < s.cfg.SimilarityThreshold {
			continue
		}
		copied := *scheme
		copied.MatchScore = round4(score)
		candidates = append(candidates, models.Candidate{Scheme: &copied, Score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// enrichQuery biases the embedding toward the accumulated
// conversation rather than just the current sentence: profile
// attributes plus the last few user turns are appended to the raw
// query text.
func (s *RetrievalService) enrichQuery(query string, profile models.UserProfile, history []dto.ChatTurn) string {
	parts := []string{strings.TrimSpace(query)}
	for _, v := range []string{
		profile.Occupation,
		profile.State,
		profile.Gender,
		profile.CasteCategory,
		profile.EducationLevel,
		profile.SpecificNeed,
	} {
		if isValidValue(v) {
			parts = append(parts, v)
		}
	}
	if profile.Disability == "yes" {
		parts = append(parts, "disability divyang")
	}

	var userTurns []string
	for _, turn := range history {
		if turn.Role == models.RoleUser && strings.TrimSpace(turn.Content) != "" {
			userTurns = append(userTurns, turn.Content)
		}
	}
	if len(userTurns) > 4 {
		userTurns = userTurns[len(userTurns)-4:]
	}
	parts = append(parts, userTurns...)

	return strings.Join(parts, " ")
}

// SearchSchemes is direct semantic search for the /search endpoint:
// no profile, optional category and state narrowing applied after
// ranking. Narrowing runs over the fetch-K over-fetch so matches
// ranked below topK stay reachable when the head of the ranking is
// filtered away.
func (s *RetrievalService) SearchSchemes(ctx context.Context, query, state, category string, topK int) ([]models.Scheme, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	candidates, err := s.Retrieve(ctx, query, models.UserProfile{}, nil, s.cfg.FetchK)
	if err != nil {
		return nil, err
	}
	out := make([]models.Scheme, 0, len(candidates))
	for _, c := range candidates {
		if category != "" && !strings.EqualFold(c.Scheme.Category, category) {
			continue
		}
		if state != "" && !schemeServesState(c.Scheme, state) {
			continue
		}
		out = append(out, *c.Scheme)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// GetSchemeByID serves the detail endpoint from the in-memory corpus.
func (s *RetrievalService) GetSchemeByID(id string) (*models.Scheme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scheme, ok := s.schemes[id]
	return scheme, ok
}

// ListSchemes returns a page of the corpus, optionally narrowed by
// category and state.
func (s *RetrievalService) ListSchemes(category, state string, limit, offset int) ([]*models.Scheme, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Scheme
	for _, sc := range s.ordered {
		if category != "" && !strings.EqualFold(sc.Category, category) {
			continue
		}
		if state != "" && !schemeServesState(sc, state) {
			continue
		}
		out = append(out, sc)
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total
}

func schemeServesState(s *models.Scheme, state string) bool {
	schemeState := strings.ToLower(strings.TrimSpace(s.Eligibility.State))
	if schemeState == "" || schemeState == "all india" {
		return true
	}
	userState := strings.ToLower(strings.TrimSpace(state))
	return strings.Contains(schemeState, userState) || strings.Contains(userState, schemeState)
}

// Categories returns the sorted distinct categories in the corpus.
func (s *RetrievalService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, sc := range s.ordered {
		if sc.Category != "" {
			seen[sc.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (s *RetrievalService) TotalSchemes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// Healthy reports whether the index can answer queries.
func (s *RetrievalService) Healthy() bool {
	return s.store.Len() > 0
}
