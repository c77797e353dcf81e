package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"scheme-saathi/internal/embedding"
	"scheme-saathi/internal/embedding/openai"
	"scheme-saathi/internal/models"
	"scheme-saathi/internal/repository"
	"scheme-saathi/internal/service"
	"scheme-saathi/pkg/config"
	"scheme-saathi/pkg/logger"
	"scheme-saathi/pkg/postgres"

	"go.uber.org/zap"
)

// Seeds the schemes table from a JSON snapshot produced by the corpus
// enrichment pipeline. With an OpenAI-compatible embedder configured
// the document vectors are computed here and stored, so the server
// starts without re-embedding ~3,700 records; with the TF-IDF embedder
// vectors are corpus-dependent and the server rebuilds them itself.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	schemes, err := loadSchemes(cfg.Corpus.SchemesPath)
	if err != nil {
		appLogger.Fatal("Failed to load schemes snapshot",
			zap.String("path", cfg.Corpus.SchemesPath),
			zap.Error(err),
		)
	}
	appLogger.Info("Loaded schemes snapshot",
		zap.String("path", cfg.Corpus.SchemesPath),
		zap.Int("total", len(schemes)),
	)

	var embedder embedding.Embedder
	if cfg.Embedder.Type == "openai" {
		embedder, err = openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.BaseURL,
			APIKeyEnv: cfg.Embedder.APIKeyEnv,
			Model:     cfg.Embedder.Model,
			Timeout:   cfg.Embedder.Timeout,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize embedder", zap.Error(err))
		}
	}

	schemeRepo := repository.NewSchemeRepository(db, appLogger)

	seeded, skipped := 0, 0
	for i := range schemes {
		s := &schemes[i]
		if s.ID == "" || s.Name == "" {
			skipped++
			continue
		}
		if s.QualityScore < cfg.Corpus.MinQualityScore {
			skipped++
			continue
		}

		if embedder != nil {
			vec, err := embedder.Embed(ctx, service.EmbeddingText(s))
			if err != nil {
				appLogger.Error("Failed to embed scheme, storing without vector",
					zap.String("scheme_id", s.ID),
					zap.Error(err),
				)
			} else {
				s.Embedding = vec
			}
		}

		if err := schemeRepo.Upsert(ctx, s); err != nil {
			appLogger.Fatal("Failed to upsert scheme",
				zap.String("scheme_id", s.ID),
				zap.Error(err),
			)
		}
		seeded++
	}

	total, err := schemeRepo.Count(ctx)
	if err != nil {
		appLogger.Fatal("Failed to count schemes", zap.Error(err))
	}
	appLogger.Info("Seeding complete",
		zap.Int("seeded", seeded),
		zap.Int("skipped", skipped),
		zap.Int("in_database", total),
	)
}

// loadSchemes accepts the snapshot shapes the enrichment pipeline has
// produced over time: a bare array, a single object, or an object
// wrapping the array under "schemes".
func loadSchemes(path string) ([]models.Scheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []models.Scheme
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Schemes []models.Scheme `json:"schemes"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Schemes) > 0 {
		return wrapped.Schemes, nil
	}

	var single models.Scheme
	if err := json.Unmarshal(data, &single); err == nil && single.ID != "" {
		return []models.Scheme{single}, nil
	}

	return nil, fmt.Errorf("unrecognized snapshot format")
}
