package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"scheme-saathi/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SchemeRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSchemeRepository(db *pgxpool.Pool, logger *zap.Logger) *SchemeRepository {
	return &SchemeRepository{
		db:     db,
		logger: logger,
	}
}

var schemeColumns = []string{
	"id", "name", "local_name", "category", "brief_description",
	"detailed_description", "eligibility", "benefits",
	"required_documents", "application_process", "official_website",
	"application_link", "ministry", "geographical_coverage",
	"quality_score", "embedding",
}

// Upsert writes one scheme record, replacing any previous version of
// the same ID. Used by cmd/seed; serving never writes.
func (r *SchemeRepository) Upsert(ctx context.Context, s *models.Scheme) error {
	eligibility, err := json.Marshal(s.Eligibility)
	if err != nil {
		return fmt.Errorf("failed to marshal eligibility: %w", err)
	}
	benefits, err := json.Marshal(s.Benefits)
	if err != nil {
		return fmt.Errorf("failed to marshal benefits: %w", err)
	}
	documents, err := json.Marshal(s.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("failed to marshal required documents: %w", err)
	}
	process, err := json.Marshal(s.ApplicationProcess)
	if err != nil {
		return fmt.Errorf("failed to marshal application process: %w", err)
	}

	embedding := pgtype.FlatArray[float32](s.Embedding)

	query := squirrel.Insert("schemes").
		Columns(schemeColumns...).
		Values(s.ID, s.Name, s.LocalName, s.Category, s.BriefDescription,
			s.DetailedDescription, eligibility, benefits,
			documents, process, s.OfficialWebsite,
			s.ApplicationLink, s.Ministry, s.GeographicalCoverage,
			s.QualityScore, embedding).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			local_name = EXCLUDED.local_name,
			category = EXCLUDED.category,
			brief_description = EXCLUDED.brief_description,
			detailed_description = EXCLUDED.detailed_description,
			eligibility = EXCLUDED.eligibility,
			benefits = EXCLUDED.benefits,
			required_documents = EXCLUDED.required_documents,
			application_process = EXCLUDED.application_process,
			official_website = EXCLUDED.official_website,
			application_link = EXCLUDED.application_link,
			ministry = EXCLUDED.ministry,
			geographical_coverage = EXCLUDED.geographical_coverage,
			quality_score = EXCLUDED.quality_score,
			embedding = EXCLUDED.embedding`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListAll loads the full corpus snapshot, ordered by ID for a stable
// index build.
func (r *SchemeRepository) ListAll(ctx context.Context) ([]*models.Scheme, error) {
	query := squirrel.Select(schemeColumns...).
		From("schemes").
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemes []*models.Scheme
	for rows.Next() {
		s, err := scanScheme(rows.Scan)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, s)
	}
	return schemes, rows.Err()
}

func (r *SchemeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM schemes").Scan(&count)
	return count, err
}

func scanScheme(scan func(dest ...any) error) (*models.Scheme, error) {
	var (
		s           models.Scheme
		eligibility []byte
		benefits    []byte
		documents   []byte
		process     []byte
		embedding   pgtype.FlatArray[float32]
	)
	if err := scan(
		&s.ID, &s.Name, &s.LocalName, &s.Category, &s.BriefDescription,
		&s.DetailedDescription, &eligibility, &benefits,
		&documents, &process, &s.OfficialWebsite,
		&s.ApplicationLink, &s.Ministry, &s.GeographicalCoverage,
		&s.QualityScore, &embedding,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(eligibility, &s.Eligibility); err != nil {
		return nil, fmt.Errorf("failed to unmarshal eligibility: %w", err)
	}
	if err := json.Unmarshal(benefits, &s.Benefits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal benefits: %w", err)
	}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &s.RequiredDocuments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal required documents: %w", err)
		}
	}
	if len(process) > 0 {
		if err := json.Unmarshal(process, &s.ApplicationProcess); err != nil {
			return nil, fmt.Errorf("failed to unmarshal application process: %w", err)
		}
	}
	s.Embedding = []float32(embedding)
	return &s, nil
}
