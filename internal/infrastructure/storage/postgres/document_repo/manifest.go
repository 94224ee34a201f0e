package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/domain/documents/manifest"
	"transdoc/internal/infrastructure/storage/postgres"
)

const (
	manifestTable = "manifests"
	linkTable     = "manifest_crts"
)

var manifestColumns = postgres.ExtractDBColumns[manifest.Manifest]()

// ManifestRepo stores manifests and their CRT links.
type ManifestRepo struct {
	txManager *postgres.TxManager
}

var _ manifest.Repository = (*ManifestRepo)(nil)

// NewManifestRepo creates a new manifest repository.
func NewManifestRepo(txManager *postgres.TxManager) *ManifestRepo {
	return &ManifestRepo{txManager: txManager}
}

// CreateBatch implements manifest.Repository.
func (r *ManifestRepo) CreateBatch(ctx context.Context, docs []*manifest.Manifest) error {
	if len(docs) == 0 {
		return nil
	}
	q := builder().Insert(manifestTable).Columns(manifestColumns...)
	for _, d := range docs {
		q = q.Values(postgres.StructValues(d, manifestColumns)...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", manifestTable, err)
	}
	return nil
}

// GetByID implements manifest.Repository.
func (r *ManifestRepo) GetByID(ctx context.Context, manifestID id.ID) (*manifest.Manifest, error) {
	sql, args, err := builder().
		Select(manifestColumns...).
		From(manifestTable).
		Where(squirrel.Eq{"id": manifestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var m manifest.Manifest
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("manifest", manifestID)
		}
		return nil, fmt.Errorf("get manifest: %w", err)
	}
	return &m, nil
}

// LinkCRTs implements manifest.Repository. New links are appended after the
// existing ones.
func (r *ManifestRepo) LinkCRTs(ctx context.Context, manifestID id.ID, crtIDs []id.ID) error {
	if len(crtIDs) == 0 {
		return nil
	}
	querier := r.txManager.GetQuerier(ctx)

	var next int
	if err := querier.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM manifest_crts WHERE manifest_id = $1`,
		manifestID,
	).Scan(&next); err != nil {
		return fmt.Errorf("read link position: %w", err)
	}

	q := builder().Insert(linkTable).Columns("manifest_id", "crt_id", "position")
	for i, crtID := range crtIDs {
		q = q.Values(manifestID, crtID, next+i+1)
	}
	sql, args, err := q.Suffix("ON CONFLICT (manifest_id, crt_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", linkTable, err)
	}
	return nil
}

// ListCRTIDs implements manifest.Repository, in link order.
func (r *ManifestRepo) ListCRTIDs(ctx context.Context, manifestID id.ID) ([]id.ID, error) {
	sql, args, err := builder().
		Select("crt_id").
		From(linkTable).
		Where(squirrel.Eq{"manifest_id": manifestID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	ids := []id.ID{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list manifest links: %w", err)
	}
	return ids, nil
}
