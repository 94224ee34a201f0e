// Package document_repo provides PostgreSQL implementations for the CRT and
// manifest repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/id"
	"transdoc/internal/domain/documents/crt"
	"transdoc/internal/infrastructure/storage/postgres"
)

const crtTable = "crt_documents"

var crtColumns = postgres.ExtractDBColumns[crt.CRT]()

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// CRTRepo stores waybills in crt_documents.
type CRTRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
}

var _ crt.Repository = (*CRTRepo)(nil)

// NewCRTRepo creates a new CRT repository.
func NewCRTRepo(txManager *postgres.TxManager) *CRTRepo {
	return &CRTRepo{txManager: txManager, batch: postgres.NewBatchInserter(txManager)}
}

// CreateBatch implements crt.Repository using COPY.
func (r *CRTRepo) CreateBatch(ctx context.Context, docs []*crt.CRT) error {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, postgres.StructValues(d, crtColumns))
	}
	n, err := r.batch.CopyFromSlice(ctx, crtTable, crtColumns, rows)
	if err != nil {
		return err
	}
	if int(n) != len(docs) {
		return fmt.Errorf("copy into %s: %d of %d rows written", crtTable, n, len(docs))
	}
	return nil
}

// GetByID implements crt.Repository.
func (r *CRTRepo) GetByID(ctx context.Context, crtID id.ID) (*crt.CRT, error) {
	sql, args, err := builder().
		Select(crtColumns...).
		From(crtTable).
		Where(squirrel.Eq{"id": crtID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var d crt.CRT
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("crt", crtID)
		}
		return nil, fmt.Errorf("get crt: %w", err)
	}
	return &d, nil
}

// GetByIDs implements crt.Repository.
func (r *CRTRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*crt.CRT, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sql, args, err := builder().
		Select(crtColumns...).
		From(crtTable).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var docs []*crt.CRT
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("get crts: %w", err)
	}
	return docs, nil
}

// ListByCarrier implements crt.Repository.
func (r *CRTRepo) ListByCarrier(ctx context.Context, carrierID id.ID, limit int) ([]*crt.CRT, error) {
	sql, args, err := builder().
		Select(crtColumns...).
		From(crtTable).
		Where(squirrel.Eq{"carrier_id": carrierID}).
		OrderBy("sequence DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	docs := []*crt.CRT{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("list crts: %w", err)
	}
	return docs, nil
}
