package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"transdoc/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables if they do not exist. The schema is idempotent.
func Migrate(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema applied")
	return nil
}
