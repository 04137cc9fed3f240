package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/training-records-backend/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
