package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS generation_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_name TEXT NOT NULL,
		prompt_sha TEXT NOT NULL,
		provider TEXT NOT NULL,
		provider_model TEXT NOT NULL,
		reply TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		UNIQUE(model_name, prompt_sha, provider, provider_model)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_generation_cache_expires ON generation_cache(expires_at);`,
	`CREATE INDEX IF NOT EXISTS idx_generation_cache_lookup ON generation_cache(model_name, provider);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}
	return nil
}
