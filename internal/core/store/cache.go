package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CacheKey identifies one generated reply. The prompt digest changes
// whenever the model SQL, hints, or prompt templates change, so stale
// entries are simply never hit again.
type CacheKey struct {
	ModelName     string
	PromptSHA     string
	Provider      string
	ProviderModel string
}

// NewCacheKey builds a key from the raw prompt text.
func NewCacheKey(modelName, provider, providerModel, prompt string) CacheKey {
	sum := sha256.Sum256([]byte(prompt))
	return CacheKey{
		ModelName:     modelName,
		PromptSHA:     hex.EncodeToString(sum[:]),
		Provider:      provider,
		ProviderModel: providerModel,
	}
}

func (k CacheKey) validate() error {
	if strings.TrimSpace(k.ModelName) == "" {
		return errors.New("cache model name is required")
	}
	if strings.TrimSpace(k.PromptSHA) == "" {
		return errors.New("cache prompt digest is required")
	}
	return nil
}

// GetReply returns a cached reply if one exists and has not expired.
// A miss is ("", false, nil), not an error.
func (s *Store) GetReply(ctx context.Context, key CacheKey) (string, bool, error) {
	if s == nil || s.DB == nil {
		return "", false, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := key.validate(); err != nil {
		return "", false, err
	}

	var reply string
	row := s.DB.QueryRowContext(ctx, `
		SELECT reply
		FROM generation_cache
		WHERE model_name = ? AND prompt_sha = ? AND provider = ? AND provider_model = ? AND expires_at > ?
	`, key.ModelName, key.PromptSHA, key.Provider, key.ProviderModel, time.Now().UTC().Unix())

	if err := row.Scan(&reply); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetch cached reply: %w", err)
	}
	return reply, true, nil
}

// SetReply stores a reply with a TTL. A non-positive TTL disables caching
// for the call.
func (s *Store) SetReply(ctx context.Context, key CacheKey, reply string, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ttl <= 0 || reply == "" {
		return nil
	}
	if err := key.validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO generation_cache (model_name, prompt_sha, provider, provider_model, reply, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(model_name, prompt_sha, provider, provider_model) DO UPDATE SET
			reply = excluded.reply,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key.ModelName, key.PromptSHA, key.Provider, key.ProviderModel, reply, now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("store cached reply: %w", err)
	}
	return nil
}

// PruneExpired removes entries whose TTL has elapsed and reports how many
// rows were deleted.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM generation_cache WHERE expires_at <= ?`, time.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}
