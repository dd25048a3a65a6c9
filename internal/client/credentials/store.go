// Package credentials persists the session token of the client.
//
// The token is an opaque bearer string. It is written on login and
// registration, read at startup to restore the session and cleared on
// logout or when the server rejects it during restore. It is stored as is
// with the time it was written: no encryption and no expiry tracking.
package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/carbuyer/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/carbuyer/internal/common"
	"github.com/dmitrijs2005/carbuyer/internal/dbx"
)

// savedAtKey records when the current token was written.
const savedAtKey = "token_saved_at"

// Store is the single owner of the persisted token.
type Store interface {
	// Read returns the stored token; ok is false when none is stored.
	Read(ctx context.Context) (token string, ok bool, err error)
	// Write stores token, overwriting any previous value.
	Write(ctx context.Context, token string) error
	// Clear removes the stored token.
	Clear(ctx context.Context) error
	// SavedAt reports when the current token was written.
	SavedAt(ctx context.Context) (at time.Time, ok bool, err error)
}

// SQLiteStore keeps the token in the metadata table of the local database,
// so it survives restarts of the client.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Read(ctx context.Context) (string, bool, error) {
	v, ok, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.TokenMetadataKey)
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}
	if !ok || len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *SQLiteStore) Write(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenMetadataKey, []byte(token)); err != nil {
			return fmt.Errorf("write token: %w", err)
		}
		stamp := s.now().UTC().Format(time.RFC3339)
		if err := repo.Set(ctx, savedAtKey, []byte(stamp)); err != nil {
			return fmt.Errorf("write token: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		for _, k := range []string{common.TokenMetadataKey, savedAtKey} {
			if err := repo.Delete(ctx, k); err != nil {
				return fmt.Errorf("clear token: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) SavedAt(ctx context.Context) (time.Time, bool, error) {
	v, ok, err := metadata.NewSQLiteRepository(s.db).Get(ctx, savedAtKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse token timestamp: %w", err)
	}
	return t, true, nil
}

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu      sync.RWMutex
	token   string
	savedAt time.Time
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore { return &MemoryStore{now: time.Now} }

func (s *MemoryStore) Read(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *MemoryStore) Write(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.savedAt = time.Time{}
	if token != "" {
		s.savedAt = s.now().UTC()
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.savedAt = time.Time{}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SavedAt(context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savedAt, s.token != "", nil
}
