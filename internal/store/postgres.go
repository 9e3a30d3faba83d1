// Package store provides a PostgreSQL-backed pattern store. Pattern
// definitions live as JSONB documents with the fields the engine filters by
// lifted into indexed columns; rows carry a monotonically increasing
// sequence number so query results keep a stable order.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"latex-speech/internal/pattern"
	"latex-speech/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS patterns (
	id         TEXT PRIMARY KEY,
	domain     TEXT NOT NULL,
	priority   INT  NOT NULL,
	definition JSONB NOT NULL,
	seq        BIGSERIAL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS patterns_domain_idx ON patterns (domain);
`

// PostgresStore implements pattern.Store on top of a pgx connection pool.
// Each query decodes rows into pattern definitions and constructs patterns
// through the same validation path as file loading, so a corrupt row
// surfaces as an error instead of a silently broken rule.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against databaseURL, verifies it with a ping, and
// ensures the patterns table exists.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, types.NewAppError(types.ErrStore, "connect to database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, types.NewAppError(types.ErrStore, "ping database", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, types.NewAppError(types.ErrStore, "ensure patterns table", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Upsert writes pattern definitions. An existing row with the same ID is
// replaced but keeps its original sequence position, mirroring the
// in-memory store's replace-in-place behavior.
func (s *PostgresStore) Upsert(ctx context.Context, defs ...pattern.Definition) error {
	for _, def := range defs {
		// Validate before touching the table.
		if _, err := pattern.New(def); err != nil {
			return err
		}
		doc, err := json.Marshal(def)
		if err != nil {
			return types.NewAppErrorWithDetails(types.ErrStore,
				"encode pattern definition", def.ID, err)
		}
		domain := def.Domain
		if domain == "" {
			domain = types.DomainGeneral
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO patterns (id, domain, priority, definition)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET domain = $2, priority = $3, definition = $4, updated_at = NOW()
		`, def.ID, string(domain), def.Priority, doc)
		if err != nil {
			return types.NewAppErrorWithDetails(types.ErrStore,
				"upsert pattern", def.ID, err)
		}
	}
	return nil
}

// Delete removes a pattern row. Deleting an absent ID is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM patterns WHERE id = $1`, id); err != nil {
		return types.NewAppErrorWithDetails(types.ErrStore, "delete pattern", id, err)
	}
	return nil
}

// FindByDomain implements pattern.Store.
func (s *PostgresStore) FindByDomain(ctx context.Context, domain types.Domain) ([]*pattern.Pattern, error) {
	return s.query(ctx, `
		SELECT definition FROM patterns
		WHERE domain = $1
		ORDER BY seq
	`, string(domain))
}

// FindByContext implements pattern.Store. Context applicability depends on
// the "any" wildcard on both sides, so rows are filtered after decoding.
func (s *PostgresStore) FindByContext(ctx context.Context, mctx types.MathContext) ([]*pattern.Pattern, error) {
	all, err := s.query(ctx, `SELECT definition FROM patterns ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	var out []*pattern.Pattern
	for _, p := range all {
		if p.AppliesToContext(mctx) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByFilters implements pattern.Store. Domain and priority narrow the
// query itself; tier and context are applied to the decoded patterns.
func (s *PostgresStore) FindByFilters(ctx context.Context, f pattern.Filters) ([]*pattern.Pattern, error) {
	sql := `SELECT definition FROM patterns WHERE priority >= $1`
	args := []any{f.MinPriority}
	if f.Domain != "" {
		sql += fmt.Sprintf(" AND domain = $%d", len(args)+1)
		args = append(args, string(f.Domain))
	}
	sql += " ORDER BY seq"

	matched, err := s.query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var out []*pattern.Pattern
	for _, p := range matched {
		if f.Context != "" && !p.AppliesToContext(f.Context) {
			continue
		}
		if f.Tier != "" && p.Tier() != f.Tier {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Len returns the number of stored patterns.
func (s *PostgresStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patterns`).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrStore, "count patterns", err)
	}
	return n, nil
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]*pattern.Pattern, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrStore, "query patterns", err)
	}
	defer rows.Close()

	var out []*pattern.Pattern
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, types.NewAppError(types.ErrStore, "scan pattern row", err)
		}
		var def pattern.Definition
		if err := json.Unmarshal(doc, &def); err != nil {
			return nil, types.NewAppError(types.ErrStore, "decode pattern definition", err)
		}
		p, err := pattern.New(def)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrStore, "iterate pattern rows", err)
	}
	return out, nil
}
