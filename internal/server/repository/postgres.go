package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resumeforge/internal/config"
	apperrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `CREATE TABLE IF NOT EXISTS resumes (
	id         UUID PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const createIndex = `CREATE INDEX IF NOT EXISTS resumes_owner_created_idx
	ON resumes (owner_id, created_at DESC)`

// DB is the part of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres stores each saved resume as a jsonb row.
type Postgres struct {
	db  DB
	now func() time.Time
}

// Connect opens a pool from cfg, pings it and creates the schema.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "invalid postgres dsn", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, apperrors.NewStorageError(apperrors.ErrCodeStorageFailed, "failed to open postgres pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperrors.NewStorageError(apperrors.ErrCodeStorageFailed, "postgres unavailable", err)
	}

	p := NewPostgres(pool)
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// Migrate creates the resumes table and its index when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createTable, createIndex} {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return apperrors.NewStorageError(apperrors.ErrCodeStorageFailed, "failed to create resumes schema", err)
		}
	}
	return nil
}

func (p *Postgres) Save(ctx context.Context, owner string, doc json.RawMessage) (types.ResumeRecord, error) {
	now := p.now().UTC()
	rec := types.ResumeRecord{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := p.db.Exec(ctx,
		`INSERT INTO resumes (id, owner_id, document, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.OwnerID, []byte(doc), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return types.ResumeRecord{}, apperrors.NewStorageError(apperrors.ErrCodeStorageFailed, "failed to save resume", err)
	}
	return rec, nil
}

func (p *Postgres) Latest(ctx context.Context, owner string) (types.ResumeRecord, error) {
	row := p.db.QueryRow(ctx,
		`SELECT id::text, owner_id, document, created_at, updated_at
		 FROM resumes
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		owner,
	)

	var rec types.ResumeRecord
	var doc []byte
	if err := row.Scan(&rec.ID, &rec.OwnerID, &doc, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ResumeRecord{}, notFound(owner)
		}
		return types.ResumeRecord{}, apperrors.NewStorageError(apperrors.ErrCodeStorageFailed,
			fmt.Sprintf("failed to load latest resume for %s", owner), err)
	}
	rec.Document = doc
	return rec, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	p.db.Close()
	return nil
}
