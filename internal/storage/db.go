package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"juriscope/internal/util"
)

//go:embed schema.sql
var schemaSQL string

// generalSectionLockKey identifies the advisory lock guarding general positions.
const generalSectionLockKey int64 = 0x6a75726973

type DB struct {
	Pool *pgxpool.Pool
}

func NewDB(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the production Store.
type Postgres struct {
	pgRepo
	db *DB
}

func NewPostgres(db *DB) *Postgres {
	return &Postgres{pgRepo: pgRepo{q: db.Pool}, db: db}
}

func (p *Postgres) Close() { p.db.Close() }

func (p *Postgres) WithTx(ctx context.Context, fn func(Repo) error) error {
	tx, err := p.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", mapError(err))
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&pgRepo{q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", mapError(err))
	}
	return nil
}

type pgRepo struct {
	q    querier
	inTx bool
}

// mapError translates driver errors into the package's sentinels, keeping the
// original in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return util.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return fmt.Errorf("%w: %s", util.ErrConcurrentModification, pgErr.Message)
	case "23505":
		switch pgErr.ConstraintName {
		case "documents_url_key", "documents_external_id_key":
			return fmt.Errorf("%w: %s", util.ErrDuplicateDocument, pgErr.ConstraintName)
		case "articles_general_position_key":
			return fmt.Errorf("%w: %s", util.ErrConcurrentModification, pgErr.ConstraintName)
		default:
			return fmt.Errorf("%w: %s", util.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

func (r *pgRepo) LockGeneralSection(ctx context.Context) error {
	if !r.inTx {
		return errors.New("lock general section: requires a transaction")
	}
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, generalSectionLockKey); err != nil {
		return fmt.Errorf("lock general section: %w", mapError(err))
	}
	return nil
}
