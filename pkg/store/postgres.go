package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/records"
)

// employeesSchema creates the destination table. The full record is
// stored as JSONB next to the key columns: downstream consumers query by
// key, and schema churn in the record body must not require migrations
// during the transition period.
const employeesSchema = `
CREATE TABLE IF NOT EXISTS employees (
    org_code    text        NOT NULL,
    employee_no text        NOT NULL,
    org_id      text        NOT NULL DEFAULT '',
    record      jsonb       NOT NULL,
    updated_at  timestamptz NOT NULL DEFAULT now(),
    PRIMARY KEY (org_code, employee_no)
)`

const upsertEmployee = `
INSERT INTO employees (org_code, employee_no, org_id, record, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (org_code, employee_no)
DO UPDATE SET org_id = EXCLUDED.org_id, record = EXCLUDED.record, updated_at = now()`

// Postgres is an Upserter backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the destination database and verifies it is
// reachable.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.NewPersistError(0, nil, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewPersistError(0, nil, err)
	}
	return &Postgres{pool: pool}, nil
}

// EnsureSchema creates the employees table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, employeesSchema); err != nil {
		return errors.NewPersistError(0, nil, err)
	}
	return nil
}

// Upsert writes one batch inside a transaction via a pgx batch. The
// whole batch commits or rolls back together so a repeat run after a
// partial failure never sees half a batch.
func (p *Postgres) Upsert(ctx context.Context, emps []records.Employee) (BatchResult, error) {
	if len(emps) == 0 {
		return BatchResult{}, nil
	}

	keys := make([]string, len(emps))
	for i := range emps {
		keys[i] = emps[i].Key.String()
	}

	batch := &pgx.Batch{}
	for i := range emps {
		body, err := json.Marshal(&emps[i])
		if err != nil {
			return BatchResult{Failed: []records.Key{emps[i].Key}}, errors.NewPersistError(0, keys, err)
		}
		batch.Queue(upsertEmployee, emps[i].Key.OrgCode, emps[i].Key.EmployeeNo, emps[i].OrgID, body)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return BatchResult{Failed: allKeys(emps)}, errors.NewPersistError(0, keys, err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for range emps {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return BatchResult{Failed: allKeys(emps)}, errors.NewPersistError(0, keys, err)
		}
	}
	if err := results.Close(); err != nil {
		return BatchResult{Failed: allKeys(emps)}, errors.NewPersistError(0, keys, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return BatchResult{Failed: allKeys(emps)}, errors.NewPersistError(0, keys, err)
	}

	return BatchResult{Upserted: len(emps)}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func allKeys(emps []records.Employee) []records.Key {
	keys := make([]records.Key, len(emps))
	for i := range emps {
		keys[i] = emps[i].Key
	}
	return keys
}
