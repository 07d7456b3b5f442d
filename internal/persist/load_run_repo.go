package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/itemdb/internal/data"
)

// LoadRun records one load of a client's item files.
type LoadRun struct {
	Client      string
	Source      string // "otb" or "dat"
	Version     data.Version
	ItemCount   int
	MaxID       uint16
	Fingerprint [32]byte
	Warnings    data.Warnings
}

// LoadRunRow is a stored run without its warnings.
type LoadRunRow struct {
	ID          int64
	Client      string
	Source      string
	ItemCount   int32
	Fingerprint []byte
	LoadedAt    time.Time
	Warnings    int32
}

type LoadRunRepo struct {
	db *DB
}

func NewLoadRunRepo(db *DB) *LoadRunRepo {
	return &LoadRunRepo{db: db}
}

// Record writes the run and its warnings in a single transaction and
// returns the run id.
func (r *LoadRunRepo) Record(ctx context.Context, run LoadRun) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("load run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO load_runs (client, source, otb_major, otb_minor, otb_build, item_count, max_id, fingerprint)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		run.Client, run.Source, int64(run.Version.Major), int64(run.Version.Minor), int64(run.Version.Build),
		run.ItemCount, int32(run.MaxID), run.Fingerprint[:],
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("load run insert: %w", err)
	}

	for i, msg := range run.Warnings {
		if _, err := tx.Exec(ctx,
			`INSERT INTO load_warnings (run_id, seq, message) VALUES ($1, $2, $3)`,
			id, i+1, msg,
		); err != nil {
			return 0, fmt.Errorf("load warning insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("load run commit: %w", err)
	}
	return id, nil
}

// Latest returns the most recent run for a client, or nil if there is none.
func (r *LoadRunRepo) Latest(ctx context.Context, client string) (*LoadRunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT r.id, r.client, r.source, r.item_count, r.fingerprint, r.loaded_at,
		        (SELECT COUNT(*) FROM load_warnings w WHERE w.run_id = r.id)::int
		 FROM load_runs r WHERE r.client = $1
		 ORDER BY r.id DESC LIMIT 1`, client,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	row := &LoadRunRow{}
	if err := rows.Scan(&row.ID, &row.Client, &row.Source, &row.ItemCount,
		&row.Fingerprint, &row.LoadedAt, &row.Warnings); err != nil {
		return nil, err
	}
	return row, nil
}
