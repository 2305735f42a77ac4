package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of *pgxpool.Pool the Postgres sink uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresSink stores reports in three tables: one row per report, one
// per cluster and one per node membership.
type PostgresSink struct {
	db   DB
	pool *pgxpool.Pool
}

// NewPostgresSink wraps an existing connection.
func NewPostgresSink(db DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// DialPostgres connects, verifies the connection and creates the tables.
func DialPostgres(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 4
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PostgresSink{db: pool, pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

// Ping checks the owned pool. Sinks built over an external DB report
// healthy.
func (s *PostgresSink) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Close releases the pool if the sink owns one.
func (s *PostgresSink) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS overcode_reports (
	id              UUID PRIMARY KEY,
	experiment_id   TEXT,
	created_at      TIMESTAMPTZ NOT NULL,
	graph_source    TEXT NOT NULL,
	graph_index     INTEGER NOT NULL,
	nodes           INTEGER NOT NULL,
	edges           INTEGER NOT NULL,
	run             INTEGER NOT NULL,
	seed            TEXT NOT NULL,
	elapsed_seconds DOUBLE PRECISION NOT NULL,
	params          JSONB NOT NULL,
	evaluation      JSONB
);

CREATE TABLE IF NOT EXISTS overcode_clusters (
	report_id      UUID NOT NULL REFERENCES overcode_reports(id) ON DELETE CASCADE,
	cluster_id     INTEGER NOT NULL,
	representative INTEGER NOT NULL,
	signature      TEXT NOT NULL,
	size           INTEGER NOT NULL,
	PRIMARY KEY (report_id, cluster_id)
);

CREATE TABLE IF NOT EXISTS overcode_memberships (
	report_id  UUID NOT NULL,
	cluster_id INTEGER NOT NULL,
	node       INTEGER NOT NULL,
	FOREIGN KEY (report_id, cluster_id) REFERENCES overcode_clusters(report_id, cluster_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_overcode_memberships_node ON overcode_memberships(report_id, node);
`

// Migrate creates the tables if they don't exist.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *PostgresSink) Name() string { return "postgres" }

// Put inserts the report row and bulk-copies its clusters and memberships
// in one transaction, so a failed copy leaves no trace of the report.
func (s *PostgresSink) Put(ctx context.Context, r *Report) error {
	if r == nil {
		return ErrNilReport
	}
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", r.ID, err)
	}
	reportID := [16]byte(id)

	paramsJSON, err := json.Marshal(r.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	var evalJSON []byte
	if r.Evaluation != nil {
		if evalJSON, err = json.Marshal(r.Evaluation); err != nil {
			return fmt.Errorf("failed to marshal evaluation: %w", err)
		}
	}

	clusterRows := make([][]any, len(r.Clusters))
	var memberRows [][]any
	for i, c := range r.Clusters {
		clusterRows[i] = []any{reportID, c.ID, c.Representative, c.Signature, len(c.Members)}
		for _, u := range c.Members {
			memberRows = append(memberRows, []any{reportID, c.ID, u})
		}
	}

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO overcode_reports (id, experiment_id, created_at, graph_source, graph_index, nodes, edges, run, seed, elapsed_seconds, params, evaluation)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.Exec(ctx, query,
			reportID,
			r.ExperimentID,
			r.CreatedAt,
			r.Graph.Source,
			r.Graph.Index,
			r.Graph.Nodes,
			r.Graph.Edges,
			r.Run,
			strconv.FormatUint(r.Seed, 10),
			r.ElapsedSeconds,
			paramsJSON,
			evalJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"overcode_clusters"},
			[]string{"report_id", "cluster_id", "representative", "signature", "size"},
			pgx.CopyFromRows(clusterRows),
		); err != nil {
			return fmt.Errorf("failed to copy clusters: %w", err)
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"overcode_memberships"},
			[]string{"report_id", "cluster_id", "node"},
			pgx.CopyFromRows(memberRows),
		); err != nil {
			return fmt.Errorf("failed to copy memberships: %w", err)
		}
		return nil
	})
}
