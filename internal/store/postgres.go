package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-intake/internal/db"
	"github.com/sells-group/quote-intake/internal/model"
)

// PostgresStore implements Store on a pgx pool. Every insert runs in its
// own transaction, so a connection is held only for the duration of the
// write.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.NewPool(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Close does not close it.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id                    TEXT PRIMARY KEY,
	broker                TEXT,
	insured               TEXT,
	address               TEXT,
	building_type         TEXT,
	construction          TEXT,
	year_built            NUMERIC,
	area                  NUMERIC,
	stories               NUMERIC,
	occupancy             TEXT,
	sprinklers            BOOLEAN,
	alarm_system          TEXT,
	building_value        NUMERIC,
	contents_value        NUMERIC,
	business_interruption NUMERIC,
	deductible            NUMERIC,
	fire_hazards          TEXT,
	natural_disasters     TEXT,
	security              TEXT,
	property_valuation    NUMERIC,
	annual_revenue        NUMERIC,
	source_file           TEXT NOT NULL,
	submitted_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	unparsed              JSONB
);

CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at DESC);
CREATE INDEX IF NOT EXISTS idx_submissions_insured ON submissions(insured);
`

// Migrate implements Store.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// InsertSubmission implements Store.
func (s *PostgresStore) InsertSubmission(ctx context.Context, sub *model.Submission) (string, error) {
	if sub == nil {
		return "", eris.New("postgres: insert submission: nil submission")
	}
	unparsed, err := unparsedJSON(sub)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	row := append([]any{id}, sub.Row()...)
	if unparsed != nil {
		row = append(row, unparsed)
	} else {
		row = append(row, nil)
	}

	if err := db.InsertRow(ctx, s.pool, Table, columns(), row); err != nil {
		return "", eris.Wrap(err, "postgres: insert submission")
	}
	return id, nil
}

// GetSubmission implements Store.
func (s *PostgresStore) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1`, strings.Join(columns(), ", ")),
		id,
	)
	sub, err := scanPostgres(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get submission %s", id)
		}
		return nil, eris.Wrap(err, "postgres: get submission")
	}
	return sub, nil
}

// ListSubmissions implements Store.
func (s *PostgresStore) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE 1=1`, strings.Join(columns(), ", "))
	var args []any

	if filter.Insured != "" {
		args = append(args, filter.Insured)
		query += fmt.Sprintf(` AND insured ILIKE '%%' || $%d || '%%'`, len(args))
	}
	query += ` ORDER BY submitted_at DESC`

	args = append(args, listLimit(filter))
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list submissions")
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanPostgres(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list submissions scan")
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "postgres: list submissions iterate")
}

func scanPostgres(row pgx.Row) (*model.Submission, error) {
	var (
		id, sourceFile string
		submittedAt    time.Time
		unparsed       []byte
	)

	fields := model.Fields()
	dest := []any{&id}
	cells := make(map[model.Field]any, len(fields))
	for _, f := range fields {
		switch model.KindOf(f) {
		case model.KindMeta:
			continue
		case model.KindBool:
			cells[f] = &pgtype.Bool{}
		case model.KindInteger, model.KindMoney:
			cells[f] = &pgtype.Float8{}
		default:
			cells[f] = &pgtype.Text{}
		}
		dest = append(dest, cells[f])
	}
	dest = append(dest, &sourceFile, &submittedAt, &unparsed)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	values := make(model.Record, len(fields))
	for f, cell := range cells {
		values[f] = nil
		switch c := cell.(type) {
		case *pgtype.Text:
			if c.Valid {
				values[f] = c.String
			}
		case *pgtype.Bool:
			if c.Valid {
				values[f] = c.Bool
			}
		case *pgtype.Float8:
			if c.Valid {
				values[f] = model.NumberValue(c.Float64)
			}
		}
	}
	return assemble(id, sourceFile, submittedAt, values, unparsed)
}
