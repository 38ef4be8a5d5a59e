package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/quote-intake/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS submissions (
	id                    TEXT PRIMARY KEY,
	broker                TEXT,
	insured               TEXT,
	address               TEXT,
	building_type         TEXT,
	construction          TEXT,
	year_built            REAL,
	area                  REAL,
	stories               REAL,
	occupancy             TEXT,
	sprinklers            BOOLEAN,
	alarm_system          TEXT,
	building_value        REAL,
	contents_value        REAL,
	business_interruption REAL,
	deductible            REAL,
	fire_hazards          TEXT,
	natural_disasters     TEXT,
	security              TEXT,
	property_valuation    REAL,
	annual_revenue        REAL,
	source_file           TEXT NOT NULL,
	submitted_at          DATETIME NOT NULL,
	unparsed              TEXT
);

CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at);
CREATE INDEX IF NOT EXISTS idx_submissions_insured ON submissions(insured);
`

// Migrate implements Store.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertSubmission implements Store.
func (s *SQLiteStore) InsertSubmission(ctx context.Context, sub *model.Submission) (string, error) {
	if sub == nil {
		return "", eris.New("sqlite: insert submission: nil submission")
	}
	unparsed, err := unparsedJSON(sub)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	args := append([]any{id}, sub.Row()...)
	if unparsed != nil {
		args = append(args, string(unparsed))
	} else {
		args = append(args, nil)
	}

	cols := columns()
	query := fmt.Sprintf(`INSERT INTO submissions (%s) VALUES (%s)`,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert submission: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert submission")
	}
	if err := checkRowsAffected(res, "submission", id); err != nil {
		return "", eris.Wrap(err, "sqlite: insert submission")
	}
	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: insert submission: commit")
	}
	return id, nil
}

// GetSubmission implements Store.
func (s *SQLiteStore) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM submissions WHERE id = ?`, strings.Join(columns(), ", ")),
		id,
	)
	sub, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get submission %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get submission")
	}
	return sub, nil
}

// ListSubmissions implements Store.
func (s *SQLiteStore) ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE 1=1`, strings.Join(columns(), ", "))
	var args []any

	if filter.Insured != "" {
		query += ` AND insured LIKE '%' || ? || '%'`
		args = append(args, filter.Insured)
	}
	query += ` ORDER BY submitted_at DESC LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list submissions")
	}
	defer rows.Close() //nolint:errcheck

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: list submissions scan")
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: list submissions iterate")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not written: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLite(row scannable) (*model.Submission, error) {
	var (
		id, sourceFile string
		submittedAt    time.Time
		unparsed       sql.NullString
	)

	fields := model.Fields()
	dest := []any{&id}
	cells := make(map[model.Field]any, len(fields))
	for _, f := range fields {
		switch model.KindOf(f) {
		case model.KindMeta:
			continue
		case model.KindBool:
			cells[f] = &sql.NullBool{}
		case model.KindInteger, model.KindMoney:
			cells[f] = &sql.NullFloat64{}
		default:
			cells[f] = &sql.NullString{}
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
		case *sql.NullString:
			if c.Valid {
				values[f] = c.String
			}
		case *sql.NullBool:
			if c.Valid {
				values[f] = c.Bool
			}
		case *sql.NullFloat64:
			if c.Valid {
				values[f] = model.NumberValue(c.Float64)
			}
		}
	}

	var raw []byte
	if unparsed.Valid {
		raw = []byte(unparsed.String)
	}
	return assemble(id, sourceFile, submittedAt, values, raw)
}
