package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SQL persists records as JSON bodies in a single table. It works with the
// pgx and sqlite3 drivers.
type SQL struct {
	db     *sql.DB
	driver string
}

// NewSQL creates a backend. driver selects the placeholder style.
func NewSQL(db *sql.DB, driver string) *SQL {
	return &SQL{db: db, driver: driver}
}

// Migrate creates the records table when missing.
func (s *SQL) Migrate(ctx context.Context) error {
	seq := "BIGSERIAL PRIMARY KEY"
	if s.driver == "sqlite3" {
		seq = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			seq ` + seq + `,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			UNIQUE (collection, id)
		)
	`)
	return err
}

// arg returns the nth (1-based) placeholder for the driver.
func (s *SQL) arg(n int) string {
	if s.driver == "sqlite3" {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

func (s *SQL) List(ctx context.Context, coll string, filter map[string]string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM records WHERE collection = `+s.arg(1)+` ORDER BY seq`, coll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		rec, err := decode([]byte(body))
		if err != nil {
			return nil, err
		}
		if Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

func (s *SQL) Get(ctx context.Context, coll, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE collection = `+s.arg(1)+` AND id = `+s.arg(2), coll, id)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode([]byte(body))
}

func (s *SQL) Create(ctx context.Context, coll string, rec Record) (Record, error) {
	rec, err := forCreate(rec)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = `+s.arg(1)+` AND id = `+s.arg(2), coll, rec.ID()).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, ErrDuplicateID
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (collection, id, body) VALUES (`+s.arg(1)+`, `+s.arg(2)+`, `+s.arg(3)+`)`,
		coll, rec.ID(), string(body))
	if err != nil {
		return nil, err
	}
	return rec, tx.Commit()
}

func (s *SQL) Replace(ctx context.Context, coll, id string, rec Record) (Record, error) {
	rec, err := forReplace(id, rec)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET body = `+s.arg(1)+` WHERE collection = `+s.arg(2)+` AND id = `+s.arg(3),
		string(body), coll, id)
	if err != nil {
		return nil, err
	}
	if err := affected(res); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQL) Delete(ctx context.Context, coll, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = `+s.arg(1)+` AND id = `+s.arg(2), coll, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
