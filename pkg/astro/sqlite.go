// sqlite.go backs the Source interface with a SQLite ephemeris database.
//
// Each dataset is one table keyed by a `date` column (milliseconds since
// the epoch, UTC) with one nullable millisecond column per phenomenon.
// The tables are populated out of band — typically via the JSON-lines
// importer — by whatever computes the ephemeris.
package astro

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the SQLite-backed ephemeris source.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the ephemeris database and initializes its
// schema.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ephemeris db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ephemeris db: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error { return d.db.Close() }

func (d *DB) migrate() error {
	var b strings.Builder
	for dataset, cols := range datasetColumns {
		b.WriteString("CREATE TABLE IF NOT EXISTS " + dataset + " (date INTEGER PRIMARY KEY")
		for _, col := range cols {
			b.WriteString(", " + col + " INTEGER")
		}
		b.WriteString(");\n")
	}
	_, err := d.db.Exec(b.String())
	return err
}

// Query implements Source. Unknown datasets and columns resolve to an
// error wrapping ErrUnavailable that names the failed resource.
func (d *DB) Query(ctx context.Context, q Query) (*Cursor, error) {
	known, ok := datasetColumns[q.Dataset]
	if !ok {
		return nil, fmt.Errorf("%w: dataset %q", ErrUnavailable, q.Dataset)
	}
	for _, col := range q.Columns {
		if !contains(known, col) {
			return nil, fmt.Errorf("%w: column %q of dataset %q", ErrUnavailable, col, q.Dataset)
		}
	}
	if len(q.Columns) == 0 {
		return nil, fmt.Errorf("%w: empty projection for dataset %q", ErrUnavailable, q.Dataset)
	}

	stmt := "SELECT " + strings.Join(q.Columns, ", ") + " FROM " + q.Dataset +
		" WHERE date >= ? AND date < ? ORDER BY date ASC"
	rows, err := d.db.QueryContext(ctx, stmt, q.Window.Start.UnixMilli(), q.Window.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %v", ErrUnavailable, q.Dataset, err)
	}
	defer rows.Close()

	cur := &Cursor{}
	for rows.Next() {
		vals := make([]sql.NullInt64, len(q.Columns))
		dest := make([]interface{}, len(vals))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := Row{values: make([]*time.Time, len(vals))}
		for i, v := range vals {
			if v.Valid {
				t := time.UnixMilli(v.Int64).UTC()
				row.values[i] = &t
			}
		}
		cur.rows = append(cur.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cur, nil
}

// Insert upserts one ephemeris row. times maps column names to instants;
// columns absent from the map are stored null.
func (d *DB) Insert(dataset string, date time.Time, times map[string]time.Time) error {
	known, ok := datasetColumns[dataset]
	if !ok {
		return fmt.Errorf("%w: dataset %q", ErrUnavailable, dataset)
	}
	for col := range times {
		if !contains(known, col) {
			return fmt.Errorf("%w: column %q of dataset %q", ErrUnavailable, col, dataset)
		}
	}

	cols := []string{"date"}
	args := []interface{}{date.UnixMilli()}
	for _, col := range known {
		if t, ok := times[col]; ok {
			cols = append(cols, col)
			args = append(args, t.UnixMilli())
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := "INSERT OR REPLACE INTO " + dataset + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"
	_, err := d.db.Exec(stmt, args...)
	return err
}

// Record is one line of the JSON-lines import format:
//
//	{"dataset": "sun", "date": "2026-03-01T00:00:00Z",
//	 "times": {"actual_rise": "2026-03-01T06:51:00Z", ...}}
type Record struct {
	Dataset string               `json:"dataset"`
	Date    time.Time            `json:"date"`
	Times   map[string]time.Time `json:"times"`
}

// ImportJSONL reads JSON-lines records from r and inserts each, returning
// the number imported. The first malformed or unknown record stops the
// import with an error naming the offending line.
func (d *DB) ImportJSONL(r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	count := 0
	for {
		var rec Record
		if err := dec.Decode(&rec); err == io.EOF {
			return count, nil
		} else if err != nil {
			return count, fmt.Errorf("record %d: %w", count+1, err)
		}
		if err := d.Insert(rec.Dataset, rec.Date, rec.Times); err != nil {
			return count, fmt.Errorf("record %d: %w", count+1, err)
		}
		count++
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Compile-time check that *DB implements Source.
var _ Source = (*DB)(nil)
