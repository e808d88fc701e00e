package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jgoulah/gridsales/internal/table"
	"github.com/jgoulah/gridsales/pkg/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the run history table. Dataset tables are created on
// first write since their columns follow the canonical schema.
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		dataset TEXT NOT NULL,
		first_year INTEGER NOT NULL,
		last_year INTEGER NOT NULL,
		row_count INTEGER NOT NULL,
		output TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_dataset ON ingest_runs(dataset);
	`

	_, err := db.conn.Exec(schema)
	return err
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ReplaceDataset swaps the stored rows of ds for t in one transaction
func (db *DB) ReplaceDataset(ds models.Dataset, t *table.Table) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + quote(string(ds))); err != nil {
		return fmt.Errorf("dropping %s: %w", ds, err)
	}

	defs := []string{"id INTEGER PRIMARY KEY AUTOINCREMENT"}
	names := make([]string, 0, t.Width())
	marks := make([]string, 0, t.Width())
	for _, c := range t.Columns() {
		kind := "TEXT"
		if c.Type == table.Float {
			kind = "REAL"
		}
		defs = append(defs, quote(c.Name)+" "+kind)
		names = append(names, quote(c.Name))
		marks = append(marks, "?")
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", quote(string(ds)), strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("creating %s: %w", ds, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(string(ds)), strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < t.Len(); i++ {
		if _, err := stmt.Exec(t.Row(i)...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", ds, err)
	}
	return nil
}

// LoadDataset reads the stored table of ds, restoring column order and types
func (db *DB) LoadDataset(ds models.Dataset) (*table.Table, error) {
	rows, err := db.conn.Query(`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, string(ds))
	if err != nil {
		return nil, fmt.Errorf("reading %s schema: %w", ds, err)
	}

	var (
		names []string
		kinds []table.Type
	)
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning schema: %w", err)
		}
		if name == "id" {
			continue
		}
		names = append(names, name)
		if strings.EqualFold(kind, "REAL") {
			kinds = append(kinds, table.Float)
		} else {
			kinds = append(kinds, table.String)
		}
	}
	rows.Close()
	if len(names) == 0 {
		return nil, fmt.Errorf("no stored %s data, run build first", ds)
	}

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(quoted, ", "), quote(string(ds)))

	data, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", ds, err)
	}
	defer data.Close()

	strs := make([][]string, len(names))
	nums := make([][]sql.NullFloat64, len(names))
	dest := make([]any, len(names))
	for data.Next() {
		textVals := make([]sql.NullString, len(names))
		numVals := make([]sql.NullFloat64, len(names))
		for j, kind := range kinds {
			if kind == table.Float {
				dest[j] = &numVals[j]
			} else {
				dest[j] = &textVals[j]
			}
		}
		if err := data.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for j, kind := range kinds {
			if kind == table.Float {
				nums[j] = append(nums[j], numVals[j])
			} else {
				strs[j] = append(strs[j], textVals[j].String)
			}
		}
	}
	if err := data.Err(); err != nil {
		return nil, err
	}

	cols := make([]*table.Column, len(names))
	for j, name := range names {
		if kinds[j] == table.Float {
			cols[j] = table.NewFloatColumn(name, nums[j])
		} else {
			cols[j] = table.NewStringColumn(name, strs[j])
		}
	}
	return table.New(cols...)
}

// InsertRun records a completed build
func (db *DB) InsertRun(run *models.IngestRun) error {
	query := `
	INSERT INTO ingest_runs (run_id, dataset, first_year, last_year, row_count, output, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	createdAt := run.CreatedAt.UTC().Format(time.RFC3339)

	res, err := db.conn.Exec(query, run.RunID, string(run.Dataset), run.FirstYear, run.LastYear, run.Rows, run.Output, createdAt)
	if err != nil {
		return fmt.Errorf("inserting ingest run: %w", err)
	}

	id, err := res.LastInsertId()
	if err == nil {
		run.ID = int(id)
	}
	return nil
}

// ListRuns retrieves recorded builds, newest first. An empty dataset lists all.
func (db *DB) ListRuns(ds models.Dataset) ([]models.IngestRun, error) {
	query := `
	SELECT id, run_id, dataset, first_year, last_year, row_count, output, created_at
	FROM ingest_runs
	WHERE ? = '' OR dataset = ?
	ORDER BY id DESC
	`

	rows, err := db.conn.Query(query, string(ds), string(ds))
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var results []models.IngestRun
	for rows.Next() {
		var run models.IngestRun
		var dataset, createdAt string
		var output sql.NullString

		if err := rows.Scan(&run.ID, &run.RunID, &dataset, &run.FirstYear, &run.LastYear, &run.Rows, &output, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		run.Dataset = models.Dataset(dataset)
		run.Output = output.String
		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		results = append(results, run)
	}

	return results, rows.Err()
}
