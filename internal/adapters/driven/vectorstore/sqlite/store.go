package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/graph"
	"github.com/custodia-labs/sercha-sections/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/custodia-labs/sercha-sections/internal/core/domain"
	"github.com/custodia-labs/sercha-sections/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-sections/internal/vecenc"
)

// DatabaseFileName is the file created inside the data directory.
const DatabaseFileName = "vectors.db"

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store persists collections in SQLite and serves searches from loaded graphs.
type Store struct {
	db   *sql.DB
	path string

	mu     sync.Mutex
	loaded map[string]*graph.Collection
}

// NewStore opens or creates the vector database in dataDir.
// If dataDir is empty, defaults to ~/.sercha-sections/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-sections", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:     db,
		path:   dbPath,
		loaded: make(map[string]*graph.Collection),
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases loaded graphs and closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	for name, g := range s.loaded {
		_ = g.Close()
		delete(s.loaded, name)
	}
	s.mu.Unlock()
	return s.db.Close()
}

// migrate applies pending up migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// EnsureCollection creates the collection or returns the compatible existing one.
func (s *Store) EnsureCollection(ctx context.Context, schema domain.CollectionSchema) (domain.Collection, error) {
	if err := schema.Validate(); err != nil {
		return domain.Collection{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, dimension, text_max_bytes, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, schema.Name, schema.Dimension, schema.TextMaxBytes, schema.Description)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("creating collection: %w", err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return domain.Collection{}, fmt.Errorf("creating collection: %w", err)
	}
	if created == 1 {
		return domain.Collection{Schema: schema, Created: true}, nil
	}

	existing, err := s.schema(ctx, schema.Name)
	if err != nil {
		return domain.Collection{}, err
	}
	if !existing.Compatible(schema) {
		return domain.Collection{}, fmt.Errorf("%w: %q has dimension %d, requested %d",
			domain.ErrSchemaConflict, schema.Name, existing.Dimension, schema.Dimension)
	}
	return domain.Collection{Schema: existing}, nil
}

// BuildIndex records the index parameters and rebuilds the graphs of a loaded collection.
func (s *Store) BuildIndex(ctx context.Context, name string, params domain.IndexParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := s.schema(ctx, name); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_indexes (collection, metric, m, ef_construction, ef_search)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			metric = excluded.metric,
			m = excluded.m,
			ef_construction = excluded.ef_construction,
			ef_search = excluded.ef_search,
			built_at = CURRENT_TIMESTAMP
	`, name, string(params.Metric), params.M, params.EfConstruction, params.EfSearch)
	if err != nil {
		return fmt.Errorf("saving index params: %w", err)
	}

	if g := s.graph(name); g != nil {
		return g.BuildIndex(params)
	}
	return nil
}

// Insert writes rows in one transaction. Rows stay invisible until Flush.
func (s *Store) Insert(ctx context.Context, name string, rows []domain.Row) ([]int64, error) {
	schema, err := s.schema(ctx, name)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := row.Validate(schema); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, main_title_embedding, section_title_embedding, content_embedding, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(rows))
	for i, row := range rows {
		res, err := stmt.ExecContext(ctx, name,
			vecenc.Encode(row.Vectors[domain.FieldMainTitle]),
			vecenc.Encode(row.Vectors[domain.FieldSectionTitle]),
			vecenc.Encode(row.Vectors[domain.FieldContent]),
			row.Text,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting row %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading id of row %d: %w", i, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing rows: %w", err)
	}
	return ids, nil
}

// Flush makes every pending row of the collection searchable.
func (s *Store) Flush(ctx context.Context, name string) error {
	schema, err := s.schema(ctx, name)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	pending, err := queryRows(ctx, tx, name, 0)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	g := s.graph(name)
	if g != nil {
		if err := g.Check(pending); err != nil {
			return fmt.Errorf("indexing flushed rows of %q (dimension %d): %w", name, schema.Dimension, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE records SET flushed = 1 WHERE collection = ? AND flushed = 0 AND id <= ?",
		name, pending[len(pending)-1].ID,
	); err != nil {
		return fmt.Errorf("flushing rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing flush: %w", err)
	}

	if g != nil {
		if err := g.Add(pending); err != nil {
			return fmt.Errorf("indexing flushed rows of %q (dimension %d): %w", name, schema.Dimension, err)
		}
	}
	return nil
}

// Load rebuilds the collection's graphs from its flushed rows.
// Loading an already loaded collection is a no-op.
func (s *Store) Load(ctx context.Context, name string) error {
	if s.graph(name) != nil {
		return nil
	}

	schema, err := s.schema(ctx, name)
	if err != nil {
		return err
	}
	params, hasIndex, err := s.indexParams(ctx, name)
	if err != nil {
		return err
	}
	rows, err := queryRows(ctx, s.db, name, 1)
	if err != nil {
		return err
	}

	g := graph.New(schema)
	if err := g.Add(rows); err != nil {
		return fmt.Errorf("loading %q: %w", name, err)
	}
	if hasIndex {
		if err := g.BuildIndex(params); err != nil {
			return fmt.Errorf("indexing %q: %w", name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loaded[name]; ok {
		_ = g.Close()
		return nil
	}
	s.loaded[name] = g
	return nil
}

// Search queries one field of a loaded collection.
func (s *Store) Search(
	ctx context.Context, name string, query []float32, field domain.VectorField, limit int,
) ([]domain.Hit, error) {
	g := s.graph(name)
	if g == nil {
		if _, err := s.schema(ctx, name); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotLoaded, name)
	}
	return g.Search(query, field, limit)
}

// Release drops the loaded graphs of a collection.
func (s *Store) Release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.loaded[name]; ok {
		_ = g.Close()
		delete(s.loaded, name)
	}
}

func (s *Store) graph(name string) *graph.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded[name]
}

func (s *Store) schema(ctx context.Context, name string) (domain.CollectionSchema, error) {
	schema := domain.CollectionSchema{Name: name}
	err := s.db.QueryRowContext(ctx,
		"SELECT dimension, text_max_bytes, description FROM collections WHERE name = ?", name,
	).Scan(&schema.Dimension, &schema.TextMaxBytes, &schema.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CollectionSchema{}, fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, name)
	}
	if err != nil {
		return domain.CollectionSchema{}, fmt.Errorf("reading collection %q: %w", name, err)
	}
	return schema, nil
}

func (s *Store) indexParams(ctx context.Context, name string) (domain.IndexParams, bool, error) {
	var params domain.IndexParams
	var metric string
	err := s.db.QueryRowContext(ctx,
		"SELECT metric, m, ef_construction, ef_search FROM collection_indexes WHERE collection = ?", name,
	).Scan(&metric, &params.M, &params.EfConstruction, &params.EfSearch)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.IndexParams{}, false, nil
	}
	if err != nil {
		return domain.IndexParams{}, false, fmt.Errorf("reading index params of %q: %w", name, err)
	}
	params.Metric = domain.Metric(metric)
	return params, true, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRows(ctx context.Context, q querier, name string, flushed int) ([]domain.Row, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, main_title_embedding, section_title_embedding, content_embedding, text
		FROM records
		WHERE collection = ? AND flushed = ?
		ORDER BY id
	`, name, flushed)
	if err != nil {
		return nil, fmt.Errorf("querying rows of %q: %w", name, err)
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var row domain.Row
		var mainTitle, sectionTitle, content []byte
		if err := rows.Scan(&row.ID, &mainTitle, &sectionTitle, &content, &row.Text); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row.Vectors = make(map[domain.VectorField][]float32, 3)
		for field, blob := range map[domain.VectorField][]byte{
			domain.FieldMainTitle:    mainTitle,
			domain.FieldSectionTitle: sectionTitle,
			domain.FieldContent:      content,
		} {
			vec, err := vecenc.Decode(blob)
			if err != nil {
				return nil, fmt.Errorf("row %d %s: %w", row.ID, field, err)
			}
			row.Vectors[field] = vec
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
