package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS catalog_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS assessments (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	url              TEXT NOT NULL,
	category         TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	is_bundle        INTEGER NOT NULL,
	adaptive_support INTEGER NOT NULL,
	remote_support   INTEGER NOT NULL,
	tags             TEXT NOT NULL,
	description      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS embeddings (
	item_id TEXT PRIMARY KEY REFERENCES assessments(id),
	vector  BLOB NOT NULL
);
`

const versionKey = "version"

// ErrNoCatalog is returned when the database exists but holds no catalog.
var ErrNoCatalog = errors.New("catalog is empty")

// Store persists the catalog and its document embeddings in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed initializes) the catalog database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Version returns the stored catalog version token, or "" when unset.
func (s *Store) Version(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM catalog_meta WHERE key = ?`, versionKey).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read catalog version: %w", err)
	}
	return version, nil
}

// Replace writes a full catalog build in one transaction, dropping any
// previous rows and stamping a new version token.
func (s *Store) Replace(ctx context.Context, items []*Item) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin catalog replace: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM embeddings`,
		`DELETE FROM assessments`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return "", fmt.Errorf("clear previous catalog: %w", err)
		}
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO assessments
			(id, name, url, category, duration_minutes, is_bundle,
			 adaptive_support, remote_support, tags, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare catalog insert: %w", err)
	}
	defer insert.Close()

	for _, item := range items {
		_, err := insert.ExecContext(ctx,
			item.ID, item.Name, item.URL, string(item.Category),
			item.DurationMinutes, boolToInt(item.IsBundle),
			boolToInt(item.AdaptiveSupport), boolToInt(item.RemoteSupport),
			strings.Join(item.Tags, ","), item.Description,
		)
		if err != nil {
			return "", fmt.Errorf("insert assessment %s: %w", item.ID, err)
		}
	}

	version := time.Now().UTC().Format("20060102T150405Z")
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionKey, version); err != nil {
		return "", fmt.Errorf("stamp catalog version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit catalog replace: %w", err)
	}

	return version, nil
}

// LoadSnapshot reads the whole catalog into an immutable snapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	version, err := s.Version(ctx)
	if err != nil {
		return nil, err
	}
	if version == "" {
		return nil, ErrNoCatalog
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, url, category, duration_minutes, is_bundle,
		       adaptive_support, remote_support, tags, description
		FROM assessments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read assessments: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var (
			item                       Item
			category, tags             string
			bundle, adaptive, remoteOK int
		)
		err := rows.Scan(&item.ID, &item.Name, &item.URL, &category,
			&item.DurationMinutes, &bundle, &adaptive, &remoteOK,
			&tags, &item.Description)
		if err != nil {
			return nil, fmt.Errorf("scan assessment row: %w", err)
		}

		item.Category = Category(category)
		item.IsBundle = bundle != 0
		item.AdaptiveSupport = adaptive != 0
		item.RemoteSupport = remoteOK != 0
		if tags != "" {
			item.Tags = strings.Split(tags, ",")
		}

		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoCatalog
	}

	return NewSnapshot(version, items), nil
}

// SaveEmbedding stores the document vector for one item.
func (s *Store) SaveEmbedding(ctx context.Context, itemID string, vector []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (item_id, vector) VALUES (?, ?)
		ON CONFLICT(item_id) DO UPDATE SET vector = excluded.vector`,
		itemID, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("save embedding for %s: %w", itemID, err)
	}
	return nil
}

// LoadEmbeddings returns all stored document vectors keyed by item id.
func (s *Store) LoadEmbeddings(ctx context.Context) (map[string][]float32, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	defer rows.Close()

	vectors := make(map[string][]float32)
	for rows.Next() {
		var (
			id   string
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}

		vector, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", id, err)
		}
		vectors[id] = vector
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}

	return vectors, nil
}

// Vectors are stored as little-endian float32 blobs.
func encodeVector(vector []float32) []byte {
	blob := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[4*i:], math.Float32bits(v))
	}
	return blob
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vector, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
