package vectorcache

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `CREATE TABLE IF NOT EXISTS vectors (
	key  TEXT PRIMARY KEY,
	dim  INTEGER NOT NULL,
	data BLOB NOT NULL
)`

// SQLiteCache stores vectors as little-endian float64 blobs in a SQLite
// database. Puts are buffered and written in one transaction on Save.
type SQLiteCache struct {
	db      *sql.DB
	mu      sync.Mutex
	pending map[string][]float64
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteCache{db: db, pending: make(map[string][]float64)}, nil
}

func (c *SQLiteCache) Get(key string) ([]float64, bool) {
	c.mu.Lock()
	if v, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	var dim int
	var blob []byte
	err := c.db.QueryRow("SELECT dim, data FROM vectors WHERE key = ?", key).Scan(&dim, &blob)
	if err != nil {
		return nil, false
	}
	vec := decodeVector(blob)
	if len(vec) != dim {
		return nil, false
	}
	return vec, true
}

func (c *SQLiteCache) Put(key string, vec []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[key] = vec
}

// Save flushes buffered vectors.
func (c *SQLiteCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO vectors (key, dim, data) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for k, v := range c.pending {
		if _, err := stmt.Exec(k, len(v), encodeVector(v)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.pending = make(map[string][]float64)
	return nil
}

// Close flushes and closes the database.
func (c *SQLiteCache) Close() error {
	saveErr := c.Save()
	if err := c.db.Close(); err != nil {
		return err
	}
	return saveErr
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(data []byte) []float64 {
	if len(data)%8 != 0 {
		return nil
	}
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out
}
