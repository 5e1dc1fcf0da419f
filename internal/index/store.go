package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the symbol index.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  hash            TEXT,
  line_count      INTEGER,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS symbols (
  id               INTEGER PRIMARY KEY,
  file_id          INTEGER NOT NULL REFERENCES files(id),
  name             TEXT NOT NULL,
  kind             TEXT NOT NULL,
  start_line       INTEGER,
  start_col        INTEGER,
  end_line         INTEGER,
  end_col          INTEGER,
  parent_symbol_id INTEGER REFERENCES symbols(id)
);

CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
`

// InsertFile inserts a file record and returns its ID.
func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO files (path, language, hash, line_count, last_indexed)
		 VALUES (?, ?, ?, ?, ?)`,
		f.Path, f.Language, f.Hash, f.LineCount, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert file id: %w", err)
	}
	f.ID = id
	return id, nil
}

// FileByPath returns the file record for path, or nil if not indexed.
func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		`SELECT id, path, language, hash, line_count, last_indexed
		 FROM files WHERE path = ?`, path,
	).Scan(&f.ID, &f.Path, &f.Language, &f.Hash, &f.LineCount, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// DeleteFileData removes a file record and all of its symbols.
func (s *Store) DeleteFileData(fileID int64) error {
	if _, err := s.db.Exec(`DELETE FROM symbols WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("delete symbols: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// InsertSymbol inserts a symbol and returns its ID.
func (s *Store) InsertSymbol(sym *Symbol) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO symbols (file_id, name, kind, start_line, start_col, end_line, end_col, parent_symbol_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.Kind,
		sym.StartLine, sym.StartCol, sym.EndLine, sym.EndCol,
		sym.ParentSymbolID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert symbol id: %w", err)
	}
	sym.ID = id
	return id, nil
}

// SymbolsByFile returns all symbols for a file in insertion order.
func (s *Store) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	rows, err := s.db.Query(
		`SELECT id, file_id, name, kind, start_line, start_col, end_line, end_col, parent_symbol_id
		 FROM symbols WHERE file_id = ? ORDER BY id`, fileID,
	)
	if err != nil {
		return nil, fmt.Errorf("symbols by file: %w", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// SymbolsByName returns all symbols with the given name, optionally filtered
// to the given kinds, ordered by ascending symbol ID. That order is the
// documented tie-break for same-named definitions: insertion order, meaning
// file discovery order and top-to-bottom within a file.
func (s *Store) SymbolsByName(name string, kinds ...string) ([]*SymbolHit, error) {
	query := `SELECT s.id, s.file_id, s.name, s.kind, s.start_line, s.start_col,
	                 s.end_line, s.end_col, s.parent_symbol_id, f.path
	          FROM symbols s JOIN files f ON s.file_id = f.id
	          WHERE s.name = ?`
	args := []any{name}
	if len(kinds) > 0 {
		query += " AND s.kind IN (" + strings.Repeat("?,", len(kinds)-1) + "?)"
		for _, k := range kinds {
			args = append(args, k)
		}
	}
	query += " ORDER BY s.id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("symbols by name: %w", err)
	}
	defer rows.Close()

	var hits []*SymbolHit
	for rows.Next() {
		h := &SymbolHit{}
		if err := rows.Scan(
			&h.ID, &h.FileID, &h.Name, &h.Kind,
			&h.StartLine, &h.StartCol, &h.EndLine, &h.EndCol,
			&h.ParentSymbolID, &h.Path,
		); err != nil {
			return nil, fmt.Errorf("symbols by name: scan: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Outline rebuilds the nested symbol tree for a document from the flat
// symbols table. Returns nil with no error when the path is not indexed.
func (s *Store) Outline(path string) ([]*OutlineNode, error) {
	f, err := s.FileByPath(path)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	syms, err := s.SymbolsByFile(f.ID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*OutlineNode, len(syms))
	var roots []*OutlineNode
	for _, sym := range syms {
		nodes[sym.ID] = &OutlineNode{Symbol: *sym}
	}
	for _, sym := range syms {
		node := nodes[sym.ID]
		if sym.ParentSymbolID != nil {
			if parent, ok := nodes[*sym.ParentSymbolID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func scanSymbols(rows *sql.Rows) ([]*Symbol, error) {
	var syms []*Symbol
	for rows.Next() {
		sym := &Symbol{}
		if err := rows.Scan(
			&sym.ID, &sym.FileID, &sym.Name, &sym.Kind,
			&sym.StartLine, &sym.StartCol, &sym.EndLine, &sym.EndCol,
			&sym.ParentSymbolID,
		); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		syms = append(syms, sym)
	}
	return syms, rows.Err()
}
