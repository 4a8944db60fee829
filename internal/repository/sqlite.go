package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the SQLite database at dbPath and applies migrations
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; it also keeps :memory:
	// databases alive across queries
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := NewWithDB(db)
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewWithDB wraps an open database without migrating it
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// timeLayout has a fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000Z"

func (r *Repository) timestamp() string {
	return r.now().UTC().Format(timeLayout)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			army_id TEXT NOT NULL,
			composition_id TEXT NOT NULL DEFAULT '',
			army_rule_id TEXT NOT NULL DEFAULT '',
			points_limit REAL NOT NULL DEFAULT 0,
			name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			entries TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_army ON drafts(army_id)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_updated ON drafts(updated_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Draft Methods ====================

const draftColumns = `id, army_id, composition_id, army_rule_id, points_limit, name, description, entries, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (DraftRecord, error) {
	var d DraftRecord
	var entries string
	err := row.Scan(&d.ID, &d.ArmyID, &d.CompositionID, &d.ArmyRuleID, &d.PointsLimit,
		&d.Name, &d.Description, &entries, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return DraftRecord{}, err
	}
	d.Entries = json.RawMessage(entries)
	return d, nil
}

func entriesColumn(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

// ListDrafts returns every draft, most recently updated first
func (r *Repository) ListDrafts(ctx context.Context) ([]DraftRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+draftColumns+` FROM drafts ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drafts := []DraftRecord{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// GetDraft retrieves a draft by id
func (r *Repository) GetDraft(ctx context.Context, id int64) (*DraftRecord, error) {
	d, err := scanDraft(r.db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDraft inserts a draft and returns its id
func (r *Repository) CreateDraft(ctx context.Context, d DraftRecord) (int64, error) {
	ts := r.timestamp()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (army_id, composition_id, army_rule_id, points_limit, name, description, entries, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ArmyID, d.CompositionID, d.ArmyRuleID, d.PointsLimit, d.Name, d.Description,
		entriesColumn(d.Entries), ts, ts)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateDraft replaces every mutable column of a draft
func (r *Repository) UpdateDraft(ctx context.Context, d DraftRecord) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE drafts SET army_id = ?, composition_id = ?, army_rule_id = ?, points_limit = ?,
			name = ?, description = ?, entries = ?, updated_at = ?
		WHERE id = ?`,
		d.ArmyID, d.CompositionID, d.ArmyRuleID, d.PointsLimit, d.Name, d.Description,
		entriesColumn(d.Entries), r.timestamp(), d.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// DeleteDraft removes a draft
func (r *Repository) DeleteDraft(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting stores a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// DeleteSetting removes a setting. Removing a missing key is not an error.
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
