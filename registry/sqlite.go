package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tbxark/voiceform/form"
)

const defaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteRegistry persists submissions in an SQLite database.
type SQLiteRegistry struct {
	db       *sql.DB
	hospital string
	now      func() time.Time
}

// NewSQLiteRegistry opens the database at the configured DSN, creating its
// directory when needed, and applies the schema.
func NewSQLiteRegistry(opts ...Option) (*SQLiteRegistry, error) {
	cfg := buildOpts(opts)
	slog.Debug("NewSQLiteRegistry invoked", "DSN_set", cfg.DSN != "", "hospital", cfg.Hospital)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("registry: database DSN not set")
	}

	if cfg.DSN != ":memory:" {
		dir := filepath.Dir(cfg.DSN)
		if err := os.MkdirAll(dir, defaultDirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one connection keeps token assignment serialized
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite registry migrations applied")
	return &SQLiteRegistry{db: db, hospital: cfg.Hospital, now: cfg.Now}, nil
}

func (s *SQLiteRegistry) Submit(ctx context.Context, reg form.Registration) (*Receipt, error) {
	now := s.now()
	day := now.Format(dayLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin submission: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var last int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(token), 0) FROM submissions WHERE hospital = ? AND day = ?`, s.hospital, day)
	if err := row.Scan(&last); err != nil {
		return nil, fmt.Errorf("read last token: %w", err)
	}

	receipt := newReceipt(uuid.NewString(), s.hospital, last+1, reg, now)
	regJSON, err := sonic.MarshalString(reg)
	if err != nil {
		return nil, fmt.Errorf("marshal registration: %w", err)
	}
	receiptJSON, err := sonic.MarshalString(receipt)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (id, hospital, day, token, patient, registration, receipt, submitted_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.Hospital, receipt.Day, receipt.Token, receipt.Patient, regJSON, receiptJSON, receipt.SubmittedAt,
	)
	if err != nil {
		slog.Error("SQLiteRegistry Submit failed", "error", err, "hospital", s.hospital)
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}
	slog.Debug("SQLiteRegistry Submit succeeded", "id", receipt.ID, "token", receipt.Token)
	return receipt, nil
}

func (s *SQLiteRegistry) Get(ctx context.Context, id string) (*Receipt, form.Registration, error) {
	var regJSON, receiptJSON string
	row := s.db.QueryRowContext(ctx, `SELECT registration, receipt FROM submissions WHERE id = ?`, id)
	if err := row.Scan(&regJSON, &receiptJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, form.Registration{}, ErrNotFound
		}
		return nil, form.Registration{}, fmt.Errorf("query submission %s: %w", id, err)
	}
	var reg form.Registration
	if err := sonic.UnmarshalString(regJSON, &reg); err != nil {
		return nil, form.Registration{}, fmt.Errorf("unmarshal registration: %w", err)
	}
	var receipt Receipt
	if err := sonic.UnmarshalString(receiptJSON, &receipt); err != nil {
		return nil, form.Registration{}, fmt.Errorf("unmarshal receipt: %w", err)
	}
	return &receipt, reg, nil
}

func (s *SQLiteRegistry) Close() error {
	return s.db.Close()
}

var _ Registry = (*SQLiteRegistry)(nil)
