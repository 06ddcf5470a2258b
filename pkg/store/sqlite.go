package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"tableflip.dev/tmpl/pkg/template"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// dbTemplate is a template row.
type dbTemplate struct {
	ID      int64  `db:"id"`
	Subject string `db:"subject"`
	Body    string `db:"body"`
}

func (r dbTemplate) toTemplate() template.Template {
	return template.Template{ID: template.ID(r.ID), Subject: r.Subject, Body: r.Body}
}

type sqlStore struct {
	dbConn *sqlx.DB
}

// OpenSQLite opens (creating if needed) the SQLite database file at name and
// applies pending migrations.
func OpenSQLite(name string) (Persistence, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000&_fk=true", name))
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}

	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting dialect for migrations : %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migration : %w", err)
	}
	return &sqlStore{dbConn: db}, nil
}

func (s *sqlStore) List(ctx context.Context) ([]template.Template, error) {
	var rows []dbTemplate
	if err := s.dbConn.SelectContext(ctx, &rows, `SELECT id, subject, body FROM templates ORDER BY id`); err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	out := make([]template.Template, len(rows))
	for i, r := range rows {
		out[i] = r.toTemplate()
	}
	return out, nil
}

func (s *sqlStore) Get(ctx context.Context, id template.ID) (template.Template, error) {
	var row dbTemplate
	err := s.dbConn.GetContext(ctx, &row, `SELECT id, subject, body FROM templates WHERE id = ?`, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return template.Template{}, ErrNotFound
	}
	if err != nil {
		return template.Template{}, fmt.Errorf("getting template %d: %w", id, err)
	}
	return row.toTemplate(), nil
}

func (s *sqlStore) Create(ctx context.Context, t template.Template) (template.Template, error) {
	result, err := s.dbConn.ExecContext(ctx, `INSERT INTO templates(subject, body) VALUES (?, ?)`, t.Subject, t.Body)
	if err != nil {
		return template.Template{}, fmt.Errorf("creating template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return template.Template{}, fmt.Errorf("fetching inserted id: %w", err)
	}
	t.ID = template.ID(id)
	return t, nil
}

func (s *sqlStore) Update(ctx context.Context, t template.Template) (template.Template, error) {
	result, err := s.dbConn.ExecContext(ctx, `UPDATE templates SET subject = ?, body = ? WHERE id = ?`, t.Subject, t.Body, int64(t.ID))
	if err != nil {
		return template.Template{}, fmt.Errorf("updating template %d: %w", t.ID, err)
	}
	if err := expectOneRow(result); err != nil {
		return template.Template{}, err
	}
	return t, nil
}

func (s *sqlStore) Delete(ctx context.Context, id template.ID) error {
	result, err := s.dbConn.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("deleting template %d: %w", id, err)
	}
	return expectOneRow(result)
}

func (s *sqlStore) Close() error {
	if err := s.dbConn.Close(); err != nil {
		return fmt.Errorf("closing db : %w", err)
	}
	return nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
