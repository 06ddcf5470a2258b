package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tableflip.dev/tmpl/pkg/template"
)

// templateModel is the gorm mapping of the templates table.
type templateModel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	Subject string `gorm:"type:text;not null"`
	Body    string `gorm:"type:text;not null"`
}

func (templateModel) TableName() string { return "templates" }

type gormStore struct {
	db *gorm.DB
}

// OpenMySQL connects to MySQL with dsn and ensures the templates table exists.
func OpenMySQL(dsn string, log *slog.Logger) (Persistence, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return newGormStore(db, log)
}

func newGormStore(db *gorm.DB, log *slog.Logger) (Persistence, error) {
	if err := db.AutoMigrate(&templateModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if log != nil {
		log.Info("database connected and migrated", "dialect", db.Dialector.Name())
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) List(ctx context.Context) ([]template.Template, error) {
	var rows []templateModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	out := make([]template.Template, len(rows))
	for i, r := range rows {
		out[i] = template.Template{ID: template.ID(r.ID), Subject: r.Subject, Body: r.Body}
	}
	return out, nil
}

func (s *gormStore) Get(ctx context.Context, id template.ID) (template.Template, error) {
	var row templateModel
	err := s.db.WithContext(ctx).First(&row, int64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return template.Template{}, ErrNotFound
	}
	if err != nil {
		return template.Template{}, fmt.Errorf("getting template %d: %w", id, err)
	}
	return template.Template{ID: template.ID(row.ID), Subject: row.Subject, Body: row.Body}, nil
}

func (s *gormStore) Create(ctx context.Context, t template.Template) (template.Template, error) {
	row := templateModel{Subject: t.Subject, Body: t.Body}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return template.Template{}, fmt.Errorf("creating template: %w", err)
	}
	t.ID = template.ID(row.ID)
	return t, nil
}

// Update checks existence first: MySQL reports zero affected rows when the
// new values equal the stored ones.
func (s *gormStore) Update(ctx context.Context, t template.Template) (template.Template, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row templateModel
		if err := tx.First(&row, int64(t.ID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("getting template %d: %w", t.ID, err)
		}
		row.Subject = t.Subject
		row.Body = t.Body
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("updating template %d: %w", t.ID, err)
		}
		return nil
	})
	if err != nil {
		return template.Template{}, err
	}
	return t, nil
}

func (s *gormStore) Delete(ctx context.Context, id template.ID) error {
	result := s.db.WithContext(ctx).Delete(&templateModel{}, int64(id))
	if result.Error != nil {
		return fmt.Errorf("deleting template %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
