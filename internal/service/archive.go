package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jask/slicewidgets/internal/database"
	"github.com/jask/slicewidgets/internal/database/repository"
	"github.com/jask/slicewidgets/internal/provider"
	"github.com/jask/slicewidgets/internal/widget"
)

// Widgets is the part of the provider the archive needs.
type Widgets interface {
	Records() []widget.Record
	CreateWidget(typeName string, opts provider.CreateOptions) (*provider.Widget, error)
}

// ArchiveService saves the provider's widgets to sqlite and restores them.
type ArchiveService struct {
	DB  *sql.DB
	Log *slog.Logger
}

func (s *ArchiveService) check() error {
	if s.DB == nil {
		return fmt.Errorf("archive: db not configured")
	}
	if s.Log == nil {
		s.Log = slog.Default()
	}
	return nil
}

// Save replaces the stored records with recs, keeping their order.
func (s *ArchiveService) Save(ctx context.Context, recs []widget.Record) error {
	if err := s.check(); err != nil {
		return err
	}
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		repo := repository.NewRecordRepo(tx)
		if _, err := repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		for i, rec := range recs {
			if _, err := repo.Upsert(ctx, repository.WidgetRecord{
				Position: i,
				Version:  rec.Version,
				Type:     rec.Type,
				Name:     rec.Name,
				Data:     rec.Data,
			}); err != nil {
				return fmt.Errorf("save record %d (%s): %w", i, rec.Type, err)
			}
		}
		return nil
	})
}

// SaveWidgets saves every widget of w.
func (s *ArchiveService) SaveWidgets(ctx context.Context, w Widgets) (int, error) {
	recs := w.Records()
	if err := s.Save(ctx, recs); err != nil {
		return 0, err
	}
	s.Log.Info("widgets saved", "count", len(recs))
	return len(recs), nil
}

// Load returns the stored records in order.
func (s *ArchiveService) Load(ctx context.Context) ([]widget.Record, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := repository.NewRecordRepo(s.DB).List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]widget.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, widget.Record{Version: r.Version, Type: r.Type, Name: r.Name, Data: r.Data})
	}
	return out, nil
}

// Restore recreates the stored widgets on w. Records that fail to restore are
// skipped; their errors are joined.
func (s *ArchiveService) Restore(ctx context.Context, w Widgets) ([]*provider.Widget, error) {
	recs, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	var (
		out  []*provider.Widget
		errs []error
	)
	for i := range recs {
		rec := recs[i]
		created, err := w.CreateWidget(rec.Type, provider.CreateOptions{InitialState: &rec})
		if created != nil {
			out = append(out, created)
		}
		if err != nil {
			s.Log.Warn("restore failed", "type", rec.Type, "name", rec.Name, "err", err)
			errs = append(errs, err)
		}
	}
	s.Log.Info("widgets restored", "count", len(out), "failed", len(errs))
	return out, errors.Join(errs...)
}

// Clear wipes the stored records. It keeps the schema intact.
func (s *ArchiveService) Clear(ctx context.Context) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	n, err := repository.NewRecordRepo(s.DB).DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return n, nil
}
