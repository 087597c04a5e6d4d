package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jask/slicewidgets/internal/database"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RecordRepo handles persisted widget records.
type RecordRepo struct {
	db DBTX
}

func NewRecordRepo(db DBTX) *RecordRepo {
	return &RecordRepo{db: db}
}

// Upsert inserts or updates r and returns its id. An empty id gets a new one.
func (r *RecordRepo) Upsert(ctx context.Context, rec WidgetRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	data, err := msgpack.Marshal(rec.Data)
	if err != nil {
		return "", fmt.Errorf("encode record data: %w", err)
	}
	now := database.Now()
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO widget_records(id, position, version, type, name, data, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 position=excluded.position,
	 version=excluded.version,
	 type=excluded.type,
	 name=excluded.name,
	 data=excluded.data,
	 updated_at=excluded.updated_at;
	`, rec.ID, rec.Position, rec.Version, rec.Type, rec.Name, data, now, now)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// List returns every record in position order.
func (r *RecordRepo) List(ctx context.Context) ([]WidgetRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, position, version, type, name, data, created_at, updated_at
	FROM widget_records ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WidgetRecord
	for rows.Next() {
		var (
			rec  WidgetRecord
			data []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Position, &rec.Version, &rec.Type, &rec.Name, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := msgpack.Unmarshal(data, &rec.Data); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes one record. Deleting a missing id is not an error.
func (r *RecordRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM widget_records WHERE id = ?`, id)
	return err
}

// DeleteAll removes every record and returns how many there were.
func (r *RecordRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM widget_records`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
