package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	db "github.com/JonMunkholm/tabcheck/internal/database"
	"github.com/JonMunkholm/tabcheck/internal/report"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PGStore is the Postgres Store backed by the sqlc queries.
type PGStore struct {
	conn db.DBTX
}

// NewPGStore creates a store over a pool, connection or transaction.
func NewPGStore(conn db.DBTX) *PGStore {
	return &PGStore{conn: conn}
}

func (s *PGStore) StartRun(ctx context.Context, resourceID string) (*Record, error) {
	row, err := db.New(s.conn).UpsertValidationRunning(ctx, db.UpsertValidationRunningParams{
		ID:         toPgUUID(uuid.NewString()),
		ResourceID: resourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("start validation: %w", err)
	}
	return dbValidationToRecord(row)
}

func (s *PGStore) FinishRun(ctx context.Context, rec *Record) error {
	reportJSON, err := marshalNullable(rec.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	errorJSON, err := marshalNullable(rec.Error)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}

	_, err = db.New(s.conn).FinishValidation(ctx, db.FinishValidationParams{
		ResourceID: rec.ResourceID,
		Status:     rec.Status,
		Report:     reportJSON,
		Error:      errorJSON,
		Finished:   toPgTimestamptz(rec.Finished),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("finish validation: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, resourceID string) (*Record, error) {
	row, err := db.New(s.conn).GetValidationByResource(ctx, resourceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get validation: %w", err)
	}
	return dbValidationToRecord(row)
}

func (s *PGStore) Delete(ctx context.Context, resourceID string) error {
	n, err := db.New(s.conn).DeleteValidation(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("delete validation: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PGStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := db.New(s.conn).CountValidationsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count validations: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func dbValidationToRecord(row db.Validation) (*Record, error) {
	rec := &Record{
		ID:         uuidToString(row.ID),
		ResourceID: row.ResourceID,
		Status:     row.Status,
		Created:    row.Created.Time,
	}
	if row.Finished.Valid {
		t := row.Finished.Time
		rec.Finished = &t
	}
	if len(row.Report) > 0 {
		rec.Report = &report.Report{}
		if err := json.Unmarshal(row.Report, rec.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	}
	if len(row.Error) > 0 {
		rec.Error = &report.ErrorPayload{}
		if err := json.Unmarshal(row.Error, rec.Error); err != nil {
			return nil, fmt.Errorf("decode error: %w", err)
		}
	}
	return rec, nil
}

// marshalNullable encodes v, mapping a nil pointer to SQL NULL.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func toPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

func toPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
