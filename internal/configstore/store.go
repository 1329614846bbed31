package configstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/camp-scheduler/internal/crypto"
	"github.com/example/camp-scheduler/internal/db"
	"github.com/example/camp-scheduler/internal/reservation"
)

// Querier is the slice of the database wrapper the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) error
	QueryRow(ctx context.Context, sql string, args ...any) db.Row
}

// Store persists reservation-config records as one JSONB row per id.
// Card number and security code are encrypted before the record is
// marshalled; everything else is stored in the clear.
type Store struct {
	DB   Querier
	AEAD *crypto.AEAD
}

// Get loads and decrypts the record under id. A missing row is
// reported as db.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (reservation.ConfigRecord, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `SELECT record FROM reservation_configs WHERE id=$1`, id).Scan(&raw)
	if err != nil {
		return nil, db.WrapNotFound(err)
	}

	var record reservation.ConfigRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return openRecord(s.AEAD, record)
}

// Put encrypts the card fields and upserts the record under id.
func (s *Store) Put(ctx context.Context, id string, record reservation.ConfigRecord) error {
	sealed, err := sealRecord(s.AEAD, record)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(sealed)
	if err != nil {
		return err
	}
	return s.DB.Exec(ctx, `
		INSERT INTO reservation_configs (id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, updated_at = now()`,
		id, raw)
}

func sealRecord(a *crypto.AEAD, record reservation.ConfigRecord) (reservation.ConfigRecord, error) {
	out := make(reservation.ConfigRecord, len(record))
	for i, cfg := range record {
		var err error
		if cfg.CardDetails.Number, err = a.EncryptToString(cfg.CardDetails.Number); err != nil {
			return nil, fmt.Errorf("encrypt config %s: %w", cfg.ID, err)
		}
		if cfg.CardDetails.SecurityCode, err = a.EncryptToString(cfg.CardDetails.SecurityCode); err != nil {
			return nil, fmt.Errorf("encrypt config %s: %w", cfg.ID, err)
		}
		out[i] = cfg
	}
	return out, nil
}

func openRecord(a *crypto.AEAD, record reservation.ConfigRecord) (reservation.ConfigRecord, error) {
	out := make(reservation.ConfigRecord, len(record))
	for i, cfg := range record {
		var err error
		if cfg.CardDetails.Number, err = a.DecryptString(cfg.CardDetails.Number); err != nil {
			return nil, fmt.Errorf("decrypt config %s: %w", cfg.ID, err)
		}
		if cfg.CardDetails.SecurityCode, err = a.DecryptString(cfg.CardDetails.SecurityCode); err != nil {
			return nil, fmt.Errorf("decrypt config %s: %w", cfg.ID, err)
		}
		out[i] = cfg
	}
	return out, nil
}
