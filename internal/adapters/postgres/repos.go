package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/fixtures"
)

// docTable stores one JSON document per record, listed in insertion order.
type docTable[T any] struct {
	db    *DB
	table string
	idOf  func(*T) string
}

func (t docTable[T]) list(ctx context.Context) ([]T, error) {
	rows, err := t.db.Pool.Query(ctx, `SELECT doc FROM `+t.table+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", t.table, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t docTable[T]) get(ctx context.Context, id string) (*T, error) {
	var raw []byte
	err := t.db.Pool.QueryRow(ctx, `SELECT doc FROM `+t.table+` WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", t.table, id, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", t.table, id, err)
	}
	return &v, nil
}

func (t docTable[T]) save(ctx context.Context, v *T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = t.db.Pool.Exec(ctx, `
		INSERT INTO `+t.table+` (id, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, t.idOf(v), string(doc))
	return err
}

// seed inserts records that are not stored yet and returns how many were added.
func (t docTable[T]) seed(ctx context.Context, items []T) (int, error) {
	batch := &pgx.Batch{}
	for i := range items {
		doc, err := json.Marshal(&items[i])
		if err != nil {
			return 0, err
		}
		batch.Queue(`INSERT INTO `+t.table+` (id, doc) VALUES ($1, $2::jsonb) ON CONFLICT (id) DO NOTHING`,
			t.idOf(&items[i]), string(doc))
	}
	br := t.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	added := 0
	for range items {
		tag, err := br.Exec()
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", t.table, err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// SurveyRepo implements ports.SurveyRepository.
type SurveyRepo struct{ t docTable[domain.SurveyRecord] }

func NewSurveyRepo(db *DB) *SurveyRepo {
	return &SurveyRepo{t: docTable[domain.SurveyRecord]{db: db, table: "surveys", idOf: func(s *domain.SurveyRecord) string { return s.ID }}}
}

func (r *SurveyRepo) List(ctx context.Context) ([]domain.SurveyRecord, error) { return r.t.list(ctx) }

func (r *SurveyRepo) GetByID(ctx context.Context, id string) (*domain.SurveyRecord, error) {
	return r.t.get(ctx, id)
}

func (r *SurveyRepo) Save(ctx context.Context, s *domain.SurveyRecord) error { return r.t.save(ctx, s) }

// LandChangeRepo implements ports.LandChangeRepository.
type LandChangeRepo struct{ t docTable[domain.LandChange] }

func NewLandChangeRepo(db *DB) *LandChangeRepo {
	return &LandChangeRepo{t: docTable[domain.LandChange]{db: db, table: "land_changes", idOf: func(lc *domain.LandChange) string { return lc.ID }}}
}

func (r *LandChangeRepo) List(ctx context.Context) ([]domain.LandChange, error) { return r.t.list(ctx) }

func (r *LandChangeRepo) GetByID(ctx context.Context, id string) (*domain.LandChange, error) {
	return r.t.get(ctx, id)
}

func (r *LandChangeRepo) Save(ctx context.Context, lc *domain.LandChange) error {
	return r.t.save(ctx, lc)
}

// CivilRequestRepo implements ports.CivilRequestRepository.
type CivilRequestRepo struct{ t docTable[domain.CivilRequest] }

func NewCivilRequestRepo(db *DB) *CivilRequestRepo {
	return &CivilRequestRepo{t: docTable[domain.CivilRequest]{db: db, table: "civil_requests", idOf: func(cr *domain.CivilRequest) string { return cr.ID }}}
}

func (r *CivilRequestRepo) List(ctx context.Context) ([]domain.CivilRequest, error) {
	return r.t.list(ctx)
}

func (r *CivilRequestRepo) GetByID(ctx context.Context, id string) (*domain.CivilRequest, error) {
	return r.t.get(ctx, id)
}

func (r *CivilRequestRepo) Save(ctx context.Context, cr *domain.CivilRequest) error {
	return r.t.save(ctx, cr)
}

// SeedResult counts the records Seed inserted per table.
type SeedResult struct {
	Surveys, LandChanges, CivilRequests int
}

// Seed inserts the seed records that are missing. Existing rows are left untouched.
func Seed(ctx context.Context, db *DB, s *fixtures.Seed) (SeedResult, error) {
	var res SeedResult
	var err error
	if res.Surveys, err = NewSurveyRepo(db).t.seed(ctx, s.Surveys); err != nil {
		return res, err
	}
	if res.LandChanges, err = NewLandChangeRepo(db).t.seed(ctx, s.LandChanges); err != nil {
		return res, err
	}
	if res.CivilRequests, err = NewCivilRequestRepo(db).t.seed(ctx, s.CivilRequests); err != nil {
		return res, err
	}
	return res, nil
}
