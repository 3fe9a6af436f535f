package ports

import (
	"context"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

// SurveyRepository persists survey records.
// Records are never deleted; Save replaces the whole record.
type SurveyRepository interface {
	List(ctx context.Context) ([]domain.SurveyRecord, error)
	GetByID(ctx context.Context, id string) (*domain.SurveyRecord, error)
	Save(ctx context.Context, survey *domain.SurveyRecord) error
}

// LandChangeRepository persists the cadastral change log.
type LandChangeRepository interface {
	List(ctx context.Context) ([]domain.LandChange, error)
	GetByID(ctx context.Context, id string) (*domain.LandChange, error)
	Save(ctx context.Context, change *domain.LandChange) error
}

// CivilRequestRepository persists citizen requests.
type CivilRequestRepository interface {
	List(ctx context.Context) ([]domain.CivilRequest, error)
	GetByID(ctx context.Context, id string) (*domain.CivilRequest, error)
	Save(ctx context.Context, req *domain.CivilRequest) error
}
