package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
	"github.com/samirrijal/citrusfield/internal/core/ports"
	"github.com/samirrijal/citrusfield/internal/pkg/geospatial"
	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
)

// MapSource names the collection a map session shows.
type MapSource = domain.EntityKind

// SessionOptions opens a map session.
type SessionOptions struct {
	Source     MapSource `json:"source" validate:"required,oneof=surveys land-changes civil-requests"`
	IDs        []string  `json:"ids,omitempty"` // restrict to these records, e.g. a filtered list
	SelectedID string    `json:"selectedId,omitempty"`
	Mode       string    `json:"mode,omitempty" validate:"omitempty,oneof=satellite standard"`
}

// SessionUpdate changes the interactive state of a session. Nil fields are kept.
type SessionUpdate struct {
	SelectedID *string             `json:"selectedId,omitempty"`
	Mode       *string             `json:"mode,omitempty" validate:"omitempty,oneof=satellite standard"`
	Start      *domain.Coordinates `json:"start,omitempty"`
	End        *domain.Coordinates `json:"end,omitempty"`
}

// SessionView is a read-only snapshot of a session.
type SessionView struct {
	ID         string               `json:"id"`
	Source     MapSource            `json:"source"`
	Entities   []domain.MapEntity   `json:"entities"`
	SelectedID string               `json:"selectedId,omitempty"`
	Mode       mapview.Mode         `json:"mode"`
	Start      *domain.Coordinates  `json:"start,omitempty"`
	End        *domain.Coordinates  `json:"end,omitempty"`
	Parcel     *geojson.Feature     `json:"parcel,omitempty"`
	HasRoute   bool                 `json:"hasRoute"`
	Summary    *domain.RouteSummary `json:"summary,omitempty"`
}

type mapSession struct {
	id       string
	source   MapSource
	entities []domain.MapEntity

	mu       sync.Mutex
	selected string
	mode     mapview.Mode
	start    *domain.Coordinates
	end      *domain.Coordinates
	parcel   *geojson.Feature
	route    *domain.FeatureCollection

	parcelSeq mapview.Sequencer
	routeSeq  mapview.Sequencer
}

func (m *mapSession) scene(t float64) mapview.Scene {
	m.mu.Lock()
	defer m.mu.Unlock()
	return mapview.Scene{
		Entities:       m.entities,
		SelectedID:     m.selected,
		Mode:           m.mode,
		SelectedParcel: m.parcel,
		Route:          m.route,
		Start:          m.start,
		End:            m.end,
		Time:           t,
	}
}

func (m *mapSession) view() *SessionView {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := &SessionView{
		ID:         m.id,
		Source:     m.source,
		Entities:   m.entities,
		SelectedID: m.selected,
		Mode:       m.mode,
		Start:      m.start,
		End:        m.end,
		Parcel:     m.parcel,
		HasRoute:   m.route != nil,
	}
	if m.route != nil {
		if sum, ok := mapview.Summary(m.route.Features); ok {
			v.Summary = &sum
		}
	}
	return v
}

// MapService holds map sessions: a snapshot of entities plus the selection,
// parcel, route and mode the layer composer renders. Idle sessions expire.
type MapService struct {
	surveys  ports.SurveyRepository
	changes  ports.LandChangeRepository
	requests ports.CivilRequestRepository
	parcels  ports.ParcelProvider
	routes   *RouteService

	mu       sync.Mutex
	sessions gcache.Cache
	ttl      time.Duration
	now      func() time.Time
}

// NewMapService creates a new MapService holding at most maxSessions sessions,
// each dropped after ttl without access.
func NewMapService(
	surveys ports.SurveyRepository,
	changes ports.LandChangeRepository,
	requests ports.CivilRequestRepository,
	parcels ports.ParcelProvider,
	routes *RouteService,
	maxSessions int,
	ttl time.Duration,
) *MapService {
	return &MapService{
		surveys:  surveys,
		changes:  changes,
		requests: requests,
		parcels:  parcels,
		routes:   routes,
		sessions: gcache.New(maxSessions).LRU().Expiration(ttl).Build(),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create snapshots the source collection into a new session. Route endpoints
// default to the first two entities.
func (s *MapService) Create(ctx context.Context, opts SessionOptions) (*SessionView, error) {
	mode := mapview.ModeSatellite
	if opts.Mode != "" {
		mode = mapview.Mode(opts.Mode)
		if !mode.Valid() {
			return nil, fmt.Errorf("unknown map mode %q", opts.Mode)
		}
	}

	entities, err := s.entities(ctx, opts.Source)
	if err != nil {
		return nil, err
	}
	if len(opts.IDs) > 0 {
		entities = keepIDs(entities, opts.IDs)
	}

	sess := &mapSession{
		id:       uuid.NewString(),
		source:   opts.Source,
		entities: entities,
		selected: opts.SelectedID,
		mode:     mode,
	}
	if len(entities) > 0 {
		c := entities[0].Coordinates
		sess.start = &c
	}
	if len(entities) > 1 {
		c := entities[1].Coordinates
		sess.end = &c
	}

	s.mu.Lock()
	err = s.sessions.SetWithExpire(sess.id, sess, s.ttl)
	n := s.sessions.Len(true)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("store map session: %w", err)
	}
	metrics.MapSessions.Set(float64(n))
	return sess.view(), nil
}

// Get returns a session snapshot.
func (s *MapService) Get(id string) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.view(), nil
}

// Update applies interactive changes. Moving an endpoint drops the stale route.
func (s *MapService) Update(id string, u SessionUpdate) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if u.Mode != nil && !mapview.Mode(*u.Mode).Valid() {
		return nil, fmt.Errorf("unknown map mode %q", *u.Mode)
	}

	sess.mu.Lock()
	if u.SelectedID != nil {
		sess.selected = *u.SelectedID
	}
	if u.Mode != nil {
		sess.mode = mapview.Mode(*u.Mode)
	}
	if u.Start != nil {
		c := *u.Start
		sess.start = &c
		sess.route = nil
	}
	if u.End != nil {
		c := *u.End
		sess.end = &c
		sess.route = nil
	}
	sess.mu.Unlock()

	// A route in flight was asked for the old endpoints.
	if u.Start != nil || u.End != nil {
		sess.routeSeq.Invalidate()
	}
	return sess.view(), nil
}

// Parcel looks up the parcel under a clicked point. The first parcel becomes
// the selected one and a point on no parcel clears it. An entity whose
// boundary contains the point becomes the selected entity. A lookup that is
// overtaken by a newer one returns domain.ErrSuperseded and changes nothing.
func (s *MapService) Parcel(ctx context.Context, id string, lng, lat float64) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	lctx, token, cancel := sess.parcelSeq.Begin(ctx)
	defer cancel()

	fc, err := s.parcels.ParcelAt(lctx, lng, lat)
	if err != nil {
		if sess.parcelSeq.Latest() != token {
			return nil, domain.ErrSuperseded
		}
		return nil, err
	}

	var parcel *geojson.Feature
	if fc != nil && len(fc.Features) > 0 {
		parcel = fc.Features[0]
	}
	hit := entityAt(sess.entities, lng, lat)

	applied := sess.parcelSeq.Commit(token, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		sess.parcel = parcel
		if hit != "" {
			sess.selected = hit
		}
	})
	if !applied {
		return nil, domain.ErrSuperseded
	}
	return sess.view(), nil
}

// Route predicts a route between the session endpoints and stores it.
func (s *MapService) Route(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	// The token is taken before the endpoints are read, so an Update that
	// lands after the read always retires it.
	rctx, token, cancel := sess.routeSeq.Begin(ctx)
	defer cancel()

	sess.mu.Lock()
	start, end := sess.start, sess.end
	sess.mu.Unlock()
	if start == nil || end == nil {
		return nil, domain.ErrMissingEndpoints
	}

	fc, err := s.routes.Between(rctx, start, end, s.now())
	if err != nil {
		if sess.routeSeq.Latest() != token {
			return nil, domain.ErrSuperseded
		}
		return nil, err
	}

	var current bool
	applied := sess.routeSeq.Commit(token, func() {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		// Endpoints replaced after the read but before Invalidate ran.
		if sess.start != start || sess.end != end {
			return
		}
		sess.route = fc
		current = true
	})
	if !applied || !current {
		return nil, domain.ErrSuperseded
	}
	return sess.view(), nil
}

// Layers composes the layer list of a session at animation time t.
func (s *MapService) Layers(id string, t float64) ([]mapview.Layer, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return mapview.Compose(sess.scene(t)), nil
}

// Summary returns the totals of the session route.
func (s *MapService) Summary(id string) (*domain.RouteSummary, error) {
	v, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if v.Summary == nil {
		return nil, fmt.Errorf("route summary: %w", domain.ErrNotFound)
	}
	return v.Summary, nil
}

// Delete drops a session.
func (s *MapService) Delete(id string) error {
	s.mu.Lock()
	ok := s.sessions.Remove(id)
	n := s.sessions.Len(true)
	s.mu.Unlock()
	metrics.MapSessions.Set(float64(n))
	if !ok {
		return fmt.Errorf("map session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// session fetches a session and restarts its idle timer.
func (s *MapService) session(id string) (*mapSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.sessions.Get(id)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, fmt.Errorf("map session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load map session %s: %w", id, err)
	}
	sess := v.(*mapSession)
	if err := s.sessions.SetWithExpire(id, sess, s.ttl); err != nil {
		slog.Warn("refresh map session failed", "id", id, "error", err)
	}
	return sess, nil
}

func (s *MapService) entities(ctx context.Context, source MapSource) ([]domain.MapEntity, error) {
	switch source {
	case domain.KindSurvey:
		all, err := s.surveys.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list surveys: %w", err)
		}
		out := make([]domain.MapEntity, len(all))
		for i := range all {
			out[i] = SurveyEntity(&all[i])
		}
		return out, nil
	case domain.KindLandChange:
		all, err := s.changes.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list land changes: %w", err)
		}
		out := make([]domain.MapEntity, len(all))
		for i, lc := range all {
			out[i] = domain.MapEntity{
				ID:          lc.ID,
				Coordinates: lc.Coordinates,
				Type:        string(lc.Type),
				Address:     lc.Address,
			}
		}
		return out, nil
	case domain.KindCivilRequest:
		all, err := s.requests.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list civil requests: %w", err)
		}
		out := make([]domain.MapEntity, len(all))
		for i, cr := range all {
			status := string(domain.SurveyPending)
			if cr.Status == domain.CivilRequestDone {
				status = string(domain.SurveyCompleted)
			}
			out[i] = domain.MapEntity{
				ID:          cr.ID,
				Coordinates: cr.Coordinates,
				Area:        cr.Area,
				Status:      status,
				Address:     cr.Address,
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown map source %q", source)
}

// SurveyEntity projects a survey onto the map.
func SurveyEntity(sr *domain.SurveyRecord) domain.MapEntity {
	return domain.MapEntity{
		ID:          sr.ID,
		Coordinates: sr.Coordinates,
		Boundary:    cloneBoundary(sr.Boundary),
		Area:        sr.Area,
		Status:      string(sr.Status),
		Address:     sr.Address,
		TreeCount:   sr.TreeCount(),
	}
}

func keepIDs(entities []domain.MapEntity, ids []string) []domain.MapEntity {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := entities[:0:0]
	for _, e := range entities {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// entityAt returns the first entity whose boundary contains the point.
func entityAt(entities []domain.MapEntity, lng, lat float64) string {
	for _, e := range entities {
		if len(e.Boundary) == 0 {
			continue
		}
		ring, err := geospatial.Ring(e.Boundary)
		if err != nil {
			continue
		}
		if geospatial.Contains(ring, lng, lat) {
			return e.ID
		}
	}
	return ""
}
