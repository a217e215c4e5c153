package lookup

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"clima-dashboard/internal/weather"
)

// WeatherAPI is the slice of the upstream client the orchestrator needs.
type WeatherAPI interface {
	CurrentByQuery(ctx context.Context, query string) (*weather.Reading, error)
	CurrentByCoords(ctx context.Context, lat, lon float64) (*weather.Reading, error)
	AirQuality(ctx context.Context, lat, lon float64) (*weather.AirSample, error)
}

// Outcome is the single terminal result of one submission: either a
// reading (with its rendering and an optional air sample) or an error.
// Seq orders outcomes; only the newest one is ever published.
type Outcome struct {
	Seq     uint64             `json:"seq"`
	Reading *weather.Reading   `json:"reading,omitempty"`
	Air     *weather.AirSample `json:"air,omitempty"`
	View    *Rendering         `json:"view,omitempty"`
	Err     *Error             `json:"-"`
}

func (o *Outcome) OK() bool { return o.Err == nil }

// Service turns one submitted query into exactly one terminal outcome,
// making at most two dependent upstream calls. Submissions supersede each
// other: a new one cancels interest in the previous in-flight query, and a
// stale outcome never overwrites newer published state (last write wins).
type Service struct {
	api            WeatherAPI
	session        *Session
	requireCountry bool

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	latest   *Outcome
	handlers []func(Outcome)

	// deliverMu serializes handler fan-out so outcomes reach subscribers
	// in submission order.
	deliverMu sync.Mutex
}

type ServiceConfig struct {
	API     WeatherAPI
	Session *Session
	// RequireCountry makes an absent country code a validation failure
	// instead of falling back to a bare-city query.
	RequireCountry bool
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{
		api:            cfg.API,
		session:        cfg.Session,
		requireCountry: cfg.RequireCountry,
	}
}

// OnOutcome registers a handler invoked for every published outcome.
// Deliveries are serialized in submission order: a superseded outcome is
// never delivered after the one that replaced it.
func (s *Service) OnOutcome(handler func(Outcome)) {
	s.mu.Lock()
	s.handlers = append(s.handlers, handler)
	s.mu.Unlock()
}

// Latest returns the most recently published outcome, or nil before the
// first submission. An error outcome replaces any prior reading, so stale
// and error states are never visible together.
func (s *Service) Latest() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// SubmitQuery runs the full pipeline for a city (and optional country
// code) typed by the user.
func (s *Service) SubmitQuery(ctx context.Context, city, countryCode string) Outcome {
	city = strings.TrimSpace(city)
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))

	if city == "" {
		return s.fail(KindValidation, MsgEmptyCity, nil)
	}
	if countryCode == "" && s.requireCountry {
		return s.fail(KindValidation, MsgMissingCountry, nil)
	}
	if countryCode != "" && !s.session.Countries().Has(countryCode) {
		return s.fail(KindValidation, MsgUnknownCountry, nil)
	}
	if !s.session.Probe().Online() {
		return s.fail(KindConnectivity, MsgNoConnection, nil)
	}

	qctx, cancel, seq := s.begin(ctx)
	defer cancel()

	query := weather.CompositeQuery(city, countryCode)
	reading, err := s.api.CurrentByQuery(qctx, query)
	if err != nil {
		return s.publish(Outcome{Seq: seq, Err: mapWeatherError(err)})
	}

	s.session.setLastCountry(countryCode)
	return s.finish(qctx, seq, reading)
}

// SubmitCoordinates runs the same pipeline for a raw coordinate pair,
// skipping forward geocoding.
func (s *Service) SubmitCoordinates(ctx context.Context, lat, lon float64) Outcome {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return s.fail(KindValidation, MsgInvalidCoords, nil)
	}
	if !s.session.Probe().Online() {
		return s.fail(KindConnectivity, MsgNoConnection, nil)
	}

	qctx, cancel, seq := s.begin(ctx)
	defer cancel()

	reading, err := s.api.CurrentByCoords(qctx, lat, lon)
	if err != nil {
		return s.publish(Outcome{Seq: seq, Err: mapWeatherError(err)})
	}

	// The by-coordinate response has no geocoding step; the submitted pair
	// is authoritative for the dependent air-quality call.
	reading.Latitude = lat
	reading.Longitude = lon
	return s.finish(qctx, seq, reading)
}

// finish issues the best-effort air-quality call and publishes the render
// outcome. The secondary call starts only after the weather call returned
// because it needs its coordinates; its failure never blocks the reading.
func (s *Service) finish(ctx context.Context, seq uint64, reading *weather.Reading) Outcome {
	air, err := s.api.AirQuality(ctx, reading.Latitude, reading.Longitude)
	if err != nil {
		log.Printf("Air quality unavailable for %s: %v", reading.PlaceName, err)
		air = nil
	}

	view := Render(reading, air)
	log.Printf("Lookup %s: icon=%s theme=%s", reading.PlaceName, reading.IconCode, view.Theme)

	return s.publish(Outcome{Seq: seq, Reading: reading, Air: air, View: view})
}

// begin allocates the next sequence token and cancels interest in any
// prior in-flight query.
func (s *Service) begin(parent context.Context) (context.Context, context.CancelFunc, uint64) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	return ctx, cancel, seq
}

func (s *Service) fail(kind Kind, message string, cause error) Outcome {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	return s.publish(Outcome{Seq: seq, Err: newError(kind, message, cause)})
}

// publish records an outcome and fans it out, unless a newer submission
// already superseded it.
func (s *Service) publish(o Outcome) Outcome {
	s.mu.Lock()
	if o.Seq != s.seq {
		s.mu.Unlock()
		return o
	}
	s.latest = &o
	handlers := make([]func(Outcome), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	// A newer outcome may have finished delivering while this one waited
	// for its turn; skip the stale fan-out entirely.
	s.mu.Lock()
	superseded := o.Seq != s.seq
	s.mu.Unlock()
	if superseded {
		return o
	}

	for _, handler := range handlers {
		handler(o)
	}
	return o
}

func mapWeatherError(err error) *Error {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return newError(KindNotFound, MsgNotFound, err)
	case errors.Is(err, weather.ErrConnectivity):
		return newError(KindConnectivity, MsgConnection, err)
	default:
		return newError(KindUpstream, MsgUpstream, err)
	}
}
