// Package booking serializes booking requests against the room store: every
// operation loads a snapshot, computes on it and saves the result while
// holding a single lock.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/hotel"
	"github.com/cory-johannsen/hotel/internal/random"
	"github.com/cory-johannsen/hotel/internal/storage"
)

// Booking is a committed reservation.
type Booking struct {
	ID        uuid.UUID
	Requester string
	Selection hotel.Selection
	Message   string
	// Layout is the room state after the booking was saved.
	Layout *hotel.Layout
}

// Stats summarizes occupancy.
type Stats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
}

// Service is the single owner of the room state.
type Service struct {
	store     storage.Store
	allocator hotel.Allocator
	src       random.Source
	logger    *zap.Logger
	tracer    trace.Tracer

	mu sync.Mutex
}

// NewService creates a booking Service.
//
// Precondition: all arguments must be non-nil.
func NewService(store storage.Store, allocator hotel.Allocator, src random.Source, logger *zap.Logger, tracer trace.Tracer) *Service {
	return &Service{
		store:     store,
		allocator: allocator,
		src:       src,
		logger:    logger,
		tracer:    tracer,
	}
}

// Book allocates and commits rooms for req.
//
// Postcondition: On success the selected rooms are saved as booked by
// req.Requester. Allocation failures are returned as *hotel.AllocationError
// and leave the store untouched.
func (s *Service) Book(ctx context.Context, req hotel.Request) (b *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Book", trace.WithAttributes(
		attribute.Int("booking.requested", req.NumOfRooms),
	))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}

	sel, err := s.allocator.Allocate(l, req)
	if err != nil {
		s.logger.Info("booking rejected",
			zap.String("requester", req.Requester),
			zap.Int("requested", req.NumOfRooms),
			zap.Int("available", l.AvailableCount()),
			zap.Error(err),
		)
		return nil, err
	}
	if sel.Truncated {
		s.logger.Warn("cross-floor search hit combination cap",
			zap.Int("requested", req.NumOfRooms),
			zap.Int("max_combinations", s.allocator.MaxCombinations),
		)
	}

	if err := l.Commit(sel, req.Requester); err != nil {
		return nil, fmt.Errorf("committing selection: %w", err)
	}
	if err := s.store.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving rooms: %w", err)
	}

	b = &Booking{
		ID:        uuid.New(),
		Requester: req.Requester,
		Selection: sel,
		Message:   bookedMessage(sel),
		Layout:    l,
	}

	span.SetAttributes(
		attribute.String("booking.id", b.ID.String()),
		attribute.String("booking.strategy", string(sel.Strategy)),
		attribute.Int("booking.cost", sel.Cost),
	)
	s.logger.Info("rooms booked",
		zap.String("booking_id", b.ID.String()),
		zap.String("requester", req.Requester),
		zap.String("strategy", string(sel.Strategy)),
		zap.Int("cost", sel.Cost),
		zap.String("rooms", joinRooms(sel.Rooms)),
	)
	return b, nil
}

// Rooms returns the current room state.
func (s *Service) Rooms(ctx context.Context) (*hotel.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}
	return l, nil
}

// Stats returns room counts for the current state.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	l, err := s.Rooms(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Total:     l.TotalRooms(),
		Available: l.AvailableCount(),
		Occupied:  l.OccupiedCount(),
	}, nil
}

// Reset frees every room.
//
// Postcondition: The saved layout has no occupied rooms.
func (s *Service) Reset(ctx context.Context) (l *hotel.Layout, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Reset")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err = s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}
	released := l.OccupiedCount()
	l.Reset()
	if err := s.store.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("saving rooms: %w", err)
	}

	s.logger.Info("bookings reset", zap.Int("released", released))
	return l, nil
}

// RandomFill resets the building and books a random 30-50% of it.
//
// Postcondition: Returns the saved layout and the number of rooms booked.
func (s *Service) RandomFill(ctx context.Context) (l *hotel.Layout, booked int, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.RandomFill")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err = s.store.Load(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("loading rooms: %w", err)
	}
	booked = l.RandomFill(s.src)
	if err := s.store.Save(ctx, l); err != nil {
		return nil, 0, fmt.Errorf("saving rooms: %w", err)
	}

	span.SetAttributes(attribute.Int("booking.random_booked", booked))
	s.logger.Info("rooms randomly booked", zap.Int("booked", booked), zap.Int("total", l.TotalRooms()))
	return l, booked, nil
}

func bookedMessage(sel hotel.Selection) string {
	if sel.Strategy == hotel.StrategyCrossFloor {
		return fmt.Sprintf("Rooms booked successfully with total travel time of %d", sel.Cost)
	}
	return "Rooms booked successfully"
}

func joinRooms(refs []hotel.RoomRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// endSpan records err on span unless it is an expected allocation refusal.
func endSpan(span trace.Span, err error) {
	var allocErr *hotel.AllocationError
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.As(err, &allocErr):
		span.SetAttributes(attribute.String("booking.rejected", allocErr.Kind.Error()))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
