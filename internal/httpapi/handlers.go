// Package httpapi exposes the booking service over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/booking"
	"github.com/cory-johannsen/hotel/internal/hotel"
)

// Booker is the booking operations the HTTP layer depends on.
type Booker interface {
	Book(ctx context.Context, req hotel.Request) (*booking.Booking, error)
	Rooms(ctx context.Context) (*hotel.Layout, error)
	Stats(ctx context.Context) (booking.Stats, error)
	Reset(ctx context.Context) (*hotel.Layout, error)
	RandomFill(ctx context.Context) (*hotel.Layout, int, error)
}

// response is the envelope of every reply.
type response struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    *hotel.Layout  `json:"data,omitempty"`
	Booking *bookingBody   `json:"booking,omitempty"`
	Stats   *booking.Stats `json:"stats,omitempty"`
}

type bookingBody struct {
	ID        string          `json:"id"`
	Strategy  string          `json:"strategy"`
	Cost      int             `json:"cost"`
	Rooms     []hotel.RoomRef `json:"rooms"`
	Truncated bool            `json:"truncated,omitempty"`
}

type bookingRequest struct {
	NumOfRooms *int `json:"numOfRooms"`
}

// Handler routes booking requests.
type Handler struct {
	booker Booker
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewHandler builds the route table:
//
//	GET  /booking/rooms   current room grid
//	GET  /booking/stats   occupancy counts
//	POST /booking         book numOfRooms rooms
//	POST /booking/reset   free every room
//	POST /booking/random  reset and randomly book 30-50% of rooms
//
// Any other path gets a JSON 404.
//
// Precondition: booker and logger must be non-nil.
func NewHandler(booker Booker, logger *zap.Logger) *Handler {
	h := &Handler{booker: booker, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("/booking/rooms", only(http.MethodGet, h.rooms))
	h.mux.HandleFunc("/booking/stats", only(http.MethodGet, h.stats))
	h.mux.HandleFunc("/booking", only(http.MethodPost, h.book))
	h.mux.HandleFunc("/booking/reset", only(http.MethodPost, h.reset))
	h.mux.HandleFunc("/booking/random", only(http.MethodPost, h.random))
	h.mux.HandleFunc("/", notFound)
	return h
}

// ServeHTTP applies CORS headers, answers preflight requests and dispatches.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	h.mux.ServeHTTP(w, r)
}

func only(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method+", OPTIONS")
			writeJSON(w, http.StatusMethodNotAllowed, response{Message: "Method not allowed"})
			return
		}
		next(w, r)
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, response{Message: "Not found"})
}

func (h *Handler) rooms(w http.ResponseWriter, r *http.Request) {
	l, err := h.booker.Rooms(r.Context())
	if err != nil {
		h.internalError(w, "loading rooms", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: l})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.booker.Stats(r.Context())
	if err != nil {
		h.internalError(w, "loading stats", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Stats: &s})
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var body bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NumOfRooms == nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Request body must contain an integer numOfRooms"})
		return
	}

	b, err := h.booker.Book(r.Context(), hotel.Request{NumOfRooms: *body.NumOfRooms, Requester: requester(r)})
	if err != nil {
		var allocErr *hotel.AllocationError
		if errors.As(err, &allocErr) {
			writeJSON(w, http.StatusBadRequest, response{Message: rejectionMessage(allocErr)})
			return
		}
		h.internalError(w, "booking rooms", err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: b.Message,
		Data:    b.Layout,
		Booking: &bookingBody{
			ID:        b.ID.String(),
			Strategy:  string(b.Selection.Strategy),
			Cost:      b.Selection.Cost,
			Rooms:     b.Selection.Rooms,
			Truncated: b.Selection.Truncated,
		},
	})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	l, err := h.booker.Reset(r.Context())
	if err != nil {
		h.internalError(w, "resetting bookings", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "All bookings have been reset", Data: l})
}

func (h *Handler) random(w http.ResponseWriter, r *http.Request) {
	l, booked, err := h.booker.RandomFill(r.Context())
	if err != nil {
		h.internalError(w, "random booking", err)
		return
	}
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: fmt.Sprintf("Randomly booked %d rooms", booked),
		Data:    l,
	})
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, response{Message: "Internal server error"})
}

func rejectionMessage(e *hotel.AllocationError) string {
	switch {
	case errors.Is(e, hotel.ErrInvalidRequest):
		return fmt.Sprintf("Number of rooms must be between %d and %d", hotel.MinRooms, hotel.MaxRooms)
	case errors.Is(e, hotel.ErrInsufficientRooms):
		return fmt.Sprintf("Only %d rooms are available", e.Available)
	default:
		return "Unable to book rooms"
	}
}

// requester identifies the client: the first X-Forwarded-For hop, else the
// remote host, else "unknown".
func requester(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
