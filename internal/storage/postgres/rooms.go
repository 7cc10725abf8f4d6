package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hotel/internal/hotel"
	"github.com/cory-johannsen/hotel/internal/storage"
)

// RoomRepository persists the room grid in the rooms table, one row per room.
type RoomRepository struct {
	db   *pgxpool.Pool
	seed *hotel.Layout
}

var _ storage.Store = (*RoomRepository)(nil)

// NewRoomRepository creates a RoomRepository backed by the given pool. An
// empty table is populated from seed on first Load.
//
// Precondition: db must be a valid, open connection pool; seed must be non-nil.
func NewRoomRepository(db *pgxpool.Pool, seed *hotel.Layout) *RoomRepository {
	return &RoomRepository{db: db, seed: seed.Clone()}
}

// Load reads every room ordered by floor and number.
//
// Postcondition: Returns a layout with the seed's shape, or
// storage.ErrShapeMismatch if the table holds a different building.
func (r *RoomRepository) Load(ctx context.Context) (*hotel.Layout, error) {
	rows, err := r.db.Query(ctx,
		`SELECT floor, number, occupied, booked_by FROM rooms ORDER BY floor, number`)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var floors [][]hotel.Room
	for rows.Next() {
		var (
			room     hotel.Room
			bookedBy *string
		)
		if err := rows.Scan(&room.Floor, &room.Number, &room.Occupied, &bookedBy); err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		if bookedBy != nil {
			room.BookedBy = *bookedBy
		}
		if room.Floor < 0 || room.Floor > len(floors) {
			return nil, fmt.Errorf("loading rooms: floor %d out of sequence: %w", room.Floor, storage.ErrShapeMismatch)
		}
		if room.Floor == len(floors) {
			floors = append(floors, nil)
		}
		floors[room.Floor] = append(floors[room.Floor], room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rooms: %w", err)
	}

	if len(floors) == 0 {
		if err := r.insertSeed(ctx); err != nil {
			return nil, err
		}
		return r.seed.Clone(), nil
	}

	l := &hotel.Layout{Floors: floors}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("loading rooms: %v: %w", err, storage.ErrShapeMismatch)
	}
	if !r.seed.SameShape(l) {
		return nil, fmt.Errorf("loading rooms: %w", storage.ErrShapeMismatch)
	}
	return l, nil
}

// Save upserts every room of l in a single transaction.
//
// Precondition: l has the seed's shape.
func (r *RoomRepository) Save(ctx context.Context, l *hotel.Layout) error {
	if !r.seed.SameShape(l) {
		return fmt.Errorf("saving rooms: %w", storage.ErrShapeMismatch)
	}
	return r.writeAll(ctx, l)
}

func (r *RoomRepository) insertSeed(ctx context.Context) error {
	if err := r.writeAll(ctx, r.seed); err != nil {
		return fmt.Errorf("seeding rooms: %w", err)
	}
	return nil
}

func (r *RoomRepository) writeAll(ctx context.Context, l *hotel.Layout) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for _, floor := range l.Floors {
		for _, room := range floor {
			var bookedBy *string
			if room.BookedBy != "" {
				b := room.BookedBy
				bookedBy = &b
			}
			batch.Queue(
				`INSERT INTO rooms (floor, number, occupied, booked_by)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (floor, number) DO UPDATE
				 SET occupied = EXCLUDED.occupied, booked_by = EXCLUDED.booked_by, updated_at = NOW()`,
				room.Floor, room.Number, room.Occupied, bookedBy,
			)
		}
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting rooms: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing rooms: %w", err)
	}
	return nil
}
