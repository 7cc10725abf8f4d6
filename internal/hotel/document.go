package hotel

import (
	"encoding/json"
	"fmt"
)

// Document is the wire and storage shape of a Layout: one array per floor,
// each room carrying its number and occupancy.
type Document [][]RoomDocument

// RoomDocument is the wire shape of a Room.
type RoomDocument struct {
	Number   int               `json:"rno" yaml:"rno"`
	Occupied OccupancyDocument `json:"occupied" yaml:"occupied"`
}

// OccupancyDocument is the wire shape of a room's booking state. BookedBy is
// null when the room is free.
type OccupancyDocument struct {
	Status   bool    `json:"status" yaml:"status"`
	BookedBy *string `json:"bookedBy" yaml:"bookedBy"`
}

// Document converts the layout to its wire shape.
func (l *Layout) Document() Document {
	doc := make(Document, len(l.Floors))
	for f, floor := range l.Floors {
		doc[f] = make([]RoomDocument, len(floor))
		for i, r := range floor {
			rd := RoomDocument{Number: r.Number}
			rd.Occupied.Status = r.Occupied
			if r.BookedBy != "" {
				bookedBy := r.BookedBy
				rd.Occupied.BookedBy = &bookedBy
			}
			doc[f][i] = rd
		}
	}
	return doc
}

// Layout converts the document back to a validated Layout.
//
// Postcondition: Returns an error when room numbers on a floor are not
// contiguous from 1.
func (d Document) Layout() (*Layout, error) {
	floors := make([][]Room, len(d))
	for f, row := range d {
		floors[f] = make([]Room, len(row))
		for i, rd := range row {
			r := Room{Floor: f, Number: rd.Number, Occupied: rd.Occupied.Status}
			if rd.Occupied.BookedBy != nil {
				r.BookedBy = *rd.Occupied.BookedBy
			}
			floors[f][i] = r
		}
	}
	l := &Layout{Floors: floors}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	return l, nil
}

// MarshalJSON encodes the layout as its Document.
func (l *Layout) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Document())
}

// UnmarshalJSON decodes a Document into the layout.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := doc.Layout()
	if err != nil {
		return err
	}
	*l = *decoded
	return nil
}
