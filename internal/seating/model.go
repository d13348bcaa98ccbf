package seating

import (
	"errors"
	"strings"
)

const maxIdentifierLength = 190

var (
	// ErrNameRequired indicates the lookup input was empty after trimming.
	ErrNameRequired = errors.New("seating: attendee name required")
	// ErrSeatNotFound indicates no seat matched the requested attendee name.
	ErrSeatNotFound = errors.New("seating: seat not found")
	// ErrInvalidTableID indicates a table identifier is empty or exceeds storage bounds.
	ErrInvalidTableID = errors.New("seating: invalid table id")
)

// Seat is a single numbered position at a table, optionally occupied by a
// named attendee. SeatNumber stays dense 1..N within its table.
type Seat struct {
	ID           string  `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	TableID      string  `gorm:"column:table_id;size:190;not null;index:idx_seats_table" json:"-"`
	SeatNumber   int     `gorm:"column:seat_number;not null" json:"seatNumber"`
	AttendeeName *string `gorm:"column:attendee_name;size:190" json:"attendeeName"`
}

// TableName provides the explicit table binding for GORM.
func (Seat) TableName() string {
	return "banquet_seats"
}

// Table is a named group of seats anchored at (X, Y) in canvas-local pixels.
type Table struct {
	ID    string  `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Name  string  `gorm:"column:name;size:190;not null" json:"name"`
	X     float64 `gorm:"column:x;not null" json:"x"`
	Y     float64 `gorm:"column:y;not null" json:"y"`
	Seats []Seat  `gorm:"foreignKey:TableID;references:ID" json:"seats"`
}

// TableName provides the explicit table binding for GORM.
func (Table) TableName() string {
	return "banquet_tables"
}

// SeatReference locates a found seat for the lookup flow.
type SeatReference struct {
	TableID    string `json:"tableId"`
	SeatID     string `json:"seatId"`
	TableName  string `json:"tableName"`
	SeatNumber int    `json:"seatNumber"`
}

// ValidateTableID checks identifier bounds before persistence.
func ValidateTableID(rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", ErrInvalidTableID
	}
	if len(trimmed) > maxIdentifierLength {
		return "", ErrInvalidTableID
	}
	return trimmed, nil
}
