package seating

import "strings"

// FindSeat scans tables in list order, then seats in list order, and returns
// the first seat whose attendee name equals the trimmed input exactly.
// Matching is case sensitive with no normalization; a whitespace-only input
// fails before any search.
func FindSeat(tables []Table, rawName string) (SeatReference, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return SeatReference{}, ErrNameRequired
	}

	for _, table := range tables {
		for _, seat := range table.Seats {
			if seat.AttendeeName == nil {
				continue
			}
			if *seat.AttendeeName != name {
				continue
			}
			return SeatReference{
				TableID:    table.ID,
				SeatID:     seat.ID,
				TableName:  table.Name,
				SeatNumber: seat.SeatNumber,
			}, nil
		}
	}

	return SeatReference{}, ErrSeatNotFound
}
