package seating

import "strconv"

// Default layout inserted when the directory is empty, matching the floor
// plan used at the last annual meeting.

func seatRow(tablePrefix string, count int, names []string) []Seat {
	seats := make([]Seat, 0, count)
	for i := 0; i < count; i++ {
		var attendee *string
		if i < len(names) && names[i] != "" {
			name := names[i]
			attendee = &name
		}
		seats = append(seats, Seat{
			ID:           tablePrefix + "-s" + strconv.Itoa(i+1),
			SeatNumber:   i + 1,
			AttendeeName: attendee,
		})
	}
	return seats
}

// DefaultLayout returns the seed floor plan: five tables with pre-assigned
// attendees, positioned for a 1200x1200 canvas.
func DefaultLayout() []Table {
	return []Table{
		{
			ID:    "t1",
			Name:  "VIP 主桌",
			X:     300,
			Y:     50,
			Seats: seatRow("t1", 8, []string{"张总", "李总", "王董", "赵总", "孙总", "Alice", "Bob", "Charlie"}),
		},
		{
			ID:    "t2",
			Name:  "技术部 (Tech)",
			X:     100,
			Y:     350,
			Seats: seatRow("t2", 10, []string{"张三", "李四", "王五", "赵六", "Dev1", "Dev2", "Dev3", "Dev4", "Dev5", "Dev6"}),
		},
		{
			ID:    "t3",
			Name:  "市场部 (Sales)",
			X:     500,
			Y:     350,
			Seats: seatRow("t3", 10, []string{"Sarah", "Mike", "Jenny", "Tom", "Jerry", "Sales1", "Sales2", "Sales3", "Sales4", "Sales5"}),
		},
		{
			ID:    "t4",
			Name:  "运营部 (Ops)",
			X:     100,
			Y:     650,
			Seats: seatRow("t4", 10, []string{"OpsLead", "Ops2", "Ops3", "Ops4", "Ops5", "Ops6", "Ops7", "Ops8", "Ops9", "Ops10"}),
		},
		{
			ID:    "t5",
			Name:  "新人桌 (New)",
			X:     500,
			Y:     650,
			Seats: seatRow("t5", 8, []string{"Intern1", "Intern2", "Intern3", "Intern4", "Intern5", "Intern6", "Intern7", "Intern8"}),
		},
	}
}
