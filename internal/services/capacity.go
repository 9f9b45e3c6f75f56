package services

import "openmic/internal/domain"

// computeAvailability pairs each slot with its occupancy. counts maps timeslot
// IDs to signup counts; missing IDs have zero signups.
func computeAvailability(slots []*domain.Timeslot, counts map[string]int) []*domain.TimeslotAvailability {
	out := make([]*domain.TimeslotAvailability, 0, len(slots))
	for _, slot := range slots {
		current := counts[slot.ID]
		out = append(out, &domain.TimeslotAvailability{
			Timeslot:       slot,
			CurrentSignups: current,
			SpotsRemaining: max(0, slotCap(slot)-current),
		})
	}
	return out
}

// eventCapacity sums signups across the event. SpotsRemaining stays nil for
// events without max_attendees.
func eventCapacity(event *domain.Event, counts map[string]int) *domain.EventCapacity {
	total := 0
	for _, n := range counts {
		total += n
	}
	c := &domain.EventCapacity{CurrentSignups: total}
	if event.MaxAttendees == nil {
		c.Unlimited = true
		return c
	}
	limit := *event.MaxAttendees
	remaining := max(0, limit-total)
	c.MaxAttendees = &limit
	c.SpotsRemaining = &remaining
	return c
}

func slotCap(slot *domain.Timeslot) int {
	if slot.MaxPerformers < 1 {
		return domain.DefaultMaxPerformers
	}
	return slot.MaxPerformers
}
