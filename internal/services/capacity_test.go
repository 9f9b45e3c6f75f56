package services

import (
	"testing"

	"openmic/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAvailability(t *testing.T) {
	slots := []*domain.Timeslot{
		{ID: "a", MaxPerformers: 1},
		{ID: "b", MaxPerformers: 1},
		{ID: "c", MaxPerformers: 0},
	}
	out := computeAvailability(slots, map[string]int{"a": 1, "c": 3, "zzz": 9})
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].CurrentSignups)
	assert.Equal(t, 0, out[0].SpotsRemaining)
	assert.Equal(t, 0, out[1].CurrentSignups)
	assert.Equal(t, 1, out[1].SpotsRemaining)
	// counts above the cap never go negative
	assert.Equal(t, 0, out[2].SpotsRemaining)
}

func TestEventCapacity(t *testing.T) {
	tests := []struct {
		name          string
		max           *int
		counts        map[string]int
		wantCurrent   int
		wantRemaining *int
		wantFull      bool
	}{
		{name: "unlimited", counts: map[string]int{"a": 2}, wantCurrent: 2},
		{name: "room left", max: intPtr(5), counts: map[string]int{"a": 1, "b": 1}, wantCurrent: 2, wantRemaining: intPtr(3)},
		{name: "full", max: intPtr(2), counts: map[string]int{"a": 1, "b": 1}, wantCurrent: 2, wantRemaining: intPtr(0), wantFull: true},
		{name: "over cap", max: intPtr(1), counts: map[string]int{"a": 3}, wantCurrent: 3, wantRemaining: intPtr(0), wantFull: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := eventCapacity(&domain.Event{MaxAttendees: tt.max}, tt.counts)
			assert.Equal(t, tt.wantCurrent, c.CurrentSignups)
			assert.Equal(t, tt.max == nil, c.Unlimited)
			assert.Equal(t, tt.wantRemaining, c.SpotsRemaining)
			assert.Equal(t, tt.wantFull, c.Full())
		})
	}
}
