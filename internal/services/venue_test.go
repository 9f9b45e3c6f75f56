package services

import (
	"context"
	"testing"
	"time"

	"openmic/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenueService(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVenueRepo()
	svc := NewVenueService(repo, time.Second)

	v := &domain.Venue{Name: " The Cellar ", City: "Austin", Email: "Booking@Cellar.test", Capacity: intPtr(80)}
	require.NoError(t, svc.CreateVenue(ctx, v))
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "The Cellar", v.Name)
	assert.Equal(t, "booking@cellar.test", v.Email)
	assert.True(t, v.IsActive)

	got, err := svc.UpdateVenue(ctx, v.ID, domain.VenuePatch{City: strPtr("Dallas"), Capacity: intPtr(120)})
	require.NoError(t, err)
	assert.Equal(t, "Dallas", got.City)
	assert.Equal(t, 120, *got.Capacity)

	list, err := svc.ListVenues(ctx, domain.VenueFilter{City: " dallas "})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteVenue(ctx, v.ID))
	_, err = svc.GetVenue(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err = svc.ListVenues(ctx, domain.VenueFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.ListVenues(ctx, domain.VenueFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestVenueService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewVenueService(newFakeVenueRepo(), time.Second)

	tests := []struct {
		name  string
		venue *domain.Venue
	}{
		{name: "missing name", venue: &domain.Venue{Name: "  "}},
		{name: "zero capacity", venue: &domain.Venue{Name: "A", Capacity: intPtr(0)}},
		{name: "bad email", venue: &domain.Venue{Name: "A", Email: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.CreateVenue(ctx, tt.venue), domain.ErrInvalidInput)
		})
	}
}
