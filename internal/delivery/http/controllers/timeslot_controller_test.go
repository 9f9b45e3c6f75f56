package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"openmic/internal/delivery/http/helpers"
	"openmic/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeslotController_ListByEvent(t *testing.T) {
	slot := &domain.Timeslot{ID: testSlotID, EventID: testEventID, Name: "Slot 1", MaxPerformers: 1, IsAvailable: true}
	fake := &fakeTimeslotService{slots: []*domain.TimeslotAvailability{{Timeslot: slot, CurrentSignups: 1, SpotsRemaining: 0}}}
	ctrl := NewTimeslotController(testLogger, fake)
	rr := httptest.NewRecorder()

	ctrl.ListByEvent(rr, newRequest(http.MethodGet, "/timeslots/event/"+testEventID, "", "", map[string]string{"eventID": testEventID}))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []map[string]any
	decodeEnvelope(t, rr, &got)
	require.Len(t, got, 1)
	assert.Equal(t, testSlotID, got[0]["id"])
	assert.EqualValues(t, 1, got[0]["current_signups"])
	assert.EqualValues(t, 0, got[0]["spots_remaining"])
}

func TestTimeslotController_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantAvailable  bool
		wantSortOrder  int
		wantBodySubstr string
	}{
		{
			name:          "defaults to available and appended",
			body:          fmt.Sprintf(`{"event_id":%q,"start_time":"18:00","end_time":"18:10"}`, testEventID),
			wantStatus:    http.StatusCreated,
			wantAvailable: true,
			wantSortOrder: domain.AppendSortOrder,
		},
		{
			name:          "explicitly unavailable",
			body:          fmt.Sprintf(`{"event_id":%q,"start_time":"18:00","end_time":"18:10","is_available":false,"sort_order":0}`, testEventID),
			wantStatus:    http.StatusCreated,
			wantAvailable: false,
			wantSortOrder: 0,
		},
		{
			name:           "negative sort order",
			body:           fmt.Sprintf(`{"event_id":%q,"start_time":"18:00","end_time":"18:10","sort_order":-1}`, testEventID),
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "sort_order",
		},
		{
			name:           "missing end time",
			body:           fmt.Sprintf(`{"event_id":%q,"start_time":"18:00"}`, testEventID),
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "end_time is required",
		},
		{
			name:       "outside event",
			body:       fmt.Sprintf(`{"event_id":%q,"start_time":"17:00","end_time":"17:10"}`, testEventID),
			fakeErr:    domain.ErrTimeslotOutsideEvent,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTimeslotService{err: tt.fakeErr}
			ctrl := NewTimeslotController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.Create(rr, newRequest(http.MethodPost, "/timeslots", tt.body, testUserID, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				require.NotNil(t, fake.lastCreate)
				assert.Equal(t, tt.wantAvailable, fake.lastCreate.IsAvailable)
				assert.Equal(t, tt.wantSortOrder, fake.lastCreate.SortOrder)
				assert.Equal(t, mustClock(t, "18:00"), fake.lastCreate.StartTime)
				return
			}
			envelope := decodeEnvelope(t, rr, nil)
			assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
		})
	}
}

func TestTimeslotController_Generate(t *testing.T) {
	body := fmt.Sprintf(`{"event_id":%q,"duration_minutes":10,"name_prefix":"Act"}`, testEventID)

	tests := []struct {
		name       string
		regenerate bool
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{name: "generate", wantStatus: http.StatusCreated},
		{name: "regenerate", regenerate: true, wantStatus: http.StatusOK},
		{name: "already generated", fakeErr: domain.ErrTimeslotsExist, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeConflict},
		{name: "duration too long", fakeErr: domain.ErrDurationTooLong, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "event gone", regenerate: true, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTimeslotService{err: tt.fakeErr, generated: []*domain.Timeslot{{Name: "Act 1"}}}
			ctrl := NewTimeslotController(testLogger, fake)
			rr := httptest.NewRecorder()
			req := newRequest(http.MethodPost, "/timeslots/generate", body, testUserID, nil)

			if tt.regenerate {
				ctrl.Regenerate(rr, req)
			} else {
				ctrl.Generate(rr, req)
			}

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.regenerate, fake.regenerated)
			assert.Equal(t, domain.GenerateTimeslotsRequest{EventID: testEventID, DurationMinutes: 10, NamePrefix: "Act"}, fake.lastGenerate)
			if tt.wantCode != "" {
				envelope := decodeEnvelope(t, rr, nil)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}

	t.Run("negative duration", func(t *testing.T) {
		fake := &fakeTimeslotService{}
		ctrl := NewTimeslotController(testLogger, fake)
		rr := httptest.NewRecorder()

		ctrl.Generate(rr, newRequest(http.MethodPost, "/timeslots/generate", fmt.Sprintf(`{"event_id":%q,"duration_minutes":-5}`, testEventID), testUserID, nil))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, fake.lastGenerate.EventID, "service must not be called")
	})
}

func TestTimeslotController_UpdateAndDelete(t *testing.T) {
	fake := &fakeTimeslotService{}
	ctrl := NewTimeslotController(testLogger, fake)
	path := map[string]string{"id": testSlotID}

	rr := httptest.NewRecorder()
	ctrl.Update(rr, newRequest(http.MethodPut, "/timeslots/"+testSlotID, `{"is_available":false,"sort_order":3}`, testUserID, path))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, fake.lastPatch.IsAvailable)
	assert.False(t, *fake.lastPatch.IsAvailable)
	require.NotNil(t, fake.lastPatch.SortOrder)
	assert.Equal(t, 3, *fake.lastPatch.SortOrder)
	assert.Nil(t, fake.lastPatch.StartTime)

	rr = httptest.NewRecorder()
	ctrl.Delete(rr, newRequest(http.MethodDelete, "/timeslots/"+testSlotID, "", testUserID, path))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, testSlotID, fake.lastDeleted)

	rr = httptest.NewRecorder()
	ctrl.Delete(rr, newRequest(http.MethodDelete, "/timeslots/abc", "", testUserID, map[string]string{"id": "abc"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
