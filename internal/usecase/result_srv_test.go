package usecase

import (
	"context"
	"testing"
	"time"

	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResultService(store *fakeStore, sms *recordingSender) ResultService {
	return NewResultService(store.repos(), sms, zap.NewNop())
}

func seedBooking(t *testing.T, store *fakeStore) (*entity.Participant, *entity.Event, string) {
	t.Helper()
	bookingSvc := newTestBookingService(store, newRecordingSender())
	participant := seedParticipant(store, true)
	event := seedEvent(store, 5, entity.EventStatusPublished)

	booking, err := bookingSvc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)
	return participant, event, booking.ID
}

func TestUploadResultNotifiesParticipant(t *testing.T) {
	store := newFakeStore()
	sms := newRecordingSender()
	svc := newTestResultService(store, sms)

	participant, event, bookingID := seedBooking(t, store)

	result, err := svc.Upload(context.Background(), uuid.NewString(), bookingID,
		&request.UploadResultRequest{
			Category: "follow_up_required",
			Notes:    "Elevated blood pressure, refer to Klinik Kesihatan.",
		})
	require.NoError(t, err)
	assert.Equal(t, "follow_up_required", result.Category)
	assert.False(t, result.SMSSent)

	msg, ok := sms.waitForSMS(2 * time.Second)
	require.True(t, ok, "expected result-ready SMS")
	assert.Equal(t, participant.PhoneNumber, msg.Phone)
	assert.Contains(t, msg.Message, event.Name)
	// The message must never carry the category or notes.
	assert.NotContains(t, msg.Message, "follow_up_required")
	assert.NotContains(t, msg.Message, "blood pressure")

	// The delivery flag is flipped by the notifier after sending.
	require.Eventually(t, func() bool {
		stored, err := (&fakeResultRepo{store: store}).FindByBookingID(context.Background(), uuid.MustParse(bookingID))
		return err == nil && stored.SMSSent
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUploadResultReplacesExisting(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, newRecordingSender())

	_, _, bookingID := seedBooking(t, store)
	adminID := uuid.NewString()

	_, err := svc.Upload(context.Background(), adminID, bookingID,
		&request.UploadResultRequest{Category: "normal"})
	require.NoError(t, err)

	updated, err := svc.Upload(context.Background(), adminID, bookingID,
		&request.UploadResultRequest{Category: "follow_up_required"})
	require.NoError(t, err)
	assert.Equal(t, "follow_up_required", updated.Category)

	stored, err := (&fakeResultRepo{store: store}).FindByBookingID(context.Background(), uuid.MustParse(bookingID))
	require.NoError(t, err)
	assert.Equal(t, entity.ResultCategoryFollowUp, stored.Category)
}

func TestUploadResultRejectsCancelledBooking(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, newRecordingSender())

	participant, _, bookingID := seedBooking(t, store)

	bookingSvc := newTestBookingService(store, newRecordingSender())
	_, err := bookingSvc.Cancel(context.Background(), participant.ID.String(), bookingID)
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), uuid.NewString(), bookingID,
		&request.UploadResultRequest{Category: "normal"})
	assert.ErrorIs(t, err, repository.ErrBookingCancelled)
}

func TestGetResultEnforcesOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, newRecordingSender())

	owner, _, bookingID := seedBooking(t, store)
	stranger := seedParticipant(store, true)

	_, err := svc.Upload(context.Background(), uuid.NewString(), bookingID,
		&request.UploadResultRequest{Category: "normal"})
	require.NoError(t, err)

	_, err = svc.GetForBooking(context.Background(), stranger.ID.String(), bookingID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	result, err := svc.GetForBooking(context.Background(), owner.ID.String(), bookingID)
	require.NoError(t, err)
	assert.Equal(t, "normal", result.Category)
}

func TestGetResultBeforeUploadIsNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestResultService(store, newRecordingSender())

	owner, _, bookingID := seedBooking(t, store)

	_, err := svc.GetForBooking(context.Background(), owner.ID.String(), bookingID)
	assert.ErrorIs(t, err, repository.ErrResultNotFound)
}
