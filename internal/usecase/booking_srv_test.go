package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/internal/dto/request"
	"screening-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *utils.Config {
	return &utils.Config{
		Booking: utils.BookingConfig{
			ReferencePrefix:   "ROSE",
			ReferenceAttempts: 5,
		},
		OTP: utils.OTPConfig{
			ExpiryMinutes: 10,
			Length:        6,
			MaxAttempts:   3,
		},
		Session: utils.SessionConfig{
			ExpiryHours: 24,
		},
	}
}

func newTestBookingService(store *fakeStore, sms *recordingSender) *bookingService {
	svc := NewBookingService(store.repos(), sms, testConfig(), zap.NewNop())
	return svc.(*bookingService)
}

func seedParticipant(store *fakeStore, verified bool) *entity.Participant {
	p := &entity.Participant{
		Base:          entity.Base{ID: uuid.New()},
		Name:          "Aminah",
		PhoneNumber:   "+6012" + uuid.NewString()[:7],
		MyKadID:       uuid.NewString()[:12],
		PhoneVerified: verified,
	}
	store.addParticipant(p)
	return p
}

func seedEvent(store *fakeStore, totalSlots int, status entity.EventStatus) *entity.Event {
	e := &entity.Event{
		Base:           entity.Base{ID: uuid.New()},
		Name:           "Community Health Screening",
		EventDate:      time.Now().AddDate(0, 0, 14),
		EventTime:      "09:00",
		Address:        "Dewan Komuniti Taman Melati",
		TotalSlots:     totalSlots,
		AvailableSlots: totalSlots,
		Status:         status,
		CreatedBy:      uuid.New(),
	}
	store.addEvent(e)
	return e
}

func TestBookConfirmsAndDecrementsSlot(t *testing.T) {
	store := newFakeStore()
	sms := newRecordingSender()
	svc := newTestBookingService(store, sms)

	participant := seedParticipant(store, true)
	event := seedEvent(store, 10, entity.EventStatusPublished)

	booking, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, string(entity.BookingStatusConfirmed), booking.Status)
	assert.Regexp(t, `^ROSE-[A-Z0-9]{6}$`, booking.Reference)
	assert.Equal(t, 9, store.availableSlots(event.ID))
	require.NotNil(t, booking.Event)
	assert.Equal(t, event.ID.String(), booking.Event.ID)
}

func TestBookLastSlotRace(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	event := seedEvent(store, 1, entity.EventStatusPublished)
	first := seedParticipant(store, true)
	second := seedParticipant(store, true)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, p := range []*entity.Participant{first, second} {
		wg.Add(1)
		go func(participantID string) {
			defer wg.Done()
			_, err := svc.Book(context.Background(), participantID,
				&request.CreateBookingRequest{EventID: event.ID.String()})
			errs <- err
		}(p.ID.String())
	}
	wg.Wait()
	close(errs)

	var confirmed, soldOut int
	for err := range errs {
		switch {
		case err == nil:
			confirmed++
		case assert.ErrorIs(t, err, repository.ErrSoldOut):
			soldOut++
		}
	}

	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 1, soldOut)
	assert.Equal(t, 0, store.availableSlots(event.ID))
}

func TestBookNeverOversellsUnderContention(t *testing.T) {
	const totalSlots = 5
	const contenders = 20

	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())
	event := seedEvent(store, totalSlots, entity.EventStatusPublished)

	participants := make([]*entity.Participant, contenders)
	for i := range participants {
		participants[i] = seedParticipant(store, true)
	}

	errs := make(chan error, contenders)
	var wg sync.WaitGroup
	for _, p := range participants {
		wg.Add(1)
		go func(participantID string) {
			defer wg.Done()
			_, err := svc.Book(context.Background(), participantID,
				&request.CreateBookingRequest{EventID: event.ID.String()})
			errs <- err
		}(p.ID.String())
	}
	wg.Wait()
	close(errs)

	var confirmed int
	for err := range errs {
		if err == nil {
			confirmed++
		} else {
			require.ErrorIs(t, err, repository.ErrSoldOut)
		}
	}

	assert.Equal(t, totalSlots, confirmed)
	assert.Equal(t, 0, store.availableSlots(event.ID))
	assert.Equal(t, totalSlots, store.activeBookings(event.ID))
}

func TestBookRejectsDuplicateActiveBooking(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)
	event := seedEvent(store, 10, entity.EventStatusPublished)
	req := &request.CreateBookingRequest{EventID: event.ID.String()}

	_, err := svc.Book(context.Background(), participant.ID.String(), req)
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), participant.ID.String(), req)
	assert.ErrorIs(t, err, repository.ErrDuplicateBooking)

	// The failed attempt must not eat a second slot.
	assert.Equal(t, 9, store.availableSlots(event.ID))
}

func TestRebookAfterCancel(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)
	event := seedEvent(store, 1, entity.EventStatusPublished)
	req := &request.CreateBookingRequest{EventID: event.ID.String()}

	first, err := svc.Book(context.Background(), participant.ID.String(), req)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), participant.ID.String(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Reference, cancelled.Reference)
	assert.Equal(t, 1, cancelled.SlotsReleased)
	assert.Equal(t, 1, store.availableSlots(event.ID))

	second, err := svc.Book(context.Background(), participant.ID.String(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, store.availableSlots(event.ID))
}

func TestCancelTwiceReturnsAlreadyCancelled(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)
	event := seedEvent(store, 3, entity.EventStatusPublished)

	booking, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), participant.ID.String(), booking.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), participant.ID.String(), booking.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)

	// The second cancel must not release a slot again.
	assert.Equal(t, 3, store.availableSlots(event.ID))
}

func TestCancelSomeoneElsesBookingIsForbidden(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	owner := seedParticipant(store, true)
	intruder := seedParticipant(store, true)
	event := seedEvent(store, 3, entity.EventStatusPublished)

	booking, err := svc.Book(context.Background(), owner.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), intruder.ID.String(), booking.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Equal(t, 2, store.availableSlots(event.ID))
}

func TestCancelAfterCheckInRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)
	event := seedEvent(store, 3, entity.EventStatusPublished)

	booking, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	checkedIn, err := svc.CheckIn(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCheckedIn), checkedIn.Status)

	_, err = svc.Cancel(context.Background(), participant.ID.String(), booking.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyCheckedIn)
}

func TestCheckInTwiceRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)
	event := seedEvent(store, 3, entity.EventStatusPublished)

	booking, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), booking.ID)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), booking.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyCheckedIn)
}

func TestBookRequiresVerifiedPhone(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, false)
	event := seedEvent(store, 3, entity.EventStatusPublished)

	_, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	assert.ErrorIs(t, err, ErrPhoneNotVerified)
	assert.Equal(t, 3, store.availableSlots(event.ID))
}

func TestBookRejectsDraftEvent(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)
	event := seedEvent(store, 3, entity.EventStatusDraft)

	_, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	assert.ErrorIs(t, err, ErrEventNotOpen)
}

func TestBookRetriesReferenceCollision(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	event := seedEvent(store, 5, entity.EventStatusPublished)
	first := seedParticipant(store, true)
	second := seedParticipant(store, true)

	// Deterministic generator: the first value collides with the
	// booking seeded below, the second is fresh.
	refs := []string{"ROSE-AAAAAA", "ROSE-AAAAAA", "ROSE-BBBBBB"}
	calls := 0
	svc.newReference = func() string {
		ref := refs[calls%len(refs)]
		calls++
		return ref
	}

	_, err := svc.Book(context.Background(), first.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	booking, err := svc.Book(context.Background(), second.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "ROSE-BBBBBB", booking.Reference)
	assert.Equal(t, 3, store.availableSlots(event.ID))
}

func TestBookGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	event := seedEvent(store, 5, entity.EventStatusPublished)
	first := seedParticipant(store, true)
	second := seedParticipant(store, true)

	attempts := 0
	svc.newReference = func() string {
		attempts++
		return "ROSE-SAME00"
	}

	_, err := svc.Book(context.Background(), first.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	attempts = 0
	_, err = svc.Book(context.Background(), second.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	assert.ErrorIs(t, err, repository.ErrReferenceExhausted)
	assert.Equal(t, 5, attempts)

	// Every failed attempt rolled its reservation back.
	assert.Equal(t, 4, store.availableSlots(event.ID))
	assert.Equal(t, 1, store.activeBookings(event.ID))
}

func TestBookSendsConfirmationSMSAfterSuccess(t *testing.T) {
	store := newFakeStore()
	sms := newRecordingSender()
	svc := newTestBookingService(store, sms)

	participant := seedParticipant(store, true)
	event := seedEvent(store, 1, entity.EventStatusPublished)

	booking, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	msg, ok := sms.waitForSMS(2 * time.Second)
	require.True(t, ok, "expected confirmation SMS")
	assert.Equal(t, participant.PhoneNumber, msg.Phone)
	assert.Contains(t, msg.Message, booking.Reference)
	assert.Contains(t, msg.Message, event.Name)
}

func TestBookSendsNoSMSOnFailure(t *testing.T) {
	store := newFakeStore()
	sms := newRecordingSender()
	svc := newTestBookingService(store, sms)

	participant := seedParticipant(store, true)
	event := seedEvent(store, 10, entity.EventStatusDraft)

	_, err := svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: event.ID.String()})
	require.Error(t, err)

	_, ok := sms.waitForSMS(100 * time.Millisecond)
	assert.False(t, ok, "no SMS expected for a rejected booking")
	assert.Equal(t, 0, sms.count())
}

func TestListByParticipantIncludesEventDetails(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)
	events := []*entity.Event{
		seedEvent(store, 3, entity.EventStatusPublished),
		seedEvent(store, 3, entity.EventStatusPublished),
	}

	for _, event := range events {
		_, err := svc.Book(context.Background(), participant.ID.String(),
			&request.CreateBookingRequest{EventID: event.ID.String()})
		require.NoError(t, err)
	}

	bookings, err := svc.ListByParticipant(context.Background(), participant.ID.String())
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		require.NotNil(t, b.Event)
	}
}

func TestBookInvalidIDsRejected(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	participant := seedParticipant(store, true)

	_, err := svc.Book(context.Background(), "not-a-uuid",
		&request.CreateBookingRequest{EventID: uuid.NewString()})
	assert.Error(t, err)

	_, err = svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: "not-a-uuid"})
	assert.Error(t, err)

	_, err = svc.Book(context.Background(), participant.ID.String(),
		&request.CreateBookingRequest{EventID: uuid.NewString()})
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestUniqueReferencesAcrossManyBookings(t *testing.T) {
	store := newFakeStore()
	svc := newTestBookingService(store, newRecordingSender())

	event := seedEvent(store, 50, entity.EventStatusPublished)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		participant := seedParticipant(store, true)
		booking, err := svc.Book(context.Background(), participant.ID.String(),
			&request.CreateBookingRequest{EventID: event.ID.String()})
		require.NoError(t, err)
		require.False(t, seen[booking.Reference], fmt.Sprintf("duplicate reference %s", booking.Reference))
		seen[booking.Reference] = true
	}
}
