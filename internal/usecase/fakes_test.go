package usecase

import (
	"context"
	"sync"
	"time"

	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for Postgres. One mutex plays the
// role of the row locks: every mutating operation runs under it from
// first check to last write, so the all-or-nothing semantics of the
// real transactions are preserved.
type fakeStore struct {
	mu           sync.Mutex
	admins       map[uuid.UUID]*entity.Admin
	events       map[uuid.UUID]*entity.Event
	bookings     map[uuid.UUID]*entity.Booking
	participants map[uuid.UUID]*entity.Participant
	results      map[uuid.UUID]*entity.TestResult
	otps         map[uuid.UUID]*entity.OTP
	sessions     map[string]*entity.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		admins:       make(map[uuid.UUID]*entity.Admin),
		events:       make(map[uuid.UUID]*entity.Event),
		bookings:     make(map[uuid.UUID]*entity.Booking),
		participants: make(map[uuid.UUID]*entity.Participant),
		results:      make(map[uuid.UUID]*entity.TestResult),
		otps:         make(map[uuid.UUID]*entity.OTP),
		sessions:     make(map[string]*entity.Session),
	}
}

func (s *fakeStore) addEvent(e *entity.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
}

func (s *fakeStore) addParticipant(p *entity.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
}

func (s *fakeStore) availableSlots(eventID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[eventID].AvailableSlots
}

func (s *fakeStore) activeBookings(eventID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, b := range s.bookings {
		if b.EventID == eventID && b.Active() {
			count++
		}
	}
	return count
}

func (s *fakeStore) repos() *repository.Repository {
	return &repository.Repository{
		Admin:       &fakeAdminRepo{store: s},
		Participant: &fakeParticipantRepo{store: s},
		Event:       &fakeEventRepo{store: s},
		Booking:     &fakeBookingRepo{store: s},
		Result:      &fakeResultRepo{store: s},
		OTP:         &fakeOTPRepo{store: s},
		Session:     &fakeSessionRepo{store: s},
	}
}

// ==================== BOOKING ====================

type fakeBookingRepo struct {
	store *fakeStore
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[booking.EventID]
	if !ok {
		return repository.ErrEventNotFound
	}

	for _, b := range s.bookings {
		if b.EventID == booking.EventID && b.ParticipantID == booking.ParticipantID && b.Active() {
			return repository.ErrDuplicateBooking
		}
	}

	for _, b := range s.bookings {
		if b.Reference == booking.Reference {
			return repository.ErrReferenceTaken
		}
	}

	if event.AvailableSlots <= 0 {
		return repository.ErrSoldOut
	}

	event.AvailableSlots--
	stored := *booking
	s.bookings[booking.ID] = &stored
	return nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, bookingID, participantID uuid.UUID) (*entity.Booking, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if booking.ParticipantID != participantID {
		return nil, repository.ErrForbidden
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, repository.ErrAlreadyCancelled
	}
	if booking.Status == entity.BookingStatusCheckedIn {
		return nil, repository.ErrAlreadyCheckedIn
	}

	event := s.events[booking.EventID]
	if event.AvailableSlots >= event.TotalSlots {
		return nil, repository.ErrInconsistentSlots
	}
	event.AvailableSlots++

	now := time.Now()
	booking.Status = entity.BookingStatusCancelled
	booking.CancelledAt = &now

	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) CheckIn(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, repository.ErrBookingCancelled
	}
	if booking.Status == entity.BookingStatusCheckedIn {
		return nil, repository.ErrAlreadyCheckedIn
	}

	booking.Status = entity.BookingStatusCheckedIn
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeBookingRepo) FindByParticipantID(ctx context.Context, participantID uuid.UUID) ([]*entity.Booking, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.Booking
	for _, b := range s.bookings {
		if b.ParticipantID == participantID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.Booking
	for _, b := range s.bookings {
		if b.EventID == eventID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ==================== EVENT ====================

type fakeEventRepo struct {
	store *fakeStore
}

func (r *fakeEventRepo) Create(ctx context.Context, event *entity.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *event
	s.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*entity.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.Event
	for _, e := range s.events {
		if publishedOnly && e.Status != entity.EventStatusPublished {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEventRepo) Count(ctx context.Context, publishedOnly bool) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, e := range s.events {
		if publishedOnly && e.Status != entity.EventStatusPublished {
			continue
		}
		total++
	}
	return total, nil
}

// Update mirrors the transactional resize: the booked count and the
// counter write happen under the same lock, so a booking cannot slip
// between them.
func (r *fakeEventRepo) Update(ctx context.Context, event *entity.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return repository.ErrEventNotFound
	}

	booked := 0
	for _, b := range s.bookings {
		if b.EventID == event.ID && b.Active() {
			booked++
		}
	}
	if event.TotalSlots < booked {
		return repository.ErrSlotsBelowBooked
	}
	event.AvailableSlots = event.TotalSlots - booked

	stored := *event
	s.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	for _, b := range s.bookings {
		if b.EventID == id {
			return repository.ErrEventHasBookings
		}
	}
	delete(s.events, id)
	return nil
}

func (r *fakeEventRepo) FindDuplicate(ctx context.Context, name string, date time.Time, address string, excludeID uuid.UUID) (*entity.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == excludeID {
			continue
		}
		if e.Name == name && e.EventDate.Equal(date) && e.Address == address {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

// ==================== ADMIN ====================

type fakeAdminRepo struct {
	store *fakeStore
}

func (r *fakeAdminRepo) Create(ctx context.Context, admin *entity.Admin) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.admins {
		if a.Email == admin.Email {
			return repository.ErrEmailTaken
		}
	}
	stored := *admin
	s.admins[admin.ID] = &stored
	return nil
}

func (r *fakeAdminRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, ok := s.admins[id]
	if !ok {
		return nil, repository.ErrAdminNotFound
	}
	copied := *admin
	return &copied, nil
}

func (r *fakeAdminRepo) FindByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.admins {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

// ==================== PARTICIPANT ====================

type fakeParticipantRepo struct {
	store *fakeStore
}

func (r *fakeParticipantRepo) Create(ctx context.Context, participant *entity.Participant) error {
	r.store.addParticipant(participant)
	return nil
}

func (r *fakeParticipantRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Participant, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[id]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	copied := *participant
	return &copied, nil
}

func (r *fakeParticipantRepo) FindByPhone(ctx context.Context, phone string) (*entity.Participant, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants {
		if p.PhoneNumber == phone {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeParticipantRepo) FindByMyKad(ctx context.Context, mykadID string) (*entity.Participant, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants {
		if p.MyKadID == mykadID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeParticipantRepo) MarkPhoneVerified(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[id]
	if !ok {
		return repository.ErrParticipantNotFound
	}
	participant.PhoneVerified = true
	return nil
}

// ==================== RESULT ====================

type fakeResultRepo struct {
	store *fakeStore
}

func (r *fakeResultRepo) Upsert(ctx context.Context, result *entity.TestResult) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.results {
		if existing.BookingID == result.BookingID {
			existing.Category = result.Category
			existing.Notes = result.Notes
			existing.FileURL = result.FileURL
			existing.UploadedBy = result.UploadedBy
			existing.UploadedAt = result.UploadedAt
			existing.SMSSent = false
			existing.SMSSentAt = nil
			*result = *existing
			return nil
		}
	}

	stored := *result
	s.results[result.ID] = &stored
	return nil
}

func (r *fakeResultRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.TestResult, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, result := range s.results {
		if result.BookingID == bookingID {
			copied := *result
			return &copied, nil
		}
	}
	return nil, repository.ErrResultNotFound
}

func (r *fakeResultRepo) MarkSMSSent(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[id]
	if !ok {
		return repository.ErrResultNotFound
	}
	now := time.Now()
	result.SMSSent = true
	result.SMSSentAt = &now
	return nil
}

// ==================== OTP ====================

type fakeOTPRepo struct {
	store *fakeStore
}

func (r *fakeOTPRepo) Create(ctx context.Context, otp *entity.OTP) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}
	stored := *otp
	s.otps[otp.ID] = &stored
	return nil
}

func (r *fakeOTPRepo) FindLatestActive(ctx context.Context, phone string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *entity.OTP
	now := time.Now()
	for _, otp := range s.otps {
		if otp.PhoneNumber != phone || otp.Purpose != purpose {
			continue
		}
		if otp.Verified || otp.ExpiresAt.Before(now) {
			continue
		}
		if latest == nil || otp.CreatedAt.After(latest.CreatedAt) {
			latest = otp
		}
	}
	if latest == nil {
		return nil, repository.ErrOTPNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeOTPRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	otp, ok := s.otps[id]
	if !ok {
		return repository.ErrOTPNotFound
	}
	otp.Attempts++
	return nil
}

func (r *fakeOTPRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	otp, ok := s.otps[id]
	if !ok {
		return repository.ErrOTPNotFound
	}
	otp.Verified = true
	return nil
}

// ==================== SESSION ====================

type fakeSessionRepo struct {
	store *fakeStore
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	s.sessions[session.Token] = &stored
	return nil
}

func (r *fakeSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok || session.RevokedAt != nil || session.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil
	}
	now := time.Now()
	session.RevokedAt = &now
	return nil
}

// ==================== SMS ====================

// recordingSender captures messages so tests can assert on delivery
// without sleeping.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentSMS
	ch   chan sentSMS
}

type sentSMS struct {
	Phone   string
	Message string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{ch: make(chan sentSMS, 16)}
}

func (s *recordingSender) Send(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	s.sent = append(s.sent, sentSMS{Phone: phone, Message: message})
	s.mu.Unlock()
	s.ch <- sentSMS{Phone: phone, Message: message}
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSender) waitForSMS(timeout time.Duration) (sentSMS, bool) {
	select {
	case msg := <-s.ch:
		return msg, true
	case <-time.After(timeout):
		return sentSMS{}, false
	}
}
