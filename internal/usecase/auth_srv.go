package usecase

import (
	"context"
	"fmt"
	"time"

	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/internal/dto/request"
	"screening-booking/internal/dto/response"
	"screening-booking/internal/notification"
	"screening-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	RegisterAdmin(ctx context.Context, req *request.RegisterAdminRequest) (*response.AdminAuthResponse, error)
	AdminLogin(ctx context.Context, req *request.AdminLoginRequest) (*response.AdminAuthResponse, error)
	Logout(ctx context.Context, token string) error

	RegisterParticipant(ctx context.Context, req *request.RegisterParticipantRequest) (*response.OTPSentResponse, error)
	RequestOTP(ctx context.Context, req *request.RequestOTPRequest) (*response.OTPSentResponse, error)
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.ParticipantAuthResponse, error)
	Profile(ctx context.Context, participantID string) (*response.ParticipantResponse, error)
}

type authService struct {
	repo   *repository.Repository
	sms    notification.Sender
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	sms notification.Sender,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		sms:    sms,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

// ==================== ADMIN ====================

// RegisterAdmin creates an organiser account and opens its first
// session. Email uniqueness is enforced twice: a lookup here for a
// clean error, and the unique index underneath for races.
func (s *authService) RegisterAdmin(ctx context.Context, req *request.RegisterAdminRequest) (*response.AdminAuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Admin registration validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	existing, err := s.repo.Admin.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, repository.ErrEmailTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &entity.Admin{
		Base:         entity.Base{ID: uuid.New()},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, admin.ID, entity.SessionRoleAdmin)
	if err != nil {
		return nil, err
	}

	s.log.Info("Admin registered",
		zap.String("admin_id", admin.ID.String()),
		zap.String("email", admin.Email),
	)

	return &response.AdminAuthResponse{
		ID:      admin.ID.String(),
		Name:    admin.Name,
		Email:   admin.Email,
		Session: sessionToResponse(session),
	}, nil
}

func (s *authService) AdminLogin(ctx context.Context, req *request.AdminLoginRequest) (*response.AdminAuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Admin login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	admin, err := s.repo.Admin.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	// Same error for unknown email and wrong password.
	if admin == nil || !utils.CheckPasswordHash(req.Password, admin.PasswordHash) {
		s.log.Warn("Admin login rejected", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, admin.ID, entity.SessionRoleAdmin)
	if err != nil {
		return nil, err
	}

	s.log.Info("Admin logged in", zap.String("admin_id", admin.ID.String()))

	return &response.AdminAuthResponse{
		ID:      admin.ID.String(),
		Name:    admin.Name,
		Email:   admin.Email,
		Session: sessionToResponse(session),
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.repo.Session.Revoke(ctx, token); err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err))
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ==================== PARTICIPANT ====================

// RegisterParticipant stores an unverified participant and sends the
// first verification code. The account cannot book until the phone
// number is confirmed via VerifyOTP.
func (s *authService) RegisterParticipant(ctx context.Context, req *request.RegisterParticipantRequest) (*response.OTPSentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Participant registration validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	existing, err := s.repo.Participant.FindByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, repository.ErrPhoneTaken
	}

	existing, err = s.repo.Participant.FindByMyKad(ctx, req.MyKadID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, repository.ErrMyKadTaken
	}

	participant := &entity.Participant{
		Base:        entity.Base{ID: uuid.New()},
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		MyKadID:     req.MyKadID,
	}

	if err := s.repo.Participant.Create(ctx, participant); err != nil {
		return nil, err
	}

	s.log.Info("Participant registered",
		zap.String("participant_id", participant.ID.String()),
		zap.String("phone", participant.PhoneNumber),
	)

	return s.issueOTP(ctx, req.PhoneNumber, entity.OTPPurposeRegistration)
}

func (s *authService) RequestOTP(ctx context.Context, req *request.RequestOTPRequest) (*response.OTPSentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("OTP request validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	purpose := entity.OTPPurpose(req.Purpose)

	// Codes for anything but first-time registration require a known
	// participant, so an attacker cannot probe phone numbers into
	// receiving SMS traffic.
	if purpose != entity.OTPPurposeRegistration {
		participant, err := s.repo.Participant.FindByPhone(ctx, req.PhoneNumber)
		if err != nil {
			return nil, err
		}
		if participant == nil {
			return nil, repository.ErrParticipantNotFound
		}
	}

	return s.issueOTP(ctx, req.PhoneNumber, purpose)
}

// VerifyOTP checks the submitted code against the latest active one.
// A wrong code burns an attempt; after MaxAttempts the code is dead
// and a new one must be requested. Success opens a session and, for
// registration codes, marks the phone verified.
func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.ParticipantAuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("OTP verification validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	purpose := entity.OTPPurpose(req.Purpose)

	otp, err := s.repo.OTP.FindLatestActive(ctx, req.PhoneNumber, purpose)
	if err != nil {
		return nil, err
	}

	if otp.Attempts >= s.config.OTP.MaxAttempts {
		s.log.Warn("OTP attempt limit reached",
			zap.String("phone", req.PhoneNumber),
			zap.String("purpose", req.Purpose),
		)
		return nil, ErrTooManyAttempts
	}

	if otp.Code != req.Code {
		if err := s.repo.OTP.IncrementAttempts(ctx, otp.ID); err != nil {
			s.log.Error("Failed to record OTP attempt", zap.Error(err))
		}
		return nil, ErrInvalidOTP
	}

	if err := s.repo.OTP.MarkVerified(ctx, otp.ID); err != nil {
		return nil, err
	}

	participant, err := s.repo.Participant.FindByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, repository.ErrParticipantNotFound
	}

	if !participant.PhoneVerified {
		if err := s.repo.Participant.MarkPhoneVerified(ctx, participant.ID); err != nil {
			return nil, err
		}
		participant.PhoneVerified = true
	}

	session, err := s.createSession(ctx, participant.ID, entity.SessionRoleParticipant)
	if err != nil {
		return nil, err
	}

	s.log.Info("Participant authenticated",
		zap.String("participant_id", participant.ID.String()),
		zap.String("purpose", req.Purpose),
	)

	return &response.ParticipantAuthResponse{
		Participant: response.ParticipantToResponse(participant),
		Session:     sessionToResponse(session),
	}, nil
}

func (s *authService) Profile(ctx context.Context, participantID string) (*response.ParticipantResponse, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID format %s: %w", participantID, err)
	}

	participant, err := s.repo.Participant.FindByID(ctx, participantUUID)
	if err != nil {
		return nil, err
	}

	resp := response.ParticipantToResponse(participant)
	return &resp, nil
}

// ==================== HELPERS ====================

func (s *authService) issueOTP(ctx context.Context, phone string, purpose entity.OTPPurpose) (*response.OTPSentResponse, error) {
	otp := &entity.OTP{
		BaseSimple:  entity.BaseSimple{ID: uuid.New()},
		PhoneNumber: phone,
		Code:        utils.GenerateOTP(s.config.OTP.Length),
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute),
	}

	if err := s.repo.OTP.Create(ctx, otp); err != nil {
		return nil, err
	}

	msg := notification.OTPMessage(otp.Code, s.config.OTP.ExpiryMinutes)
	if err := s.sms.Send(ctx, phone, msg); err != nil {
		// The code is stored; the participant can retry delivery by
		// requesting a new one.
		s.log.Error("Failed to send OTP SMS", zap.Error(err), zap.String("phone", phone))
	}

	return &response.OTPSentResponse{
		PhoneNumber:   phone,
		Purpose:       string(purpose),
		ExpiryMinutes: s.config.OTP.ExpiryMinutes,
	}, nil
}

func (s *authService) createSession(ctx context.Context, subjectID uuid.UUID, role entity.SessionRole) (*entity.Session, error) {
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New()},
		Token:      utils.GenerateSessionToken().String(),
		SubjectID:  subjectID,
		Role:       role,
		ExpiresAt:  time.Now().Add(time.Duration(s.config.Session.ExpiryHours) * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func sessionToResponse(session *entity.Session) response.SessionResponse {
	return response.SessionResponse{
		Token:     session.Token,
		Role:      string(session.Role),
		ExpiresAt: session.ExpiresAt,
	}
}
