// Package service implements the OTP and password login flows.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	auditpkg "dastyar-dashboard/internal/audit"
	auditdomain "dastyar-dashboard/internal/audit/domain"
	"dastyar-dashboard/internal/devotp"
	"dastyar-dashboard/internal/otp"
	otpdomain "dastyar-dashboard/internal/otp/domain"
	otprepo "dastyar-dashboard/internal/otp/repository"
	"dastyar-dashboard/internal/security"
	"dastyar-dashboard/internal/sms"
	userdomain "dastyar-dashboard/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to envelope messages.
var (
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrResendNotAllowed   = errors.New("code already sent; wait before requesting another")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrPushTokenRequired  = errors.New("push token is required")
)

// phonePattern matches an 11-digit Iranian mobile number with leading zero.
var phonePattern = regexp.MustCompile(`^0\d{10}$`)

// LoginResult holds the outcome of a successful OTP or password login.
type LoginResult struct {
	Token      string
	ExpiresAt  time.Time
	FirstLogin bool
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	SetFCMToken(ctx context.Context, userID, fcmToken string) error
}

// AuthService drives OTP challenges, both login paths, and push-token registration.
type AuthService struct {
	userRepo      UserRepo
	challengeRepo otprepo.Repository
	smsSender     sms.Sender
	devStore      devotp.Store
	hasher        *security.Hasher
	tokens        *security.TokenProvider
	audit         auditpkg.AuditLogger
	returnToDev   bool
	nowF          func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
// devStore may be nil unless returnToDev is set; audit may be nil.
func NewAuthService(
	userRepo UserRepo,
	challengeRepo otprepo.Repository,
	smsSender sms.Sender,
	devStore devotp.Store,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditLogger auditpkg.AuditLogger,
	returnToDev bool,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		challengeRepo: challengeRepo,
		smsSender:     smsSender,
		devStore:      devStore,
		hasher:        hasher,
		tokens:        tokens,
		audit:         auditLogger,
		returnToDev:   returnToDev,
		nowF:          func() time.Time { return time.Now().UTC() },
	}
}

// SendOtpCode generates and dispatches a login code for the phone number.
// A repeat request inside the resend cooldown is rejected. In dev mode the
// code is stored for client retrieval instead of being sent over SMS; the
// returned devCode is non-empty only in that mode.
func (s *AuthService) SendOtpCode(ctx context.Context, phoneNumber string) (devCode string, err error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if !phonePattern.MatchString(phoneNumber) {
		return "", ErrInvalidPhoneNumber
	}
	now := s.nowF()
	existing, err := s.challengeRepo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return "", err
	}
	if existing != nil && !existing.Expired(now) && !existing.ResendAllowed(now) {
		return "", ErrResendNotAllowed
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return "", err
	}
	challenge := &otpdomain.Challenge{
		ID:          uuid.New().String(),
		PhoneNumber: phoneNumber,
		CodeHash:    otp.HashCode(code),
		ExpiresAt:   now.Add(otprepo.DefaultChallengeTTL),
		ResendAt:    now.Add(otprepo.ResendCooldown),
		CreatedAt:   now,
	}
	if err := s.challengeRepo.Upsert(ctx, challenge); err != nil {
		return "", err
	}

	if s.returnToDev && s.devStore != nil {
		s.devStore.Put(ctx, phoneNumber, code, challenge.ExpiresAt)
		devCode = code
	} else if err := s.smsSender.SendCode(phoneNumber, code); err != nil {
		return "", err
	}
	s.logEvent(ctx, "", phoneNumber, auditdomain.ActionOTPSent, "UserAuth/SendOtpCode", "")
	return devCode, nil
}

// LoginByOtp verifies the code for the phone number, creating the user on
// first login, and issues a session token. The challenge is single-use and
// deleted on success.
func (s *AuthService) LoginByOtp(ctx context.Context, phoneNumber, code string) (*LoginResult, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	code = strings.TrimSpace(code)
	if !phonePattern.MatchString(phoneNumber) {
		return nil, ErrInvalidPhoneNumber
	}
	if len(code) != otp.CodeDigits {
		return nil, ErrInvalidCode
	}
	now := s.nowF()
	challenge, err := s.challengeRepo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if challenge == nil || challenge.Expired(now) || !otp.CodeEqual(code, challenge.CodeHash) {
		s.logEvent(ctx, "", phoneNumber, auditdomain.ActionLoginFailure, "UserAuth/LoginByOtp", "")
		return nil, ErrInvalidCode
	}

	user, err := s.userRepo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	firstLogin := user == nil
	if firstLogin {
		user = &userdomain.User{
			ID:          uuid.New().String(),
			PhoneNumber: phoneNumber,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := user.Validate(); err != nil {
			return nil, err
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := s.challengeRepo.DeleteByPhone(ctx, phoneNumber); err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, phoneNumber, auditdomain.ActionOTPLogin, "UserAuth/LoginByOtp", "")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, FirstLogin: firstLogin}, nil
}

// LoginByPassword authenticates with phone number and password. Users without
// a stored password cannot use this path.
func (s *AuthService) LoginByPassword(ctx context.Context, phoneNumber, password string) (*LoginResult, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if !phonePattern.MatchString(phoneNumber) || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		s.logEvent(ctx, "", phoneNumber, auditdomain.ActionLoginFailure, "UserAuth/login", "")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.logEvent(ctx, user.ID, phoneNumber, auditdomain.ActionLoginFailure, "UserAuth/login", "")
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Issue(user.ID, user.PhoneNumber)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, user.ID, phoneNumber, auditdomain.ActionPasswordLogin, "UserAuth/login", "")
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// RegisterPushToken records the Firebase push token for the user. Last write wins.
func (s *AuthService) RegisterPushToken(ctx context.Context, userID, fcmToken string) error {
	fcmToken = strings.TrimSpace(fcmToken)
	if fcmToken == "" {
		return ErrPushTokenRequired
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.SetFCMToken(ctx, userID, fcmToken); err != nil {
		return err
	}
	s.logEvent(ctx, userID, user.PhoneNumber, auditdomain.ActionPushTokenRegistered, "FirebaseNotification/SendFirebaseToken", "")
	return nil
}

func (s *AuthService) logEvent(ctx context.Context, userID, phone, action, resource, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, userID, phone, action, resource, metadata)
}
