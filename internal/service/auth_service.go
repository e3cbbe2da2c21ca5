package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campusvote/internal/auth"
	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/repository"
)

const bcryptCost = 10

// phoneSuffixLen is how many trailing digits identify a phone when the stored
// number and the submitted one differ in country prefix.
const phoneSuffixLen = 9

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	StudentID *string
}

// AuthResult is returned by every operation that signs the caller in.
type AuthResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	User         *model.User `json:"user"`
}

// AuthService handles identity operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	// Login accepts either an email or a student id as identifier.
	Login(ctx context.Context, email, studentID, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyPhone(ctx context.Context, phone, code string) (*AuthResult, error)
	// CreateAccount creates a verified account with any role. Only reachable
	// from operator tooling.
	CreateAccount(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error)
}

type authService struct {
	userRepo                 repository.UserRepository
	jwtService               *auth.JWTService
	tokenStore               auth.TokenStoreInterface
	otp                      OTPService
	requirePhoneVerification bool
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	otp OTPService,
	requirePhoneVerification bool,
) AuthService {
	return &authService{
		userRepo:                 userRepo,
		jwtService:               jwtService,
		tokenStore:               tokenStore,
		otp:                      otp,
		requirePhoneVerification: requirePhoneVerification,
	}
}

// Register creates a voter account. Public registration never grants admin.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.createUser(ctx, in, model.RoleVoter, !s.requirePhoneVerification)
	if err != nil {
		return nil, err
	}

	if s.requirePhoneVerification {
		// the account exists either way; the voter can ask for a new code
		if err := s.otp.RequestOTP(ctx, user.Phone); err != nil {
			slog.Warn("registration otp not sent", "user", user.ID, "err", err)
		}
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) CreateAccount(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error) {
	return s.createUser(ctx, in, role, true)
}

func (s *authService) createUser(ctx context.Context, in RegisterInput, role model.Role, verified bool) (*model.User, error) {
	if in.StudentID != nil && strings.TrimSpace(*in.StudentID) == "" {
		in.StudentID = nil
	}

	// Check if user already exists
	existing, err := s.userRepo.FindConflicting(ctx, in.Email, in.Phone, in.StudentID)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	// If error is not "record not found", return it (could be a database error)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:            uuid.New(),
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		StudentID:     in.StudentID,
		PasswordHash:  string(hashedPassword),
		Role:          role,
		PhoneVerified: verified,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, studentID, password string) (*AuthResult, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case email != "":
		user, err = s.userRepo.FindByEmail(ctx, email)
	case studentID != "":
		user, err = s.userRepo.FindByStudentID(ctx, studentID)
	default:
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*AuthResult, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Role, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	// Verify token exists in Redis and matches the stored identity
	storedUserID, storedRole, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedRole != claims.Role {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}

// VerifyPhone checks the code and marks the owning user verified. The user is
// matched on the exact phone first, then on its trailing digits.
func (s *authService) VerifyPhone(ctx context.Context, phone, code string) (*AuthResult, error) {
	ok, err := s.otp.Verify(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidOTP
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if errors.Is(err, gorm.ErrRecordNotFound) && len(phone) >= phoneSuffixLen {
		user, err = s.userRepo.FindByPhoneSuffix(ctx, phone[len(phone)-phoneSuffixLen:])
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.userRepo.MarkPhoneVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("mark phone verified: %w", err)
	}
	user.PhoneVerified = true

	return s.issueTokens(ctx, user)
}
