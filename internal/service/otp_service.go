package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"campusvote/internal/model"
	"campusvote/internal/repository"
	"campusvote/internal/sms"
)

const (
	otpDigits = 6
	otpExpiry = 10 * time.Minute
)

// OTPService issues and checks phone verification codes.
type OTPService interface {
	RequestOTP(ctx context.Context, phone string) error
	// Verify reports whether code is valid for phone. A stored code is consumed
	// by the check whether it matched in time or had expired.
	Verify(ctx context.Context, phone, code string) (bool, error)
}

type otpService struct {
	repo       repository.OTPRepository
	sender     sms.Sender
	bypassCode string
	now        func() time.Time
}

// NewOTPService creates a new OTP service. A non-empty bypassCode is accepted
// for any phone; callers only pass one in development.
func NewOTPService(repo repository.OTPRepository, sender sms.Sender, bypassCode string) OTPService {
	return &otpService{
		repo:       repo,
		sender:     sender,
		bypassCode: bypassCode,
		now:        time.Now,
	}
}

// RequestOTP replaces any previous code for phone and sends a fresh one.
func (s *otpService) RequestOTP(ctx context.Context, phone string) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := s.repo.DeleteByPhone(ctx, phone); err != nil {
		return fmt.Errorf("clear otp: %w", err)
	}
	otp := &model.OTP{
		Phone:     phone,
		Code:      code,
		ExpiresAt: s.now().Add(otpExpiry),
	}
	if err := s.repo.Create(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	body := fmt.Sprintf("Your Online Voting System verification code is: %s", code)
	if err := s.sender.Send(ctx, phone, body); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (s *otpService) Verify(ctx context.Context, phone, code string) (bool, error) {
	if s.bypassCode != "" && code == s.bypassCode {
		return true, nil
	}

	otp, err := s.repo.FindByPhoneAndCode(ctx, phone, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find otp: %w", err)
	}

	if err := s.repo.Delete(ctx, otp.ID); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return !otp.Expired(s.now()), nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
