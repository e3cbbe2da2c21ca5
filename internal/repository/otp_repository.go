package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/model"
)

// OTPRepository defines verification code persistence operations.
type OTPRepository interface {
	Create(ctx context.Context, otp *model.OTP) error
	FindByPhoneAndCode(ctx context.Context, phone, code string) (*model.OTP, error)
	DeleteByPhone(ctx context.Context, phone string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, otp *model.OTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *otpRepository) FindByPhoneAndCode(ctx context.Context, phone, code string) (*model.OTP, error) {
	var otp model.OTP
	if err := r.db.WithContext(ctx).Where("phone = ? AND code = ?", phone, code).First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) DeleteByPhone(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).Where("phone = ?", phone).Delete(&model.OTP{}).Error
}

func (r *otpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.OTP{}).Error
}
