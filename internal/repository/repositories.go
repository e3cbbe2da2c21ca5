package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the repositories that must share a transaction.
type Repositories struct {
	Users        UserRepository
	Elections    ElectionRepository
	Candidates   CandidateRepository
	OTPs         OTPRepository
	VoteAttempts VoteAttemptRepository

	db *gorm.DB
}

// NewRepositories builds every repository over one connection.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Elections:    NewElectionRepository(db),
		Candidates:   NewCandidateRepository(db),
		OTPs:         NewOTPRepository(db),
		VoteAttempts: NewVoteAttemptRepository(db),
		db:           db,
	}
}

// WithTransaction executes fn within a database transaction. The Repositories
// handed to fn are bound to the transaction; fn must not use the outer ones.
func (r *Repositories) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}
