package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campusvote/internal/model"
)

// UserRepository defines persistence operations for voters and admins.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByStudentID(ctx context.Context, studentID string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByPhoneSuffix(ctx context.Context, suffix string) (*model.User, error)
	FindConflicting(ctx context.Context, email, phone string, studentID *string) (*model.User, error)
	ListVoters(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkPhoneVerified(ctx context.Context, id uuid.UUID) error
	// MarkVoted flips has_voted only if it was false; it reports whether this
	// call performed the transition.
	MarkVoted(ctx context.Context, id, candidateID uuid.UUID) (bool, error)
	ResetAllVotes(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	CountVoted(ctx context.Context) (int64, error)
	CountVotesByCandidate(ctx context.Context, candidateIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) FindByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return r.first(ctx, "student_id = ?", studentID)
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.first(ctx, "phone = ?", phone)
}

// likeEscaper neutralises LIKE wildcards so a suffix only matches literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *userRepository) FindByPhoneSuffix(ctx context.Context, suffix string) (*model.User, error) {
	return r.first(ctx, "phone LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(suffix))
}

func (r *userRepository) FindConflicting(ctx context.Context, email, phone string, studentID *string) (*model.User, error) {
	q := r.db.WithContext(ctx).Where("email = ?", email).Or("phone = ?", phone)
	if studentID != nil && *studentID != "" {
		q = q.Or("student_id = ?", *studentID)
	}
	var user model.User
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListVoters(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", model.RoleVoter).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) MarkPhoneVerified(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("phone_verified", true).Error
}

func (r *userRepository) MarkVoted(ctx context.Context, id, candidateID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND has_voted = ?", id, false).
		Updates(map[string]interface{}{
			"has_voted":          true,
			"voted_candidate_id": candidateID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) ResetAllVotes(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("has_voted = ? OR voted_candidate_id IS NOT NULL", true).
		Updates(map[string]interface{}{
			"has_voted":          false,
			"voted_candidate_id": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *userRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) CountVoted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("has_voted = ?", true).Count(&count).Error
	return count, err
}

func (r *userRepository) CountVotesByCandidate(ctx context.Context, candidateIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		VotedCandidateID uuid.UUID
		Votes            int64
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("voted_candidate_id, COUNT(*) AS votes").
		Where("has_voted = ? AND voted_candidate_id IN ?", true, candidateIDs).
		Group("voted_candidate_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.VotedCandidateID] = row.Votes
	}
	return counts, nil
}
