package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campusvote/internal/db"
	"campusvote/internal/model"
)

// SetupTestDB opens a private in-memory sqlite database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	gormDB, err := db.Open(db.DriverSQLite, dsn)
	require.NoError(t, err, "open test database")
	require.NoError(t, db.Migrate(gormDB), "migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

// CreateTestUser inserts a user with the given role and password "password123".
func CreateTestUser(t *testing.T, gormDB *gorm.DB, role model.Role) *model.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Name:          "User " + suffix,
		Email:         suffix + "@students.example.edu",
		Phone:         "+2547" + suffix,
		PasswordHash:  string(hash),
		Role:          role,
		PhoneVerified: true,
	}
	require.NoError(t, gormDB.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateTestElection inserts an election with the given status ending at endDate.
func CreateTestElection(t *testing.T, gormDB *gorm.DB, status model.ElectionStatus, endDate time.Time) *model.Election {
	t.Helper()

	election := &model.Election{
		Title:     "Student Council " + uuid.NewString()[:8],
		Status:    status,
		StartDate: endDate.Add(-7 * 24 * time.Hour),
		EndDate:   endDate,
	}
	require.NoError(t, gormDB.Omit("Candidates").Create(election).Error)
	return election
}

// AddTestCandidate inserts a candidate with a preset vote count. Successive
// calls get strictly increasing creation times.
func AddTestCandidate(t *testing.T, gormDB *gorm.DB, electionID uuid.UUID, name string, votes int64) *model.Candidate {
	t.Helper()

	candidate := &model.Candidate{
		Name:       name,
		ElectionID: electionID,
		VoteCount:  votes,
	}
	require.NoError(t, gormDB.Create(candidate).Error)
	time.Sleep(2 * time.Millisecond)
	return candidate
}

// ReloadUser reads the current state of a user.
func ReloadUser(t *testing.T, gormDB *gorm.DB, id uuid.UUID) *model.User {
	t.Helper()

	var user model.User
	require.NoError(t, gormDB.Where("id = ?", id).First(&user).Error)
	return &user
}

// ReloadCandidate reads the current state of a candidate.
func ReloadCandidate(t *testing.T, gormDB *gorm.DB, id uuid.UUID) *model.Candidate {
	t.Helper()

	var candidate model.Candidate
	require.NoError(t, gormDB.Where("id = ?", id).First(&candidate).Error)
	return &candidate
}
