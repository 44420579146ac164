package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// StudentProfileRepository reads the student-profile collection. Both lookup
// shapes exist because clients historically sent either the profile primary
// key or the owning account id under the same field.
type StudentProfileRepository interface {
	FindByAccount(ctx context.Context, accountID models.AccountID) (models.StudentProfile, error)
	FindByID(ctx context.Context, studentID models.StudentID) (models.StudentProfile, error)
}

// AccountRepository reads the account collection owned by the auth subsystem.
type AccountRepository interface {
	Exists(ctx context.Context, accountID models.AccountID) (bool, error)
}

type studentProfileRepository struct {
	db *gorm.DB
}

// NewStudentProfileRepository instantiates a GORM-backed repository.
func NewStudentProfileRepository(db *gorm.DB) StudentProfileRepository {
	return &studentProfileRepository{db: db}
}

func (r *studentProfileRepository) FindByAccount(ctx context.Context, accountID models.AccountID) (models.StudentProfile, error) {
	var profile models.StudentProfile
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&profile).Error
	if err != nil {
		return models.StudentProfile{}, err
	}

	return profile, nil
}

func (r *studentProfileRepository) FindByID(ctx context.Context, studentID models.StudentID) (models.StudentProfile, error) {
	var profile models.StudentProfile
	err := r.db.WithContext(ctx).
		Where("id = ?", studentID).
		First(&profile).Error
	if err != nil {
		return models.StudentProfile{}, err
	}

	return profile, nil
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository instantiates a GORM-backed repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Exists(ctx context.Context, accountID models.AccountID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
