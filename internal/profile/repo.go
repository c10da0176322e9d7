package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// GetOrCreate returns the user's profile, inserting a default row on first access.
func (r *Repo) GetOrCreate(ctx context.Context, userID uint64) (*Profile, error) {
	var p Profile
	if err := r.db.WithContext(ctx).
		Where(Profile{UserID: userID}).
		Attrs(Profile{ActivityLevel: LevelModerate, StressLevel: LevelMedium}).
		FirstOrCreate(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Find returns nil without error when the user has no profile yet.
func (r *Repo) Find(ctx context.Context, userID uint64) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Save(ctx context.Context, p *Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
