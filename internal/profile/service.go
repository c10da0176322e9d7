package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var ErrInvalidInput = errors.New("invalid profile field")

// Cache is an optional read-through cache in front of the profiles table.
// GetProfile returns (nil, nil) on a miss.
type Cache interface {
	GetProfile(ctx context.Context, userID uint64) (*Profile, error)
	SetProfile(ctx context.Context, p *Profile) error
}

// Update carries a partial profile write; nil fields are left untouched.
type Update struct {
	Age             *int     `json:"age"`
	HeightCM        *float64 `json:"height_cm"`
	WeightKG        *float64 `json:"weight_kg"`
	SleepHours      *float64 `json:"sleep_hours"`
	ActivityMinutes *int     `json:"activity_minutes"`
	ActivityLevel   *string  `json:"activity_level"`
	StressLevel     *string  `json:"stress_level"`
}

func (u Update) validate() error {
	if u.Age != nil && (*u.Age <= 0 || *u.Age > 130) {
		return fmt.Errorf("%w: age must be between 1 and 130", ErrInvalidInput)
	}
	if u.HeightCM != nil && *u.HeightCM <= 0 {
		return fmt.Errorf("%w: height_cm must be positive", ErrInvalidInput)
	}
	if u.WeightKG != nil && *u.WeightKG <= 0 {
		return fmt.Errorf("%w: weight_kg must be positive", ErrInvalidInput)
	}
	if u.SleepHours != nil && (*u.SleepHours < 0 || *u.SleepHours > 24) {
		return fmt.Errorf("%w: sleep_hours must be between 0 and 24", ErrInvalidInput)
	}
	if u.ActivityMinutes != nil && *u.ActivityMinutes < 0 {
		return fmt.Errorf("%w: activity_minutes must not be negative", ErrInvalidInput)
	}
	if u.ActivityLevel != nil && !oneOf(*u.ActivityLevel, LevelLow, LevelModerate, LevelHigh) {
		return fmt.Errorf("%w: activity_level must be low, moderate or high", ErrInvalidInput)
	}
	if u.StressLevel != nil && !oneOf(*u.StressLevel, LevelLow, LevelMedium, LevelHigh) {
		return fmt.Errorf("%w: stress_level must be low, medium or high", ErrInvalidInput)
	}
	return nil
}

func (u Update) apply(p *Profile) {
	if u.Age != nil {
		p.Age = u.Age
	}
	if u.HeightCM != nil {
		p.HeightCM = u.HeightCM
	}
	if u.WeightKG != nil {
		p.WeightKG = u.WeightKG
	}
	if u.SleepHours != nil {
		p.SleepHours = u.SleepHours
	}
	if u.ActivityMinutes != nil {
		p.ActivityMinutes = u.ActivityMinutes
	}
	if u.ActivityLevel != nil {
		p.ActivityLevel = normalizeLevel(*u.ActivityLevel)
	}
	if u.StressLevel != nil {
		p.StressLevel = normalizeLevel(*u.StressLevel)
	}
}

type Service struct {
	repo  *Repo
	cache Cache
}

// NewService accepts a nil cache.
func NewService(repo *Repo, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Get returns the caller's profile, creating the default one on first access.
func (s *Service) Get(ctx context.Context, userID uint64) (*Profile, error) {
	if p := s.cached(ctx, userID); p != nil {
		return p, nil
	}
	p, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, p)
	return p, nil
}

// Lookup is Get without the lazy create; it returns nil when no profile exists.
func (s *Service) Lookup(ctx context.Context, userID uint64) (*Profile, error) {
	if p := s.cached(ctx, userID); p != nil {
		return p, nil
	}
	p, err := s.repo.Find(ctx, userID)
	if err != nil || p == nil {
		return nil, err
	}
	s.store(ctx, p)
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID uint64, u Update) (*Profile, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.apply(p)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.store(ctx, p)
	return p, nil
}

func (s *Service) cached(ctx context.Context, userID uint64) *Profile {
	if s.cache == nil {
		return nil
	}
	p, err := s.cache.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("[profile] cache get failed uid=%d err=%v", userID, err)
		return nil
	}
	return p
}

func (s *Service) store(ctx context.Context, p *Profile) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProfile(ctx, p); err != nil {
		log.Printf("[profile] cache set failed uid=%d err=%v", p.UserID, err)
	}
}

func normalizeLevel(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func oneOf(v string, allowed ...string) bool {
	v = normalizeLevel(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
