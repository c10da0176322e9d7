package profile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Profile{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

type memCache struct {
	items map[uint64]Profile
	gets  int
}

func (c *memCache) GetProfile(_ context.Context, userID uint64) (*Profile, error) {
	c.gets++
	p, ok := c.items[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memCache) SetProfile(_ context.Context, p *Profile) error {
	c.items[p.UserID] = *p
	return nil
}

func TestBMI(t *testing.T) {
	cases := []struct {
		height, weight float64
		bmi            float64
		category       string
	}{
		{170, 70, 24.2, "Normal"},
		{160, 45, 17.6, "Underweight"},
		{180, 90, 27.8, "Overweight"},
		{165, 95, 34.9, "Obese"},
	}
	for _, tc := range cases {
		p := &Profile{HeightCM: fptr(tc.height), WeightKG: fptr(tc.weight)}
		bmi, ok := p.BMI()
		if !ok || bmi != tc.bmi {
			t.Fatalf("bmi(%v,%v) = %v,%v want %v", tc.height, tc.weight, bmi, ok, tc.bmi)
		}
		cat, ok := p.BMICategory()
		if !ok || cat != tc.category {
			t.Fatalf("category(%v) = %q want %q", bmi, cat, tc.category)
		}
	}
}

func TestBMI_AbsentWithoutHeightOrWeight(t *testing.T) {
	for _, p := range []*Profile{
		{WeightKG: fptr(70)},
		{HeightCM: fptr(170)},
		{},
		nil,
	} {
		if _, ok := p.BMI(); ok {
			t.Fatalf("expected bmi to be absent for %+v", p)
		}
		if _, ok := p.BMICategory(); ok {
			t.Fatalf("expected category to be absent for %+v", p)
		}
	}
	v := (&Profile{HeightCM: fptr(170)}).View()
	if v.BMI != nil || v.BMICategory != nil {
		t.Fatalf("expected nil derived values in view")
	}
}

func TestGet_LazilyCreatesDefaults(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)), nil)

	p, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.ActivityLevel != LevelModerate || p.StressLevel != LevelMedium {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.Age != nil || p.HeightCM != nil {
		t.Fatalf("expected empty optional fields: %+v", p)
	}
}

func TestGet_IsIdempotent(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)), nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 3, Update{Age: iptr(30), HeightCM: fptr(170)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	first, err := svc.Get(ctx, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := svc.Get(ctx, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(first.View(), second.View()) {
		t.Fatalf("expected identical profiles:\n%+v\n%+v", first, second)
	}
}

func TestUpdate_PartialTouchesOnlyProvidedFields(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)), nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 1, Update{Age: iptr(28), SleepHours: fptr(7.5), StressLevel: sptr("high")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, err := svc.Update(ctx, 1, Update{WeightKG: fptr(70), ActivityLevel: sptr(" LOW ")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Age == nil || *p.Age != 28 || p.SleepHours == nil || *p.SleepHours != 7.5 {
		t.Fatalf("earlier fields lost: %+v", p)
	}
	if p.StressLevel != LevelHigh || p.ActivityLevel != LevelLow {
		t.Fatalf("unexpected levels: %q %q", p.StressLevel, p.ActivityLevel)
	}
	if p.WeightKG == nil || *p.WeightKG != 70 {
		t.Fatalf("weight not stored: %+v", p)
	}

	var count int64
	if err := svc.repo.db.Model(&Profile{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single profile row, got %d", count)
	}
}

func TestUpdate_RejectsInvalidValues(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)), nil)
	for _, u := range []Update{
		{ActivityLevel: sptr("extreme")},
		{StressLevel: sptr("moderate")},
		{Age: iptr(-1)},
		{SleepHours: fptr(25)},
		{HeightCM: fptr(0)},
	} {
		if _, err := svc.Update(context.Background(), 1, u); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", u, err)
		}
	}
}

func TestLookup_DoesNotCreate(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)), nil)
	p, err := svc.Lookup(context.Background(), 99)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p != nil {
		t.Fatalf("expected no profile, got %+v", p)
	}
}

func TestService_UsesCache(t *testing.T) {
	cache := &memCache{items: map[uint64]Profile{}}
	svc := NewService(NewRepo(openTestDB(t)), cache)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 5, Update{StressLevel: sptr("low")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := cache.items[5].StressLevel; got != LevelLow {
		t.Fatalf("expected cache refresh on update, got %q", got)
	}
	p, err := svc.Get(ctx, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.StressLevel != LevelLow || cache.gets == 0 {
		t.Fatalf("expected cached read, got %+v gets=%d", p, cache.gets)
	}
}
