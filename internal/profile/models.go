package profile

import (
	"math"
	"time"
)

const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelMedium   = "medium"
	LevelHigh     = "high"
)

// Profile holds the physiological and behavioral attributes used to personalize
// coach replies. There is at most one row per user.
type Profile struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID          uint64    `gorm:"uniqueIndex;not null" json:"-"`
	Age             *int      `json:"age"`
	HeightCM        *float64  `gorm:"column:height_cm" json:"height_cm"`
	WeightKG        *float64  `gorm:"column:weight_kg" json:"weight_kg"`
	SleepHours      *float64  `json:"sleep_hours"`
	ActivityMinutes *int      `json:"activity_minutes"`
	ActivityLevel   string    `gorm:"type:varchar(16);not null;default:'moderate'" json:"activity_level"`
	StressLevel     string    `gorm:"type:varchar(16);not null;default:'medium'" json:"stress_level"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// BMI is weight / height(m)^2 rounded to one decimal. ok is false unless both
// height and weight are set.
func (p *Profile) BMI() (bmi float64, ok bool) {
	if p == nil || p.HeightCM == nil || p.WeightKG == nil || *p.HeightCM <= 0 {
		return 0, false
	}
	h := *p.HeightCM / 100.0
	return math.Round(*p.WeightKG/(h*h)*10) / 10, true
}

func (p *Profile) BMICategory() (string, bool) {
	bmi, ok := p.BMI()
	if !ok {
		return "", false
	}
	return Category(bmi), true
}

func Category(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// View is the API shape of a profile, with derived values attached.
type View struct {
	*Profile
	BMI         *float64 `json:"bmi"`
	BMICategory *string  `json:"bmi_category"`
}

func (p *Profile) View() View {
	v := View{Profile: p}
	if bmi, ok := p.BMI(); ok {
		cat := Category(bmi)
		v.BMI = &bmi
		v.BMICategory = &cat
	}
	return v
}
