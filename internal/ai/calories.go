package ai

import (
	"math"
	"strings"
	"time"

	"github.com/frello-ai/backend/internal/types"
)

// Activity multipliers applied to the Mifflin-St Jeor BMR. Unmatched
// activity descriptions fall back to sedentary.
const (
	activitySedentary = 1.2
	activityLight     = 1.375
	activityModerate  = 1.55
	activityHigh      = 1.725
	activityExtreme   = 1.9
)

// CalculateTargetCalories derives the recommended daily calorie target from
// the user's biometrics. ok is false when weight, height, birth date or
// gender is missing; the caller then lets the model estimate its own figure.
// "now" is injected so the age computation is deterministic under test.
func CalculateTargetCalories(s *types.UserSettings, now time.Time) (int, bool) {
	if s == nil || s.WeightKg <= 0 || s.HeightCm <= 0 || s.BirthDate == nil || s.Gender == "" {
		return 0, false
	}

	age := completedYears(*s.BirthDate, now)
	female := isFemale(s.Gender)

	bmr := 10*s.WeightKg + 6.25*s.HeightCm - 5*float64(age)
	if female {
		bmr -= 161
	} else {
		bmr += 5
	}

	tdee := bmr * activityMultiplier(firstOf(s.ActivityLevel))

	heightM := s.HeightCm / 100
	bmi := s.WeightKg / (heightM * heightM)

	target := tdee
	goal := firstOf(s.NutritionGoal)
	switch {
	case IsWeightLossGoal(goal):
		deficit := 500.0
		if bmi >= 30 && bmi < 40 {
			deficit = 750
		} else if bmi >= 40 {
			deficit = 900
		}
		target = tdee - deficit
	case containsAny(strings.ToLower(goal), "набор", "мышц", "muscle", "спорт"):
		target = tdee + 400
	}

	// Safety floor: never ask for a plan below the minimum daily intake for
	// the user's gender and BMI bracket.
	if floor := minDailyCalories(female, bmi); target < floor {
		target = floor
	}

	return int(math.Round(target)), true
}

// IsWeightLossGoal reports whether the stated nutrition goal asks for a
// calorie deficit.
func IsWeightLossGoal(goal string) bool {
	return containsAny(strings.ToLower(goal), "похуден", "сброс", "снижени", "weight loss")
}

func minDailyCalories(female bool, bmi float64) float64 {
	switch {
	case bmi >= 40:
		if female {
			return 1800
		}
		return 2200
	case bmi >= 30:
		if female {
			return 1600
		}
		return 2000
	default:
		if female {
			return 1400
		}
		return 1800
	}
}

func activityMultiplier(activity string) float64 {
	act := strings.ToLower(activity)
	switch {
	case containsAny(act, "минимальн", "сидяч", "sedentary"):
		return activitySedentary
	case containsAny(act, "слаб", "легк", "light"):
		return activityLight
	case containsAny(act, "средн", "умерен", "moderate"):
		return activityModerate
	case containsAny(act, "высок", "тяжел", "high"):
		return activityHigh
	case containsAny(act, "экстра", "экстрем", "extreme"):
		return activityExtreme
	default:
		return activitySedentary
	}
}

func isFemale(gender string) bool {
	g := strings.ToLower(gender)
	return strings.Contains(g, "жен") || g == "female"
}

// completedYears floors the age to whole years relative to now.
func completedYears(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	return years
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func containsAny(s string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
