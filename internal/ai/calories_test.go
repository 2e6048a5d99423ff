package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frello-ai/backend/internal/types"
)

func birthDate(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestCalculateTargetCalories(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("male weight loss at moderate activity", func(t *testing.T) {
		s := &types.UserSettings{
			Gender:        "Мужской",
			WeightKg:      80,
			HeightCm:      180,
			BirthDate:     birthDate(1996, 1, 15),
			ActivityLevel: []string{"Средняя активность"},
			NutritionGoal: []string{"Похудение"},
		}
		// BMR 1780, TDEE 2759, deficit 500 at BMI 24.7.
		got, ok := CalculateTargetCalories(s, now)
		require.True(t, ok)
		assert.Equal(t, 2259, got)
	})

	t.Run("muscle gain adds surplus", func(t *testing.T) {
		s := &types.UserSettings{
			Gender:        "Мужской",
			WeightKg:      70,
			HeightCm:      175,
			BirthDate:     birthDate(2001, 3, 10),
			ActivityLevel: []string{"Высокая активность"},
			NutritionGoal: []string{"Набор мышечной массы"},
		}
		got, ok := CalculateTargetCalories(s, now)
		require.True(t, ok)
		assert.Equal(t, 3287, got)
	})

	t.Run("female floor stops aggressive deficit", func(t *testing.T) {
		s := &types.UserSettings{
			Gender:        "Женский",
			WeightKg:      45,
			HeightCm:      165,
			BirthDate:     birthDate(1996, 1, 15),
			NutritionGoal: []string{"Похудение"},
		}
		// Raw target would be ~904, clamped to the 1400 floor.
		got, ok := CalculateTargetCalories(s, now)
		require.True(t, ok)
		assert.Equal(t, 1400, got)
	})

	t.Run("obese female uses larger deficit and higher floor", func(t *testing.T) {
		s := &types.UserSettings{
			Gender:        "Женский",
			WeightKg:      110,
			HeightCm:      160,
			BirthDate:     birthDate(1996, 1, 15),
			NutritionGoal: []string{"Похудение"},
		}
		// BMI ~43 selects the 900 deficit; the result lands below the
		// 1800 floor for that bracket.
		got, ok := CalculateTargetCalories(s, now)
		require.True(t, ok)
		assert.Equal(t, 1800, got)
	})

	t.Run("maintenance without goal", func(t *testing.T) {
		s := &types.UserSettings{
			Gender:        "Мужской",
			WeightKg:      80,
			HeightCm:      180,
			BirthDate:     birthDate(1996, 1, 15),
			ActivityLevel: []string{"Средняя активность"},
		}
		got, ok := CalculateTargetCalories(s, now)
		require.True(t, ok)
		assert.Equal(t, 2759, got)
	})

	t.Run("missing biometrics", func(t *testing.T) {
		cases := map[string]*types.UserSettings{
			"nil settings":  nil,
			"no weight":     {Gender: "Мужской", HeightCm: 180, BirthDate: birthDate(1996, 1, 15)},
			"no height":     {Gender: "Мужской", WeightKg: 80, BirthDate: birthDate(1996, 1, 15)},
			"no birth date": {Gender: "Мужской", WeightKg: 80, HeightCm: 180},
			"no gender":     {WeightKg: 80, HeightCm: 180, BirthDate: birthDate(1996, 1, 15)},
		}
		for name, s := range cases {
			t.Run(name, func(t *testing.T) {
				_, ok := CalculateTargetCalories(s, now)
				assert.False(t, ok)
			})
		}
	})

	t.Run("age counts completed years only", func(t *testing.T) {
		before := &types.UserSettings{
			Gender: "Мужской", WeightKg: 80, HeightCm: 180,
			BirthDate:     birthDate(1996, 7, 1),
			ActivityLevel: []string{"Сидячий образ жизни"},
		}
		after := &types.UserSettings{
			Gender: "Мужской", WeightKg: 80, HeightCm: 180,
			BirthDate:     birthDate(1996, 5, 1),
			ActivityLevel: []string{"Сидячий образ жизни"},
		}
		gotBefore, ok := CalculateTargetCalories(before, now)
		require.True(t, ok)
		gotAfter, ok := CalculateTargetCalories(after, now)
		require.True(t, ok)
		// The birthday not yet reached keeps the user one year younger,
		// which raises the BMR by 5 kcal before the multiplier.
		assert.Greater(t, gotBefore, gotAfter)
	})
}
