package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/frello-ai/backend/internal/types"
)

// fieldsOnlyCustomInput lists the profile fields where a user clarification
// replaces the selected category entirely instead of annotating it.
var fieldsOnlyCustomInput = map[string]bool{
	"favoriteFoods":       true,
	"mealTimePreferences": true,
}

// placeholderClarifications are editor artefacts, never real user input.
var placeholderClarifications = []string{"(указать)", "(введите)"}

type settingsField struct {
	key    string
	label  string
	values []string
}

func settingsFieldList(s *types.UserSettings) []settingsField {
	return []settingsField{
		{"nutritionGoal", "Цель питания", s.NutritionGoal},
		{"activityLevel", "Уровень активности", s.ActivityLevel},
		{"allergies", "Аллергии", s.Allergies},
		{"dietType", "Тип диеты", s.DietType},
		{"personalRestrictions", "Личные ограничения", s.PersonalRestrictions},
		{"favoriteFoods", "Любимые продукты", s.FavoriteFoods},
		{"cookingPreferences", "Предпочтения в готовке", s.CookingPreferences},
		{"mealTimePreferences", "Время приёмов пищи", s.MealTimePreferences},
		{"nutritionPreferences", "Предпочтения в питании", s.NutritionPreferences},
		{"budgetPreferences", "Бюджет", s.BudgetPreferences},
		{"cookingExperience", "Опыт готовки", s.CookingExperience},
	}
}

// settingsBlock serializes the user profile into the directive block injected
// into prompts. mealFrequency is included only when positive; zero means the
// intent does not care about meal slots.
func settingsBlock(s *types.UserSettings, mealFrequency int, now time.Time) string {
	if s == nil {
		return "\n\nМОИ ДАННЫЕ: профиль не заполнен."
	}

	var b strings.Builder
	b.WriteString("\n\nМОИ ДАННЫЕ:\n")

	if s.Gender != "" {
		fmt.Fprintf(&b, "Пол: %s\n", s.Gender)
	}
	if s.HeightCm > 0 {
		fmt.Fprintf(&b, "Рост: %s см\n", trimFloat(s.HeightCm))
	}
	if s.WeightKg > 0 {
		fmt.Fprintf(&b, "Вес: %s кг\n", trimFloat(s.WeightKg))
	}
	if s.BirthDate != nil {
		fmt.Fprintf(&b, "Возраст: %d лет\n", completedYears(*s.BirthDate, now))
	}
	if mealFrequency > 0 {
		fmt.Fprintf(&b, "Приёмов пищи в день: %d\n", mealFrequency)
	}

	for _, field := range settingsFieldList(s) {
		rendered := renderFieldValues(field, s.CustomInputs[field.key])
		if len(rendered) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", field.label, strings.Join(rendered, ", "))
		}
	}

	if products := strings.TrimSpace(s.CurrentProducts); products != "" {
		fmt.Fprintf(&b, "Продукты в наличии: %s\n", products)
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderFieldValues applies the clarification rules: a clarification either
// replaces the category (for fieldsOnlyCustomInput) or is appended to it in
// parentheses. Category stubs like "другое"/"нет" and placeholder
// clarifications are dropped.
func renderFieldValues(field settingsField, custom map[string]string) []string {
	var out []string
	for _, value := range field.values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		clarification := strings.TrimSpace(custom[value])
		if isPlaceholder(clarification) {
			clarification = ""
		}
		if isStubCategory(value) {
			if clarification != "" {
				out = append(out, clarification)
			}
			continue
		}
		switch {
		case clarification == "":
			out = append(out, value)
		case fieldsOnlyCustomInput[field.key]:
			out = append(out, clarification)
		default:
			out = append(out, fmt.Sprintf("%s (%s)", value, clarification))
		}
	}
	return out
}

func isStubCategory(value string) bool {
	lower := strings.ToLower(value)
	return lower == "другое" || lower == "нет"
}

func isPlaceholder(clarification string) bool {
	if clarification == "" {
		return false
	}
	lower := strings.ToLower(clarification)
	for _, p := range placeholderClarifications {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
