package ai

import "fmt"

// mealLabelTables maps a meal frequency to the ordered slot keys and their
// user-facing Russian labels.
var mealLabelTables = map[int][]MealLabel{
	1: {{MealBreakfast, "Завтрак"}},
	2: {{MealBreakfast, "Завтрак"}, {MealDinner, "Ужин"}},
	3: {{MealBreakfast, "Завтрак"}, {MealLunch, "Обед"}, {MealDinner, "Ужин"}},
	4: {{MealBreakfast, "Завтрак"}, {MealLunch, "Обед"}, {MealDinner, "Ужин"}, {MealSnack, "Перекус"}},
	5: {{MealBreakfast, "Завтрак"}, {MealLunch, "Обед"}, {MealDinner, "Ужин"}, {MealSnack, "Перекус"}, {"snack2", "Перекус"}},
}

type MealLabel struct {
	Type  MealType
	Label string
}

// MealLabels returns the ordered slot-key/label pairs for the given meal
// frequency. Custom labels override the defaults when the user supplied
// exactly one label per meal. Frequencies above five extend the four-meal
// table with numbered snacks.
func MealLabels(mealFrequency int, customLabels []string) []MealLabel {
	if mealFrequency < 1 {
		mealFrequency = 1
	}
	if len(customLabels) == mealFrequency {
		labels := make([]MealLabel, mealFrequency)
		for i, label := range customLabels {
			labels[i] = MealLabel{Type: MealType(fmt.Sprintf("meal%d", i+1)), Label: label}
		}
		return labels
	}
	if table, ok := mealLabelTables[mealFrequency]; ok {
		return table
	}
	labels := append([]MealLabel(nil), mealLabelTables[4]...)
	for i := 0; len(labels) < mealFrequency; i++ {
		labels = append(labels, MealLabel{Type: MealType(fmt.Sprintf("snack%d", i+1)), Label: "Перекус"})
	}
	return labels
}

// MealTypeSet returns the set of slot keys valid for the given frequency.
func MealTypeSet(mealFrequency int, customLabels []string) map[MealType]bool {
	labels := MealLabels(mealFrequency, customLabels)
	set := make(map[MealType]bool, len(labels))
	for _, l := range labels {
		set[l.Type] = true
	}
	return set
}

// LabelFor maps a slot key back to its user-facing label, falling back to a
// generic label for unknown keys.
func LabelFor(mealType MealType, mealFrequency int, customLabels []string) string {
	for _, l := range MealLabels(mealFrequency, customLabels) {
		if l.Type == mealType {
			return l.Label
		}
	}
	return "Приём пищи"
}

// localizedMealTypes maps the Russian labels used in free-text plans back to
// slot keys.
var localizedMealTypes = map[string]MealType{
	"завтрак":        MealBreakfast,
	"второй завтрак": MealSnack,
	"обед":           MealLunch,
	"полдник":        MealSnack,
	"ужин":           MealDinner,
	"перекус":        MealSnack,
}
