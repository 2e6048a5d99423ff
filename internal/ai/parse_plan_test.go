package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const planHeader = "Ваша суточная норма калорий для достижения вашей цели: 2000 ккал.\nПлан на 1 день:\n"

func newPlanParser(t *testing.T) *PlanParser {
	t.Helper()
	return NewPlanParser(zap.NewNop())
}

func TestParseRequestedDays(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"Составь план питания на 3 дня", 3},
		{"меню на 10 дней", 10},
		{"план питания на неделю", 7},
		{"план на день", 1},
		{"составь план питания", 0},
		{"сколько калорий в яблоке", 0},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRequestedDays(tt.content))
		})
	}
}

func TestPlanParserJSONArray(t *testing.T) {
	p := newPlanParser(t)

	content := planHeader + `[
		{"meals":[
			{"type":"breakfast","recipeName":"Овсяная каша","calories":500,"portionSize":250},
			{"type":"lunch","recipeName":"Куриный суп","calories":700,"portionSize":350},
			{"type":"dinner","recipeName":"Запечённая рыба","calories":800,"portionSize":400}
		]}
	]`

	plan, ok := p.Parse(content, 3, 0, nil)
	require.True(t, ok)
	assert.Equal(t, 2000, plan.DailyNorm)
	require.Len(t, plan.Days, 1)
	require.Len(t, plan.Days[0].Meals, 3)
	assert.Equal(t, "Овсяная каша", plan.Days[0].Meals[0].RecipeName)
	assert.Equal(t, MealLunch, plan.Days[0].Meals[1].Type)
}

func TestPlanParserCodeFencedJSON(t *testing.T) {
	p := newPlanParser(t)

	content := planHeader + "```json\n" + `[{"meals":[{"type":"breakfast","recipeName":"Сырники","calories":450,"portionSize":220}]}]` + "\n```"

	plan, ok := p.Parse(content, 1, 0, nil)
	require.True(t, ok)
	require.Len(t, plan.Days, 1)
	assert.Equal(t, "Сырники", plan.Days[0].Meals[0].RecipeName)
}

func TestPlanParserJSONObjectWrapper(t *testing.T) {
	p := newPlanParser(t)

	content := `{"days":[{"meals":[{"type":"breakfast","recipeName":"Омлет","calories":400,"portionSize":200}]}]}`

	plan, ok := p.Parse(content, 1, 0, nil)
	require.True(t, ok)
	require.Len(t, plan.Days, 1)
	assert.Equal(t, "Омлет", plan.Days[0].Meals[0].RecipeName)
}

func TestPlanParserFillsMissingCalories(t *testing.T) {
	p := newPlanParser(t)

	content := planHeader + `[
		{"meals":[
			{"type":"breakfast","recipeName":"Овсяная каша","calories":0,"portionSize":250},
			{"type":"lunch","recipeName":"Куриный суп","calories":700,"portionSize":350},
			{"type":"dinner","recipeName":"Запечённая рыба","calories":800,"portionSize":400}
		]}
	]`

	plan, ok := p.Parse(content, 3, 0, nil)
	require.True(t, ok)
	// 2000 norm minus the 1500 known kcal lands on the empty breakfast.
	assert.Equal(t, 500, plan.Days[0].Meals[0].Calories)
}

func TestPlanParserSplitsRemainingByShares(t *testing.T) {
	p := newPlanParser(t)

	content := planHeader + `[
		{"meals":[
			{"type":"breakfast","recipeName":"Каша","calories":0,"portionSize":250},
			{"type":"lunch","recipeName":"Суп","calories":0,"portionSize":350},
			{"type":"dinner","recipeName":"Рыба","calories":800,"portionSize":400}
		]}
	]`

	plan, ok := p.Parse(content, 3, 0, nil)
	require.True(t, ok)
	// 1200 kcal remain, split 25:35 between breakfast and lunch.
	assert.Equal(t, 500, plan.Days[0].Meals[0].Calories)
	assert.Equal(t, 700, plan.Days[0].Meals[1].Calories)
}

func TestPlanParserRealismBands(t *testing.T) {
	p := newPlanParser(t)

	t.Run("oversized density resizes the portion", func(t *testing.T) {
		content := `[{"meals":[{"type":"breakfast","recipeName":"Каша","calories":800,"portionSize":100}]}]`
		plan, ok := p.Parse(content, 1, 0, nil)
		require.True(t, ok)
		meal := plan.Days[0].Meals[0]
		// 8 kcal/g is far outside the band; the portion grows to 2 kcal/g.
		assert.Equal(t, 800, meal.Calories)
		assert.Equal(t, 400, meal.PortionSize)
	})

	t.Run("mild density overshoot trims calories", func(t *testing.T) {
		content := `[{"meals":[{"type":"breakfast","recipeName":"Каша","calories":550,"portionSize":200}]}]`
		plan, ok := p.Parse(content, 1, 0, nil)
		require.True(t, ok)
		meal := plan.Days[0].Meals[0]
		// 2.75 kcal/g is close enough that calories snap to the portion.
		assert.Equal(t, 400, meal.Calories)
		assert.Equal(t, 200, meal.PortionSize)
	})

	t.Run("watery portion shrinks", func(t *testing.T) {
		content := `[{"meals":[{"type":"lunch","recipeName":"Суп","calories":150,"portionSize":1000}]}]`
		plan, ok := p.Parse(content, 4, 0, nil)
		require.True(t, ok)
		meal := plan.Days[0].Meals[0]
		assert.Equal(t, 150, meal.Calories)
		assert.Equal(t, 300, meal.PortionSize)
	})

	t.Run("low calories keep their portion", func(t *testing.T) {
		content := `[{"meals":[{"type":"snack","recipeName":"Чай","calories":50,"portionSize":300}]}]`
		plan, ok := p.Parse(content, 4, 0, nil)
		require.True(t, ok)
		assert.Equal(t, 300, plan.Days[0].Meals[0].PortionSize)
	})

	t.Run("missing portion derived from calories", func(t *testing.T) {
		content := `[{"meals":[{"type":"dinner","recipeName":"Рыба","calories":600}]}]`
		plan, ok := p.Parse(content, 4, 0, nil)
		require.True(t, ok)
		assert.Equal(t, 300, plan.Days[0].Meals[0].PortionSize)
	})
}

func TestPlanParserPadsToFrequency(t *testing.T) {
	p := newPlanParser(t)

	content := planHeader + `[
		{"meals":[
			{"type":"breakfast","recipeName":"Каша","calories":500,"portionSize":250},
			{"type":"lunch","recipeName":"Суп","calories":700,"portionSize":350}
		]}
	]`

	plan, ok := p.Parse(content, 4, 0, nil)
	require.True(t, ok)
	require.Len(t, plan.Days[0].Meals, 4)
	for _, meal := range plan.Days[0].Meals[2:] {
		assert.Equal(t, MealSnack, meal.Type)
		assert.Equal(t, "Дополнительный перекус", meal.RecipeName)
		assert.Greater(t, meal.Calories, 0)
	}

	total := 0
	for _, meal := range plan.Days[0].Meals {
		total += meal.Calories
	}
	assert.InDelta(t, 2000, total, 2)
}

func TestPlanParserTruncatesToRequestedDays(t *testing.T) {
	p := newPlanParser(t)

	var days []string
	for i := 0; i < 7; i++ {
		days = append(days, fmt.Sprintf(`{"meals":[{"type":"breakfast","recipeName":"Завтрак %d","calories":500,"portionSize":250}]}`, i+1))
	}
	content := "[" + strings.Join(days, ",") + "]"

	plan, ok := p.Parse(content, 1, 3, nil)
	require.True(t, ok)
	assert.Len(t, plan.Days, 3)

	plan, ok = p.Parse(content, 1, 0, nil)
	require.True(t, ok)
	assert.Len(t, plan.Days, 7)
}

func TestPlanParserTruncatesToStatedDays(t *testing.T) {
	p := newPlanParser(t)

	// The model announced a two-day plan but produced three days.
	content := `Ваша суточная норма калорий для достижения вашей цели: 2000 ккал.
План на 2 дня:
[
	{"meals":[{"type":"breakfast","recipeName":"Каша","calories":500,"portionSize":250}]},
	{"meals":[{"type":"breakfast","recipeName":"Омлет","calories":500,"portionSize":250}]},
	{"meals":[{"type":"breakfast","recipeName":"Сырники","calories":500,"portionSize":250}]}
]`

	plan, ok := p.Parse(content, 1, 0, nil)
	require.True(t, ok)
	assert.Len(t, plan.Days, 2)

	// An explicit request overrides the announced count.
	plan, ok = p.Parse(content, 1, 3, nil)
	require.True(t, ok)
	assert.Len(t, plan.Days, 3)
}

func TestPlanParserDropsUnknownSlots(t *testing.T) {
	p := newPlanParser(t)

	content := `[{"meals":[
		{"type":"dessert","recipeName":"Тирамису","calories":450,"portionSize":150},
		{"type":"breakfast","recipeName":"Каша","calories":500,"portionSize":250},
		{"type":"lunch","recipeName":"Суп","calories":700,"portionSize":350},
		{"type":"dinner","recipeName":"Рыба","calories":800,"portionSize":400}
	]}]`

	plan, ok := p.Parse(content, 3, 0, nil)
	require.True(t, ok)
	require.Len(t, plan.Days[0].Meals, 3)
	// Truncation to the frequency keeps the real meals, not the dessert.
	assert.Equal(t, "Каша", plan.Days[0].Meals[0].RecipeName)
	assert.Equal(t, "Суп", plan.Days[0].Meals[1].RecipeName)
	assert.Equal(t, "Рыба", plan.Days[0].Meals[2].RecipeName)
}

func TestPlanParserCustomLabelSlots(t *testing.T) {
	p := newPlanParser(t)

	content := `[{"meals":[
		{"type":"meal1","recipeName":"Смузи","calories":400,"portionSize":300},
		{"type":"breakfast","recipeName":"Каша","calories":500,"portionSize":250},
		{"type":"meal2","recipeName":"Плов","calories":900,"portionSize":350}
	]}]`

	plan, ok := p.Parse(content, 2, 0, []string{"Утро", "Вечер"})
	require.True(t, ok)
	require.Len(t, plan.Days[0].Meals, 2)
	assert.Equal(t, MealType("meal1"), plan.Days[0].Meals[0].Type)
	assert.Equal(t, MealType("meal2"), plan.Days[0].Meals[1].Type)
}

func TestPlanParserTextGrammar(t *testing.T) {
	p := newPlanParser(t)

	content := `Ваша суточная норма калорий для достижения вашей цели: 1800 ккал.
План на 2 дня:

День 1:
Завтрак: Овсяная каша с ягодами — 450 ккал, 250 г
Обед: Гречка с курицей — 650 ккал, 350 г
Ужин: Творог с мёдом — 400 ккал, 200 г

День 2:
Завтрак: Омлет с овощами — 450 ккал, 250 г
Обед: Борщ со сметаной — 650 ккал, 400 г
Ужин: Запечённая рыба — 400 ккал, 250 г`

	plan, ok := p.Parse(content, 3, 0, nil)
	require.True(t, ok)
	assert.Equal(t, 1800, plan.DailyNorm)
	require.Len(t, plan.Days, 2)
	require.Len(t, plan.Days[0].Meals, 3)

	first := plan.Days[0].Meals[0]
	assert.Equal(t, MealBreakfast, first.Type)
	assert.Equal(t, "Овсяная каша с ягодами", first.RecipeName)
	assert.Equal(t, 450, first.Calories)
	assert.Equal(t, 250, first.PortionSize)
}

func TestPlanParserStructuralScrape(t *testing.T) {
	p := newPlanParser(t)

	// Broken JSON: truncated braces, but the field tokens survive.
	content := `Вот ваш план "type":"breakfast","recipeName":"Каша","calories":500,"portionSize":250
	"type":"lunch","recipeName":"Суп","calories":700,"portionSize":350
	"type":"breakfast","recipeName":"Омлет","calories":500,"portionSize":250`

	plan, ok := p.Parse(content, 2, 0, nil)
	require.True(t, ok)
	require.Len(t, plan.Days, 2)
	assert.Equal(t, "Каша", plan.Days[0].Meals[0].RecipeName)
	assert.Equal(t, "Омлет", plan.Days[1].Meals[0].RecipeName)
}

func TestPlanParserRejectsUnstructuredText(t *testing.T) {
	p := newPlanParser(t)

	_, ok := p.Parse("Я рекомендую есть больше овощей и пить воду.", 3, 0, nil)
	assert.False(t, ok)
}

func TestFormatPlanOutputRoundTrip(t *testing.T) {
	p := newPlanParser(t)

	content := planHeader + `[
		{"meals":[
			{"type":"breakfast","recipeName":"Овсяная каша","calories":500,"portionSize":250},
			{"type":"lunch","recipeName":"Куриный суп","calories":700,"portionSize":350},
			{"type":"dinner","recipeName":"Запечённая рыба","calories":800,"portionSize":400}
		]}
	]`

	plan, ok := p.Parse(content, 3, 0, nil)
	require.True(t, ok)

	text := FormatPlanOutput(plan, 3, nil)
	assert.Contains(t, text, "Ваша суточная норма калорий для достижения вашей цели: 2000 ккал.")
	assert.Contains(t, text, "Обед: Куриный суп — 700 ккал (350 г)")
	assert.Contains(t, text, "Итого за день: 2000 ккал")

	// The rendered text parses back to the same plan.
	again, ok := p.Parse(text, 3, 0, nil)
	require.True(t, ok)
	require.Len(t, again.Days, 1)
	assert.Equal(t, plan.Days[0].Meals, again.Days[0].Meals)
}
