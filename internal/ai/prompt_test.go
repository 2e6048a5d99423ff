package ai

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/frello-ai/backend/internal/types"
)

func testSettings() *types.UserSettings {
	return &types.UserSettings{
		Gender:        "Женский",
		HeightCm:      165,
		WeightKg:      60,
		BirthDate:     birthDate(1996, 1, 15),
		ActivityLevel: []string{"Средняя активность"},
		NutritionGoal: []string{"Похудение"},
		MealFrequency: 3,
		Allergies:     []string{"Орехи"},
	}
}

func newAssembler(t *testing.T) *PromptAssembler {
	t.Helper()
	return NewPromptAssembler(zap.NewNop())
}

var promptNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAssembleText(t *testing.T) {
	p := newAssembler(t)

	messages := p.AssembleText(testSettings(), nil, "Сколько калорий в яблоке?", promptNow)
	require.Len(t, messages, 2)

	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Frello")
	assert.NotContains(t, messages[0].Content, "JSON")

	last := messages[len(messages)-1]
	assert.Equal(t, RoleUser, last.Role)
	assert.Contains(t, last.Content, "МОИ ДАННЫЕ")
	assert.Contains(t, last.Content, "Пол: Женский")
	assert.Contains(t, last.Content, "Аллергии: Орехи")
	assert.Contains(t, last.Content, "Мой запрос: Сколько калорий в яблоке?")
}

func TestAssembleTextBoundsHistory(t *testing.T) {
	p := newAssembler(t)

	var history []HistoryMessage
	for i := 0; i < 40; i++ {
		history = append(history,
			HistoryMessage{IsUser: true, Content: fmt.Sprintf("вопрос %d", i)},
			HistoryMessage{Content: fmt.Sprintf("ответ %d", i)},
		)
	}
	history = append(history, HistoryMessage{IsUser: true, Content: "текущий вопрос"})

	messages := p.AssembleText(testSettings(), history, "текущий вопрос", promptNow)
	// System, 25 replayed turns, the final user message.
	require.Len(t, messages, 27)
	assert.Equal(t, "ответ 39", messages[len(messages)-2].Content)
	// The just-submitted message is not replayed twice.
	for _, m := range messages[1 : len(messages)-1] {
		assert.NotEqual(t, "текущий вопрос", m.Content)
	}
}

func TestAssembleTextSkipsEmptyHistory(t *testing.T) {
	p := newAssembler(t)

	history := []HistoryMessage{
		{IsUser: true, Content: "вопрос"},
		{Content: "   "},
		{Content: "ответ"},
	}
	messages := p.AssembleText(testSettings(), history, "ещё вопрос", promptNow)
	require.Len(t, messages, 4)
}

func TestAssemblePlan(t *testing.T) {
	p := newAssembler(t)

	messages := p.AssemblePlan(testSettings(), nil, "Составь план питания на 3 дня", 3, 1760, true, promptNow)
	require.Len(t, messages, 2)

	last := messages[len(messages)-1].Content
	assert.Contains(t, last, "Сегодня 01.06.2026")
	assert.Contains(t, last, "Ваша суточная норма калорий для достижения вашей цели: 1760 ккал")
	assert.Contains(t, last, "ЦЕЛЕВАЯ КАЛОРИЙНОСТЬ: 1760 ккал")
	assert.Contains(t, last, "Приёмов пищи в дне ровно 3")
	assert.Contains(t, last, `"type":"breakfast"`)
	assert.Contains(t, last, "Мой запрос: Составь план питания на 3 дня")
}

func TestAssemblePlanWithoutTarget(t *testing.T) {
	p := newAssembler(t)

	messages := p.AssemblePlan(testSettings(), nil, "Составь план питания", 3, 0, false, promptNow)
	last := messages[len(messages)-1].Content
	assert.NotContains(t, last, "ЦЕЛЕВАЯ КАЛОРИЙНОСТЬ")
	assert.Contains(t, last, "[итоговое выбранное число калорий в день]")
}

func TestAssemblePlanRestrictions(t *testing.T) {
	p := newAssembler(t)

	history := []HistoryMessage{
		{IsUser: true, Content: "Привет"},
		{IsUser: true, Content: "Убери лук из блюд"},
		{IsUser: true, Content: "не люблю грибы"},
	}
	messages := p.AssemblePlan(testSettings(), history, "Составь план питания", 3, 0, false, promptNow)
	last := messages[len(messages)-1].Content

	assert.Contains(t, last, "ОГРАНИЧЕНИЯ ИЗ ЧАТА")
	assert.Contains(t, last, "убери лук из блюд")
	assert.Contains(t, last, "не люблю грибы")
	assert.NotContains(t, last, `"привет"`)
}

func TestAssemblePlanFlexibleDays(t *testing.T) {
	p := newAssembler(t)

	s := testSettings()
	s.FlexibleDays = []string{"Суббота", "Воскресенье"}
	messages := p.AssemblePlan(s, nil, "Составь план питания на неделю", 3, 0, false, promptNow)
	last := messages[len(messages)-1].Content

	assert.Contains(t, last, "ГИБКИЕ ДНИ")
	assert.Contains(t, last, "Суббота, Воскресенье")
	assert.Contains(t, last, "ТОЛЬКО на 5 дней")
}

func TestAssembleRegeneratePlan(t *testing.T) {
	p := newAssembler(t)

	history := []HistoryMessage{
		{IsUser: true, Content: "Составь план питания"},
		{Content: "День 1: Завтрак: Овсянка — 400 ккал"},
		{IsUser: true, Content: "Составь заново"},
	}
	messages := p.AssembleRegeneratePlan(testSettings(), history, "Составь заново", 3, promptNow)

	system := messages[0].Content
	assert.Contains(t, system, "ИЗБЕГАЙ повторения предыдущих планов")
	assert.Contains(t, system, "Овсянка")

	for i := 1; i < len(messages)-1; i++ {
		assert.NotEqual(t, messages[i].Role, messages[i+1].Role, "replayed roles must alternate")
	}
}

func TestAssembleRegeneratePlanCapsPreviousPlans(t *testing.T) {
	p := newAssembler(t)

	history := []HistoryMessage{
		{Content: strings.Repeat("Очень длинный план. ", 1000)},
	}
	messages := p.AssembleRegeneratePlan(testSettings(), history, "заново", 3, promptNow)

	baseline := p.AssembleRegeneratePlan(testSettings(), nil, "заново", 3, promptNow)
	assert.LessOrEqual(t, len(messages[0].Content), len(baseline[0].Content)+previousPlanMaxChars+200)
}

func TestAssembleRecipe(t *testing.T) {
	p := newAssembler(t)

	t.Run("from chat message", func(t *testing.T) {
		messages := p.AssembleRecipe(testSettings(), "Дай рецепт борща", "", 0, promptNow)
		require.Len(t, messages, 2)
		assert.Contains(t, messages[0].Content, "ТОЛЬКО валидный JSON")
		assert.Contains(t, messages[0].Content, "calories = proteins×4 + fats×9 + carbs×4")
		assert.Equal(t, "Дай рецепт борща", messages[1].Content)
	})

	t.Run("pinned name and calories", func(t *testing.T) {
		messages := p.AssembleRecipe(testSettings(), "", "Борщ", 550, promptNow)
		assert.Contains(t, messages[0].Content, `"Борщ"`)
		assert.Contains(t, messages[1].Content, "Рецепт Борщ")
		assert.Contains(t, messages[1].Content, "550 ккал")
	})
}

func TestSettingsBlock(t *testing.T) {
	t.Run("nil settings", func(t *testing.T) {
		assert.Contains(t, settingsBlock(nil, 0, promptNow), "профиль не заполнен")
	})

	t.Run("age from birth date", func(t *testing.T) {
		block := settingsBlock(testSettings(), 3, promptNow)
		assert.Contains(t, block, "Возраст: 30 лет")
		assert.Contains(t, block, "Приёмов пищи в день: 3")
	})

	t.Run("clarification annotates the category", func(t *testing.T) {
		s := testSettings()
		s.CustomInputs = map[string]map[string]string{
			"allergies": {"Орехи": "только арахис"},
		}
		block := settingsBlock(s, 0, promptNow)
		assert.Contains(t, block, "Аллергии: Орехи (только арахис)")
	})

	t.Run("clarification replaces free-form categories", func(t *testing.T) {
		s := testSettings()
		s.FavoriteFoods = []string{"Рыба"}
		s.CustomInputs = map[string]map[string]string{
			"favoriteFoods": {"Рыба": "лосось и треска"},
		}
		block := settingsBlock(s, 0, promptNow)
		assert.Contains(t, block, "Любимые продукты: лосось и треска")
		assert.NotContains(t, block, "Рыба (")
	})

	t.Run("stub categories dropped without clarification", func(t *testing.T) {
		s := testSettings()
		s.DietType = []string{"Нет"}
		s.PersonalRestrictions = []string{"Другое"}
		block := settingsBlock(s, 0, promptNow)
		assert.NotContains(t, block, "Тип диеты")
		assert.NotContains(t, block, "Личные ограничения")
	})

	t.Run("stub category keeps its clarification", func(t *testing.T) {
		s := testSettings()
		s.DietType = []string{"Другое"}
		s.CustomInputs = map[string]map[string]string{
			"dietType": {"Другое": "интервальное голодание"},
		}
		block := settingsBlock(s, 0, promptNow)
		assert.Contains(t, block, "Тип диеты: интервальное голодание")
	})

	t.Run("placeholder clarifications ignored", func(t *testing.T) {
		s := testSettings()
		s.CustomInputs = map[string]map[string]string{
			"allergies": {"Орехи": "(указать)"},
		}
		block := settingsBlock(s, 0, promptNow)
		assert.Contains(t, block, "Аллергии: Орехи")
		assert.NotContains(t, block, "(указать)")
	})
}
