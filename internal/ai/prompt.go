package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frello-ai/backend/internal/types"
)

// BaseSystemMessage is the persona preamble shared by every intent.
const BaseSystemMessage = `Вы — Frello, лучший в мире надёжный и опытный персональный помощник в области питания с 50-летним опытом.
Отвечаете вежливо и профессионально, обращаясь только на «Вы».
Ваш тон: спокойная экспертность, поддержка и забота.
Не упоминай данные пользователя в ответе.`

// Context-window bounds per intent. Plans replay less history than plain
// questions to keep token cost down; regeneration needs only the latest turns.
const (
	textContextLimit       = 25
	planContextLimit       = 15
	regenerateContextLimit = 6
	restrictionScanLimit   = 10
	previousPlanLimit      = 3
	previousPlanMaxChars   = 5000
)

// forbiddenKeywords flag user turns that exclude ingredients or dishes.
var forbiddenKeywords = []string{
	"не люблю", "убери", "без ", "удали", "замени",
	"не хочу", "исключи", "избегай", "нельзя",
}

// HistoryMessage is one conversational turn replayed to the model.
type HistoryMessage struct {
	IsUser  bool
	Content string
	// HasDish marks assistant messages that carry a saved dish; their text
	// is re-serialized as JSON so the model sees the structured recipe.
	HasDish bool
}

// PromptAssembler builds the ordered message sequence for each intent.
type PromptAssembler struct {
	logger *zap.Logger
}

// NewPromptAssembler creates a prompt assembler.
func NewPromptAssembler(logger *zap.Logger) *PromptAssembler {
	return &PromptAssembler{logger: logger}
}

// AssembleText builds the sequence for a plain conversational question. The
// system prompt deliberately omits every plan/JSON directive so the model
// does not volunteer structured output.
func (p *PromptAssembler) AssembleText(settings *types.UserSettings, history []HistoryMessage, content string, now time.Time) []ChatMessage {
	block := settingsBlock(settings, 0, now)

	system := BaseSystemMessage + ` Ты - Frello, эксперт по питанию и диетологии. НЕ используй **, ***, ---, ###, #, _ и другие символы форматирования. Пиши обычным текстом.`

	messages := []ChatMessage{{Role: RoleSystem, Content: system}}
	messages = append(messages, replayHistory(history, content, textContextLimit)...)
	messages = append(messages, ChatMessage{
		Role:    RoleUser,
		Content: fmt.Sprintf("ОБЯЗАТЕЛЬНО УЧТИ МОИ ДАННЫЕ: %s Мой запрос: %s", block, content),
	})
	return messages
}

// AssemblePlan builds the sequence for a meal-plan request. targetCalories
// is injected as a non-negotiable directive when hasTarget is true;
// otherwise the model is left to estimate the daily norm itself.
func (p *PromptAssembler) AssemblePlan(settings *types.UserSettings, history []HistoryMessage, content string, mealFrequency int, targetCalories int, hasTarget bool, now time.Time) []ChatMessage {
	block := settingsBlock(settings, mealFrequency, now)

	instruction := planInstruction(now) +
		" " + block +
		restrictionsWarning(history) +
		flexibleDaysInstruction(settings) +
		planJSONInstruction(mealFrequency, settings.CustomMealLabels, targetCalories, hasTarget)

	p.logger.Debug("assembled plan instruction", zap.Int("length", len(instruction)))

	messages := []ChatMessage{{Role: RoleSystem, Content: BaseSystemMessage}}
	messages = append(messages, replayHistory(history, content, planContextLimit)...)
	messages = append(messages, ChatMessage{
		Role:    RoleUser,
		Content: fmt.Sprintf("%s Мой запрос: %s", instruction, content),
	})
	return messages
}

// AssembleRegeneratePlan builds the sequence for regenerating the previous
// plan. The model is shown the latest assistant plans as material to avoid
// repeating.
func (p *PromptAssembler) AssembleRegeneratePlan(settings *types.UserSettings, history []HistoryMessage, content string, mealFrequency int, now time.Time) []ChatMessage {
	block := settingsBlock(settings, mealFrequency, now)

	var previous []string
	for _, msg := range history {
		if !msg.IsUser && strings.TrimSpace(msg.Content) != "" {
			previous = append(previous, StripFormatting(msg.Content))
		}
	}
	if len(previous) > previousPlanLimit {
		previous = previous[len(previous)-previousPlanLimit:]
	}
	avoid := ""
	if len(previous) > 0 {
		joined := strings.Join(previous, "\n\n")
		if len(joined) > previousPlanMaxChars {
			joined = joined[:previousPlanMaxChars]
		}
		avoid = fmt.Sprintf("\nИЗБЕГАЙ повторения предыдущих планов. Запрещенные рецепты и структуры: %s. Генерируй полностью новые блюда.", joined)
	}

	system := BaseSystemMessage + block + avoid +
		planJSONInstruction(mealFrequency, settings.CustomMealLabels, 0, false)

	recent := replayHistory(history, content, regenerateContextLimit)
	// Collapse runs of the same role so the replayed dialogue alternates.
	recent = dropConsecutiveRoles(recent)

	messages := []ChatMessage{{Role: RoleSystem, Content: system}}
	messages = append(messages, recent...)
	messages = append(messages, ChatMessage{Role: RoleUser, Content: content})
	return messages
}

// AssembleRecipe builds the sequence for a single-recipe request. recipeName
// and calories pin the dish when the request came from a structured source
// rather than free chat; either may be empty.
func (p *PromptAssembler) AssembleRecipe(settings *types.UserSettings, content, recipeName string, calories int, now time.Time) []ChatMessage {
	block := settingsBlock(settings, 0, now)

	nameDirective := "запросу пользователя"
	if recipeName != "" {
		nameDirective = recipeName
	}
	caloriesDirective := "целевой калорийности из запроса"
	if calories > 0 {
		caloriesDirective = fmt.Sprintf("%d", calories)
	}

	instruction := fmt.Sprintf(`

СИСТЕМНАЯ ИНСТРУКЦИЯ ДЛЯ ГЕНЕРАЦИИ РЕЦЕПТА:
Верни ТОЛЬКО валидный JSON (без текста вокруг) по схеме ниже.

СХЕМА (ОДНА ПОРЦИЯ):
{
  "name": "string",
  "ingredients": [
    { "name": "string", "grams": number, "proteins": number, "fats": number, "carbs": number, "calories": number }
  ],
  "instruction": "string",
  "cookingTime": number,
  "portionSize": number,
  "proteins": number,
  "fats": number,
  "carbs": number,
  "calories": number
}

ПРАВИЛА (КРИТИЧЕСКИ ВАЖНО):
- "name" — название блюда на русском, строго соответствует "%s".
- "ingredients" — МАССИВ, а не строка. Для каждого ингредиента укажи grams и его БЖУ/калории НА ЭТУ ПОРЦИЮ.
- Итоговые "proteins/fats/carbs/calories" — это СУММА по всем ингредиентам (по этой порции).
- Всегда соблюдай формулу энергетики (проверка): calories = proteins×4 + fats×9 + carbs×4 (допуск ±5 ккал из-за округлений).
- "portionSize" — итоговый вес порции (в граммах). Должен быть реалистичным и соответствовать ингредиентам.
- Если задана целевая калорийность: calories ДОЛЖНО быть близко к %s (допуск ±30 ккал). Если не сходится — подгони grams ингредиентов, а не просто перепиши число.
- НЕЛЬЗЯ: написать ингредиенты так, чтобы по ним выходило 700+ ккал, а в calories указать 300–400. Всегда проверяй сумму.

ТОЛЬКО JSON, без markdown/пояснений/приветствий.`, nameDirective, caloriesDirective)

	userContent := content
	if userContent == "" {
		userContent = fmt.Sprintf("Рецепт %s. Выдай один JSON объект, в котором будет один рецепт с %d ккал", recipeName, calories)
	}

	return []ChatMessage{
		{Role: RoleSystem, Content: BaseSystemMessage + block + instruction},
		{Role: RoleUser, Content: userContent},
	}
}

func planInstruction(now time.Time) string {
	return fmt.Sprintf("Сегодня %s. Составь персональный план питания строго по моим данным и правилам ниже. ПОСЛЕ ВСЕХ РАСЧЕТОВ ОБЯЗАТЕЛЬНО ВЫВЕДИ ПОЛНЫЙ ПЛАН ПИТАНИЯ.", now.Format("02.01.2006"))
}

// replayHistory returns the most recent turns, skipping blanks and the just
// submitted user message (it is appended once, explicitly, at the end).
func replayHistory(history []HistoryMessage, currentContent string, limit int) []ChatMessage {
	filtered := make([]HistoryMessage, 0, len(history))
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if msg.IsUser && msg.Content == currentContent {
			continue
		}
		filtered = append(filtered, msg)
	}
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}

	replayed := make([]ChatMessage, 0, len(filtered))
	for _, msg := range filtered {
		role := RoleAssistant
		if msg.IsUser {
			role = RoleUser
		}
		content := StripFormatting(msg.Content)
		if msg.HasDish {
			if dish := scrapeDishText(msg.Content); dish != nil {
				if encoded, err := json.Marshal(dish); err == nil {
					content = string(encoded)
				}
			}
		}
		replayed = append(replayed, ChatMessage{Role: role, Content: content})
	}
	return replayed
}

func dropConsecutiveRoles(messages []ChatMessage) []ChatMessage {
	out := messages[:0]
	for i, msg := range messages {
		if i > 0 && msg.Role == messages[i-1].Role {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// restrictionsWarning scans the latest user turns for negation keywords and
// turns the matching messages into hard exclusion directives.
func restrictionsWarning(history []HistoryMessage) string {
	var userTurns []string
	for _, msg := range history {
		if msg.IsUser && strings.TrimSpace(msg.Content) != "" {
			userTurns = append(userTurns, strings.ToLower(msg.Content))
		}
	}
	if len(userTurns) > restrictionScanLimit {
		userTurns = userTurns[len(userTurns)-restrictionScanLimit:]
	}

	var restrictions []string
	for _, turn := range userTurns {
		for _, keyword := range forbiddenKeywords {
			if strings.Contains(turn, keyword) {
				restrictions = append(restrictions, turn)
				break
			}
		}
	}
	if len(restrictions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nКРИТИЧЕСКИ ВАЖНО - ОГРАНИЧЕНИЯ ИЗ ЧАТА:\nПользователь недавно писал:\n")
	for _, r := range restrictions {
		fmt.Fprintf(&b, "- %q\n", r)
	}
	b.WriteString("\nЭТО ОЗНАЧАЕТ, ЧТО ТЫ ДОЛЖЕН ПОЛНОСТЬЮ ИСКЛЮЧИТЬ ЭТИ ПРОДУКТЫ / БЛЮДА ИЗ ПЛАНА!\nНЕ используй их НИ В КАКОМ ВИДЕ! НЕ пиши \"замена\" в скобках - просто НЕ ВКЛЮЧАЙ их!")
	return b.String()
}

func flexibleDaysInstruction(settings *types.UserSettings) string {
	if settings == nil || len(settings.FlexibleDays) == 0 {
		return ""
	}
	flexible := settings.FlexibleDays
	planDays := 7 - len(flexible)
	return fmt.Sprintf("\n\nКРИТИЧЕСКИ ВАЖНО - ГИБКИЕ ДНИ:\nПользователь указал %d гибких дня: %s.\nГенерируй план ТОЛЬКО на %d дней (исключая гибкие дни)!\nНЕ создавай меню для гибких дней!",
		len(flexible), strings.Join(flexible, ", "), planDays)
}

// planJSONInstruction is the dual text+JSON output contract the parser
// depends on: a fixed header phrase followed by a JSON array of day objects.
func planJSONInstruction(mealFrequency int, customLabels []string, targetCalories int, hasTarget bool) string {
	norm := "[итоговое выбранное число калорий в день]"
	calorieRule := ""
	if hasTarget {
		norm = fmt.Sprintf("%d", targetCalories)
		calorieRule = fmt.Sprintf(" ЦЕЛЕВАЯ КАЛОРИЙНОСТЬ: %d ккал в день. Эта норма уже рассчитана — НЕ пересчитывай и НЕ изменяй её. Сумма всех \"calories\" за день ДОЛЖНА быть %d (±50 ккал).", targetCalories, targetCalories)
	}

	labels := MealLabels(mealFrequency, customLabels)
	var slots []string
	for _, l := range labels {
		slots = append(slots, fmt.Sprintf("%s (%s)", l.Type, l.Label))
	}

	return fmt.Sprintf(`

Верни ТОЛЬКО фразу «Ваша суточная норма калорий для достижения вашей цели: %s ккал. План на [количество] дней:» и JSON-массив дней, где каждый день - объект с полем "meals". Каждый "meals" - массив объектов с полями: type, recipeName, calories, portionSize.

СХЕМА:
Ваша суточная норма калорий для достижения вашей цели: %s ккал.
План на [количество] дней:
[{
  "meals": [
    {"type":"breakfast","recipeName":"Завтрак","calories":0,"portionSize":0},
    {"type":"lunch","recipeName":"Обед","calories":0,"portionSize":0},
    {"type":"dinner","recipeName":"Ужин","calories":0,"portionSize":0}
  ]
}]

ПРАВИЛА:
- Приёмов пищи в дне ровно %d: %s.
- РАСПРЕДЕЛЯЙ КАЛОРИИ ПО ПРИЁМАМ ПИЩИ (проценты от суточной нормы):
  - Завтрак: 20–30%%
  - Обед: 30–35%%
  - Ужин: 15–20%%
  - Перекусы: 10–15%% каждый (если приёмов пищи 6: два перекуса 10–15%%, третий 5–10%%)
  - Если приёмов пищи 3 (без перекусов): завтрак 30–35%%, обед 40–45%%, ужин 20–25%%
- ВСЕГДА возвращай массив, даже если это один день.
- Поле "type" ДОЛЖНО быть одним из: breakfast, lunch, dinner, snack.
- Поле "recipeName" - ТОЛЬКО на русском языке, конкретное название блюда.
- Поле "calories" - ОБЯЗАТЕЛЬНОЕ целое число, рассчитанное индивидуально для каждого блюда.%s
- Поле "portionSize" - ОБЯЗАТЕЛЬНОЕ целое число в граммах.
- ЕСЛИ план генерируется только на 1 день, НЕ ПИШИ заголовок "**День 1**" или "День 1".
- Самое важное: сумма калорий всех приемов пищи в каждом дне ДОЛЖНА быть равна суточной норме калорий (±50 ккал).
- ТОЛЬКО текст с фразой о суточной норме и количестве дней, затем JSON, без дополнительного текста, приветствий, markdown или пояснений.`,
		norm, norm, len(labels), strings.Join(slots, ", "), calorieRule)
}
