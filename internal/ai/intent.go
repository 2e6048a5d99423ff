package ai

import (
	"regexp"
	"strings"

	"github.com/frello-ai/backend/internal/types"
)

// Pattern families for intent classification. The plan family is evaluated
// before the recipe family; the first match wins.
var (
	// Explicit planning phrases that are unambiguous on their own.
	rePlanExplicit = regexp.MustCompile(`план\s+питания|расписание\s+(?:питания|еды)|рацион\s+питания|питание\s+на\s+(?:недел|день|\d+)`)

	// "меню на 5 дней", "рацион на неделю": the subject word itself names food.
	rePlanForPeriod = regexp.MustCompile(`(?:меню|рацион)\s+на\s+(?:\d+\s*(?:день|дня|дней)|недел\S*|месяц|день)`)

	// "план на 3 дня" is only a meal plan when the rest of the message talks
	// about food; a bare "план на день" could be anything.
	rePlanOnDays = regexp.MustCompile(`план\s+на\s+(?:\d+\s*(?:день|дня|дней)|недел\S*|день)`)

	// Imperative verb next to a plan noun ("составь план", "сделай меню").
	rePlanImperative = regexp.MustCompile(`(?:составь|состав|сделай|придумай|создай|напиши|сгенерируй|подбери|хочу)\s+(?:\S+\s+){0,2}?(?:план|меню|рацион)`)

	reRecipe = regexp.MustCompile(`рецепт|способ\s+приготовления|ингредиент|как\s+(?:приготовить|сделать|сварить|испечь|пожарить|запечь)|приготовь|пошаговое\s+приготовление`)

	// Word-boundary match for standalone "еда"/"еды"; a plain substring check
	// would fire on words like "победа".
	reFoodWord = regexp.MustCompile(`(?:^|[^а-яё])ед(?:а|ы|у|е)(?:$|[^а-яё])`)
)

var nutritionContextTokens = []string{
	"питани", "рацион", "меню", "калор", "ккал", "диет",
	"завтрак", "обед", "ужин", "перекус", "похуд", "блюд", "продукт",
}

func hasNutritionContext(content string) bool {
	for _, token := range nutritionContextTokens {
		if strings.Contains(content, token) {
			return true
		}
	}
	return reFoodWord.MatchString(content)
}

// ClassifyIntent maps raw user text to the pipeline branch that should handle
// it. It is a pure function of its inputs: no state, no randomness.
func ClassifyIntent(content string, isRegeneration bool) types.RequestType {
	text := strings.ToLower(strings.TrimSpace(content))

	if isPlanRequest(text) {
		if isRegeneration {
			return types.RequestTypeRegenerationMealPlan
		}
		return types.RequestTypeMealPlan
	}
	if reRecipe.MatchString(text) {
		return types.RequestTypeRecipe
	}
	return types.RequestTypeText
}

func isPlanRequest(text string) bool {
	if rePlanExplicit.MatchString(text) || rePlanForPeriod.MatchString(text) {
		return true
	}
	// Ambiguity guard: "план на день" alone is not a meal plan.
	if rePlanOnDays.MatchString(text) && hasNutritionContext(text) {
		return true
	}
	if rePlanImperative.MatchString(text) && hasNutritionContext(text) {
		return true
	}
	return false
}
