package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// energyTolerance is the allowed gap, in kcal, between stated calories and
// the value implied by the macros before the stated number is rewritten.
const energyTolerance = 5.0

// RecipeParser turns a raw model reply into a single structured recipe.
type RecipeParser struct {
	logger *zap.Logger
}

// NewRecipeParser creates a recipe parser.
func NewRecipeParser(logger *zap.Logger) *RecipeParser {
	return &RecipeParser{logger: logger}
}

type recipeIngredientJSON struct {
	Name     string      `json:"name"`
	Grams    json.Number `json:"grams"`
	Proteins float64     `json:"proteins"`
	Fats     float64     `json:"fats"`
	Carbs    float64     `json:"carbs"`
	Calories json.Number `json:"calories"`
}

type recipeJSON struct {
	Name        string          `json:"name"`
	RecipeName  string          `json:"recipeName"`
	Ingredients json.RawMessage `json:"ingredients"`
	Instruction string          `json:"instruction"`
	CookingTime json.Number     `json:"cookingTime"`
	PortionSize json.Number     `json:"portionSize"`
	Proteins    float64         `json:"proteins"`
	Fats        float64         `json:"fats"`
	Carbs       float64         `json:"carbs"`
	Calories    json.Number     `json:"calories"`
}

// Parse extracts one recipe from the model reply, reconciling the stated
// totals against the per-ingredient macros. The second return value is
// false when no recipe could be recovered; the caller then falls back to
// scraping the plain text.
func (p *RecipeParser) Parse(content string) (*PlanMeal, bool) {
	if looksLikeJSON(content) {
		if dish := p.parseJSONRecipe(content); dish != nil {
			return dish, true
		}
	}
	if dish := scrapeDishText(content); dish != nil {
		p.logger.Info("recovered recipe from plain text", zap.String("name", dish.RecipeName))
		return dish, true
	}
	return nil, false
}

func (p *RecipeParser) parseJSONRecipe(content string) *PlanMeal {
	var item recipeJSON
	if err := decodeObjectJSON(content, &item); err != nil {
		p.logger.Debug("recipe JSON decode failed", zap.Error(err))
		return nil
	}
	name := strings.TrimSpace(item.Name)
	if name == "" {
		name = strings.TrimSpace(item.RecipeName)
	}
	if name == "" {
		return nil
	}

	dish := &PlanMeal{
		RecipeName:  name,
		Calories:    numberToInt(item.Calories),
		PortionSize: numberToInt(item.PortionSize),
		Proteins:    item.Proteins,
		Fats:        item.Fats,
		Carbs:       item.Carbs,
		Instruction: strings.TrimSpace(item.Instruction),
		CookingTime: numberToInt(item.CookingTime),
	}

	ingredients, ok := decodeIngredients(item.Ingredients)
	if !ok {
		// The model sometimes flattens ingredients into a single string.
		var plain string
		if err := json.Unmarshal(item.Ingredients, &plain); err == nil {
			dish.Ingredients = strings.TrimSpace(plain)
		}
		return dish
	}

	reconcileRecipe(dish, ingredients, p.logger)
	dish.Ingredients = renderIngredients(ingredients)
	return dish
}

type recipeIngredient struct {
	Name     string
	Grams    int
	Proteins float64
	Fats     float64
	Carbs    float64
	Calories int
}

func decodeIngredients(raw json.RawMessage) ([]recipeIngredient, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []recipeIngredientJSON
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	out := make([]recipeIngredient, 0, len(items))
	for _, item := range items {
		ing := recipeIngredient{
			Name:     strings.TrimSpace(item.Name),
			Grams:    numberToInt(item.Grams),
			Proteins: item.Proteins,
			Fats:     item.Fats,
			Carbs:    item.Carbs,
			Calories: numberToInt(item.Calories),
		}
		if ing.Name == "" {
			continue
		}
		// Trust the macros over the stated number when they disagree.
		implied := ing.Proteins*4 + ing.Fats*9 + ing.Carbs*4
		if implied > 0 && math.Abs(float64(ing.Calories)-implied) > energyTolerance {
			ing.Calories = int(math.Round(implied))
		}
		out = append(out, ing)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// reconcileRecipe replaces the stated totals with the ingredient sums when
// they drift beyond the energy tolerance, and derives the portion weight
// from the ingredient grams when it is missing.
func reconcileRecipe(dish *PlanMeal, ingredients []recipeIngredient, logger *zap.Logger) {
	var proteins, fats, carbs float64
	calories, grams := 0, 0
	for _, ing := range ingredients {
		proteins += ing.Proteins
		fats += ing.Fats
		carbs += ing.Carbs
		calories += ing.Calories
		grams += ing.Grams
	}

	if calories > 0 && math.Abs(float64(dish.Calories-calories)) > energyTolerance {
		logger.Debug("recipe totals rewritten from ingredient sums",
			zap.Int("stated", dish.Calories), zap.Int("computed", calories))
		dish.Calories = calories
		dish.Proteins = round1(proteins)
		dish.Fats = round1(fats)
		dish.Carbs = round1(carbs)
	}
	if dish.PortionSize <= 0 && grams > 0 {
		dish.PortionSize = grams
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func renderIngredients(ingredients []recipeIngredient) string {
	lines := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.Grams > 0 {
			lines = append(lines, fmt.Sprintf("%s — %d г", ing.Name, ing.Grams))
		} else {
			lines = append(lines, ing.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatDishMessage renders a recipe into the chat text shown to the user.
// scrapeDishText parses this same layout back, so the two must stay in sync.
func FormatDishMessage(dish *PlanMeal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", dish.RecipeName)
	fmt.Fprintf(&b, "Калории: %d ккал\n", dish.Calories)
	fmt.Fprintf(&b, "Белки: %s г\n", trimFloat(dish.Proteins))
	fmt.Fprintf(&b, "Жиры: %s г\n", trimFloat(dish.Fats))
	fmt.Fprintf(&b, "Углеводы: %s г\n", trimFloat(dish.Carbs))
	if dish.PortionSize > 0 {
		fmt.Fprintf(&b, "Порция: %d г\n", dish.PortionSize)
	}
	if dish.Ingredients != "" {
		fmt.Fprintf(&b, "\nИнгредиенты:\n%s\n", dish.Ingredients)
	}
	if dish.Instruction != "" {
		fmt.Fprintf(&b, "\nПриготовление:\n%s\n", dish.Instruction)
	}
	if dish.CookingTime > 0 {
		fmt.Fprintf(&b, "\nВремя приготовления: %d мин\n", dish.CookingTime)
	}
	return strings.TrimRight(b.String(), "\n")
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(round1(v), 'f', -1, 64)
}

var (
	reDishCalories = regexp.MustCompile(`(?i)калори[ия][^:\d]*:?\s*(\d+)`)
	reDishProteins = regexp.MustCompile(`(?i)белки[^:\d]*:?\s*(\d+(?:[.,]\d+)?)`)
	reDishFats     = regexp.MustCompile(`(?i)жиры[^:\d]*:?\s*(\d+(?:[.,]\d+)?)`)
	reDishCarbs    = regexp.MustCompile(`(?i)углеводы[^:\d]*:?\s*(\d+(?:[.,]\d+)?)`)
	reDishPortion  = regexp.MustCompile(`(?i)порци[яи][^:\d]*:?\s*(\d+)\s*г`)
	reDishTime     = regexp.MustCompile(`(?i)время\s+приготовления[^:\d]*:?\s*(\d+)\s*мин`)
	reDishSection  = regexp.MustCompile(`(?i)^\s*(ингредиенты|приготовление|инструкция)\s*:?\s*$`)
)

// scrapeDishText recovers a recipe from the rendered chat layout, or from
// similar free text with labelled КБЖУ lines.
func scrapeDishText(content string) *PlanMeal {
	text := StripFormatting(content)
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil
	}

	dish := &PlanMeal{}
	if m := reDishCalories.FindStringSubmatch(text); m != nil {
		dish.Calories, _ = strconv.Atoi(m[1])
	}
	if dish.Calories == 0 {
		return nil
	}
	dish.Proteins = scrapeFloat(reDishProteins, text)
	dish.Fats = scrapeFloat(reDishFats, text)
	dish.Carbs = scrapeFloat(reDishCarbs, text)
	if m := reDishPortion.FindStringSubmatch(text); m != nil {
		dish.PortionSize, _ = strconv.Atoi(m[1])
	}
	if m := reDishTime.FindStringSubmatch(text); m != nil {
		dish.CookingTime, _ = strconv.Atoi(m[1])
	}

	// First non-empty line that is not a labelled value is the dish name.
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || looksLikeDishLabel(trimmed) {
			continue
		}
		dish.RecipeName = strings.Trim(trimmed, " .:!")
		break
	}
	if dish.RecipeName == "" {
		return nil
	}

	dish.Ingredients = scrapeSection(lines, "ингредиенты")
	dish.Instruction = scrapeSection(lines, "приготовление", "инструкция")
	return dish
}

func looksLikeDishLabel(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range []string{"калори", "белки", "жиры", "углеводы", "порци", "время", "ингредиенты", "приготовление", "инструкция"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func scrapeFloat(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// scrapeSection collects the lines following a section heading up to the
// next heading or blank-then-heading boundary.
func scrapeSection(lines []string, headings ...string) string {
	start := -1
	for i, line := range lines {
		m := reDishSection.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, h := range headings {
			if strings.EqualFold(m[1], h) {
				start = i + 1
			}
		}
		if start == i+1 {
			break
		}
	}
	if start < 0 {
		return ""
	}

	var collected []string
	for _, line := range lines[start:] {
		if reDishSection.MatchString(line) || looksLikeDishLabel(strings.TrimSpace(line)) {
			break
		}
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" && len(collected) == 0 {
			continue
		}
		collected = append(collected, trimmed)
	}
	return strings.TrimSpace(strings.Join(collected, "\n"))
}
