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

// defaultMealPerc is the share of the daily norm assigned to a slot when the
// model omitted its calories. Shares are renormalized over the meals that
// actually need filling.
var defaultMealPerc = map[MealType]float64{
	MealBreakfast: 0.25,
	MealLunch:     0.35,
	MealDinner:    0.20,
	MealSnack:     0.10,
	"snack2":      0.10,
	"snack3":      0.08,
}

const fallbackMealPerc = 0.10

// Realism bounds for calories-per-gram. Outside these a plan entry is
// considered a model slip and corrected toward the target density.
const (
	maxCaloriesPerGram     = 2.5
	correctedUpperDensity  = 2.0
	minCaloriesPerGram     = 0.3
	correctedLowerDensity  = 0.5
	calorieAdjustThreshold = 0.30
)

var (
	reHeaderNorm = regexp.MustCompile(`(?i)суточная\s+норма\s+калорий[^:\d]*:?\s*(\d{3,5})`)
	reHeaderDays = regexp.MustCompile(`(?i)план\s+на\s+(\d{1,2})\s*д(?:ень|ня|ней)`)

	reRequestedWeek   = regexp.MustCompile(`(?i)на\s+недел[юи]`)
	reRequestedOneDay = regexp.MustCompile(`(?i)на\s+(?:один\s+)?день`)
	reRequestedNDays  = regexp.MustCompile(`(?i)на\s+(\d{1,2})\s*д(?:ень|ня|ней)`)

	reDayHeading  = regexp.MustCompile(`(?i)^\s*(?:\*{0,2})день\s+(\d+)`)
	reTextMeal    = regexp.MustCompile(`(?i)^\s*[-•*]?\s*(завтрак|второй завтрак|обед|полдник|ужин|перекус(?:\s*\d)?)\s*[:\-–]\s*(.+)$`)
	reMealKcal    = regexp.MustCompile(`(?i)[\(\[,–\-—]?\s*(\d{2,4})\s*ккал`)
	reMealGrams   = regexp.MustCompile(`(?i)(\d{2,4})\s*г(?:рамм)?(?:[^а-яё]|$)`)
	reScrapedMeal = regexp.MustCompile(`(?is)"type"\s*:\s*"([^"]+)"\s*,?\s*"recipeName"\s*:\s*"([^"]+)"\s*,?\s*(?:"calories"\s*:\s*(\d+))?\s*,?\s*(?:"portionSize"\s*:\s*(\d+))?`)
)

// ParseRequestedDays extracts how many days the user asked for. Zero means
// the request did not constrain the horizon.
func ParseRequestedDays(content string) int {
	lower := strings.ToLower(content)
	if m := reRequestedNDays.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if reRequestedWeek.MatchString(lower) {
		return 7
	}
	if reRequestedOneDay.MatchString(lower) {
		return 1
	}
	return 0
}

// PlanParser turns a raw model reply into structured plan days.
type PlanParser struct {
	logger *zap.Logger
}

// NewPlanParser creates a plan parser.
func NewPlanParser(logger *zap.Logger) *PlanParser {
	return &PlanParser{logger: logger}
}

type planMealJSON struct {
	Type        string      `json:"type"`
	RecipeName  string      `json:"recipeName"`
	Name        string      `json:"name"`
	Calories    json.Number `json:"calories"`
	PortionSize json.Number `json:"portionSize"`
	Proteins    float64     `json:"proteins"`
	Fats        float64     `json:"fats"`
	Carbs       float64     `json:"carbs"`
	Instruction string      `json:"instruction"`
	CookingTime json.Number `json:"cookingTime"`
}

type planDayJSON struct {
	Meals   []planMealJSON `json:"meals"`
	Warning string         `json:"warning"`
}

// Parse runs every extraction strategy in order and post-processes the
// first one that yields meals. JSON-path meals are filtered to the slot
// keys valid for the given frequency and custom labels. The second return
// value reports whether any structured plan was recovered; when false the
// caller should fall back to echoing the raw reply.
func (p *PlanParser) Parse(content string, mealFrequency, requestedDays int, customLabels []string) (*ParsedPlan, bool) {
	norm := headerNorm(content)
	validSlots := MealTypeSet(mealFrequency, customLabels)

	days := p.parseJSONArray(content, validSlots)
	if days == nil {
		days = p.parseJSONObject(content, validSlots)
	}
	if days == nil {
		days = p.parseTextGrammar(content)
	}
	if days == nil {
		days = p.scrapeStructure(content)
	}
	if len(days) == 0 {
		p.logger.Warn("no plan structure recovered from model reply",
			zap.Int("content_length", len(content)))
		return nil, false
	}

	for i := range days {
		normalizeDay(&days[i], norm, mealFrequency)
	}
	limit := requestedDays
	if limit == 0 {
		limit = headerDays(content)
	}
	days = limitPlanToDays(days, limit)

	return &ParsedPlan{Days: days, DailyNorm: norm}, true
}

func headerNorm(content string) int {
	if m := reHeaderNorm.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

// headerDays reads the day count the model itself announced, used to cut
// over-produced days when the request did not constrain the horizon.
func headerDays(content string) int {
	if m := reHeaderDays.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

func (p *PlanParser) parseJSONArray(content string, validSlots map[MealType]bool) []PlanDay {
	if !looksLikeJSON(content) {
		return nil
	}
	raw := extractJSON(content)
	if !strings.HasPrefix(raw, "[") {
		return nil
	}

	var dayItems []planDayJSON
	if err := decodeJSON(raw, &dayItems); err == nil && len(dayItems) > 0 && dayItems[0].Meals != nil {
		return convertDays(dayItems, validSlots)
	}

	// Some replies flatten a single day into a bare array of meals.
	var mealItems []planMealJSON
	if err := decodeJSON(raw, &mealItems); err == nil && len(mealItems) > 0 {
		if day := convertDay(planDayJSON{Meals: mealItems}, validSlots); len(day.Meals) > 0 {
			return []PlanDay{day}
		}
	}
	return nil
}

func (p *PlanParser) parseJSONObject(content string, validSlots map[MealType]bool) []PlanDay {
	if !looksLikeJSON(content) {
		return nil
	}
	raw := extractObjectJSON(content)
	if !strings.HasPrefix(raw, "{") {
		return nil
	}

	var wrapper struct {
		Days  []planDayJSON  `json:"days"`
		Plan  []planDayJSON  `json:"plan"`
		Meals []planMealJSON `json:"meals"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return nil
	}
	switch {
	case len(wrapper.Days) > 0:
		return convertDays(wrapper.Days, validSlots)
	case len(wrapper.Plan) > 0:
		return convertDays(wrapper.Plan, validSlots)
	case len(wrapper.Meals) > 0:
		day := convertDay(planDayJSON{Meals: wrapper.Meals}, validSlots)
		if len(day.Meals) > 0 {
			return []PlanDay{day}
		}
	}
	return nil
}

// parseTextGrammar handles plain-prose plans: optional "День N" headings
// with meal lines like "Обед: Гречка с курицей — 550 ккал, 350 г".
func (p *PlanParser) parseTextGrammar(content string) []PlanDay {
	var days []PlanDay
	current := PlanDay{}

	flush := func() {
		if len(current.Meals) > 0 {
			days = append(days, current)
		}
		current = PlanDay{}
	}

	for _, line := range strings.Split(StripFormatting(content), "\n") {
		if reDayHeading.MatchString(line) {
			flush()
			continue
		}
		m := reTextMeal.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rest := m[2]
		meal := PlanMeal{Type: textMealType(m[1])}

		if kcal := reMealKcal.FindStringSubmatch(rest); kcal != nil {
			meal.Calories, _ = strconv.Atoi(kcal[1])
		}
		if grams := reMealGrams.FindStringSubmatch(rest); grams != nil {
			meal.PortionSize, _ = strconv.Atoi(grams[1])
		}
		meal.RecipeName = cleanMealName(rest)
		if meal.RecipeName == "" {
			continue
		}
		current.Meals = append(current.Meals, meal)
	}
	flush()

	if len(days) == 0 {
		return nil
	}
	return days
}

// scrapeStructure recovers meals from broken JSON by matching the field
// tokens directly. A new day starts whenever a slot type repeats.
func (p *PlanParser) scrapeStructure(content string) []PlanDay {
	matches := reScrapedMeal.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	var days []PlanDay
	current := PlanDay{}
	seen := map[MealType]bool{}

	for _, m := range matches {
		mealType := MealType(strings.ToLower(strings.TrimSpace(m[1])))
		if seen[mealType] {
			days = append(days, current)
			current = PlanDay{}
			seen = map[MealType]bool{}
		}
		seen[mealType] = true

		meal := PlanMeal{Type: mealType, RecipeName: strings.TrimSpace(m[2])}
		if m[3] != "" {
			meal.Calories, _ = strconv.Atoi(m[3])
		}
		if m[4] != "" {
			meal.PortionSize, _ = strconv.Atoi(m[4])
		}
		if meal.Empty() {
			continue
		}
		current.Meals = append(current.Meals, meal)
	}
	if len(current.Meals) > 0 {
		days = append(days, current)
	}
	if len(days) == 0 {
		return nil
	}
	p.logger.Info("recovered plan via structural scrape", zap.Int("days", len(days)))
	return days
}

func convertDays(items []planDayJSON, validSlots map[MealType]bool) []PlanDay {
	days := make([]PlanDay, 0, len(items))
	for _, item := range items {
		day := convertDay(item, validSlots)
		if len(day.Meals) > 0 {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil
	}
	return days
}

func convertDay(item planDayJSON, validSlots map[MealType]bool) PlanDay {
	day := PlanDay{Warning: item.Warning}
	for _, m := range item.Meals {
		mealType := MealType(strings.ToLower(strings.TrimSpace(m.Type)))
		// Unknown slot keys ("dessert", "supper") must not displace real
		// meals when the day is later truncated to the frequency.
		if !validSlots[mealType] {
			continue
		}
		name := m.RecipeName
		if name == "" {
			name = m.Name
		}
		meal := PlanMeal{
			Type:        mealType,
			RecipeName:  strings.TrimSpace(name),
			Calories:    numberToInt(m.Calories),
			PortionSize: numberToInt(m.PortionSize),
			Proteins:    m.Proteins,
			Fats:        m.Fats,
			Carbs:       m.Carbs,
			CookingTime: numberToInt(m.CookingTime),
			Instruction: m.Instruction,
		}
		if meal.Empty() {
			continue
		}
		day.Meals = append(day.Meals, meal)
	}
	return day
}

func numberToInt(n json.Number) int {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return int(v)
	}
	if f, err := n.Float64(); err == nil {
		return int(math.Round(f))
	}
	return 0
}

func textMealType(label string) MealType {
	lower := strings.ToLower(strings.TrimSpace(label))
	if t, ok := localizedMealTypes[lower]; ok {
		return t
	}
	if strings.HasPrefix(lower, "перекус") {
		return MealSnack
	}
	return MealType(lower)
}

func cleanMealName(rest string) string {
	// Strip the trailing "(550 ккал, 350 г)" tail and separators.
	name := rest
	if idx := reMealKcal.FindStringIndex(name); idx != nil {
		name = name[:idx[0]]
	}
	name = strings.Trim(name, " \t-–—,;:.()[]")
	return strings.TrimSpace(name)
}

// normalizeDay fills missing calories from the daily norm, corrects
// unrealistic densities and pads the day up to the configured frequency.
func normalizeDay(day *PlanDay, norm, mealFrequency int) {
	fillMissingCalories(day, norm)
	for i := range day.Meals {
		correctRealism(&day.Meals[i])
	}
	padToFrequency(day, norm, mealFrequency)
}

func fillMissingCalories(day *PlanDay, norm int) {
	known := 0
	var missing []int
	weightSum := 0.0
	for i, meal := range day.Meals {
		if meal.Calories > 0 {
			known += meal.Calories
			continue
		}
		missing = append(missing, i)
		weightSum += mealPerc(meal.Type)
	}
	if len(missing) == 0 {
		return
	}

	if norm > 0 && norm > known && weightSum > 0 {
		remaining := norm - known
		for _, i := range missing {
			share := mealPerc(day.Meals[i].Type) / weightSum
			day.Meals[i].Calories = int(math.Round(float64(remaining) * share))
		}
		return
	}
	// No usable norm: estimate from the portion at a typical density.
	for _, i := range missing {
		if day.Meals[i].PortionSize > 0 {
			day.Meals[i].Calories = day.Meals[i].PortionSize * 2
		}
	}
}

func mealPerc(t MealType) float64 {
	if p, ok := defaultMealPerc[t]; ok {
		return p
	}
	return fallbackMealPerc
}

// correctRealism clamps calorie density into a plausible band. When the
// stated calories are close to what the portion implies the calories are
// trusted less than the portion; otherwise the portion is resized.
func correctRealism(meal *PlanMeal) {
	if meal.PortionSize <= 0 {
		if meal.Calories > 0 {
			meal.PortionSize = int(math.Round(float64(meal.Calories) / correctedUpperDensity))
		}
		return
	}
	if meal.Calories <= 0 {
		return
	}
	density := float64(meal.Calories) / float64(meal.PortionSize)

	if density > maxCaloriesPerGram {
		implied := float64(meal.PortionSize) * correctedUpperDensity
		if math.Abs(float64(meal.Calories)-implied)/float64(meal.Calories) <= calorieAdjustThreshold {
			meal.Calories = int(math.Round(implied))
		} else {
			meal.PortionSize = int(math.Round(float64(meal.Calories) / correctedUpperDensity))
		}
		return
	}
	if density < minCaloriesPerGram && meal.Calories > 100 {
		meal.PortionSize = int(math.Round(float64(meal.Calories) / correctedLowerDensity))
	}
}

// padToFrequency appends filler snacks so every day carries exactly the
// configured number of meals.
func padToFrequency(day *PlanDay, norm, mealFrequency int) {
	if mealFrequency < 1 {
		mealFrequency = 1
	}
	for len(day.Meals) < mealFrequency {
		sum := 0
		for _, m := range day.Meals {
			sum += m.Calories
		}
		calories := 0
		if norm > sum {
			remaining := norm - sum
			slots := mealFrequency - len(day.Meals)
			calories = remaining / slots
		}
		meal := PlanMeal{
			Type:       MealSnack,
			RecipeName: "Дополнительный перекус",
			Calories:   calories,
		}
		if calories > 0 {
			meal.PortionSize = int(math.Round(float64(calories) / correctedUpperDensity))
		}
		day.Meals = append(day.Meals, meal)
	}
	if len(day.Meals) > mealFrequency {
		day.Meals = day.Meals[:mealFrequency]
	}
}

func limitPlanToDays(days []PlanDay, requested int) []PlanDay {
	if requested > 0 && len(days) > requested {
		return days[:requested]
	}
	return days
}

// FormatPlanOutput renders normalized plan days back into the chat text
// shown to the user.
func FormatPlanOutput(plan *ParsedPlan, mealFrequency int, customLabels []string) string {
	var b strings.Builder
	if plan.DailyNorm > 0 {
		fmt.Fprintf(&b, "Ваша суточная норма калорий для достижения вашей цели: %d ккал.\n\n", plan.DailyNorm)
	}
	fmt.Fprintf(&b, "План на %d %s:\n", len(plan.Days), daysWord(len(plan.Days)))

	for i, day := range plan.Days {
		if len(plan.Days) > 1 {
			fmt.Fprintf(&b, "\nДень %d:\n", i+1)
		} else {
			b.WriteString("\n")
		}
		total := 0
		for _, meal := range day.Meals {
			label := LabelFor(meal.Type, mealFrequency, customLabels)
			fmt.Fprintf(&b, "%s: %s — %d ккал (%d г)\n", label, meal.RecipeName, meal.Calories, meal.PortionSize)
			total += meal.Calories
		}
		fmt.Fprintf(&b, "Итого за день: %d ккал\n", total)
		if day.Warning != "" {
			fmt.Fprintf(&b, "%s\n", day.Warning)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func daysWord(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 14:
		return "дней"
	case n%10 == 1:
		return "день"
	case n%10 >= 2 && n%10 <= 4:
		return "дня"
	default:
		return "дней"
	}
}
