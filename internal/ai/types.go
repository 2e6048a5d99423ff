package ai

// MessageRole is the role attached to a chat-completion message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single entry in the message sequence sent upstream.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// MealType is a named meal slot key ("breakfast", "lunch", "dinner",
// "snack", "snack2", ...).
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// PlanMeal is one extracted meal of a plan day, or a standalone recipe.
type PlanMeal struct {
	Type        MealType `json:"type"`
	RecipeName  string   `json:"recipeName"`
	Calories    int      `json:"calories"`
	PortionSize int      `json:"portionSize"`
	Proteins    float64  `json:"proteins"`
	Fats        float64  `json:"fats"`
	Carbs       float64  `json:"carbs"`
	Ingredients string   `json:"ingredients"`
	Instruction string   `json:"instruction"`
	CookingTime int      `json:"cookingTime"`
}

// Empty reports whether the meal carries no usable recipe.
func (m PlanMeal) Empty() bool {
	return m.RecipeName == ""
}

// PlanDay is an ordered list of meals for one day. Warning carries a note
// shown to the user when the day list was truncated.
type PlanDay struct {
	Meals   []PlanMeal `json:"meals"`
	Warning string     `json:"warning,omitempty"`
}

// ParsedPlan is the parser's best-effort extraction of a model reply.
type ParsedPlan struct {
	// Days is empty when the reply contained no recognizable plan
	// structure at all.
	Days []PlanDay
	// DailyNorm is the calorie norm stated in the reply header, zero when
	// the header was missing.
	DailyNorm int
}
