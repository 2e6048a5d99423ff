package ai

import "math/rand"

// motivationChance is the probability a generated plan ends with an
// encouragement line.
const motivationChance = 0.3

var motivationalPhrases = []string{
	"Вы на правильном пути! Каждый приём пищи приближает Вас к цели.",
	"Отличный выбор! Последовательность важнее идеальности.",
	"Помните: маленькие шаги каждый день дают большой результат.",
	"Ваше тело скажет Вам спасибо за заботу о питании.",
	"Главное — не останавливаться. У Вас всё получится!",
	"Здоровое питание — это вклад в себя, и Вы его уже делаете.",
}

// Motivator occasionally appends an encouragement line to plan replies. The
// randomness source is injected so tests can pin the outcome.
type Motivator struct {
	rng *rand.Rand
}

// NewMotivator creates a motivator backed by the given source.
func NewMotivator(src rand.Source) *Motivator {
	return &Motivator{rng: rand.New(src)}
}

// Decorate returns the text with an encouragement line appended roughly a
// third of the time, unchanged otherwise.
func (m *Motivator) Decorate(text string) string {
	if m == nil || m.rng.Float64() >= motivationChance {
		return text
	}
	return text + "\n\n" + motivationalPhrases[m.rng.Intn(len(motivationalPhrases))]
}
