package ai

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMotivatorDecorate(t *testing.T) {
	m := NewMotivator(rand.NewSource(1))

	const text = "План на 3 дня:"
	decorated, plain := 0, 0
	for i := 0; i < 200; i++ {
		got := m.Decorate(text)
		if got == text {
			plain++
			continue
		}
		decorated++
		assert.True(t, strings.HasPrefix(got, text+"\n\n"))
		phrase := strings.TrimPrefix(got, text+"\n\n")
		assert.Contains(t, motivationalPhrases, phrase)
	}
	assert.Greater(t, decorated, 0)
	assert.Greater(t, plain, decorated, "encouragement stays occasional")
}

func TestMotivatorNil(t *testing.T) {
	var m *Motivator
	assert.Equal(t, "текст", m.Decorate("текст"))
}
