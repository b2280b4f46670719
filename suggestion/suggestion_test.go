package suggestion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YuminosukeSato/sleepq/sleep"
)

func TestFor(t *testing.T) {
	tests := []struct {
		label sleep.Label
		hours string
	}{
		{sleep.Excellent, "7-9 hours"},
		{sleep.Good, "7-9 hours"},
		{sleep.Fair, "8-10 hours"},
		{sleep.Poor, "9-11 hours"},
		{sleep.Label("Unknown"), "9-11 hours"},
		{sleep.Label(""), "9-11 hours"},
	}
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			s := For(tt.label)
			assert.Equal(t, tt.hours, s.SleepHours)
			assert.NotEmpty(t, s.ActivityAdvice)
			assert.NotEmpty(t, s.Message)
		})
	}
	assert.Equal(t, For(sleep.Poor), For("Unknown"))
}

func TestLines(t *testing.T) {
	lines := For(sleep.Fair).Lines()
	assert.Equal(t, []string{
		"Aim for 8-10 hours of sleep per night",
		"Do 100-150 minutes of moderate exercise per week",
		"Your sleep quality could be improved.",
	}, lines)
	assert.Len(t, General(), 3)
}
