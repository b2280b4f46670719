// Package suggestion maps sleep-quality labels to lifestyle advice.
package suggestion

import "github.com/YuminosukeSato/sleepq/sleep"

// Suggestion is the advice shown with a label.
type Suggestion struct {
	SleepHours     string `json:"sleep_hours" yaml:"sleep_hours"`
	ActivityAdvice string `json:"activity_advice" yaml:"activity_advice"`
	Message        string `json:"message" yaml:"message"`
}

var table = map[sleep.Label]Suggestion{
	sleep.Excellent: {
		SleepHours:     "7-9 hours",
		ActivityAdvice: "150+ minutes of moderate exercise per week",
		Message:        "Your sleep quality is excellent! Keep up the good work.",
	},
	sleep.Good: {
		SleepHours:     "7-9 hours",
		ActivityAdvice: "150+ minutes of moderate exercise per week",
		Message:        "Your sleep quality is good!",
	},
	sleep.Fair: {
		SleepHours:     "8-10 hours",
		ActivityAdvice: "100-150 minutes of moderate exercise per week",
		Message:        "Your sleep quality could be improved.",
	},
	sleep.Poor: {
		SleepHours:     "9-11 hours",
		ActivityAdvice: "50-100 minutes of moderate exercise per week",
		Message:        "Your sleep quality needs attention.",
	},
}

// For returns the advice for l. Unknown labels get the Poor entry.
func For(l sleep.Label) Suggestion {
	if s, ok := table[l]; ok {
		return s
	}
	return table[sleep.Poor]
}

// General is the label-independent advice shown when no trained model
// produced the answer.
func General() []string {
	return []string{
		"Aim for 7-9 hours of sleep per night",
		"Do 150+ minutes of moderate exercise per week",
		"Maintain a healthy diet",
	}
}

// Lines renders s as bullet text.
func (s Suggestion) Lines() []string {
	return []string{
		"Aim for " + s.SleepHours + " of sleep per night",
		"Do " + s.ActivityAdvice,
		s.Message,
	}
}
