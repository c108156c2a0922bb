package task

import (
	"fmt"
	"strings"
	"time"
)

// Type is a closed enumeration of the supported writing tasks. Adding a
// new task type requires touching every switch below, which is intentional.
type Type string

const (
	Email  Type = "email"
	Survey Type = "survey"
)

// Parse validates a wire-level task type string.
func Parse(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case Email:
		return Email, nil
	case Survey:
		return Survey, nil
	default:
		return "", fmt.Errorf("unknown task type %q", s)
	}
}

func (t Type) String() string { return string(t) }

// TimeLimit returns the timed-session budget for the task.
func (t Type) TimeLimit() time.Duration {
	switch t {
	case Email:
		return 27 * time.Minute
	case Survey:
		return 26 * time.Minute
	default:
		return 27 * time.Minute
	}
}

// WordTarget is the expected response length band.
type WordTarget struct {
	Min int
	Max int
}

func (t Type) WordTarget() WordTarget {
	switch t {
	case Email:
		return WordTarget{Min: 150, Max: 200}
	case Survey:
		return WordTarget{Min: 200, Max: 250}
	default:
		return WordTarget{Min: 150, Max: 200}
	}
}

// Instructions returns the generic guidance shown alongside a prompt.
func (t Type) Instructions() string {
	switch t {
	case Email:
		return "Write a formal or informal email in response to the situation below. Include proper greeting and closing."
	case Survey:
		return "Respond to the survey questions below with detailed answers. Support your opinions with examples."
	default:
		return ""
	}
}

// Fit classifies a word count against the target band.
type Fit int

const (
	TooShort Fit = iota
	Acceptable
	TooLong
)

func (w WordTarget) Classify(count int) Fit {
	switch {
	case count < w.Min:
		return TooShort
	case count > w.Max:
		return TooLong
	default:
		return Acceptable
	}
}

// WordCount counts whitespace-delimited non-empty tokens in the trimmed
// text. An empty or whitespace-only draft counts as zero words.
func WordCount(text string) int {
	return len(strings.Fields(strings.TrimSpace(text)))
}
