package dto

import "time"

// ScoringResult is the fixed-shape output of the scoring collaborator.
// Every band falls on the 1-12 examiner scale.
type ScoringResult struct {
	Overall         float64  `json:"overall"`
	Grammar         float64  `json:"grammar"`
	Vocabulary      float64  `json:"vocabulary"`
	Coherence       float64  `json:"coherence"`
	TaskRelevance   float64  `json:"taskRelevance"`
	Feedback        string   `json:"feedback"`
	ImprovementTips []string `json:"improvementTips"`
}

// AttemptResponse is a full attempt record as returned to clients.
type AttemptResponse struct {
	ID        string        `json:"id"`
	UserID    *string       `json:"user_id,omitempty"`
	GuestID   *string       `json:"guest_id,omitempty"`
	TaskType  string        `json:"task_type"`
	Prompt    string        `json:"prompt"`
	Response  string        `json:"response"`
	WordCount int           `json:"word_count"`
	TimeSpent int           `json:"time_spent"`
	Score     ScoringResult `json:"score"`
	CreatedAt time.Time     `json:"created_at"`
}

// RecentAttemptDTO is the compact form used in statistics.
type RecentAttemptDTO struct {
	ID        string    `json:"id"`
	TaskType  string    `json:"taskType"`
	Score     float64   `json:"score"`
	WordCount int       `json:"wordCount"`
	TimeSpent int       `json:"timeSpent"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatsResponse aggregates an identity's practice history. An identity
// with no attempts yields all zeroes and an empty recent list.
type StatsResponse struct {
	TotalAttempts  int                `json:"totalAttempts"`
	AverageScore   float64            `json:"averageScore"`
	TimePracticed  int                `json:"timePracticed"`
	WordsWritten   int                `json:"wordsWritten"`
	RecentAttempts []RecentAttemptDTO `json:"recentAttempts"`
}

// EntitlementResponse is the trial/promo permission state for an actor.
type EntitlementResponse struct {
	HasUsedFreeTest  bool `json:"hasUsedFreeTest"`
	PromoCodeApplied bool `json:"promoCodeApplied"`
	RemainingTests   int  `json:"remainingTests"`
}

// PromoResponse reports the outcome of a promo code application.
type PromoResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Entitlement EntitlementResponse `json:"entitlement"`
}

// CheckoutResponse carries the stubbed checkout session URL.
type CheckoutResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// PromptBankResponse lists the built-in prompts for one task type.
type PromptBankResponse struct {
	TaskType string      `json:"taskType"`
	Prompts  []PromptDTO `json:"prompts"`
}

type PromptDTO struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"prompt"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
