package dto

// ScoreRequest asks the scoring collaborator to evaluate one response.
type ScoreRequest struct {
	TaskType  string `json:"taskType" binding:"required,oneof=email survey"`
	Prompt    string `json:"prompt" binding:"required"`
	Response  string `json:"response" binding:"required"`
	WordCount int    `json:"wordCount" binding:"required,min=1"`
}

// AttemptCreateRequest records one finished writing attempt. GuestID is
// used when no bearer token accompanies the request; both may be absent
// for a fully anonymous save.
type AttemptCreateRequest struct {
	TaskType  string        `json:"taskType" binding:"required,oneof=email survey"`
	Prompt    string        `json:"prompt" binding:"required"`
	Response  string        `json:"response" binding:"required"`
	WordCount int           `json:"wordCount" binding:"required,min=1"`
	TimeSpent int           `json:"timeSpent" binding:"min=0"`
	Score     ScoringResult `json:"score" binding:"required"`
	GuestID   string        `json:"guestId"`
}

// PromoRequest applies a promo code to the signed-in user's entitlement.
type PromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckoutRequest starts a (stubbed) payment checkout session.
type CheckoutRequest struct {
	Plan string `json:"plan"`
}
