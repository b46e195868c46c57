package domain

import "time"

// Submission status constants.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Transaction is a single reward-point movement.
type Transaction struct {
	ID         string    `json:"id"`
	Points     int       `json:"points"`
	Type       string    `json:"type"`
	ResourceID string    `json:"resourceId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Submission is a user-submitted resource (product, paper, or notes) together
// with its moderation status.
type Submission struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// Activity is the user's reward summary and submission history. It is a
// read-only projection from the backend, replaced wholesale on each fetch.
type Activity struct {
	RewardBalance  int           `json:"rewardBalance"`
	RewardEarned   int           `json:"rewardPoints"`
	RewardRedeemed int           `json:"rewardRedeemed"`
	Transactions   []Transaction `json:"transactions"`
	Products       []Submission  `json:"products"`
	PYQs           []Submission  `json:"pyqs"`
	Notes          []Submission  `json:"notes"`
}

// EmptyActivity returns an activity summary with all lists non-nil and empty.
func EmptyActivity() Activity {
	return Activity{
		Transactions: []Transaction{},
		Products:     []Submission{},
		PYQs:         []Submission{},
		Notes:        []Submission{},
	}
}
