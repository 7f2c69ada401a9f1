// Package review stores user feedback and lists it for display and moderation.
package review

import (
	"errors"
)

var (
	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrCommentTooLong is returned for comments over MaxCommentLength characters.
	ErrCommentTooLong = errors.New("comment is too long")
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// MaxCommentLength is the longest accepted comment, in characters.
const MaxCommentLength = 2000

// GuestName is used when the reviewer has not registered.
const GuestName = "Guest User"

// Status is the moderation state of a review.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Review is one piece of user feedback.
type Review struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Status   Status `json:"status"`
	// Date is an ISO-8601 date or timestamp.
	Date string `json:"date"`
}

// SeedReviews returns the approved reviews shown before any feedback is collected.
func SeedReviews() []Review {
	return []Review{
		{
			ID:       "1",
			UserName: "Sarah M.",
			Rating:   5,
			Comment:  "Great app! Helped me save money on my commute.",
			Status:   StatusApproved,
			Date:     "2023-10-15",
		},
		{
			ID:       "2",
			UserName: "Ahmed K.",
			Rating:   4,
			Comment:  "Very accurate calculations. Needs more bus lines in my area though.",
			Status:   StatusApproved,
			Date:     "2023-11-02",
		},
	}
}
