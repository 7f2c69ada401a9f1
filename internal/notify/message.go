// Package notify delivers administrator notifications for submitted reviews.
//
// The API publishes a ReviewMessage per submission; the worker consumes them
// and e-mails the administrator.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/ecoroute/ecoroute/internal/review"
)

// MessageType identifies review notifications on the topic.
const MessageType = "review_submitted"

// ReviewMessage is the payload published for each submitted review.
type ReviewMessage struct {
	Type   string        `json:"type"`
	Review review.Review `json:"review"`
}

// Encode serializes a review notification.
func Encode(r review.Review) ([]byte, error) {
	data, err := json.Marshal(ReviewMessage{Type: MessageType, Review: r})
	if err != nil {
		return nil, fmt.Errorf("encode review message: %w", err)
	}
	return data, nil
}

// Subject is the e-mail subject line for a review.
func Subject(r review.Review) string {
	return "New Review from " + r.UserName
}

// Body is the plain-text e-mail body for a review.
func Body(r review.Review) string {
	return fmt.Sprintf("%s (%d stars)\n\nSubmitted %s, review %s, status %s.",
		r.Comment, r.Rating, r.Date, r.ID, r.Status)
}
