package models

// Review is a user review as displayed.
type Review struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Status   string `json:"status"`
	Date     string `json:"date"`
}

// ReviewList is a list of reviews.
type ReviewList struct {
	Items []Review `json:"items"`
}

// SubmitReviewRequest is the body of POST /v1/reviews.
// Rating range is checked by the review service so 0 reports the same error as 6.
type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
