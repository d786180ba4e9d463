package domain

import "time"

// Review is one user's rating of another after a completed ride. A user
// reviews a given posting at most once.
type Review struct {
	ID         int64     `json:"id"`
	TargetKind RideKind  `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewView is a review with its author's display fields.
type ReviewView struct {
	Review
	FromUser UserBrief `json:"from_user"`
}

// ReviewPage is one page of reviews received by a user, newest first.
type ReviewPage struct {
	List  []*ReviewView `json:"list"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// RatingSummary is the reviewed user's aggregate after a new review.
type RatingSummary struct {
	ReviewID    int64   `json:"id"`
	ToUserID    int64   `json:"to_user_id"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}
