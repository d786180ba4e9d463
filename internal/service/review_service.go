package service

import (
	"context"
	"unicode/utf8"

	"rideshare_go/internal/domain"
)

const (
	defaultReviewPageLimit = 10
	maxReviewPageLimit     = 100
)

// ReviewInput is a rating of the publisher of a completed posting.
type ReviewInput struct {
	TargetKind domain.RideKind `json:"target_type"`
	TargetID   int64           `json:"target_id"`
	ToUserID   int64           `json:"to_user_id"`
	Rating     int             `json:"rating"`
	Comment    *string         `json:"comment"`
}

// ReviewService records reviews and keeps user ratings in step with them.
type ReviewService struct {
	reviews domain.ReviewRepository
}

func NewReviewService(reviews domain.ReviewRepository) *ReviewService {
	return &ReviewService{reviews: reviews}
}

// Create stores a review by fromUserID and returns the reviewed user's new
// rating.
func (s *ReviewService) Create(ctx context.Context, fromUserID int64, in ReviewInput) (*domain.RatingSummary, error) {
	if !in.TargetKind.Valid() {
		return nil, domain.ValidationError("target_type must be passenger or driver")
	}
	if in.TargetID <= 0 || in.ToUserID <= 0 {
		return nil, domain.ValidationError("target_id and to_user_id are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, domain.ValidationError("rating must be between 1 and 5")
	}
	if in.Comment != nil && utf8.RuneCountInString(*in.Comment) > 500 {
		return nil, domain.ValidationError("comment must be at most 500 characters")
	}
	if in.ToUserID == fromUserID {
		return nil, domain.ValidationError("cannot review yourself")
	}

	rv := &domain.Review{
		TargetKind: in.TargetKind,
		TargetID:   in.TargetID,
		FromUserID: fromUserID,
		ToUserID:   in.ToUserID,
		Rating:     in.Rating,
	}
	if in.Comment != nil && *in.Comment != "" {
		rv.Comment = in.Comment
	}
	return s.reviews.Create(ctx, rv)
}

// ListForUser returns the reviews userID received, newest first.
func (s *ReviewService) ListForUser(ctx context.Context, userID int64, page, limit int) (*domain.ReviewPage, error) {
	if userID <= 0 {
		return nil, domain.ValidationError("invalid user id")
	}
	page, limit = normalizePage(page, limit, defaultReviewPageLimit, maxReviewPageLimit)

	list, total, err := s.reviews.ListForUser(ctx, userID, offset(page, limit), limit)
	if err != nil {
		return nil, domain.PersistenceError("list reviews", err)
	}
	return &domain.ReviewPage{List: list, Total: total, Page: page, Limit: limit}, nil
}
