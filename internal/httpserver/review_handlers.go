package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/service"
)

// ReviewRoutes returns the sub-router mounted at /api/reviews.
func ReviewRoutes(reviews *service.ReviewService, requireUser func(http.Handler) http.Handler, log logrus.FieldLogger) chi.Router {
	r := chi.NewRouter()
	r.Get("/user/{userID}", handleUserReviews(reviews, log))
	r.With(requireUser).Post("/", handleCreateReview(reviews, log))
	return r
}

// @Summary      Review a completed ride
// @Description  Rates the publisher of a completed posting and returns their new rating
// @Tags         reviews
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body service.ReviewInput true "Review"
// @Success      201  {object}  domain.RatingSummary
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /reviews [post]
func handleCreateReview(reviews *service.ReviewService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.ReviewInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		sum, err := reviews.Create(r.Context(), CurrentUser(r).ID, in)
		if errors.Is(err, domain.ErrConflict) {
			writeErrorMessage(w, http.StatusConflict, "already reviewed")
			return
		}
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, sum)
	}
}

// @Summary      Reviews received by a user
// @Tags         reviews
// @Produce      json
// @Param        userID path  int true  "User ID"
// @Param        page   query int false "Page, from 1" default(1)
// @Param        limit  query int false "Page size"    default(10)
// @Success      200  {object}  domain.ReviewPage
// @Failure      400  {object}  errorResponse
// @Router       /reviews/user/{userID} [get]
func handleUserReviews(reviews *service.ReviewService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDParam(w, r)
		if !ok {
			return
		}
		page, limit, ok := pageQuery(w, r, defaultListLimit, maxListLimit)
		if !ok {
			return
		}
		res, err := reviews.ListForUser(r.Context(), userID, page, limit)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
