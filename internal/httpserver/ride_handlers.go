package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/service"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// RideRoutes returns the sub-router for one posting kind, mounted at
// /api/passengers or /api/drivers. Listing and detail are public; the rest
// need a user.
func RideRoutes(kind domain.RideKind, rides *service.RideService, requireUser func(http.Handler) http.Handler, log logrus.FieldLogger) chi.Router {
	r := chi.NewRouter()

	r.Get("/list", handleListRides(kind, rides, log))
	r.Get("/{rideID}", handleGetRide(kind, rides, log))

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/my", handleMyRides(kind, rides, log))
		r.Post("/publish", handlePublishRide(kind, rides, log))
		r.Put("/{rideID}", handleUpdateRide(kind, rides, log))
		r.Delete("/{rideID}", handleCancelRide(kind, rides, log))
	})

	return r
}

// @Summary      List ride postings
// @Description  Open and completed postings of one kind, newest first. kind is passengers or drivers.
// @Tags         rides
// @Produce      json
// @Param        kind        path  string true  "passengers or drivers"
// @Param        page        query int    false "Page, from 1" default(1)
// @Param        limit       query int    false "Page size"    default(10)
// @Param        travel_date query string false "YYYY-MM-DD"
// @Param        origin      query string false "Origin substring"
// @Param        destination query string false "Destination substring"
// @Param        status      query int    false "0 cancelled, 1 open, 2 completed"
// @Success      200  {object}  domain.RidePage
// @Failure      400  {object}  errorResponse
// @Router       /{kind}/list [get]
func handleListRides(kind domain.RideKind, rides *service.RideService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := rideQuery(w, r)
		if !ok {
			return
		}
		page, err := rides.List(r.Context(), kind, q)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// @Summary      My ride postings
// @Tags         rides
// @Security     BearerAuth
// @Produce      json
// @Param        kind   path  string true  "passengers or drivers"
// @Param        page   query int    false "Page, from 1" default(1)
// @Param        limit  query int    false "Page size"    default(10)
// @Param        status query int    false "0 cancelled, 1 open, 2 completed"
// @Success      200  {object}  domain.RidePage
// @Router       /{kind}/my [get]
func handleMyRides(kind domain.RideKind, rides *service.RideService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := rideQuery(w, r)
		if !ok {
			return
		}
		page, err := rides.Mine(r.Context(), kind, CurrentUser(r).ID, q)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// @Summary      Get a ride posting
// @Tags         rides
// @Produce      json
// @Param        kind   path string true "passengers or drivers"
// @Param        rideID path int    true "Posting ID"
// @Success      200  {object}  domain.RideView
// @Failure      404  {object}  errorResponse
// @Router       /{kind}/{rideID} [get]
func handleGetRide(kind domain.RideKind, rides *service.RideService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := rideIDParam(w, r)
		if !ok {
			return
		}
		v, err := rides.Get(r.Context(), kind, id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// @Summary      Publish a ride posting
// @Tags         rides
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        kind  path string            true "passengers or drivers"
// @Param        input body service.RideInput true "Posting"
// @Success      201  {object}  domain.RideView
// @Failure      400  {object}  errorResponse
// @Router       /{kind}/publish [post]
func handlePublishRide(kind domain.RideKind, rides *service.RideService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.RideInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		v, err := rides.Publish(r.Context(), kind, CurrentUser(r).ID, in)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

// @Summary      Update own ride posting
// @Tags         rides
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        kind   path string            true "passengers or drivers"
// @Param        rideID path int               true "Posting ID"
// @Param        input  body service.RideInput true "Fields to change"
// @Success      200  {object}  domain.RideView
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /{kind}/{rideID} [put]
func handleUpdateRide(kind domain.RideKind, rides *service.RideService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := rideIDParam(w, r)
		if !ok {
			return
		}
		var in service.RideInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		v, err := rides.Update(r.Context(), kind, CurrentUser(r).ID, id, in)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// @Summary      Cancel own ride posting
// @Tags         rides
// @Security     BearerAuth
// @Produce      json
// @Param        kind   path string true "passengers or drivers"
// @Param        rideID path int    true "Posting ID"
// @Success      200  {object}  successResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /{kind}/{rideID} [delete]
func handleCancelRide(kind domain.RideKind, rides *service.RideService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := rideIDParam(w, r)
		if !ok {
			return
		}
		if err := rides.Cancel(r.Context(), kind, CurrentUser(r).ID, id); err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func rideIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "rideID"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorMessage(w, http.StatusBadRequest, "invalid ride id")
		return 0, false
	}
	return id, true
}

func rideQuery(w http.ResponseWriter, r *http.Request) (service.RideQuery, bool) {
	page, limit, ok := pageQuery(w, r, defaultListLimit, maxListLimit)
	if !ok {
		return service.RideQuery{}, false
	}
	q := r.URL.Query()
	rq := service.RideQuery{
		Page:        page,
		Limit:       limit,
		TravelDate:  q.Get("travel_date"),
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
	}
	if q.Get("status") != "" {
		st, ok := intQuery(w, r, "status", 0, 0, int(domain.RideStatusCompleted))
		if !ok {
			return service.RideQuery{}, false
		}
		s := domain.RideStatus(st)
		rq.Status = &s
	}
	return rq, true
}
