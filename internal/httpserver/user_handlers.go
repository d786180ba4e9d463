package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"rideshare_go/internal/service"
)

// Presence reports whether a user has a live connection.
type Presence interface {
	OnlineUsers() []int64
	IsOnline(userID int64) bool
}

type onlineUsersResponse struct {
	Users []int64 `json:"users"`
}

// publicProfile is what other users may see.
type publicProfile struct {
	ID          int64   `json:"id"`
	RealName    *string `json:"real_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
	Online      bool    `json:"online"`
}

type updateProfileRequest struct {
	RealName  *string `json:"real_name"`
	AvatarURL *string `json:"avatar_url"`
}

// @Summary      Online users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  onlineUsersResponse
// @Router       /users/online [get]
func handleListOnlineUsers(presence Presence) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, onlineUsersResponse{Users: presence.OnlineUsers()})
	}
}

// @Summary      Get a user's public profile
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        userID path int true "User ID"
// @Success      200  {object}  publicProfile
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{userID} [get]
func handleGetUser(userSvc *service.UserService, presence Presence, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := userIDParam(w, r)
		if !ok {
			return
		}
		user, err := userSvc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, publicProfile{
			ID:          user.ID,
			RealName:    user.RealName,
			AvatarURL:   user.AvatarURL,
			Rating:      user.Rating,
			RatingCount: user.RatingCount,
			Online:      presence.IsOnline(user.ID),
		})
	}
}

// @Summary      Update own profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body updateProfileRequest true "Profile fields"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Router       /users/me [put]
func handleUpdateProfile(userSvc *service.UserService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := userSvc.UpdateProfile(r.Context(), CurrentUser(r).ID, service.ProfileInput{
			RealName:  req.RealName,
			AvatarURL: req.AvatarURL,
		})
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
