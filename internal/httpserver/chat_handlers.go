package httpserver

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/realtime"
	"rideshare_go/internal/service"
)

type contactsResponse struct {
	Contacts []*domain.Contact `json:"contacts"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// @Summary      List contacts
// @Description  One row per user the caller has exchanged messages with, most recent first
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  contactsResponse
// @Router       /chat/contacts [get]
func handleContacts(engine *realtime.Engine, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacts, err := engine.GetContacts(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, contactsResponse{Contacts: contacts})
	}
}

// @Summary      Message history
// @Description  History with one user, oldest first. Fetching marks the peer's messages as read.
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        userID path  int true  "Peer user ID"
// @Param        page   query int false "Page, from 1"  default(1)
// @Param        limit  query int false "Page size"     default(50)
// @Success      200  {object}  domain.MessagePage
// @Failure      400  {object}  errorResponse
// @Router       /chat/messages/{userID} [get]
func handleMessages(engine *realtime.Engine, limits service.Limits, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		peerID, ok := userIDParam(w, r)
		if !ok {
			return
		}
		page, limit, ok := pageQuery(w, r, limits.DefaultPageLimit, limits.MaxPageLimit)
		if !ok {
			return
		}

		res, err := engine.GetMessages(r.Context(), CurrentUser(r).ID, peerID, page, limit)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// @Summary      Mark messages as read
// @Description  Marks every unread message from the given user as read and notifies them
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        userID path int true "Sender user ID"
// @Success      200  {object}  successResponse
// @Router       /chat/messages/read/{userID} [put]
func handleMarkRead(engine *realtime.Engine, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		peerID, ok := userIDParam(w, r)
		if !ok {
			return
		}
		if err := engine.MarkAsRead(r.Context(), CurrentUser(r).ID, peerID); err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// @Summary      Unread count
// @Description  Total unread messages, or only those from one sender when from is given
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        from query int false "Sender user ID"
// @Success      200  {object}  domain.UnreadCount
// @Router       /chat/unread [get]
func handleUnread(chat *service.ChatService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := CurrentUser(r).ID
		from, ok := intQuery(w, r, "from", 0, 0, 0)
		if !ok {
			return
		}

		var (
			n   int64
			err error
		)
		if from > 0 {
			n, err = chat.GetUnreadCountFrom(r.Context(), userID, int64(from))
		} else {
			n, err = chat.GetUnreadCount(r.Context(), userID)
		}
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, domain.UnreadCount{Count: n})
	}
}

// intQuery parses an optional integer query parameter. hi of zero means
// unbounded.
func intQuery(w http.ResponseWriter, r *http.Request, name string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi > 0 && v > hi) {
		writeErrorMessage(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

// pageQuery parses the page and limit parameters. Pages whose offset would
// not fit the database are rejected.
func pageQuery(w http.ResponseWriter, r *http.Request, defLimit, maxLimit int) (page, limit int, ok bool) {
	if limit, ok = intQuery(w, r, "limit", defLimit, 1, maxLimit); !ok {
		return 0, 0, false
	}
	if page, ok = intQuery(w, r, "page", 1, 1, service.MaxPage(limit)); !ok {
		return 0, 0, false
	}
	return page, limit, true
}
