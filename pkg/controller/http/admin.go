package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/usecase"
	"github.com/slotcast-dev/slotcast/pkg/utils/errutil"
	"github.com/slotcast-dev/slotcast/pkg/utils/safe"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func workspaceIDParam(r *http.Request) types.WorkspaceID {
	return types.WorkspaceID(chi.URLParam(r, "workspaceID"))
}

// statusOf maps use case failures onto HTTP statuses: precondition failures
// are 409, unknown workspaces 404, everything else 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrWorkspaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNoDirectory),
		errors.Is(err, usecase.ErrNoSlots),
		errors.Is(err, usecase.ErrNoGateway):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrNoParseableLines):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type slotResponse struct {
	ID       string `json:"id"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Label    string `json:"label"`
	Booked   bool   `json:"booked"`
	BookedBy string `json:"booked_by,omitempty"`
}

func toSlotResponses(slots []*model.TimeSlot) []slotResponse {
	out := make([]slotResponse, len(slots))
	for i, slot := range slots {
		out[i] = slotResponse{
			ID:       slot.ID.String(),
			Start:    slot.Start.Format(time.RFC3339),
			End:      slot.End.Format(time.RFC3339),
			Label:    slot.Label,
			Booked:   slot.Booked,
			BookedBy: slot.BookedBy.String(),
		}
	}
	return out
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	type workspaceResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	type response struct {
		Workspaces []workspaceResponse `json:"workspaces"`
	}

	workspaces := s.uc.ListWorkspaces(r.Context())
	resp := response{Workspaces: make([]workspaceResponse, len(workspaces))}
	for i, ws := range workspaces {
		resp.Workspaces[i] = workspaceResponse{ID: ws.ID.String(), Name: ws.Name}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		DirectorySource   string `json:"directory_source"`
		BroadcastTemplate string `json:"broadcast_template"`
		ConfirmTemplate   string `json:"confirm_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}
	if req.DirectorySource == "" {
		errutil.HandleHTTP(r.Context(), w, goerr.New("directory_source is required"), http.StatusBadRequest)
		return
	}

	ws, err := s.uc.CreateWorkspace(r.Context(), types.WorkspaceID(req.ID), req.Name, req.DirectorySource, model.MessageTemplates{
		Broadcast: req.BroadcastTemplate,
		Confirm:   req.ConfirmTemplate,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]string{"id": ws.ID.String()})
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.DeleteWorkspace(r.Context(), workspaceIDParam(r)); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.uc.GetWorkspaceSnapshot(r.Context(), workspaceIDParam(r))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	type contactResponse struct {
		ID             string `json:"id"`
		DisplayName    string `json:"display_name"`
		Status         string `json:"status"`
		LastNotifiedAt string `json:"last_notified_at,omitempty"`
	}
	type response struct {
		ID        string            `json:"id"`
		Name      string            `json:"name"`
		OpenSlots int               `json:"open_slots"`
		Slots     []slotResponse    `json:"slots"`
		Contacts  []contactResponse `json:"contacts"`
	}

	resp := response{
		ID:        snapshot.ID.String(),
		Name:      snapshot.Name,
		OpenSlots: snapshot.OpenSlots,
		Slots:     toSlotResponses(snapshot.Slots),
		Contacts:  make([]contactResponse, len(snapshot.Contacts)),
	}
	for i, contact := range snapshot.Contacts {
		c := contactResponse{
			ID:          contact.ID.String(),
			DisplayName: contact.DisplayName,
			Status:      contact.Status.String(),
		}
		if !contact.LastNotifiedAt.IsZero() {
			c.LastNotifiedAt = contact.LastNotifiedAt.Format(time.RFC3339)
		}
		resp.Contacts[i] = c
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		GapMinutes int    `json:"gap_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	summary, err := s.uc.SetAvailability(r.Context(), workspaceIDParam(r), req.Text, req.GapMinutes)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	type response struct {
		Slots        []slotResponse `json:"slots"`
		SkippedLines []string       `json:"skipped_lines,omitempty"`
	}
	writeJSON(w, r, http.StatusOK, response{
		Slots:        toSlotResponses(summary.Slots),
		SkippedLines: summary.SkippedLines,
	})
}

type broadcastResponse struct {
	SentTo  int `json:"sent_to"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Force bool `json:"force"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
	}

	result, err := s.uc.Broadcast(r.Context(), workspaceIDParam(r), req.Force)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, broadcastResponse{
		SentTo:  result.SentTo,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	})
}

func (s *Server) handleFollowup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
	}

	result, err := s.uc.FollowupBroadcast(r.Context(), workspaceIDParam(r), req.Template)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, broadcastResponse{
		SentTo:  result.SentTo,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	})
}

func (s *Server) handleReloadDirectory(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.ReloadDirectory(r.Context(), workspaceIDParam(r)); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
