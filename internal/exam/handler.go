package exam

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/irt"
	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var validOptions = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// ── Candidate Exam Flow ─────────────────────────────────

func (h *Handler) StartExam(w http.ResponseWriter, r *http.Request) {
	var req models.ExamStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Email == "" || req.ExamKey == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "email and exam_key are required"})
		return
	}

	resp, err := h.service.StartExam(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) NextItem(w http.ResponseWriter, r *http.Request) {
	var req models.NextItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.NextItem(req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.SelectedOption = strings.ToUpper(strings.TrimSpace(req.SelectedOption))
	if !validOptions[req.SelectedOption] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "selected_option must be A, B, C, or D"})
		return
	}

	resp, err := h.service.SubmitAnswer(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CompleteExam(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.CompleteExam(req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Admin ───────────────────────────────────────────────

func (h *Handler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	resp, err := h.service.SessionStatus(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Recalibrate(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Recalibrate()
	if err != nil {
		log.Printf("[exam] recalibration error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Recalibration failed: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems()
	if err != nil {
		log.Printf("[exam] ListItems error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list items"})
		return
	}
	if items == nil {
		items = []models.CATItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid item ID"})
		return
	}

	item, err := h.service.GetItem(itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeItemRequest(w, r)
	if !ok {
		return
	}

	item, err := h.service.CreateItem(*req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid item ID"})
		return
	}
	req, ok := decodeItemRequest(w, r)
	if !ok {
		return
	}

	item, err := h.service.UpdateItem(itemID, *req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid item ID"})
		return
	}

	if err := h.service.DeleteItem(itemID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GenerateItems(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Count <= 0 {
		req.Count = 5
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	resp, err := h.service.GenerateItems(r.Context(), req)
	if err != nil {
		log.Printf("[exam] GenerateItems error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Generation failed: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ── Helpers ─────────────────────────────────────────────

func decodeItemRequest(w http.ResponseWriter, r *http.Request) (*models.CreateItemRequest, bool) {
	var req models.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return nil, false
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question is required"})
		return nil, false
	}
	if !validOptions[strings.ToUpper(strings.TrimSpace(req.Correct))] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "correct must be A, B, C, or D"})
		return nil, false
	}
	return &req, true
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrWrongStage),
		errors.Is(err, ErrExamFinished),
		errors.Is(err, ErrBankExhausted),
		errors.Is(err, irt.ErrSessionNotActive),
		errors.Is(err, irt.ErrDuplicateResponse),
		errors.Is(err, irt.ErrInvalidParameterRange):
		status = http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, irt.ErrUnknownItem):
		status = http.StatusNotFound
	case errors.Is(err, ErrEmptyBank):
		status = http.StatusInternalServerError
	default:
		log.Printf("[exam] internal error: %v", err)
		writeJSON(w, status, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}
