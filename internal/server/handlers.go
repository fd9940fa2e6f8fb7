package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/ingest"
	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/normalize"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
	"github.com/claude/blockboard/internal/whiteboard"
)

// maxBodyBytes caps uploaded block documents.
const maxBodyBytes = 4 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	u, format, err := ingest.Decode(body)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"format": format,
		"block":  u,
	})
}

func (s *Server) handlePreviewWhiteboard(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	week, ok := intParam(w, r, "week", 1)
	if !ok {
		return
	}
	u, _, err := ingest.Decode(body)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if week < 1 || week > u.NumberOfWeeks {
		s.writeErr(w, fmt.Errorf("%w: week %d of %d", sessions.ErrWeekOutOfRange, week, u.NumberOfWeeks))
		return
	}
	writeJSON(w, http.StatusOK, whiteboard.FormatWeek(u, week))
}

func (s *Server) handleImportBlock(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	uid := userIDFromContext(r)
	start := time.Now()
	result, err := s.ingest.Ingest(r.Context(), body, uid)
	s.logImport(uid, "api", result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		if s.metrics != nil {
			s.metrics.CounterImportErrors.Inc()
		}
		s.writeErr(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.CounterBlocksImported.WithLabelValues(result.Format).Inc()
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	archived := r.URL.Query().Get("archived") == "true"
	blocks, err := s.store.ListBlocks(r.Context(), userIDFromContext(r), archived)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	b, err := s.store.GetBlock(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteBlock(r.Context(), userIDFromContext(r), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.cache.clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateBlock(w http.ResponseWriter, r *http.Request) {
	s.changeBlockState(w, r, s.store.SetActiveBlock)
}

func (s *Server) handleArchiveBlock(w http.ResponseWriter, r *http.Request) {
	s.changeBlockState(w, r, s.store.ArchiveBlock)
}

func (s *Server) changeBlockState(w http.ResponseWriter, r *http.Request, change func(context.Context, int, uuid.UUID) error) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	uid := userIDFromContext(r)
	if err := change(r.Context(), uid, id); err != nil {
		s.writeErr(w, err)
		return
	}
	b, err := s.store.GetBlock(r.Context(), uid, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleExportBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	uid := userIDFromContext(r)
	b, err := s.store.GetBlock(r.Context(), uid, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	ws, err := s.store.ListSessions(r.Context(), uid, id, 0)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="block-%s.json"`, id))
	writeJSON(w, http.StatusOK, map[string]any{
		"block":    b,
		"sessions": ws,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	week, ok := intParam(w, r, "week", 0)
	if !ok {
		return
	}
	ws, err := s.store.ListSessions(r.Context(), userIDFromContext(r), id, week)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	ws, err := s.store.ListSessions(r.Context(), userIDFromContext(r), id, 0)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions.WeekSummary(ws))
}

func (s *Server) handleWhiteboard(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	week, ok := intParam(w, r, "week", 1)
	if !ok {
		return
	}
	day, ok := intParam(w, r, "day", -1)
	if !ok {
		return
	}
	uid := userIDFromContext(r)
	key := whiteboardKey(uid, id, week, day)
	if cached, hit := s.cache.get(key); hit {
		writeRawJSON(w, http.StatusOK, cached)
		return
	}

	b, err := s.store.GetBlock(r.Context(), uid, id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if week < 1 || week > b.NumberOfWeeks {
		s.writeErr(w, fmt.Errorf("%w: week %d of %d", sessions.ErrWeekOutOfRange, week, b.NumberOfWeeks))
		return
	}
	boards := whiteboard.FormatWeek(normalize.FromBlock(b), week)
	var v any = boards
	if day >= 0 {
		if day >= len(boards) {
			s.writeErr(w, fmt.Errorf("%w: %d of %d days", sessions.ErrDayIndexOutOfRange, day, len(boards)))
			return
		}
		v = boards[day]
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.writeErr(w, fmt.Errorf("encoding whiteboard: %w", err))
		return
	}
	s.cache.set(key, data)
	writeRawJSON(w, http.StatusOK, data)
}

type addExerciseRequest struct {
	Name     string              `json:"name"`
	Type     models.ExerciseType `json:"type"`
	FromWeek int                 `json:"from_week"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	dayIndex, err := strconv.Atoi(chi.URLParam(r, "dayIndex"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid day index")
		return
	}
	var req addExerciseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.FromWeek == 0 {
		req.FromWeek = 1
	}

	uid := userIDFromContext(r)
	result, err := s.store.AddExercise(r.Context(), uid, id, s.mat, dayIndex, req.Name, req.Type, req.FromWeek)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.cache.invalidate(uid, id, result.Block.NumberOfWeeks, maxDays(result.Block))
	if s.metrics != nil {
		s.metrics.CounterExercisesAdded.Inc()
	}
	s.log.Info("exercise added",
		"block_id", id,
		"day_index", dayIndex,
		"name", req.Name,
		"sessions_extended", result.SessionsExtended,
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	ws, err := s.store.GetSession(r.Context(), userIDFromContext(r), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	exerciseID, ok := uuidParam(w, r, "exerciseID")
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid set index")
		return
	}
	var entry models.SetLog
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ws, err := s.store.LogSet(r.Context(), userIDFromContext(r), sessionID, exerciseID, index, entry, s.now())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.CounterSetsLogged.Inc()
	}
	writeJSON(w, http.StatusOK, ws)
}

// writeErr maps domain errors to HTTP statuses. Unknown errors are logged
// and reported as 500.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	var pe *normalize.ParseError
	switch {
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "path": pe.Path})
	case errors.Is(err, ingest.ErrUnreadable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sessions.ErrDayIndexOutOfRange), errors.Is(err, sessions.ErrWeekOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrSetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return nil, false
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty body")
		return nil, false
	}
	return body, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func maxDays(b *models.Block) int {
	n := len(b.Days)
	for _, week := range b.WeekTemplates {
		n = max(n, len(week))
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
