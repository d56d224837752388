package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/configuration"
	"carport-configurator/internal/pipeline"
)

func (s *Server) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	kind := catalog.Kind(r.PathValue("kind"))
	if !kind.Valid() {
		s.writeError(w, http.StatusNotFound, "unknown catalog kind")
		return
	}

	line, ok := productLineFrom(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "product_line must be steel or wood")
		return
	}

	entities, err := s.catalog.List(r.Context(), line, kind)
	if err != nil {
		s.logger.Error("Catalog list failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	s.writeJSON(w, http.StatusOK, entities)
}

// handleSubmit is the wizard-to-pipeline contract: the body is a complete
// candidate record, the response is {success,id} or {success:false,error}
// with email_sent as auxiliary feedback.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var rec configuration.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.pipeline.Submit(r.Context(), &rec)
	s.writeJSON(w, submitStatus(result), result)
}

func submitStatus(result pipeline.Result) int {
	if result.Success {
		return http.StatusCreated
	}

	var validationErr *pipeline.ValidationError
	if errors.As(result.Err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductLine catalog.ProductLine `json:"product_line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.Start(r.Context(), req.ProductLine)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionStep(w http.ResponseWriter, r *http.Request) {
	var value json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.SetStep(
		r.Context(),
		r.PathValue("id"),
		configuration.StepKey(r.PathValue("key")),
		value,
	)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSessionSubmit assembles the session's selection into a candidate and
// runs the pipeline. The session is cleared only after a successful
// submission, so a failed validation keeps the wizard state for a retry.
func (s *Server) handleSessionSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	rec, err := s.assembler.Assemble(r.Context(), sess.ProductLine, sess.Selection)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.pipeline.Submit(r.Context(), rec)
	if result.Success {
		if err := s.sessions.Clear(r.Context(), id); err != nil {
			s.logger.Warn("Failed to clear session after submission",
				zap.String("session_id", id),
				zap.Error(err))
		}
	}

	s.writeJSON(w, submitStatus(result), result)
}
