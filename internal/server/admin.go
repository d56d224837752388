package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func adminTokenKey(token string) string {
	return fmt.Sprintf("admin_token:%s", token)
}

// handleAdminLogin checks credentials against the admin_users table and
// issues an opaque token held in the token store.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	admin, err := s.admin.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.NewString()
	if err := s.tokens.Set(r.Context(), adminTokenKey(token), []byte(admin.Username), s.tokenTTL); err != nil {
		s.logger.Error("Failed to store admin token", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	line, ok := productLineFrom(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "product_line must be steel or wood")
		return
	}

	rows, err := s.admin.ListConfigurations(r.Context(), line)
	if err != nil {
		s.logger.Error("Failed to list configurations", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list configurations")
		return
	}

	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	line, ok := productLineFrom(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "product_line must be steel or wood")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid configuration id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		s.writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := s.admin.UpdateConfigurationStatus(r.Context(), line, id, req.Status); err != nil {
		s.logger.Error("Failed to update status",
			zap.Int64("id", id),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	line, ok := productLineFrom(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "product_line must be steel or wood")
		return
	}

	data, err := s.admin.ExportConfigurationsToExcel(r.Context(), line)
	if err != nil {
		s.logger.Error("Failed to export configurations", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to export configurations")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_configurations.xlsx", line))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write export", zap.Error(err))
	}
}
