package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"earnings/internal/auth"
	"earnings/internal/middleware"
	"earnings/internal/models"
	"earnings/internal/store"
	"earnings/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type registerRequest struct {
	Email    string  `json:"email"`
	Nickname *string `json:"nickname"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Nickname != nil {
		if err := validator.ValidateNickname(*req.Nickname); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	userID := uuid.NewString()
	role := models.RoleUser
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		// The first account ever registered becomes the admin. The check
		// shares the insert's transaction so two concurrent first
		// registrations cannot both claim the role.
		hasAdmin, err := h.users.HasAnyAdmin(r.Context(), tx)
		if err != nil {
			return err
		}
		role = models.RoleUser
		if !hasAdmin {
			role = models.RoleAdmin
		}
		return h.users.Create(r.Context(), tx, store.UserInput{
			ID:           userID,
			Email:        req.Email,
			Nickname:     req.Nickname,
			Name:         req.Name,
			PasswordHash: passwordHash,
			Role:         role,
		})
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			respondError(w, http.StatusBadRequest, "email or nickname already registered")
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	data, _ := json.Marshal(map[string]string{
		"email":      req.Email,
		"user_agent": r.UserAgent(),
	})
	h.auditLog(r.Context(), &userID, "register", "user", userID, string(data), r.RemoteAddr)
	token, err := auth.GenerateToken(h.cfg.JWTSecret, userID, req.Email, req.Name, role, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":       userID,
			"email":    req.Email,
			"nickname": req.Nickname,
			"name":     req.Name,
			"role":     role,
		},
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login accepts either the email address or the nickname as identifier.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetByIdentifier(r.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.TouchLastSignedIn(r.Context(), tx, user.ID)
	}); err != nil {
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	data, _ := json.Marshal(map[string]string{
		"user_agent": r.UserAgent(),
	})
	h.auditLog(r.Context(), &user.ID, "login", "user", user.ID, string(data), r.RemoteAddr)
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email, user.Name, user.Role, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
