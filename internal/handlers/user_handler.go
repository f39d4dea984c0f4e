package handler

import (
	"errors"
	"net/http"
	"strconv"

	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services/users"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	service *users.UserService
	log     *logrus.Logger
}

func NewUserHandler(s *users.UserService, log *logrus.Logger) *UserHandler {
	return &UserHandler{service: s, log: log}
}

func (h *UserHandler) Login(c *gin.Context) {
	var payload struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, h.log, &payload) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success":    false,
			"message":    "These credentials do not match our records.",
			"request_id": c.GetString(middleware.RequestIDKey),
		})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "logged in", result)
}

func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	respondSuccess(c, http.StatusOK, "current user", gin.H{
		"user":              user,
		"can_manage_bills":  user.CanManageBills(),
		"can_approve_bills": user.CanApproveBills(),
	})
}

type userPayload struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	UserType             string `json:"user_type" binding:"required,oneof=account_manager approver"`
	IsActive             *bool  `json:"is_active"`
}

func (p userPayload) input() users.UserInput {
	return users.UserInput{
		Name:                 p.Name,
		Email:                p.Email,
		Password:             p.Password,
		PasswordConfirmation: p.PasswordConfirmation,
		UserType:             p.UserType,
		IsActive:             p.IsActive,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	filter := repository.UserFilter{
		UserType: c.Query("user_type"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "per_page", 15),
	}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid is_active")
			return
		}
		filter.IsActive = &active
	}
	page, err := h.service.List(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "users retrieved", page)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.service.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "user retrieved", gin.H{
		"user":     user,
		"can_edit": middleware.CurrentUser(c).IsApprover(),
	})
}

func (h *UserHandler) Create(c *gin.Context) {
	var payload userPayload
	if !bind(c, h.log, &payload) {
		return
	}
	user, err := h.service.Create(c.Request.Context(), middleware.CurrentUser(c), payload.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "User created successfully.", user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload userPayload
	if !bind(c, h.log, &payload) {
		return
	}
	user, err := h.service.Update(c.Request.Context(), middleware.CurrentUser(c), id, payload.input())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "User updated successfully.", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "User deleted successfully.", nil)
}

func (h *UserHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.service.ToggleStatus(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	status := "deactivated"
	if user.IsActive {
		status = "activated"
	}
	respondSuccess(c, http.StatusOK, "User "+status+" successfully.", user)
}
