package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-identity-platform/internal/core/auth"
	"go-identity-platform/internal/service"
	mdw "go-identity-platform/internal/transport/http/middleware"
	resp "go-identity-platform/internal/transport/http/response"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

type registerIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshIn struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	a, pair, err := h.svc.Register(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{
		"user":   gin.H{"id": a.ID, "email": a.Email},
		"tokens": pair,
	}))
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	pair, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"tokens": pair}))
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var in refreshIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"tokens": pair}))
}

// DELETE /auth/user（需认证）
func (h *AuthHandler) DeleteSelf(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
		return
	}
	if err := h.svc.DeleteSelf(c.Request.Context(), p.AccountID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(gin.H{"id": p.AccountID}))
}

// fail 服务层错误 → 业务码；对外措辞不区分失败细节
func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		mdw.CountAuthFailure("conflict")
		c.JSON(http.StatusOK, resp.Error(resp.CodeConflict, "account already exists"))
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrRefreshMismatch):
		mdw.CountAuthFailure("unauthorized")
		c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid credentials"))
	case errors.Is(err, service.ErrNotFound):
		mdw.CountAuthFailure("not_found")
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, "not found"))
	default:
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "internal error"))
	}
}
