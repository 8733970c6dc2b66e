package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-identity-platform/internal/core/auth"
	"go-identity-platform/internal/domain"
	"go-identity-platform/internal/service"
	resp "go-identity-platform/internal/transport/http/response"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type profileOut struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func toProfileOut(p *domain.Profile, email string) profileOut {
	return profileOut{ID: p.ID, Email: email, Name: p.Name, FirstName: p.FirstName, LastName: p.LastName}
}

// GET /users/me
func (h *ProfileHandler) Me(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c) // 分组已挂 RequireAuth
	prof, err := h.svc.GetByAuthID(c.Request.Context(), p.AccountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(toProfileOut(prof, p.Email)))
}

// PUT /users/me
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c)
	var in service.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	prof, err := h.svc.Update(c.Request.Context(), p.AccountID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(toProfileOut(prof, p.Email)))
}

// GET /users/:id
func (h *ProfileHandler) GetByID(c *gin.Context) {
	prof, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(toProfileOut(prof, "")))
}

func (h *ProfileHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, "profile not found"))
		return
	}
	c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "internal error"))
}
