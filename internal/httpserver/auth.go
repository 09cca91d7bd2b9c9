package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glalex-shop/internal/service/account"
)

func (h *handlers) register(c *gin.Context) {
	var in account.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	u, err := h.deps.AccountSvc.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *handlers) login(c *gin.Context) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	u, token, err := h.deps.AccountSvc.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	role, err := h.deps.RoleSvc.Resolve(c.Request.Context(), *u)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"user":      u,
		"isAdmin":   role.IsAdmin(),
		"isCourier": role.IsActiveCourier(),
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.AccountSvc.Logout(c.Request.Context(), currentToken(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	role := currentRole(c)
	resp := gin.H{
		"user":      role.User,
		"isAdmin":   role.IsAdmin(),
		"isCourier": role.IsActiveCourier(),
	}
	if profile, err := h.deps.AccountSvc.GetProfile(c.Request.Context(), role.User.ID); err == nil {
		resp["profile"] = profile
	}
	if role.Courier != nil {
		resp["courier"] = role.Courier
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) updateProfile(c *gin.Context) {
	var in account.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	p, err := h.deps.AccountSvc.UpdateProfile(c.Request.Context(), currentRole(c).User.ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) changePassword(c *gin.Context) {
	var in struct {
		Current string `json:"current"`
		Next    string `json:"next"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := h.deps.AccountSvc.ChangePassword(c.Request.Context(), currentRole(c).User.ID, in.Current, in.Next); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
