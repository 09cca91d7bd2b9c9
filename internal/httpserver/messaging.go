package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) sendMessage(c *gin.Context) {
	var in struct {
		RecipientID string `json:"recipientId"`
		Body        string `json:"body"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.RecipientID == "" {
		badRequest(c, "recipientId and body required")
		return
	}
	m, err := h.deps.MessagingSvc.Send(c.Request.Context(), currentRole(c), in.RecipientID, in.Body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *handlers) sendSuggestion(c *gin.Context) {
	var in struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	sent, err := h.deps.MessagingSvc.SendSuggestion(c.Request.Context(), currentRole(c), in.Body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipients": sent})
}

func (h *handlers) thread(c *gin.Context) {
	msgs, err := h.deps.MessagingSvc.Thread(c.Request.Context(), currentRole(c), c.Param("userID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *handlers) unread(c *gin.Context) {
	counts, err := h.deps.MessagingSvc.Unread(c.Request.Context(), currentRole(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *handlers) inbox(c *gin.Context) {
	inbox, err := h.deps.MessagingSvc.Inbox(c.Request.Context(), currentRole(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}
