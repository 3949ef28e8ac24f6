package handlers

import (
	"net/http"

	"clutchzone-api/internal/notify"

	"github.com/gin-gonic/gin"
)

// SupportTicketRequest is a support request from the chat widget
type SupportTicketRequest struct {
	Username string `json:"username"`
	Subject  string `json:"subject" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

// SubmitSupportTicket relays a support request to the staff Discord channel.
// Anonymous submissions are allowed; the chat widget is public.
// POST /api/support
func SubmitSupportTicket(c *gin.Context) {
	var req SupportTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject and message are required"})
		return
	}
	if req.Username == "" {
		req.Username = c.GetString("username")
	}
	if req.Username == "" {
		req.Username = "Anonymous"
	}

	go notify.ReportSupportTicket(req.Username, req.Subject, req.Message)
	c.JSON(http.StatusAccepted, gin.H{"message": "Support ticket submitted"})
}
