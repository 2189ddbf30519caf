// README: Conversation handlers: message turns, payment proofs, reset.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/dialog"
)

// Conversations is the orchestrator surface the handlers use.
type Conversations interface {
	HandleMessage(ctx context.Context, conversationID, userID, text string) (dialog.Reply, error)
	HandlePaymentProof(ctx context.Context, conversationID string, proof booking.PaymentProof) (dialog.Reply, error)
	Reset(ctx context.Context, conversationID string) error
}

type ConversationHandler struct {
	dialog Conversations
}

func NewConversationHandler(svc Conversations) *ConversationHandler {
	return &ConversationHandler{dialog: svc}
}

type messageReq struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// Message handles POST /api/conversations/:id/messages.
func (h *ConversationHandler) Message(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid conversation id")
		return
	}
	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(c, http.StatusBadRequest, "missing text")
		return
	}
	reply, err := h.dialog.HandleMessage(c.Request.Context(), id, req.UserID, req.Text)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, reply)
}

type paymentProofReq struct {
	FileID   string `json:"file_id"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// PaymentProof handles POST /api/conversations/:id/payment-proof.
func (h *ConversationHandler) PaymentProof(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid conversation id")
		return
	}
	var req paymentProofReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.FileID == "" {
		writeError(c, http.StatusBadRequest, "missing file_id")
		return
	}
	switch req.FileType {
	case "":
		req.FileType = "document"
	case "photo", "document":
	default:
		writeError(c, http.StatusBadRequest, "file_type must be photo or document")
		return
	}
	reply, err := h.dialog.HandlePaymentProof(c.Request.Context(), id, booking.PaymentProof{
		FileID:   req.FileID,
		FileType: req.FileType,
		FileSize: req.FileSize,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, reply)
}

// Reset handles DELETE /api/conversations/:id.
func (h *ConversationHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid conversation id")
		return
	}
	if err := h.dialog.Reset(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
