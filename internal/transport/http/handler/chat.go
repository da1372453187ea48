package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"notebase/internal/app"
	"notebase/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "message is required")
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), app.AskInput{
		ChannelID: channelID,
		Message:   req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, err.Error())
		case errors.Is(err, app.ErrChannelNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrMessageEnqueue):
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailure, err.Error())
		}
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) History(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	messages, total, err := h.chatService.History(c.Request.Context(), channelID, limit)
	if err != nil {
		respondChannelError(c, err, "get chat history failed")
		return
	}
	response.OK(c, gin.H{"messages": messages, "total": total})
}

func (h *ChatHandler) ClearHistory(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	if err := h.chatService.ClearHistory(c.Request.Context(), channelID); err != nil {
		respondChannelError(c, err, "clear chat history failed")
		return
	}
	response.NoContent(c)
}
