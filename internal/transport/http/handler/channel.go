package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"notebase/internal/app"
	"notebase/internal/filesearch"
	"notebase/internal/transport/http/response"
)

type ChannelHandler struct {
	channelService *app.ChannelService
}

type CreateChannelRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description" binding:"max=1024"`
}

type UpdateChannelRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=128"`
	Description *string `json:"description" binding:"omitempty,max=1024"`
}

func NewChannelHandler(channelService *app.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

func (h *ChannelHandler) Create(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "invalid request payload")
		return
	}

	channel, err := h.channelService.Create(c.Request.Context(), app.CreateChannelInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailure, err.Error())
		}
		return
	}

	response.Created(c, channel)
}

func (h *ChannelHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	channels, total, err := h.channelService.List(limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list channels failed")
		return
	}

	response.OK(c, gin.H{"channels": channels, "total": total})
}

func (h *ChannelHandler) Get(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	channel, err := h.channelService.Get(id)
	if err != nil {
		respondChannelError(c, err, "get channel failed")
		return
	}
	response.OK(c, channel)
}

func (h *ChannelHandler) Update(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "invalid request payload")
		return
	}

	channel, err := h.channelService.Update(id, app.UpdateChannelInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, err.Error())
		case errors.Is(err, app.ErrChannelNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update channel failed")
		}
		return
	}
	response.OK(c, channel)
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	if err := h.channelService.Delete(c.Request.Context(), id); err != nil {
		respondChannelError(c, err, "delete channel failed")
		return
	}
	response.NoContent(c)
}

func (h *ChannelHandler) Capacity(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	usage, err := h.channelService.Capacity(id)
	if err != nil {
		respondChannelError(c, err, "get channel capacity failed")
		return
	}
	response.OK(c, usage)
}

func (h *ChannelHandler) Lifecycle(c *gin.Context) {
	id, ok := channelIDParam(c)
	if !ok {
		return
	}

	status, err := h.channelService.Lifecycle(id)
	if err != nil {
		respondChannelError(c, err, "get channel lifecycle failed")
		return
	}
	response.OK(c, status)
}

func channelIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "channel not found")
		return 0, false
	}
	return uint(id64), true
}

func respondChannelError(c *gin.Context, err error, fallback string) {
	var apiErr *filesearch.APIError
	switch {
	case errors.Is(err, app.ErrChannelNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.As(err, &apiErr):
		response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailure, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
