package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"notebase/internal/app"
	"notebase/internal/transport/http/response"
)

type GenerateHandler struct {
	generationService *app.GenerationService
}

type SummarizeRequest struct {
	SummaryType string `json:"summary_type" binding:"required"`
}

type TimelineRequest struct {
	MaxEvents int `json:"max_events" binding:"omitempty,gte=0"`
}

type BriefingRequest struct {
	Style       string `json:"style"`
	MaxSections int    `json:"max_sections" binding:"omitempty,gte=0"`
}

type ScriptRequest struct {
	Style           string `json:"style"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,gte=0"`
}

func NewGenerateHandler(generationService *app.GenerationService) *GenerateHandler {
	return &GenerateHandler{generationService: generationService}
}

func (h *GenerateHandler) Summarize(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "summary_type is required")
		return
	}

	summary, err := h.generationService.Summarize(c.Request.Context(), channelID, req.SummaryType)
	if err != nil {
		respondGenerationError(c, err)
		return
	}
	response.OK(c, summary)
}

func (h *GenerateHandler) Timeline(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req TimelineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "invalid request payload")
			return
		}
	}

	timeline, err := h.generationService.Timeline(c.Request.Context(), channelID, req.MaxEvents)
	if err != nil {
		respondGenerationError(c, err)
		return
	}
	response.OK(c, timeline)
}

func (h *GenerateHandler) Briefing(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req BriefingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "invalid request payload")
			return
		}
	}

	briefing, err := h.generationService.Briefing(c.Request.Context(), channelID, req.Style, req.MaxSections)
	if err != nil {
		respondGenerationError(c, err)
		return
	}
	response.OK(c, briefing)
}

// Script returns the dialogue script for an audio overview without
// synthesizing audio.
func (h *GenerateHandler) Script(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req ScriptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "invalid request payload")
			return
		}
	}

	script, err := h.generationService.Script(c.Request.Context(), channelID, req.Style, req.DurationMinutes)
	if err != nil {
		respondGenerationError(c, err)
		return
	}
	response.OK(c, script)
}

func respondGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, err.Error())
	case errors.Is(err, app.ErrNoDocuments):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrChannelNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailure, err.Error())
	}
}
