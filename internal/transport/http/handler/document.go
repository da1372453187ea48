package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"notebase/internal/app"
	"notebase/internal/filesearch"
	"notebase/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
	maxUpload       int64
}

func NewDocumentHandler(documentService *app.DocumentService, maxUpload int64) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, maxUpload: maxUpload}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "missing file field")
		return
	}
	if fileHeader.Size > h.maxUpload {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeCapacityExceeded,
			"file exceeds maximum upload size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read upload failed")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read upload failed")
		return
	}
	if int64(len(data)) > h.maxUpload {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeCapacityExceeded,
			"file exceeds maximum upload size")
		return
	}

	doc, err := h.documentService.Upload(c.Request.Context(), app.UploadInput{
		ChannelID: channelID,
		Filename:  fileHeader.Filename,
		Data:      data,
	})
	if err != nil {
		respondUploadError(c, err)
		return
	}
	response.Created(c, doc)
}

func respondUploadError(c *gin.Context, err error) {
	var capErr *app.CapacityError
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, err.Error())
	case errors.Is(err, app.ErrChannelNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeCapacityExceeded, err.Error())
	case errors.Is(err, app.ErrUnsupportedType):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedType, err.Error())
	case errors.As(err, &capErr):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeCapacityExceeded, capErr.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailure, err.Error())
	}
}

func (h *DocumentHandler) List(c *gin.Context) {
	channelID64, err := strconv.ParseUint(c.Query("channel_id"), 10, 64)
	if err != nil || channelID64 == 0 {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "channel_id is required")
		return
	}

	docs, total, err := h.documentService.ListByChannel(uint(channelID64))
	if err != nil {
		respondChannelError(c, err, "list documents failed")
		return
	}
	response.OK(c, gin.H{"documents": docs, "total": total})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDocumentError(c, err, "get document failed")
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDocumentError(c, err, "delete document failed")
		return
	}
	response.NoContent(c)
}

func respondDocumentError(c *gin.Context, err error, fallback string) {
	var apiErr *filesearch.APIError
	switch {
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.As(err, &apiErr):
		response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailure, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
