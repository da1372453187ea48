package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"notebase/internal/app"
	"notebase/internal/model"
	"notebase/internal/transport/http/response"
)

type NoteHandler struct {
	noteService *app.NoteService
}

type CreateNoteRequest struct {
	Title   string         `json:"title" binding:"required,max=256"`
	Content string         `json:"content" binding:"required"`
	Sources []model.Source `json:"sources"`
}

type UpdateNoteRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=256"`
	Content *string `json:"content"`
}

type noteView struct {
	*model.Note
	Sources []model.Source `json:"sources"`
}

func NewNoteHandler(noteService *app.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func viewNote(note *model.Note) noteView {
	return noteView{Note: note, Sources: note.SourceList()}
}

func (h *NoteHandler) Create(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "title and content are required")
		return
	}

	note, err := h.noteService.Create(app.CreateNoteInput{
		ChannelID: channelID,
		Title:     req.Title,
		Content:   req.Content,
		Sources:   req.Sources,
	})
	if err != nil {
		respondNoteError(c, err, "create note failed")
		return
	}
	response.Created(c, viewNote(note))
}

func (h *NoteHandler) ListByChannel(c *gin.Context) {
	channelID, ok := channelIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notes, total, err := h.noteService.ListByChannel(channelID, limit, offset)
	if err != nil {
		respondNoteError(c, err, "list notes failed")
		return
	}

	views := make([]noteView, 0, len(notes))
	for i := range notes {
		views = append(views, viewNote(&notes[i]))
	}
	response.OK(c, gin.H{"notes": views, "total": total})
}

func (h *NoteHandler) Get(c *gin.Context) {
	id, ok := noteIDParam(c)
	if !ok {
		return
	}

	note, err := h.noteService.Get(id)
	if err != nil {
		respondNoteError(c, err, "get note failed")
		return
	}
	response.OK(c, viewNote(note))
}

func (h *NoteHandler) Update(c *gin.Context) {
	id, ok := noteIDParam(c)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, "invalid request payload")
		return
	}

	note, err := h.noteService.Update(id, app.UpdateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondNoteError(c, err, "update note failed")
		return
	}
	response.OK(c, viewNote(note))
}

func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := noteIDParam(c)
	if !ok {
		return
	}

	if err := h.noteService.Delete(id); err != nil {
		respondNoteError(c, err, "delete note failed")
		return
	}
	response.NoContent(c)
}

func noteIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "note not found")
		return 0, false
	}
	return uint(id64), true
}

func respondNoteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeValidation, err.Error())
	case errors.Is(err, app.ErrNoteNotFound), errors.Is(err, app.ErrChannelNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
