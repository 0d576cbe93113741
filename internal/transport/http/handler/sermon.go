package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/middleware"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/transport/http/respond"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/usecase"
)

type SermonHandler struct {
	uc     *usecase.SermonUsecase
	logger *slog.Logger
}

func NewSermonHandler(uc *usecase.SermonUsecase, logger *slog.Logger) *SermonHandler {
	return &SermonHandler{uc: uc, logger: logger.With("component", "sermon_handler")}
}

type sermonResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Speaker     string     `json:"speaker"`
	Series      *string    `json:"series,omitempty"`
	Scripture   *string    `json:"scripture,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	MediaURL    *string    `json:"media_url,omitempty"`
	Status      string     `json:"status"`
	PreachedAt  time.Time  `json:"preached_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ViewCount   int64      `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toSermonResponse(s *domain.Sermon) sermonResponse {
	return sermonResponse{
		ID:          s.ID,
		Title:       s.Title,
		Speaker:     s.Speaker,
		Series:      s.Series,
		Scripture:   s.Scripture,
		Summary:     s.Summary,
		MediaURL:    s.MediaURL,
		Status:      string(s.Status),
		PreachedAt:  s.PreachedAt,
		PublishedAt: s.PublishedAt,
		ViewCount:   s.ViewCount,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// POST /sermons
func (h *SermonHandler) Create(c *gin.Context) {
	var input usecase.CreateSermonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	sermon, err := h.uc.Create(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.Created(c, "Sermon created", toSermonResponse(sermon))
}

// GET /sermons
func (h *SermonHandler) List(c *gin.Context) {
	sermons, err := h.uc.List(c.Request.Context(), middleware.CurrentUser(c), usecase.ListSermonsInput{
		Status:     domain.SermonStatus(c.Query("status")),
		Series:     c.Query("series"),
		Speaker:    c.Query("speaker"),
		CursorTime: queryTime(c, "cursor_time"),
		CursorID:   c.Query("cursor_id"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	items := make([]sermonResponse, len(sermons))
	for i, s := range sermons {
		items[i] = toSermonResponse(s)
	}
	respond.OK(c, "Sermons retrieved", gin.H{"sermons": items})
}

// GET /sermons/:id
func (h *SermonHandler) GetByID(c *gin.Context) {
	sermon, err := h.uc.GetByID(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Sermon retrieved", toSermonResponse(sermon))
}

// PUT /sermons/:id
func (h *SermonHandler) Update(c *gin.Context) {
	var input usecase.UpdateSermonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}
	input.ID = c.Param("id")

	sermon, err := h.uc.Update(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Sermon updated", toSermonResponse(sermon))
}

// POST /sermons/:id/publish
func (h *SermonHandler) Publish(c *gin.Context) {
	sermon, err := h.uc.Publish(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Sermon published", toSermonResponse(sermon))
}

// DELETE /sermons/:id
func (h *SermonHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.NoContent(c)
}
