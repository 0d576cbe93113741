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

type PrayerHandler struct {
	uc     *usecase.PrayerUsecase
	logger *slog.Logger
}

func NewPrayerHandler(uc *usecase.PrayerUsecase, logger *slog.Logger) *PrayerHandler {
	return &PrayerHandler{uc: uc, logger: logger.With("component", "prayer_handler")}
}

type prayerResponse struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Category    string     `json:"category"`
	Privacy     string     `json:"privacy"`
	Status      string     `json:"status"`
	PrayerCount int        `json:"prayer_count"`
	AnsweredAt  *time.Time `json:"answered_at,omitempty"`
	Testimony   *string    `json:"testimony,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toPrayerResponse(p *domain.Prayer) prayerResponse {
	return prayerResponse{
		ID:          p.ID,
		RequesterID: p.RequesterID,
		Title:       p.Title,
		Body:        p.Body,
		Category:    string(p.Category),
		Privacy:     string(p.Privacy),
		Status:      string(p.Status),
		PrayerCount: p.PrayerCount,
		AnsweredAt:  p.AnsweredAt,
		Testimony:   p.Testimony,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// POST /prayers
func (h *PrayerHandler) Create(c *gin.Context) {
	var input usecase.CreatePrayerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	prayer, err := h.uc.Create(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.Created(c, "Prayer request created", toPrayerResponse(prayer))
}

// GET /prayers
func (h *PrayerHandler) List(c *gin.Context) {
	prayers, err := h.uc.List(c.Request.Context(), middleware.CurrentUser(c), usecase.ListPrayersInput{
		Status:     domain.PrayerStatus(c.Query("status")),
		Category:   domain.PrayerCategory(c.Query("category")),
		CursorTime: queryTime(c, "cursor_time"),
		CursorID:   c.Query("cursor_id"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	items := make([]prayerResponse, len(prayers))
	for i, p := range prayers {
		items[i] = toPrayerResponse(p)
	}
	respond.OK(c, "Prayer requests retrieved", gin.H{"prayers": items})
}

// GET /prayers/:id
func (h *PrayerHandler) GetByID(c *gin.Context) {
	prayer, err := h.uc.GetByID(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Prayer request retrieved", toPrayerResponse(prayer))
}

// PUT /prayers/:id
func (h *PrayerHandler) Update(c *gin.Context) {
	var input usecase.UpdatePrayerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	prayer, err := h.uc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Prayer request updated", toPrayerResponse(prayer))
}

// DELETE /prayers/:id
func (h *PrayerHandler) Delete(c *gin.Context) {
	if _, err := h.uc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.NoContent(c)
}

// POST /prayers/:id/pray
func (h *PrayerHandler) Pray(c *gin.Context) {
	count, err := h.uc.Pray(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Thank you for praying", gin.H{"prayer_count": count})
}

// POST /prayers/:id/answer
func (h *PrayerHandler) Answer(c *gin.Context) {
	var input usecase.AnswerPrayerInput
	_ = c.ShouldBindJSON(&input)

	prayer, err := h.uc.Answer(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Prayer marked as answered", toPrayerResponse(prayer))
}
