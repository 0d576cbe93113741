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

type EventHandler struct {
	uc     *usecase.EventUsecase
	logger *slog.Logger
}

func NewEventHandler(uc *usecase.EventUsecase, logger *slog.Logger) *EventHandler {
	return &EventHandler{uc: uc, logger: logger.With("component", "event_handler")}
}

type eventResponse struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	EventType            string     `json:"event_type"`
	Status               string     `json:"status"`
	StartsAt             time.Time  `json:"starts_at"`
	EndsAt               time.Time  `json:"ends_at"`
	Location             string     `json:"location"`
	Capacity             int        `json:"capacity"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	CreatedBy            string     `json:"created_by"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		EventType:            string(e.EventType),
		Status:               string(e.Status),
		StartsAt:             e.StartsAt,
		EndsAt:               e.EndsAt,
		Location:             e.Location,
		Capacity:             e.Capacity,
		RegistrationDeadline: e.RegistrationDeadline,
		CreatedBy:            e.CreatedBy,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func toEventResponses(events []*domain.Event) []eventResponse {
	items := make([]eventResponse, len(events))
	for i, e := range events {
		items[i] = toEventResponse(e)
	}
	return items
}

type registrationResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

func toRegistrationResponse(r *domain.EventRegistration) registrationResponse {
	return registrationResponse{
		ID:           r.ID,
		EventID:      r.EventID,
		UserID:       r.UserID,
		Status:       string(r.Status),
		RegisteredAt: r.RegisteredAt,
	}
}

// POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var input usecase.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	event, err := h.uc.Create(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.Created(c, "Event created", toEventResponse(event))
}

// GET /events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.uc.List(c.Request.Context(), middleware.CurrentUser(c), usecase.ListEventsInput{
		Status:     domain.EventStatus(c.Query("status")),
		Type:       domain.EventType(c.Query("event_type")),
		CursorTime: queryTime(c, "cursor_time"),
		CursorID:   c.Query("cursor_id"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Events retrieved", gin.H{"events": toEventResponses(events)})
}

// GET /events/upcoming
func (h *EventHandler) ListUpcoming(c *gin.Context) {
	events, err := h.uc.ListUpcoming(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Upcoming events retrieved", gin.H{"events": toEventResponses(events)})
}

// GET /events/:id
func (h *EventHandler) GetByID(c *gin.Context) {
	event, err := h.uc.GetByID(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Event retrieved", toEventResponse(event))
}

// PUT /events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var input usecase.UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	event, err := h.uc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Event updated", toEventResponse(event))
}

// DELETE /events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if _, err := h.uc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.NoContent(c)
}

// POST /events/:id/register
func (h *EventHandler) Register(c *gin.Context) {
	registration, err := h.uc.Register(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	message := "Registered for event"
	if registration.Status == domain.RegistrationWaitlisted {
		message = "Event is full, you have been added to the waitlist"
	}
	respond.Created(c, message, toRegistrationResponse(registration))
}

// DELETE /events/:id/register
func (h *EventHandler) CancelRegistration(c *gin.Context) {
	if _, err := h.uc.CancelRegistration(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Registration cancelled", nil)
}

// GET /events/:id/registrations
func (h *EventHandler) ListRegistrations(c *gin.Context) {
	registrations, err := h.uc.ListRegistrations(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	items := make([]registrationResponse, len(registrations))
	for i, r := range registrations {
		items[i] = toRegistrationResponse(r)
	}
	respond.OK(c, "Registrations retrieved", gin.H{"registrations": items})
}
