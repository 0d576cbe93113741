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

type UserHandler struct {
	uc     *usecase.UserUsecase
	logger *slog.Logger
}

func NewUserHandler(uc *usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{uc: uc, logger: logger.With("component", "user_handler")}
}

// userResponse is the wire form of a user. The password hash never
// leaves the process.
type userResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	FullName      string     `json:"full_name"`
	Phone         *string    `json:"phone,omitempty"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	MaritalStatus *string    `json:"marital_status,omitempty"`
	Address       *string    `json:"address,omitempty"`
	JoinedAt      *time.Time `json:"joined_at,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Phone:       u.Phone,
		Role:        string(u.Role),
		Status:      string(u.Status),
		DateOfBirth: u.DateOfBirth,
		Address:     u.Address,
		JoinedAt:    u.JoinedAt,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.Gender != nil {
		g := string(*u.Gender)
		resp.Gender = &g
	}
	if u.MaritalStatus != nil {
		m := string(*u.MaritalStatus)
		resp.MaritalStatus = &m
	}
	return resp
}

func toUserResponses(users []*domain.User) []userResponse {
	items := make([]userResponse, len(users))
	for i, u := range users {
		items[i] = toUserResponse(u)
	}
	return items
}

// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var input usecase.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	user, err := h.uc.Create(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.Created(c, "User created", toUserResponse(user))
}

// GET /users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.uc.GetMe(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Profile retrieved", toUserResponse(user))
}

// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.uc.GetByID(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "User retrieved", toUserResponse(user))
}

// GET /users/by-email?email=
func (h *UserHandler) GetByEmail(c *gin.Context) {
	user, err := h.uc.GetByEmail(c.Request.Context(), middleware.CurrentUser(c), c.Query("email"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "User retrieved", toUserResponse(user))
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.uc.List(c.Request.Context(), middleware.CurrentUser(c), usecase.ListUsersInput{
		Status:     domain.UserStatus(c.Query("status")),
		CursorTime: queryTime(c, "cursor_time"),
		CursorID:   c.Query("cursor_id"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Users retrieved", gin.H{"users": toUserResponses(users)})
}

// GET /users/role/:role
func (h *UserHandler) ListByRole(c *gin.Context) {
	users, err := h.uc.ListByRole(c.Request.Context(), middleware.CurrentUser(c), domain.Role(c.Param("role")))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Users retrieved", gin.H{"users": toUserResponses(users)})
}

// GET /users/search?q=
func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.uc.Search(c.Request.Context(), middleware.CurrentUser(c), usecase.SearchUsersInput{
		Query: c.Query("q"),
		Limit: queryInt(c, "limit"),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Users retrieved", gin.H{"users": toUserResponses(users)})
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var input usecase.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	user, err := h.uc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "User updated", toUserResponse(user))
}

// PATCH /users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var input usecase.UpdateUserStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	if _, err := h.uc.UpdateStatus(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), input); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "User status updated", nil)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if _, err := h.uc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.NoContent(c)
}
