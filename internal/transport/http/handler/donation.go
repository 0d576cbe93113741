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

type DonationHandler struct {
	uc     *usecase.DonationUsecase
	logger *slog.Logger
}

func NewDonationHandler(uc *usecase.DonationUsecase, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{uc: uc, logger: logger.With("component", "donation_handler")}
}

type donationResponse struct {
	ID        string    `json:"id"`
	DonorID   *string   `json:"donor_id,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Fund      string    `json:"fund"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	Reference *string   `json:"reference,omitempty"`
	Note      *string   `json:"note,omitempty"`
	GivenAt   time.Time `json:"given_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toDonationResponse(d *domain.Donation) donationResponse {
	return donationResponse{
		ID:        d.ID,
		DonorID:   d.DonorID,
		Amount:    d.Amount,
		Currency:  d.Currency,
		Fund:      string(d.Fund),
		Method:    string(d.Method),
		Status:    string(d.Status),
		Reference: d.Reference,
		Note:      d.Note,
		GivenAt:   d.GivenAt,
		CreatedAt: d.CreatedAt,
	}
}

// POST /donations
func (h *DonationHandler) Record(c *gin.Context) {
	var input usecase.RecordDonationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BindError(c, h.logger, err)
		return
	}

	donation, err := h.uc.Record(c.Request.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.Created(c, "Donation recorded", toDonationResponse(donation))
}

// GET /donations
func (h *DonationHandler) List(c *gin.Context) {
	donations, err := h.uc.List(c.Request.Context(), middleware.CurrentUser(c), usecase.ListDonationsInput{
		DonorID:    c.Query("donor_id"),
		Fund:       domain.Fund(c.Query("fund")),
		Status:     domain.DonationStatus(c.Query("status")),
		From:       queryTime(c, "from"),
		To:         queryTime(c, "to"),
		CursorTime: queryTime(c, "cursor_time"),
		CursorID:   c.Query("cursor_id"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	items := make([]donationResponse, len(donations))
	for i, d := range donations {
		items[i] = toDonationResponse(d)
	}
	respond.OK(c, "Donations retrieved", gin.H{"donations": items})
}

type fundTotalResponse struct {
	Fund   string `json:"fund"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

type donationSummaryResponse struct {
	From        time.Time           `json:"from"`
	To          time.Time           `json:"to"`
	Funds       []fundTotalResponse `json:"funds"`
	TotalCount  int64               `json:"total_count"`
	TotalAmount int64               `json:"total_amount"`
}

// GET /donations/summary
func (h *DonationHandler) Summary(c *gin.Context) {
	summary, err := h.uc.Summarize(c.Request.Context(), middleware.CurrentUser(c), usecase.DonationSummaryInput{
		From: queryTime(c, "from"),
		To:   queryTime(c, "to"),
	})
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	funds := make([]fundTotalResponse, len(summary.Funds))
	for i, f := range summary.Funds {
		funds[i] = fundTotalResponse{Fund: string(f.Fund), Count: f.Count, Amount: f.Amount}
	}
	respond.OK(c, "Donation summary generated", donationSummaryResponse{
		From:        summary.From,
		To:          summary.To,
		Funds:       funds,
		TotalCount:  summary.TotalCount,
		TotalAmount: summary.TotalAmount,
	})
}

// GET /donations/:id
func (h *DonationHandler) GetByID(c *gin.Context) {
	donation, err := h.uc.GetByID(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	respond.OK(c, "Donation retrieved", toDonationResponse(donation))
}
