package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/notify"
	"github.com/joshua-takyi/printer-admin/internal/services"
)

const defaultAuditLimit = 50

// BookingView is a booking plus the display strings the console renders.
type BookingView struct {
	models.Booking
	StatusLabel        string `json:"status_label"`
	StatusClass        string `json:"status_class"`
	TechnicianLabel    string `json:"technician_label"`
	EstimatedCostLabel string `json:"estimated_cost_label"`
	ActualCostLabel    string `json:"actual_cost_label"`
}

func newBookingView(b models.Booking, technicians []models.Technician) BookingView {
	return BookingView{
		Booking:            b,
		StatusLabel:        b.StatusLabel(),
		StatusClass:        b.Status.StyleClass(),
		TechnicianLabel:    b.TechnicianLabel(technicians),
		EstimatedCostLabel: b.EstimatedCostLabel(),
		ActualCostLabel:    b.ActualCostLabel(),
	}
}

func bookingViews(bookings []models.Booking, technicians []models.Technician) []BookingView {
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, newBookingView(b, technicians))
	}
	return views
}

func ListBookings(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views := bookingViews(ds.Bookings(), ds.Technicians())
		c.JSON(http.StatusOK, models.ListResponse(views, len(views)))
	}
}

func RecentBookings(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := services.RecentBookingsLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("limit must be a positive integer"))
				return
			}
			n = parsed
		}
		views := bookingViews(ds.RecentBookings(n), ds.Technicians())
		c.JSON(http.StatusOK, models.ListResponse(views, len(views)))
	}
}

type statusOption struct {
	Value models.BookingStatus `json:"value"`
	Label string               `json:"label"`
	Class string               `json:"class"`
}

func ListStatuses() gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := models.AllStatuses()
		opts := make([]statusOption, 0, len(statuses))
		for _, s := range statuses {
			opts = append(opts, statusOption{Value: s, Label: s.Label(), Class: s.StyleClass()})
		}
		c.JSON(http.StatusOK, models.SuccessResponse(opts, ""))
	}
}

type statusRequest struct {
	Status    string `json:"status" binding:"required"`
	Confirmed *bool  `json:"confirmed"`
}

// ChangeBookingStatus needs an explicit operator answer. Without "confirmed" the
// prompt is returned with 428 and nothing is changed.
func ChangeBookingStatus(wf *services.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		status, err := models.ParseBookingStatus(req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		if req.Confirmed == nil {
			title, text := services.StatusPrompt(status)
			c.JSON(http.StatusPreconditionRequired, models.ApiResponse{
				Success: false,
				Error:   "confirmation required",
				Data:    gin.H{"title": title, "text": text},
			})
			return
		}

		outcome, err := wf.ChangeStatus(c.Request.Context(), notify.Always(*req.Confirmed), c.Param("id"), status)
		respondOutcome(c, outcome, err)
	}
}

type technicianRequest struct {
	TechnicianID string `json:"technician_id"`
}

func AssignTechnician(wf *services.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req technicianRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		outcome, err := wf.AssignTechnician(c.Request.Context(), c.Param("id"), req.TechnicianID)
		respondOutcome(c, outcome, err)
	}
}

type actualCostRequest struct {
	ActualCost string `json:"actual_cost"`
}

func UpdateActualCost(wf *services.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req actualCostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		outcome, err := wf.UpdateActualCost(c.Request.Context(), c.Param("id"), req.ActualCost)
		respondOutcome(c, outcome, err)
	}
}

func BookingAudit(wf *services.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("limit must be a positive integer"))
			return
		}
		entries, err := wf.BookingAudit(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(entries, len(entries)))
	}
}

func respondOutcome(c *gin.Context, outcome services.Outcome, err error) {
	body := gin.H{"outcome": outcome}
	switch {
	case err != nil:
		c.JSON(statusFor(err), models.ApiResponse{Success: false, Error: err.Error(), Data: body})
	case outcome == services.OutcomeCancelled:
		c.JSON(http.StatusOK, models.SuccessResponse(body, "Cancelled"))
	default:
		c.JSON(http.StatusOK, models.SuccessResponse(body, "Applied"))
	}
}
