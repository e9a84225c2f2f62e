package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/notify"
	"github.com/joshua-takyi/printer-admin/internal/services"
)

func GetDashboard(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(ds.Snapshot(), ""))
	}
}

func RefreshDashboard(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ds.LoadAll(c.Request.Context()); err != nil {
			// Collections that loaded are still served; the caller sees which failed.
			c.JSON(http.StatusOK, models.SuccessResponse(ds.Snapshot(), "Some collections failed to load: "+err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(ds.Snapshot(), "Dashboard refreshed"))
	}
}

type tabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

func SetActiveTab(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tabRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		tab, err := ds.SetActiveTab(req.Tab)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"activeTab": tab}, ""))
	}
}

func ListTabs() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(services.Tabs(), ""))
	}
}

func SelectBooking(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := ds.SelectBooking(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(newBookingView(*booking, ds.Technicians()), ""))
	}
}

func CloseBookingDetail(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ds.CloseDetail()
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Detail closed"))
	}
}

type costDraftRequest struct {
	Value string `json:"value"`
}

func SetCostDraft(ds *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req costDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		ds.SetCostDraft(req.Value)
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"costDraft": ds.CostDraft()}, ""))
	}
}

func SubmitCostDraft(wf *services.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, err := wf.SubmitCostDraft(c.Request.Context())
		respondOutcome(c, outcome, err)
	}
}

func ListNotifications(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		recent := hub.Recent()
		c.JSON(http.StatusOK, models.ListResponse(recent, len(recent)))
	}
}

// StreamNotifications pushes every notification to the client as a server-sent
// event until the client disconnects.
func StreamNotifications(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, release := hub.Subscribe()
		defer release()

		// the stream outlives the server write timeout
		_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

		ctx := c.Request.Context()
		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case n, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(string(n.Kind), n)
				return true
			}
		})
	}
}
