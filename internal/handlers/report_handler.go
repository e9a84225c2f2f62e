package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/services"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultAuditDays = 7
)

func GetStats(rs *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultAuditDays)))
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("days must be a positive integer"))
			return
		}

		summary, err := rs.AuditSummary(c.Request.Context(), days)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"stats":     rs.Stats(),
			"breakdown": rs.StatusBreakdown(),
			"audit":     summary,
		}, ""))
	}
}

func ExportBookings(rs *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := rs.ExportBookings(&buf); err != nil {
			respondError(c, err)
			return
		}
		filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	}
}
