package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// Stats are the overview counters.
type Stats struct {
	TotalBookings     int `json:"totalBookings"`
	PendingBookings   int `json:"pendingBookings"`
	CompletedBookings int `json:"completedBookings"`
	TotalTechnicians  int `json:"totalTechnicians"`
}

type StatusCount struct {
	Status models.BookingStatus `json:"status"`
	Label  string               `json:"label"`
	Class  string               `json:"class"`
	Count  int                  `json:"count"`
}

func ComputeStats(bookings []models.Booking, technicians []models.Technician) Stats {
	stats := Stats{
		TotalBookings:    len(bookings),
		TotalTechnicians: len(technicians),
	}
	for _, b := range bookings {
		switch b.Status {
		case models.BookingPending:
			stats.PendingBookings++
		case models.BookingCompleted:
			stats.CompletedBookings++
		}
	}
	return stats
}

// StatusBreakdown counts bookings per known status in picker order; unknown
// values are grouped under one trailing entry.
func StatusBreakdown(bookings []models.Booking) []StatusCount {
	counts := make(map[models.BookingStatus]int)
	unknown := 0
	for _, b := range bookings {
		if b.Status.IsKnown() {
			counts[b.Status]++
		} else {
			unknown++
		}
	}

	out := make([]StatusCount, 0, len(models.AllStatuses())+1)
	for _, s := range models.AllStatuses() {
		out = append(out, StatusCount{Status: s, Label: s.Label(), Class: s.StyleClass(), Count: counts[s]})
	}
	if unknown > 0 {
		out = append(out, StatusCount{Label: models.UnknownStatusLabel, Class: models.UnknownStatusClass, Count: unknown})
	}
	return out
}

type ReportService struct {
	dashboard *DashboardService
	audit     models.AuditRepo
	logger    *slog.Logger
}

func NewReportService(dashboard *DashboardService, audit models.AuditRepo, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{dashboard: dashboard, audit: audit, logger: logger}
}

func (rs *ReportService) Stats() Stats {
	return rs.dashboard.Stats()
}

func (rs *ReportService) StatusBreakdown() []StatusCount {
	return StatusBreakdown(rs.dashboard.Bookings())
}

func (rs *ReportService) Recent() []models.Booking {
	return rs.dashboard.RecentBookings(RecentBookingsLimit)
}

// AuditSummary counts recorded admin actions over the last days; empty without an audit store.
func (rs *ReportService) AuditSummary(ctx context.Context, days int) ([]models.AuditActionCount, error) {
	if rs.audit == nil {
		return []models.AuditActionCount{}, nil
	}
	stats, err := rs.audit.AuditStats(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit summary: %w", err)
	}
	return stats, nil
}

var bookingColumns = []string{
	"ID",
	"Tanggal Dibuat",
	"Pelanggan",
	"Telepon",
	"Email",
	"Alamat",
	"Printer",
	"Kategori Masalah",
	"Deskripsi Masalah",
	"Layanan",
	"Jadwal",
	"Status",
	"Teknisi",
	"Estimasi Biaya",
	"Biaya Aktual",
}

// ExportBookings writes the current bookings as an xlsx workbook.
func (rs *ReportService) ExportBookings(w io.Writer) error {
	bookings := rs.dashboard.Bookings()
	technicians := rs.dashboard.Technicians()

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, bookingsSheet, 1, bookingColumns); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(bookingColumns))
	if err != nil {
		return fmt.Errorf("failed to resolve last column: %w", err)
	}
	if err := f.SetCellStyle(bookingsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(bookingsSheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	for i, b := range bookings {
		if err := writeRow(f, bookingsSheet, i+2, bookingRowValues(b, technicians)); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	rs.logger.Info("Bookings exported", "rows", len(bookings))
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func bookingRowValues(b models.Booking, technicians []models.Technician) []string {
	created := models.PlaceholderText
	if b.CreatedAt != nil {
		created = b.CreatedAt.Format("2006-01-02 15:04")
	}
	email := models.PlaceholderText
	if b.Customer.Email != nil {
		email = *b.Customer.Email
	}
	return []string{
		b.ID,
		created,
		b.Customer.Name,
		b.Customer.Phone,
		email,
		orPlaceholder(b.Customer.Address),
		orPlaceholder(joinNonEmpty(b.Printer.Brand, b.Printer.Model)),
		orPlaceholder(b.Problem.Category),
		orPlaceholder(b.Problem.Description),
		orPlaceholder(b.Service.Type),
		orPlaceholder(joinNonEmpty(b.Service.Date, b.Service.Time)),
		b.StatusLabel(),
		b.TechnicianLabel(technicians),
		b.EstimatedCostLabel(),
		b.ActualCostLabel(),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return models.PlaceholderText
	}
	return s
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
