package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStatusBreakdown(t *testing.T) {
	bookings := []models.Booking{
		{Status: models.BookingPending},
		{Status: models.BookingPending},
		{Status: models.BookingServicing},
		{Status: models.BookingStatus("lost")},
	}

	got := StatusBreakdown(bookings)
	require.Len(t, got, len(models.AllStatuses())+1)
	assert.Equal(t, models.BookingPending, got[0].Status)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "Menunggu Konfirmasi", got[0].Label)
	assert.Equal(t, 1, got[3].Count)

	last := got[len(got)-1]
	assert.Equal(t, models.UnknownStatusLabel, last.Label)
	assert.Equal(t, models.UnknownStatusClass, last.Class)
	assert.Equal(t, 1, last.Count)
}

func TestExportBookingsWorkbook(t *testing.T) {
	ds, bookingRepo, catalogRepo := newTestDashboard()
	ctx := context.Background()
	cost := models.Amount("150000")
	bookingRepo.On("GetAllBookings", ctx).Return([]models.Booking{
		{
			ID:            "B1",
			Customer:      models.Customer{Name: "Sari", Phone: "0812"},
			Printer:       models.PrinterRef{Brand: "Epson", Model: "L3110"},
			Status:        models.BookingCompleted,
			Technician:    "t1",
			EstimatedCost: "100000",
			ActualCost:    &cost,
		},
		{
			ID:       "B2",
			Customer: models.Customer{Name: "Andi", Phone: "0813"},
			Printer:  models.PrinterRef{Brand: "Canon"},
			Status:   models.BookingStatus("weird"),
		},
	}, nil)
	catalogRepo.On("FetchTechnicians", ctx).Return([]models.Technician{{ID: "t1", Name: "Budi"}}, nil)
	require.NoError(t, ds.ReloadBookings(ctx))
	require.NoError(t, ds.ReloadTechnicians(ctx))

	rs := NewReportService(ds, nil, testLogger())
	var buf bytes.Buffer
	require.NoError(t, rs.ExportBookings(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, bookingColumns, rows[0])

	assert.Equal(t, "B1", rows[1][0])
	assert.Equal(t, "Epson L3110", rows[1][6])
	assert.Equal(t, "Selesai", rows[1][11])
	assert.Equal(t, "Budi", rows[1][12])
	assert.Equal(t, "150000", rows[1][14])

	assert.Equal(t, "Unknown", rows[2][11])
	assert.Equal(t, models.PlaceholderTechnician, rows[2][12])
	assert.Equal(t, models.PlaceholderText, rows[2][13])
	assert.Equal(t, models.PlaceholderActualCost, rows[2][14])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestExportBookingsReportsErrors(t *testing.T) {
	ds, _, _ := newTestDashboard()
	rs := NewReportService(ds, nil, testLogger())
	assert.ErrorContains(t, rs.ExportBookings(failingWriter{}), "disk full")

	f := excelize.NewFile()
	defer f.Close()
	assert.Error(t, writeRow(f, "Sheet1", 0, []string{"x"}))
	assert.Error(t, writeRow(f, "Missing", 1, []string{"x"}))
	require.NoError(t, writeRow(f, "Sheet1", 1, []string{"a", "b"}))
	got, err := f.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestAuditSummary(t *testing.T) {
	ds, _, _ := newTestDashboard()
	ctx := context.Background()

	empty := NewReportService(ds, nil, testLogger())
	got, err := empty.AuditSummary(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, got)

	audit := new(mockAuditRepo)
	audit.On("AuditStats", ctx, 7).Return([]models.AuditActionCount{{Action: models.AuditStatusChanged, Count: 3}}, nil).Once()
	audit.On("AuditStats", ctx, 30).Return(nil, errors.New("aggregate failed")).Once()

	rs := NewReportService(ds, audit, testLogger())
	got, err = rs.AuditSummary(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got[0].Count)

	_, err = rs.AuditSummary(ctx, 30)
	assert.Error(t, err)
}
