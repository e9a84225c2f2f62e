package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/printer-admin/internal/helpers"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/supabase-community/gotrue-go/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) AssignTechnician(ctx context.Context, id string, technicianID string) (bool, error) {
	args := m.Called(ctx, id, technicianID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookingRepo) UpdateActualCost(ctx context.Context, id string, cost string) (bool, error) {
	args := m.Called(ctx, id, cost)
	return args.Bool(0), args.Error(1)
}

type mockCatalogRepo struct {
	mock.Mock
}

func (m *mockCatalogRepo) FetchPrinterBrands(ctx context.Context) ([]models.PrinterBrand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PrinterBrand), args.Error(1)
}

func (m *mockCatalogRepo) AddPrinterBrand(ctx context.Context, in models.PrinterBrandInput) (*models.PrinterBrand, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrinterBrand), args.Error(1)
}

func (m *mockCatalogRepo) UpdatePrinterBrand(ctx context.Context, id string, in models.PrinterBrandInput) (*models.PrinterBrand, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrinterBrand), args.Error(1)
}

func (m *mockCatalogRepo) DeletePrinterBrand(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogRepo) AddPrinterModel(ctx context.Context, in models.PrinterModelInput) (*models.PrinterModel, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrinterModel), args.Error(1)
}

func (m *mockCatalogRepo) UpdatePrinterModel(ctx context.Context, id string, in models.PrinterModelInput) (*models.PrinterModel, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrinterModel), args.Error(1)
}

func (m *mockCatalogRepo) DeletePrinterModel(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogRepo) FetchProblemCategories(ctx context.Context) ([]models.ProblemCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProblemCategory), args.Error(1)
}

func (m *mockCatalogRepo) AddProblemCategory(ctx context.Context, in models.ProblemCategoryInput) (*models.ProblemCategory, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProblemCategory), args.Error(1)
}

func (m *mockCatalogRepo) UpdateProblemCategory(ctx context.Context, id string, in models.ProblemCategoryInput) (*models.ProblemCategory, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProblemCategory), args.Error(1)
}

func (m *mockCatalogRepo) DeleteProblemCategory(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogRepo) AddProblem(ctx context.Context, in models.ProblemInput) (*models.Problem, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *mockCatalogRepo) UpdateProblem(ctx context.Context, id string, in models.ProblemInput) (*models.Problem, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *mockCatalogRepo) DeleteProblem(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogRepo) FetchGalleryImages(ctx context.Context) ([]models.GalleryImage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GalleryImage), args.Error(1)
}

func (m *mockCatalogRepo) GetGalleryImage(ctx context.Context, id string) (*models.GalleryImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GalleryImage), args.Error(1)
}

func (m *mockCatalogRepo) AddGalleryImage(ctx context.Context, in models.GalleryImageInput) (*models.GalleryImage, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GalleryImage), args.Error(1)
}

func (m *mockCatalogRepo) UpdateGalleryImage(ctx context.Context, id string, in models.GalleryImageInput) (*models.GalleryImage, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GalleryImage), args.Error(1)
}

func (m *mockCatalogRepo) DeleteGalleryImage(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogRepo) FetchTechnicians(ctx context.Context) ([]models.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Technician), args.Error(1)
}

func (m *mockCatalogRepo) AddTechnician(ctx context.Context, in models.TechnicianInput) (*models.Technician, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technician), args.Error(1)
}

func (m *mockCatalogRepo) UpdateTechnician(ctx context.Context, id string, in models.TechnicianInput) (*models.Technician, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technician), args.Error(1)
}

func (m *mockCatalogRepo) DeleteTechnician(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) RecordAudit(ctx context.Context, entry *models.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditRepo) ListAuditByBooking(ctx context.Context, bookingID string, limit int) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, bookingID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}

func (m *mockAuditRepo) AuditStats(ctx context.Context, days int) ([]models.AuditActionCount, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditActionCount), args.Error(1)
}

func (m *mockAuditRepo) EnsureAuditIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockAssets struct {
	mock.Mock
}

func (m *mockAssets) Upload(ctx context.Context, source, folder string) (*helpers.UploadedAsset, error) {
	args := m.Called(ctx, source, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*helpers.UploadedAsset), args.Error(1)
}

func (m *mockAssets) Destroy(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) AuthenticateUser(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenResponse), args.Error(1)
}

func (m *mockUserRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenResponse), args.Error(1)
}

func (m *mockUserRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.AdminProfile, error) {
	args := m.Called(ctx, id, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminProfile), args.Error(1)
}

func sampleBookings(n int) []models.Booking {
	statuses := models.AllStatuses()
	out := make([]models.Booking, n)
	for i := range out {
		out[i] = models.Booking{
			ID:       "b" + string(rune('1'+i)),
			Customer: models.Customer{Name: "Customer", Phone: "0812"},
			Printer:  models.PrinterRef{Brand: "Epson", Model: "L3110"},
			Status:   statuses[i%len(statuses)],
		}
	}
	return out
}
