package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshua-takyi/printer-admin/internal/metrics"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/realtime"
	"golang.org/x/sync/errgroup"
)

type Tab string

const (
	TabOverview          Tab = "overview"
	TabBookings          Tab = "bookings"
	TabPrinterBrands     Tab = "printer-brands"
	TabProblemCategories Tab = "problem-categories"
	TabGallery           Tab = "gallery"
	TabTechnicians       Tab = "technicians"
	TabSettings          Tab = "settings"
)

const RecentBookingsLimit = 5

var ErrUnknownTab = errors.New("unknown dashboard tab")

func Tabs() []Tab {
	return []Tab{
		TabOverview,
		TabBookings,
		TabPrinterBrands,
		TabProblemCategories,
		TabGallery,
		TabTechnicians,
		TabSettings,
	}
}

func ParseTab(raw string) (Tab, error) {
	for _, t := range Tabs() {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, raw)
}

// DashboardState is a point-in-time copy of everything the console shows.
type DashboardState struct {
	Bookings          []models.Booking         `json:"bookings"`
	PrinterBrands     []models.PrinterBrand    `json:"printerBrands"`
	ProblemCategories []models.ProblemCategory `json:"problemCategories"`
	GalleryImages     []models.GalleryImage    `json:"galleryImages"`
	Technicians       []models.Technician      `json:"technicians"`
	IsLoading         bool                     `json:"isLoading"`
	ActiveTab         Tab                      `json:"activeTab"`
	SelectedBooking   *models.Booking          `json:"selectedBooking,omitempty"`
	ShowBookingDetail bool                     `json:"showBookingDetail"`
	CostDraft         string                   `json:"costDraft"`
	Stats             Stats                    `json:"stats"`
}

// DashboardService owns the collections and view state of the admin console.
type DashboardService struct {
	bookingRepo models.BookingRepo
	catalogRepo models.CatalogRepo
	logger      *slog.Logger

	mu                sync.RWMutex
	bookings          []models.Booking
	brands            []models.PrinterBrand
	categories        []models.ProblemCategory
	gallery           []models.GalleryImage
	technicians       []models.Technician
	isLoading         bool
	activeTab         Tab
	selectedBookingID string
	showDetail        bool
	costDraft         string
}

func NewDashboardService(bookingRepo models.BookingRepo, catalogRepo models.CatalogRepo, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		bookingRepo: bookingRepo,
		catalogRepo: catalogRepo,
		logger:      logger,
		activeTab:   TabOverview,
	}
}

// LoadAll fetches the five collections concurrently. A failing collection keeps its
// previous contents and does not stop the others; the first failure is returned.
func (ds *DashboardService) LoadAll(ctx context.Context) error {
	ds.mu.Lock()
	ds.isLoading = true
	ds.mu.Unlock()

	defer func() {
		ds.mu.Lock()
		ds.isLoading = false
		ds.mu.Unlock()
	}()

	// a plain group: one failed fetch must not cancel the rest
	var g errgroup.Group
	g.Go(func() error { return ds.ReloadBookings(ctx) })
	g.Go(func() error { return ds.ReloadBrands(ctx) })
	g.Go(func() error { return ds.ReloadCategories(ctx) })
	g.Go(func() error { return ds.ReloadGallery(ctx) })
	g.Go(func() error { return ds.ReloadTechnicians(ctx) })

	return g.Wait()
}

func (ds *DashboardService) ReloadBookings(ctx context.Context) error {
	bookings, err := ds.bookingRepo.GetAllBookings(ctx)
	metrics.IncReload("bookings", err)
	if err != nil {
		ds.logger.Error("Error loading bookings", "error", err)
		return fmt.Errorf("failed to load bookings: %w", err)
	}

	ds.mu.Lock()
	ds.bookings = bookings
	ds.mu.Unlock()
	return nil
}

func (ds *DashboardService) ReloadBrands(ctx context.Context) error {
	brands, err := ds.catalogRepo.FetchPrinterBrands(ctx)
	metrics.IncReload("printer_brands", err)
	if err != nil {
		ds.logger.Error("Error loading printer brands", "error", err)
		return fmt.Errorf("failed to load printer brands: %w", err)
	}

	ds.mu.Lock()
	ds.brands = brands
	ds.mu.Unlock()
	return nil
}

func (ds *DashboardService) ReloadCategories(ctx context.Context) error {
	categories, err := ds.catalogRepo.FetchProblemCategories(ctx)
	metrics.IncReload("problem_categories", err)
	if err != nil {
		ds.logger.Error("Error loading problem categories", "error", err)
		return fmt.Errorf("failed to load problem categories: %w", err)
	}

	ds.mu.Lock()
	ds.categories = categories
	ds.mu.Unlock()
	return nil
}

func (ds *DashboardService) ReloadGallery(ctx context.Context) error {
	images, err := ds.catalogRepo.FetchGalleryImages(ctx)
	metrics.IncReload("gallery_images", err)
	if err != nil {
		ds.logger.Error("Error loading gallery images", "error", err)
		return fmt.Errorf("failed to load gallery images: %w", err)
	}

	ds.mu.Lock()
	ds.gallery = images
	ds.mu.Unlock()
	return nil
}

func (ds *DashboardService) ReloadTechnicians(ctx context.Context) error {
	technicians, err := ds.catalogRepo.FetchTechnicians(ctx)
	metrics.IncReload("technicians", err)
	if err != nil {
		ds.logger.Error("Error loading technicians", "error", err)
		return fmt.Errorf("failed to load technicians: %w", err)
	}

	ds.mu.Lock()
	ds.technicians = technicians
	ds.mu.Unlock()
	return nil
}

// Bindings maps every watched table to the collection it refreshes. Models and
// problems are nested in their parents, so they reload brands and categories.
func (ds *DashboardService) Bindings() []realtime.Binding {
	return []realtime.Binding{
		{Table: models.BookingsTable, Reload: ds.ReloadBookings},
		{Table: models.PrinterBrandsTable, Reload: ds.ReloadBrands},
		{Table: models.PrinterModelsTable, Reload: ds.ReloadBrands},
		{Table: models.ProblemCategoriesTable, Reload: ds.ReloadCategories},
		{Table: models.ProblemsTable, Reload: ds.ReloadCategories},
		{Table: models.GalleryImagesTable, Reload: ds.ReloadGallery},
		{Table: models.TechniciansTable, Reload: ds.ReloadTechnicians},
	}
}

// SetActiveTab only switches the view; the data is already loaded.
func (ds *DashboardService) SetActiveTab(raw string) (Tab, error) {
	tab, err := ParseTab(raw)
	if err != nil {
		return "", err
	}
	ds.mu.Lock()
	ds.activeTab = tab
	ds.mu.Unlock()
	return tab, nil
}

func (ds *DashboardService) ActiveTab() Tab {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.activeTab
}

func (ds *DashboardService) IsLoading() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.isLoading
}

// SelectBooking opens the detail view for a booking in the current list.
func (ds *DashboardService) SelectBooking(id string) (*models.Booking, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	b := findBooking(ds.bookings, id)
	if b == nil {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	if ds.selectedBookingID != id {
		ds.costDraft = ""
	}
	ds.selectedBookingID = id
	ds.showDetail = true
	return b, nil
}

func (ds *DashboardService) CloseDetail() {
	ds.mu.Lock()
	ds.selectedBookingID = ""
	ds.showDetail = false
	ds.costDraft = ""
	ds.mu.Unlock()
}

// SelectedBooking resolves the selection against the latest list, so it reflects
// reloads that happened after the booking was opened.
func (ds *DashboardService) SelectedBooking() (*models.Booking, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.selectedBookingID == "" {
		return nil, false
	}
	b := findBooking(ds.bookings, ds.selectedBookingID)
	return b, b != nil
}

func (ds *DashboardService) SetCostDraft(value string) {
	ds.mu.Lock()
	ds.costDraft = value
	ds.mu.Unlock()
}

func (ds *DashboardService) CostDraft() string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.costDraft
}

// takeCostDraft returns the selected booking id with the draft and clears the draft.
func (ds *DashboardService) takeCostDraft() (string, string, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.selectedBookingID == "" {
		return "", "", fmt.Errorf("%w: no booking selected", models.ErrValidation)
	}
	draft := ds.costDraft
	ds.costDraft = ""
	return ds.selectedBookingID, draft, nil
}

func (ds *DashboardService) Bookings() []models.Booking {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]models.Booking(nil), ds.bookings...)
}

func (ds *DashboardService) Technicians() []models.Technician {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]models.Technician(nil), ds.technicians...)
}

func (ds *DashboardService) PrinterBrands() []models.PrinterBrand {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]models.PrinterBrand(nil), ds.brands...)
}

func (ds *DashboardService) ProblemCategories() []models.ProblemCategory {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]models.ProblemCategory(nil), ds.categories...)
}

func (ds *DashboardService) GalleryImages() []models.GalleryImage {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]models.GalleryImage(nil), ds.gallery...)
}

// RecentBookings returns the first n bookings in stored order.
func (ds *DashboardService) RecentBookings(n int) []models.Booking {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return firstN(ds.bookings, n)
}

func (ds *DashboardService) Stats() Stats {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ComputeStats(ds.bookings, ds.technicians)
}

func (ds *DashboardService) Snapshot() DashboardState {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	state := DashboardState{
		Bookings:          append([]models.Booking(nil), ds.bookings...),
		PrinterBrands:     append([]models.PrinterBrand(nil), ds.brands...),
		ProblemCategories: append([]models.ProblemCategory(nil), ds.categories...),
		GalleryImages:     append([]models.GalleryImage(nil), ds.gallery...),
		Technicians:       append([]models.Technician(nil), ds.technicians...),
		IsLoading:         ds.isLoading,
		ActiveTab:         ds.activeTab,
		ShowBookingDetail: ds.showDetail,
		CostDraft:         ds.costDraft,
		Stats:             ComputeStats(ds.bookings, ds.technicians),
	}
	if ds.selectedBookingID != "" {
		state.SelectedBooking = findBooking(ds.bookings, ds.selectedBookingID)
	}
	return state
}

func findBooking(bookings []models.Booking, id string) *models.Booking {
	for i := range bookings {
		if bookings[i].ID == id {
			b := bookings[i]
			return &b
		}
	}
	return nil
}

func firstN(bookings []models.Booking, n int) []models.Booking {
	if n < 0 {
		n = 0
	}
	if n > len(bookings) {
		n = len(bookings)
	}
	return append([]models.Booking(nil), bookings[:n]...)
}
