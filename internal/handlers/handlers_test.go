package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/notify"
	"github.com/joshua-takyi/printer-admin/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore keeps bookings and brands in memory. Catalog methods the tests never
// reach fall through to the nil embedded interface.
type fakeStore struct {
	models.CatalogRepo

	mu           sync.Mutex
	bookings     []models.Booking
	brands       []models.PrinterBrand
	technicians  []models.Technician
	failMutation bool
	mutations    int
}

func (f *fakeStore) GetAllBookings(context.Context) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Booking(nil), f.bookings...), nil
}

func (f *fakeStore) mutate(id string, apply func(*models.Booking)) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	if f.failMutation {
		return false, errors.New("backend unavailable")
	}
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			apply(&f.bookings[i])
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, id string, status models.BookingStatus) (bool, error) {
	return f.mutate(id, func(b *models.Booking) { b.Status = status })
}

func (f *fakeStore) AssignTechnician(_ context.Context, id, technicianID string) (bool, error) {
	return f.mutate(id, func(b *models.Booking) { b.Technician = technicianID })
}

func (f *fakeStore) UpdateActualCost(_ context.Context, id, cost string) (bool, error) {
	return f.mutate(id, func(b *models.Booking) {
		amount := models.Amount(cost)
		b.ActualCost = &amount
	})
}

func (f *fakeStore) FetchPrinterBrands(context.Context) ([]models.PrinterBrand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PrinterBrand(nil), f.brands...), nil
}

func (f *fakeStore) AddPrinterBrand(_ context.Context, in models.PrinterBrandInput) (*models.PrinterBrand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	brand := models.PrinterBrand{ID: "brand-new", Name: in.Name}
	f.brands = append(f.brands, brand)
	return &brand, nil
}

func (f *fakeStore) DeletePrinterBrand(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.brands {
		if b.ID == id {
			f.brands = append(f.brands[:i], f.brands[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FetchProblemCategories(context.Context) ([]models.ProblemCategory, error) {
	return []models.ProblemCategory{}, nil
}

func (f *fakeStore) FetchGalleryImages(context.Context) ([]models.GalleryImage, error) {
	return []models.GalleryImage{}, nil
}

func (f *fakeStore) FetchTechnicians(context.Context) ([]models.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Technician(nil), f.technicians...), nil
}

type testServer struct {
	router *gin.Engine
	store  *fakeStore
	ds     *services.DashboardService
	hub    *notify.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := &fakeStore{
		bookings: []models.Booking{
			{ID: "b1", Status: models.BookingPending, Customer: models.Customer{Name: "Sari"}},
			{ID: "b2", Status: models.BookingConfirmed, Technician: "t1"},
			{ID: "b3", Status: models.BookingStatus("lost")},
		},
		brands:      []models.PrinterBrand{{ID: "epson", Name: "Epson"}},
		technicians: []models.Technician{{ID: "t1", Name: "Budi"}},
	}
	logger := testLogger()
	hub := notify.NewHub(notify.DefaultHistory, logger)
	ds := services.NewDashboardService(store, store, logger)
	require.NoError(t, ds.LoadAll(context.Background()))

	wf := services.NewBookingWorkflow(store, ds, hub, nil, logger)
	cs := services.NewCatalogService(store, ds, nil, logger)
	rs := services.NewReportService(ds, nil, logger)

	r := gin.New()
	r.GET("/dashboard", GetDashboard(ds))
	r.PUT("/dashboard/tab", SetActiveTab(ds))
	r.POST("/dashboard/bookings/:id/select", SelectBooking(ds))
	r.DELETE("/dashboard/selection", CloseBookingDetail(ds))
	r.PUT("/dashboard/cost-draft", SetCostDraft(ds))
	r.POST("/dashboard/cost-draft/submit", SubmitCostDraft(wf))
	r.GET("/notifications", ListNotifications(hub))
	r.GET("/dashboard/events", StreamNotifications(hub))
	r.GET("/bookings", ListBookings(ds))
	r.GET("/bookings/recent", RecentBookings(ds))
	r.PATCH("/bookings/:id/status", ChangeBookingStatus(wf))
	r.PATCH("/bookings/:id/technician", AssignTechnician(wf))
	r.GET("/bookings/:id/audit", BookingAudit(wf))
	r.GET("/reports/stats", GetStats(rs))
	r.GET("/reports/bookings.xlsx", ExportBookings(rs))
	NewCatalogHandlers(ds, cs).Register(r.Group("/catalog"))

	return &testServer{router: r, store: store, ds: ds, hub: hub}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Total   int             `json:"total"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestGetDashboardSnapshot(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state services.DashboardState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Len(t, state.Bookings, 3)
	assert.Equal(t, services.TabOverview, state.ActiveTab)
	assert.False(t, state.IsLoading)
	assert.Equal(t, 3, state.Stats.TotalBookings)
	assert.Equal(t, 1, state.Stats.PendingBookings)
}

func TestListBookingsRendersLabels(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, env.Total)

	var views []BookingView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	assert.Equal(t, "Menunggu Konfirmasi", views[0].StatusLabel)
	assert.Equal(t, models.PlaceholderTechnician, views[0].TechnicianLabel)
	assert.Equal(t, models.PlaceholderActualCost, views[0].ActualCostLabel)
	assert.Equal(t, "Budi", views[1].TechnicianLabel)
	assert.Equal(t, models.UnknownStatusLabel, views[2].StatusLabel)
	assert.Equal(t, models.UnknownStatusClass, views[2].StatusClass)

	w, env = s.do(t, http.MethodGet, "/bookings/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.Total)

	w, _ = s.do(t, http.MethodGet, "/bookings/recent?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeStatusRequiresConfirmation(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPatch, "/bookings/b1/status", gin.H{"status": "completed"})
	require.Equal(t, http.StatusPreconditionRequired, w.Code)

	var prompt map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &prompt))
	assert.Equal(t, "Ubah Status Booking?", prompt["title"])
	assert.Equal(t, "Status akan diubah menjadi: Selesai", prompt["text"])
	assert.Zero(t, s.store.mutations)
}

func TestChangeStatusCancelled(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPatch, "/bookings/b1/status", gin.H{"status": "completed", "confirmed": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), string(services.OutcomeCancelled))
	assert.Zero(t, s.store.mutations)
	assert.Empty(t, s.hub.Recent())
}

func TestChangeStatusConfirmed(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPatch, "/bookings/b1/status", gin.H{"status": "completed", "confirmed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), string(services.OutcomeApplied))
	assert.Equal(t, 1, s.store.mutations)

	// the dashboard re-fetched rather than patching locally
	assert.Equal(t, models.BookingCompleted, s.ds.Bookings()[0].Status)

	recent := s.hub.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "Berhasil!", recent[0].Title)
	assert.Equal(t, notify.KindSuccess, recent[0].Kind)
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPatch, "/bookings/b1/status", gin.H{"status": "lost", "confirmed": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, s.store.mutations)
}

func TestAssignTechnicianFailure(t *testing.T) {
	s := newTestServer(t)
	s.store.failMutation = true

	w, env := s.do(t, http.MethodPatch, "/bookings/b1/technician", gin.H{"technician_id": "t1"})
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Data), string(services.OutcomeFailed))
	assert.Empty(t, s.ds.Bookings()[0].Technician)

	recent := s.hub.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "Error!", recent[0].Title)
	assert.Equal(t, "Gagal menugaskan teknisi", recent[0].Text)

	w, _ = s.do(t, http.MethodPatch, "/bookings/b1/technician", gin.H{"technician_id": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCostDraftSubmit(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/dashboard/cost-draft/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/dashboard/bookings/b1/select", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodPut, "/dashboard/cost-draft", gin.H{"value": "150000"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/dashboard/cost-draft/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Empty(t, s.ds.CostDraft())
	selected, ok := s.ds.SelectedBooking()
	require.True(t, ok)
	require.NotNil(t, selected.ActualCost)
	assert.Equal(t, "150000", selected.ActualCost.String())
}

func TestSelectionAndTabs(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/dashboard/bookings/missing/select", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPost, "/dashboard/bookings/b2/select", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/dashboard/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok := s.ds.SelectedBooking()
	assert.False(t, ok)

	w, _ = s.do(t, http.MethodPut, "/dashboard/tab", gin.H{"tab": "gallery"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.TabGallery, s.ds.ActiveTab())

	w, _ = s.do(t, http.MethodPut, "/dashboard/tab", gin.H{"tab": "billing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, services.TabGallery, s.ds.ActiveTab())
}

func TestCatalogBrandCRUD(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/catalog/printer-brands", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/catalog/printer-brands", gin.H{"name": "Canon"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(t, http.MethodGet, "/catalog/printer-brands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.Total)

	w, _ = s.do(t, http.MethodDelete, "/catalog/printer-brands/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/catalog/printer-brands/epson", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.ds.PrinterBrands(), 1)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/reports/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"breakdown"`)

	w, _ = s.do(t, http.MethodGet, "/reports/stats?days=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/reports/bookings.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestBookingAuditWithoutStore(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/bookings/b1/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(env.Data))
}

func TestStatusForMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.ErrValidation))
	assert.Equal(t, http.StatusBadRequest, statusFor(services.ErrUnknownTab))
	assert.Equal(t, http.StatusNotFound, statusFor(models.ErrNotFound))
	assert.Equal(t, http.StatusForbidden, statusFor(services.ErrNotAdmin))
	assert.Equal(t, http.StatusBadGateway, statusFor(models.ErrMutationFailed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestStreamNotifications(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/dashboard/events", nil)
	require.NoError(t, err)

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		done <- result{resp, err}
	}()

	require.Eventually(t, func() bool { return s.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	s.hub.Notify(context.Background(), notify.Notification{
		Title: "Berhasil!",
		Text:  "Teknisi berhasil ditugaskan",
		Kind:  notify.KindSuccess,
	})

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not start")
	}
	require.NoError(t, res.err)
	defer res.resp.Body.Close()
	assert.Equal(t, http.StatusOK, res.resp.StatusCode)
	assert.Contains(t, res.resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(res.resp.Body)
	var frame []string
	for len(frame) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line != "" {
			frame = append(frame, line)
		}
	}
	assert.Equal(t, "event:success", frame[0])
	assert.True(t, strings.HasPrefix(frame[1], "data:"))
	assert.Contains(t, frame[1], "Teknisi berhasil ditugaskan")

	cancel()
	require.Eventually(t, func() bool { return s.hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
