package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	BookingsTable = "service_bookings"

	// shown wherever an optional booking field is absent
	PlaceholderTechnician = "Belum ditugaskan"
	PlaceholderActualCost = "Not set"
	PlaceholderText       = "-"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in-progress"
	BookingServicing  BookingStatus = "servicing"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

const (
	UnknownStatusLabel = "Unknown"
	UnknownStatusClass = "bg-gray-100 text-gray-800"
)

var statusLabels = map[BookingStatus]string{
	BookingPending:    "Menunggu Konfirmasi",
	BookingConfirmed:  "Dikonfirmasi",
	BookingInProgress: "Dalam Proses",
	BookingServicing:  "Sedang Diperbaiki",
	BookingCompleted:  "Selesai",
	BookingCancelled:  "Dibatalkan",
}

var statusClasses = map[BookingStatus]string{
	BookingPending:    "bg-yellow-100 text-yellow-800",
	BookingConfirmed:  "bg-blue-100 text-blue-800",
	BookingInProgress: "bg-purple-100 text-purple-800",
	BookingServicing:  "bg-orange-100 text-orange-800",
	BookingCompleted:  "bg-green-100 text-green-800",
	BookingCancelled:  "bg-red-100 text-red-800",
}

// AllStatuses returns the statuses in the order an operator picks them.
func AllStatuses() []BookingStatus {
	return []BookingStatus{
		BookingPending,
		BookingConfirmed,
		BookingInProgress,
		BookingServicing,
		BookingCompleted,
		BookingCancelled,
	}
}

func (s BookingStatus) IsKnown() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label never fails; values outside the enumeration map to UnknownStatusLabel.
func (s BookingStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return UnknownStatusLabel
}

func (s BookingStatus) StyleClass() string {
	if class, ok := statusClasses[s]; ok {
		return class
	}
	return UnknownStatusClass
}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(strings.TrimSpace(raw))
	if !s.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Amount is a cost value as the backend stores it. Cost columns come back either
// as JSON numbers or strings, so both decode into the literal text.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid amount %s: %w", string(data), err)
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) String() string {
	return string(a)
}

type Customer struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email,omitempty"`
	Address string  `json:"address"`
}

type PrinterRef struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

type ProblemRef struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

type ServiceInfo struct {
	Type string `json:"type"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// TimelineStep completion and timestamp are maintained by the backend.
type TimelineStep struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

type Booking struct {
	ID            string         `json:"id"`
	Customer      Customer       `json:"customer"`
	Printer       PrinterRef     `json:"printer"`
	Problem       ProblemRef     `json:"problem"`
	Service       ServiceInfo    `json:"service"`
	Status        BookingStatus  `json:"status"`
	Technician    string         `json:"technician"`
	EstimatedCost Amount         `json:"estimatedCost"`
	ActualCost    *Amount        `json:"actualCost,omitempty"`
	Timeline      []TimelineStep `json:"timeline"`
	Notes         *string        `json:"notes,omitempty"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"`
}

func (b Booking) StatusLabel() string {
	return b.Status.Label()
}

// TechnicianLabel resolves the assigned technician id against the known technicians.
// Unknown ids are shown verbatim; an empty assignment gets the placeholder.
func (b Booking) TechnicianLabel(technicians []Technician) string {
	if strings.TrimSpace(b.Technician) == "" {
		return PlaceholderTechnician
	}
	for _, t := range technicians {
		if t.ID == b.Technician {
			return t.Name
		}
	}
	return b.Technician
}

func (b Booking) ActualCostLabel() string {
	if b.ActualCost == nil || *b.ActualCost == "" {
		return PlaceholderActualCost
	}
	return b.ActualCost.String()
}

func (b Booking) EstimatedCostLabel() string {
	if b.EstimatedCost == "" {
		return PlaceholderText
	}
	return b.EstimatedCost.String()
}

// bookingRow is the flat shape of a service_bookings row.
type bookingRow struct {
	ID                 string        `json:"id" validate:"required"`
	CustomerName       string        `json:"customer_name" validate:"required"`
	CustomerPhone      string        `json:"customer_phone" validate:"required"`
	CustomerEmail      *string       `json:"customer_email"`
	CustomerAddress    string        `json:"customer_address"`
	PrinterBrand       string        `json:"printer_brand" validate:"required"`
	PrinterModel       string        `json:"printer_model"`
	ProblemCategory    string        `json:"problem_category"`
	ProblemDescription string        `json:"problem_description"`
	ServiceType        string        `json:"service_type"`
	ServiceDate        string        `json:"service_date"`
	ServiceTime        string        `json:"service_time"`
	Status             string        `json:"status"`
	Technician         *string       `json:"technician"`
	EstimatedCost      Amount        `json:"estimated_cost"`
	ActualCost         *Amount       `json:"actual_cost"`
	Timeline           []timelineRow `json:"timeline"`
	Notes              *string       `json:"notes"`
	CreatedAt          string        `json:"created_at"`
}

type timelineRow struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Timestamp   string `json:"timestamp"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func (r bookingRow) toBooking() Booking {
	b := Booking{
		ID: r.ID,
		Customer: Customer{
			Name:    r.CustomerName,
			Phone:   r.CustomerPhone,
			Email:   nonEmpty(r.CustomerEmail),
			Address: r.CustomerAddress,
		},
		Printer: PrinterRef{Brand: r.PrinterBrand, Model: r.PrinterModel},
		Problem: ProblemRef{Category: r.ProblemCategory, Description: r.ProblemDescription},
		Service: ServiceInfo{Type: r.ServiceType, Date: r.ServiceDate, Time: r.ServiceTime},
		// unknown statuses are kept as-is and rendered with the fallback label
		Status:        BookingStatus(r.Status),
		EstimatedCost: r.EstimatedCost,
		Notes:         nonEmpty(r.Notes),
		CreatedAt:     parseTimestamp(r.CreatedAt),
		Timeline:      make([]TimelineStep, 0, len(r.Timeline)),
	}
	if r.Status == "" {
		b.Status = BookingPending
	}
	if r.Technician != nil {
		b.Technician = strings.TrimSpace(*r.Technician)
	}
	if r.ActualCost != nil && *r.ActualCost != "" {
		cost := *r.ActualCost
		b.ActualCost = &cost
	}
	for _, step := range r.Timeline {
		b.Timeline = append(b.Timeline, TimelineStep{
			Title:       step.Title,
			Description: step.Description,
			Completed:   step.Completed,
			Timestamp:   parseTimestamp(step.Timestamp),
		})
	}
	return b
}

// DecodeBookings converts raw service_bookings rows into bookings. Rows that cannot
// be decoded or miss a required field are skipped and reported in rejected.
func DecodeBookings(raw []byte) (bookings []Booking, rejected []error, err error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal booking rows: %w", err)
	}

	bookings = make([]Booking, 0, len(rows))
	for i, data := range rows {
		var row bookingRow
		if err := json.Unmarshal(data, &row); err != nil {
			rejected = append(rejected, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		if err := Validate.Struct(row); err != nil {
			rejected = append(rejected, fmt.Errorf("row %d (id=%q): %w", i, row.ID, err))
			continue
		}
		bookings = append(bookings, row.toBooking())
	}
	return bookings, rejected, nil
}
