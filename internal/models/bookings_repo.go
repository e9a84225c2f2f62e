package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"
)

type BookingRepo interface {
	GetAllBookings(ctx context.Context) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) (bool, error)
	AssignTechnician(ctx context.Context, id string, technicianID string) (bool, error)
	UpdateActualCost(ctx context.Context, id string, cost string) (bool, error)
}

func (su *SupabaseRepo) GetAllBookings(ctx context.Context) ([]Booking, error) {
	raw, _, err := su.supabaseClient.From(BookingsTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}

	bookings, rejected, err := DecodeBookings(raw)
	if err != nil {
		return nil, err
	}
	for _, rejErr := range rejected {
		su.logger.Warn("Skipping malformed booking row", "error", rejErr)
	}
	return bookings, nil
}

func (su *SupabaseRepo) UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) (bool, error) {
	if !status.IsKnown() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return su.updateBooking(id, map[string]interface{}{"status": status})
}

func (su *SupabaseRepo) AssignTechnician(ctx context.Context, id string, technicianID string) (bool, error) {
	if strings.TrimSpace(technicianID) == "" {
		return false, fmt.Errorf("%w: technician ID is required", ErrValidation)
	}
	return su.updateBooking(id, map[string]interface{}{"technician": technicianID})
}

func (su *SupabaseRepo) UpdateActualCost(ctx context.Context, id string, cost string) (bool, error) {
	return su.updateBooking(id, map[string]interface{}{"actual_cost": cost})
}

// updateBooking reports false when no row matched the id.
func (su *SupabaseRepo) updateBooking(id string, fields map[string]interface{}) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, fmt.Errorf("%w: booking ID is required", ErrValidation)
	}

	raw, count, err := su.supabaseClient.From(BookingsTable).
		Update(fields, "", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to update booking %s: %w", id, err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return false, fmt.Errorf("failed to unmarshal updated booking: %w", err)
	}

	return count > 0 || len(rows) > 0, nil
}
