package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/printer-admin/internal/metrics"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/notify"
)

type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

const (
	ConfirmStatusTitle   = "Ubah Status Booking?"
	confirmStatusText    = "Status akan diubah menjadi: %s"
	successTitle         = "Berhasil!"
	errorTitle           = "Error!"
	SuccessNotifyTimeout = 2 * time.Second
)

type bookingAction struct {
	name        string
	auditAction string
	successText string
	errorText   string
}

var (
	actionStatus = bookingAction{
		name:        "status",
		auditAction: models.AuditStatusChanged,
		successText: "Status booking berhasil diubah",
		errorText:   "Gagal mengubah status booking",
	}
	actionTechnician = bookingAction{
		name:        "technician",
		auditAction: models.AuditTechnicianAssigned,
		successText: "Teknisi berhasil ditugaskan",
		errorText:   "Gagal menugaskan teknisi",
	}
	actionActualCost = bookingAction{
		name:        "actual_cost",
		auditAction: models.AuditActualCostUpdated,
		successText: "Biaya aktual berhasil diupdate",
		errorText:   "Gagal mengupdate biaya aktual",
	}
)

// StatusPrompt returns the confirmation title and text for a status change.
func StatusPrompt(status models.BookingStatus) (string, string) {
	return ConfirmStatusTitle, fmt.Sprintf(confirmStatusText, status.Label())
}

// BookingWorkflow runs operator actions on bookings: mutate, notify, then re-fetch
// the bookings collection. Nothing is applied optimistically.
type BookingWorkflow struct {
	repo      models.BookingRepo
	dashboard *DashboardService
	notifier  notify.Notifier
	audit     models.AuditRepo
	logger    *slog.Logger
}

// NewBookingWorkflow builds the workflow; audit may be nil when no audit store is configured.
func NewBookingWorkflow(repo models.BookingRepo, dashboard *DashboardService, notifier notify.Notifier, audit models.AuditRepo, logger *slog.Logger) *BookingWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingWorkflow{
		repo:      repo,
		dashboard: dashboard,
		notifier:  notifier,
		audit:     audit,
		logger:    logger,
	}
}

// ChangeStatus asks the operator to confirm, then moves the booking to status.
// Any status may follow any other.
func (w *BookingWorkflow) ChangeStatus(ctx context.Context, confirmer notify.Confirmer, id string, status models.BookingStatus) (Outcome, error) {
	if strings.TrimSpace(id) == "" {
		return OutcomeFailed, fmt.Errorf("%w: booking id is required", models.ErrValidation)
	}
	if !status.IsKnown() {
		return OutcomeFailed, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	title, text := StatusPrompt(status)
	confirmed, err := confirmer.Confirm(ctx, title, text)
	if err != nil {
		metrics.IncBookingMutation(actionStatus.name, string(OutcomeCancelled))
		return OutcomeCancelled, fmt.Errorf("confirmation failed: %w", err)
	}
	if !confirmed {
		metrics.IncBookingMutation(actionStatus.name, string(OutcomeCancelled))
		w.logger.Info("Status change cancelled", "booking_id", id, "status", status)
		return OutcomeCancelled, nil
	}

	return w.apply(ctx, actionStatus, id, string(status), func() (bool, error) {
		return w.repo.UpdateBookingStatus(ctx, id, status)
	})
}

// AssignTechnician mutates directly without a prompt.
func (w *BookingWorkflow) AssignTechnician(ctx context.Context, id, technicianID string) (Outcome, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(technicianID) == "" {
		return OutcomeFailed, fmt.Errorf("%w: booking id and technician id are required", models.ErrValidation)
	}
	return w.apply(ctx, actionTechnician, id, technicianID, func() (bool, error) {
		return w.repo.AssignTechnician(ctx, id, technicianID)
	})
}

// UpdateActualCost stores cost as typed by the operator; no parsing is applied.
func (w *BookingWorkflow) UpdateActualCost(ctx context.Context, id, cost string) (Outcome, error) {
	if strings.TrimSpace(id) == "" {
		return OutcomeFailed, fmt.Errorf("%w: booking id is required", models.ErrValidation)
	}
	if strings.TrimSpace(cost) == "" {
		return OutcomeFailed, fmt.Errorf("%w: actual cost is required", models.ErrValidation)
	}
	return w.apply(ctx, actionActualCost, id, cost, func() (bool, error) {
		return w.repo.UpdateActualCost(ctx, id, cost)
	})
}

// SubmitCostDraft sends the cost input of the selected booking and clears the input,
// whatever the outcome.
func (w *BookingWorkflow) SubmitCostDraft(ctx context.Context) (Outcome, error) {
	id, draft, err := w.dashboard.takeCostDraft()
	if err != nil {
		return OutcomeFailed, err
	}
	return w.UpdateActualCost(ctx, id, draft)
}

func (w *BookingWorkflow) apply(ctx context.Context, action bookingAction, id, value string, mutate func() (bool, error)) (Outcome, error) {
	updated, err := mutate()
	if err == nil && !updated {
		err = errors.New("no booking was updated")
	}
	if err != nil {
		metrics.IncBookingMutation(action.name, string(OutcomeFailed))
		w.logger.Error("Booking mutation failed",
			"action", action.name,
			"booking_id", id,
			"error", err,
		)
		w.notifier.Notify(ctx, notify.Notification{
			Title: errorTitle,
			Text:  action.errorText,
			Kind:  notify.KindError,
		})
		return OutcomeFailed, fmt.Errorf("%w: %s: %v", models.ErrMutationFailed, action.name, err)
	}

	metrics.IncBookingMutation(action.name, string(OutcomeApplied))
	w.notifier.Notify(ctx, notify.Notification{
		Title:       successTitle,
		Text:        action.successText,
		Kind:        notify.KindSuccess,
		AutoDismiss: SuccessNotifyTimeout,
	})
	w.recordAudit(ctx, action, id, value)

	if err := w.dashboard.ReloadBookings(ctx); err != nil {
		w.logger.Warn("Bookings reload after mutation failed", "action", action.name, "error", err)
	}
	return OutcomeApplied, nil
}

func (w *BookingWorkflow) recordAudit(ctx context.Context, action bookingAction, id, value string) {
	if w.audit == nil {
		return
	}
	entry := &models.AuditEntry{
		BookingID: id,
		Action:    action.auditAction,
		Value:     value,
		Actor:     ActorFromContext(ctx),
	}
	if err := w.audit.RecordAudit(ctx, entry); err != nil {
		w.logger.Warn("Failed to record booking audit", "booking_id", id, "action", action.auditAction, "error", err)
	}
}

// BookingAudit lists the recorded admin actions of a booking, newest first.
func (w *BookingWorkflow) BookingAudit(ctx context.Context, id string, limit int) ([]*models.AuditEntry, error) {
	if w.audit == nil {
		return []*models.AuditEntry{}, nil
	}
	entries, err := w.audit.ListAuditByBooking(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

type actorKey struct{}

// WithActor attaches the acting admin to ctx for audit records.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
