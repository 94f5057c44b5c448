// Package invoicing validates and applies invoice mutations.
//
// Input problems come back as *apperr.ValidationError before the store is
// touched. Store problems never come back as errors: they are reported in
// the returned Outcome so the caller can show the message.
package invoicing

import (
	"context"
	"errors"
	"strings"
	"time"

	"invoice-dashboard-backend/internal/apperr"
	"invoice-dashboard-backend/internal/cache"
	"invoice-dashboard-backend/internal/logging"
	"invoice-dashboard-backend/internal/metrics"
	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	msgCreateFailed     = "Database Error: Failed to Create Invoice."
	msgUpdateFailed     = "Database Error: Failed to Update Invoice."
	msgDeleteFailed     = "Database Error: Failed to Delete Invoice."
	msgInvoiceNotFound  = "Invoice not found."
	msgCustomerNotFound = "Customer not found."
)

// Outcome is the result of a command that passed validation. A zero Outcome
// means success.
type Outcome struct {
	Message  string `json:"message,omitempty"`
	NotFound bool   `json:"-"`
}

func (o Outcome) OK() bool { return o.Message == "" }

type invoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Update(ctx context.Context, id, customerID uuid.UUID, amount int64, status models.InvoiceStatus) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type customerLookup interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	invoices  invoiceStore
	customers customerLookup
	views     cache.ViewCache
	log       logging.Logger
	metrics   metrics.Recorder
	now       func() time.Time
}

func NewService(invoices invoiceStore, customers customerLookup, views cache.ViewCache, log logging.Logger, rec metrics.Recorder) *Service {
	if views == nil {
		views = cache.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		invoices:  invoices,
		customers: customers,
		views:     views,
		log:       log.With("component", "invoicing"),
		metrics:   rec,
		now:       time.Now,
	}
}

// CreateInvoice stores a new invoice dated today.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (Outcome, error) {
	fields, err := parseInput(in)
	if err != nil {
		s.metrics.IncCommand("create", "invalid")
		return Outcome{}, err
	}

	if out, ok := s.checkCustomer(ctx, "create", fields.CustomerID, msgCreateFailed); !ok {
		return out, nil
	}

	inv := &models.Invoice{
		ID:         uuid.New(),
		CustomerID: fields.CustomerID,
		Amount:     fields.AmountCents,
		Status:     fields.Status,
		Date:       datatypes.Date(s.now().UTC()),
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		s.log.Error(ctx, "create invoice", "customer_id", fields.CustomerID, "err", err)
		s.metrics.IncCommand("create", "db_error")
		return Outcome{Message: msgCreateFailed}, nil
	}

	s.log.Info(ctx, "invoice created", "invoice_id", inv.ID, "amount", inv.Amount, "status", inv.Status)
	s.metrics.IncCommand("create", "ok")
	s.invalidate(ctx)
	return Outcome{}, nil
}

// UpdateInvoice rewrites customer, amount and status of the invoice with id.
// An unknown id yields a NotFound outcome.
func (s *Service) UpdateInvoice(ctx context.Context, id string, in InvoiceInput) (Outcome, error) {
	invoiceID, idErr := uuid.Parse(strings.TrimSpace(id))
	fields, err := parseInput(in)
	if idErr != nil {
		verr := apperr.NewValidationError()
		verr.Add("id", "must be a valid invoice id")
		var inputErr *apperr.ValidationError
		if errors.As(err, &inputErr) {
			for f, m := range inputErr.Violations {
				verr.Add(f, m)
			}
		}
		err = verr
	}
	if err != nil {
		s.metrics.IncCommand("update", "invalid")
		return Outcome{}, err
	}

	if out, ok := s.checkCustomer(ctx, "update", fields.CustomerID, msgUpdateFailed); !ok {
		return out, nil
	}

	n, err := s.invoices.Update(ctx, invoiceID, fields.CustomerID, fields.AmountCents, fields.Status)
	if err != nil {
		s.log.Error(ctx, "update invoice", "invoice_id", invoiceID, "err", err)
		s.metrics.IncCommand("update", "db_error")
		return Outcome{Message: msgUpdateFailed}, nil
	}
	if n == 0 {
		s.metrics.IncCommand("update", "not_found")
		return Outcome{Message: msgInvoiceNotFound, NotFound: true}, nil
	}

	s.log.Info(ctx, "invoice updated", "invoice_id", invoiceID, "amount", fields.AmountCents, "status", fields.Status)
	s.metrics.IncCommand("update", "ok")
	s.invalidate(ctx)
	return Outcome{}, nil
}

// DeleteInvoice removes the invoice with id. Deleting an unknown or malformed
// id succeeds without changing anything.
func (s *Service) DeleteInvoice(ctx context.Context, id string) Outcome {
	invoiceID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		s.log.Info(ctx, "delete skipped, malformed invoice id", "id", id)
		s.metrics.IncCommand("delete", "noop")
		return Outcome{}
	}

	n, err := s.invoices.Delete(ctx, invoiceID)
	if err != nil {
		s.log.Error(ctx, "delete invoice", "invoice_id", invoiceID, "err", err)
		s.metrics.IncCommand("delete", "db_error")
		return Outcome{Message: msgDeleteFailed}
	}
	if n == 0 {
		s.log.Info(ctx, "delete skipped, invoice absent", "invoice_id", invoiceID)
		s.metrics.IncCommand("delete", "noop")
		return Outcome{}
	}

	s.log.Info(ctx, "invoice deleted", "invoice_id", invoiceID)
	s.metrics.IncCommand("delete", "ok")
	s.invalidate(ctx)
	return Outcome{}
}

func (s *Service) checkCustomer(ctx context.Context, op string, id uuid.UUID, failMsg string) (Outcome, bool) {
	ok, err := s.customers.Exists(ctx, id)
	if err != nil {
		s.log.Error(ctx, "look up customer", "op", op, "customer_id", id, "err", err)
		s.metrics.IncCommand(op, "db_error")
		return Outcome{Message: failMsg}, false
	}
	if !ok {
		s.metrics.IncCommand(op, "customer_not_found")
		return Outcome{Message: msgCustomerNotFound, NotFound: true}, false
	}
	return Outcome{}, true
}

// invalidate drops cached list views. The write already happened, so a
// failure here is only logged.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.views.Invalidate(ctx); err != nil {
		s.log.Warn(ctx, "invalidate invoice views", "err", err)
	}
}
