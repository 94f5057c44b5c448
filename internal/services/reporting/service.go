// Package reporting answers the dashboard's read queries: summary cards,
// invoice and customer listings, edit-form lookups and revenue.
//
// Store failures are logged and returned as *apperr.QueryError with a
// message fit for end users. Absent rows are reported as nil results.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"invoice-dashboard-backend/internal/apperr"
	"invoice-dashboard-backend/internal/cache"
	"invoice-dashboard-backend/internal/currency"
	"invoice-dashboard-backend/internal/logging"
	"invoice-dashboard-backend/internal/metrics"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize    = 6
	DefaultLatestLimit = 5
)

type invoiceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	Latest(ctx context.Context, limit int) ([]repository.InvoiceRow, error)
	Search(ctx context.Context, query string, limit, offset int) ([]repository.InvoiceRow, error)
	CountMatching(ctx context.Context, query string) (int64, error)
	Count(ctx context.Context) (int64, error)
	TotalsByStatus(ctx context.Context) ([]repository.StatusTotal, error)
}

type customerReader interface {
	Count(ctx context.Context) (int64, error)
	Options(ctx context.Context) ([]repository.CustomerOption, error)
	SearchWithTotals(ctx context.Context, query string, limit, offset int) ([]repository.CustomerTotals, error)
	CountMatching(ctx context.Context, query string) (int64, error)
}

type revenueReader interface {
	All(ctx context.Context) ([]models.Revenue, error)
}

type userReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	invoices  invoiceReader
	customers customerReader
	revenue   revenueReader
	users     userReader
	views     cache.ViewCache
	log       logging.Logger
	metrics   metrics.Recorder
}

func NewService(
	invoices invoiceReader,
	customers customerReader,
	revenue revenueReader,
	users userReader,
	views cache.ViewCache,
	log logging.Logger,
	rec metrics.Recorder,
) *Service {
	if views == nil {
		views = cache.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		invoices:  invoices,
		customers: customers,
		revenue:   revenue,
		users:     users,
		views:     views,
		log:       log.With("component", "reporting"),
		metrics:   rec,
	}
}

func (s *Service) fail(ctx context.Context, op, message string, err error, args ...any) error {
	s.log.Error(ctx, message, append([]any{"op", op, "err", err}, args...)...)
	s.metrics.IncQueryFailure(op)
	return apperr.NewQueryError(message, err)
}

// FetchCardSummary counts invoices and customers and totals paid and pending
// amounts. The three reads run concurrently; any failure fails the summary.
func (s *Service) FetchCardSummary(ctx context.Context) (CardSummary, error) {
	var (
		summary CardSummary
		totals  []repository.StatusTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.invoices.Count(gctx)
		summary.NumberOfInvoices = n
		return err
	})
	g.Go(func() error {
		n, err := s.customers.Count(gctx)
		summary.NumberOfCustomers = n
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.invoices.TotalsByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return CardSummary{}, s.fail(ctx, "card_summary", "Failed to fetch card data.", err)
	}

	for _, t := range totals {
		switch t.Status {
		case models.InvoiceStatusPaid:
			summary.TotalPaid = t.Sum
		case models.InvoiceStatusPending:
			summary.TotalPending = t.Sum
		}
	}
	summary.TotalPaidDisplay = currency.Format(summary.TotalPaid)
	summary.TotalPendingDisplay = currency.Format(summary.TotalPending)
	return summary, nil
}

// FetchLatestInvoices returns the newest invoices with their customer. A
// non-positive limit means DefaultLatestLimit.
func (s *Service) FetchLatestInvoices(ctx context.Context, limit int) ([]LatestInvoice, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	rows, err := s.invoices.Latest(ctx, limit)
	if err != nil {
		return nil, s.fail(ctx, "latest_invoices", "Failed to fetch the latest invoices.", err)
	}
	out := make([]LatestInvoice, 0, len(rows))
	for _, r := range rows {
		out = append(out, LatestInvoice{
			ID:            r.ID,
			Name:          r.Name,
			Email:         r.Email,
			ImageURL:      r.ImageURL,
			Amount:        r.Amount,
			AmountDisplay: currency.Format(r.Amount),
		})
	}
	return out, nil
}

// FetchFilteredInvoices returns one page of invoices matching query. Amounts
// stay in cents.
func (s *Service) FetchFilteredInvoices(ctx context.Context, query string, page, pageSize int) ([]InvoiceListItem, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return []InvoiceListItem{}, nil
	}

	var out []InvoiceListItem
	slot, hit := s.cached(ctx, fmt.Sprintf("invoices:list:%d:%d:%s", pageSize, page, query), &out)
	if hit {
		return out, nil
	}

	rows, err := s.invoices.Search(ctx, query, pageSize, offset)
	if err != nil {
		return nil, s.fail(ctx, "filtered_invoices", "Failed to fetch invoices.", err, "query", query, "page", page)
	}
	out = make([]InvoiceListItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, InvoiceListItem{
			ID:         r.ID,
			CustomerID: r.CustomerID,
			Name:       r.Name,
			Email:      r.Email,
			ImageURL:   r.ImageURL,
			Amount:     r.Amount,
			Date:       isoDate(r.Date),
			Status:     r.Status,
		})
	}
	s.store(ctx, slot, out)
	return out, nil
}

// FetchInvoicesPageCount returns how many pages FetchFilteredInvoices has for query.
func (s *Service) FetchInvoicesPageCount(ctx context.Context, query string, pageSize int) (int, error) {
	_, pageSize = normalizePage(1, pageSize)
	var pages int
	slot, hit := s.cached(ctx, fmt.Sprintf("invoices:pages:%d:%s", pageSize, query), &pages)
	if hit {
		return pages, nil
	}

	n, err := s.invoices.CountMatching(ctx, query)
	if err != nil {
		return 0, s.fail(ctx, "invoice_pages", "Failed to fetch total number of invoices.", err, "query", query)
	}
	pages = pageCount(n, pageSize)
	s.store(ctx, slot, pages)
	return pages, nil
}

// FetchInvoiceByID returns the edit-form view of an invoice, or nil when no
// invoice has id.
func (s *Service) FetchInvoiceByID(ctx context.Context, id string) (*InvoiceForm, error) {
	invoiceID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(ctx, "invoice_by_id", "Failed to fetch invoice.", err, "invoice_id", invoiceID)
	}

	status := models.InvoiceStatusPending
	if inv.Status.Valid() {
		status = inv.Status
	}
	return &InvoiceForm{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     decimal.New(inv.Amount, -2),
		Status:     status,
	}, nil
}

// FetchCustomersForSelect lists every customer by name.
func (s *Service) FetchCustomersForSelect(ctx context.Context) ([]CustomerOption, error) {
	rows, err := s.customers.Options(ctx)
	if err != nil {
		return nil, s.fail(ctx, "customer_options", "Failed to fetch all customers.", err)
	}
	out := make([]CustomerOption, 0, len(rows))
	for _, r := range rows {
		out = append(out, CustomerOption{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// FetchFilteredCustomersPage returns one page of customers matching query
// with their invoice totals.
func (s *Service) FetchFilteredCustomersPage(ctx context.Context, query string, page, pageSize int) ([]CustomerTableRow, error) {
	page, pageSize = normalizePage(page, pageSize)
	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return []CustomerTableRow{}, nil
	}
	rows, err := s.customers.SearchWithTotals(ctx, query, pageSize, offset)
	if err != nil {
		return nil, s.fail(ctx, "filtered_customers", "Failed to fetch customer table.", err, "query", query, "page", page)
	}
	out := make([]CustomerTableRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, CustomerTableRow{
			ID:                  r.ID,
			Name:                r.Name,
			Email:               r.Email,
			ImageURL:            r.ImageURL,
			TotalInvoices:       r.TotalInvoices,
			TotalPending:        r.TotalPending,
			TotalPaid:           r.TotalPaid,
			TotalPendingDisplay: currency.Format(r.TotalPending),
			TotalPaidDisplay:    currency.Format(r.TotalPaid),
		})
	}
	return out, nil
}

func (s *Service) FetchCustomersPageCount(ctx context.Context, query string, pageSize int) (int, error) {
	_, pageSize = normalizePage(1, pageSize)
	n, err := s.customers.CountMatching(ctx, query)
	if err != nil {
		return 0, s.fail(ctx, "customer_pages", "Failed to fetch total number of customers.", err, "query", query)
	}
	return pageCount(n, pageSize), nil
}

// LookupUserByEmail returns the stored user, password hash included, or nil
// when the email is unknown.
func (s *Service) LookupUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(ctx, "user_by_email", "Failed to fetch user.", err)
	}
	return user, nil
}

// FetchRevenue returns monthly revenue in whole dollars, January first.
func (s *Service) FetchRevenue(ctx context.Context) ([]models.Revenue, error) {
	rows, err := s.revenue.All(ctx)
	if err != nil {
		return nil, s.fail(ctx, "revenue", "Failed to fetch revenue data.", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return monthIndex(rows[i].Month) < monthIndex(rows[j].Month)
	})
	return rows, nil
}

// viewSlot is where a cache miss gets filled: the key and the generation
// observed before the store was read.
type viewSlot struct {
	key    string
	gen    uint64
	usable bool
}

func (s *Service) cached(ctx context.Context, key string, dst any) (viewSlot, bool) {
	gen, hit, err := s.views.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn(ctx, "read invoice view cache", "key", key, "err", err)
		return viewSlot{}, false
	}
	return viewSlot{key: key, gen: gen, usable: true}, hit
}

func (s *Service) store(ctx context.Context, slot viewSlot, value any) {
	if !slot.usable {
		return
	}
	if err := s.views.Set(ctx, slot.key, slot.gen, value); err != nil {
		s.log.Warn(ctx, "write invoice view cache", "key", slot.key, "err", err)
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// maxOffset is the largest OFFSET handed to the store.
const maxOffset = math.MaxInt32

// pageOffset returns the first row of page. It reports false for pages that
// start past maxOffset; those are empty.
func pageOffset(page, pageSize int) (int, bool) {
	if page-1 > maxOffset/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

func pageCount(rows int64, pageSize int) int {
	size := int64(pageSize)
	return int((rows + size - 1) / size)
}

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// monthIndex orders "Jan".."Dec"; unrecognised labels sort last.
func monthIndex(label string) int {
	if i, ok := months[strings.ToLower(strings.TrimSpace(label))]; ok {
		return i
	}
	return len(months) + 1
}
