package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoice-dashboard-backend/internal/apperr"
	"invoice-dashboard-backend/internal/logging"
	"invoice-dashboard-backend/internal/metrics"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"
	"invoice-dashboard-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type spyCache struct {
	invalidations int
	err           error
}

func (s *spyCache) Get(context.Context, string, any) (uint64, bool, error) { return 0, false, nil }
func (s *spyCache) Set(context.Context, string, uint64, any) error         { return nil }
func (s *spyCache) Invalidate(context.Context) error {
	s.invalidations++
	return s.err
}

var fixedNow = time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, db *gorm.DB) (*Service, *spyCache) {
	t.Helper()
	views := &spyCache{}
	svc := NewService(
		repository.NewInvoiceRepository(db),
		repository.NewCustomerRepository(db),
		views,
		logging.Discard(),
		metrics.Nop{},
	)
	svc.now = func() time.Time { return fixedNow }
	return svc, views
}

func countInvoices(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Invoice{}).Count(&n).Error)
	return n
}

func TestCreateInvoice(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	svc, views := newTestService(t, db)

	out, err := svc.CreateInvoice(context.Background(), InvoiceInput{
		CustomerID: customerID,
		Amount:     "12.345",
		Status:     "paid",
	})
	require.NoError(t, err)
	assert.True(t, out.OK())

	var stored models.Invoice
	require.NoError(t, db.First(&stored).Error)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Equal(t, uuid.MustParse(customerID), stored.CustomerID)
	assert.Equal(t, int64(1235), stored.Amount)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
	assert.Equal(t, "2024-03-15", time.Time(stored.Date).Format(time.DateOnly))
	assert.Equal(t, 1, views.invalidations)
}

func TestCreateInvoiceValidationTouchesNothing(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	svc, views := newTestService(t, db)

	for _, in := range []InvoiceInput{
		{CustomerID: customerID, Amount: "abc", Status: "paid"},
		{CustomerID: customerID, Amount: "10", Status: "overdue"},
		{CustomerID: "", Amount: "10", Status: "pending"},
	} {
		_, err := svc.CreateInvoice(context.Background(), in)
		var verr *apperr.ValidationError
		assert.True(t, errors.As(err, &verr), "input %+v", in)
	}
	assert.Zero(t, countInvoices(t, db))
	assert.Zero(t, views.invalidations)
}

func TestCreateInvoiceUnknownCustomer(t *testing.T) {
	db := testutil.OpenDB(t)
	svc, views := newTestService(t, db)

	out, err := svc.CreateInvoice(context.Background(), InvoiceInput{CustomerID: customerID, Amount: "1", Status: "paid"})
	require.NoError(t, err)
	assert.True(t, out.NotFound)
	assert.Equal(t, msgCustomerNotFound, out.Message)
	assert.Zero(t, countInvoices(t, db))
	assert.Zero(t, views.invalidations)
}

func TestCreateInvoiceStoreFailureIsAnOutcome(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	svc, views := newTestService(t, db)
	testutil.CloseDB(t, db)

	out, err := svc.CreateInvoice(context.Background(), InvoiceInput{CustomerID: customerID, Amount: "1", Status: "paid"})
	require.NoError(t, err)
	assert.False(t, out.OK())
	assert.Equal(t, msgCreateFailed, out.Message)
	assert.False(t, out.NotFound)
	assert.Zero(t, views.invalidations)
}

func TestCreateInvoiceInvalidationFailureStillSucceeds(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	svc, views := newTestService(t, db)
	views.err = errors.New("redis down")

	out, err := svc.CreateInvoice(context.Background(), InvoiceInput{CustomerID: customerID, Amount: "1", Status: "paid"})
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.Equal(t, int64(1), countInvoices(t, db))
}

func TestUpdateInvoice(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	invoices := testutil.SeedInvoices(t, db)
	svc, views := newTestService(t, db)
	target := invoices[0]
	newCustomer := testutil.Customers[2].ID

	out, err := svc.UpdateInvoice(context.Background(), target.ID.String(), InvoiceInput{
		CustomerID: newCustomer.String(),
		Amount:     "250.5",
		Status:     "paid",
	})
	require.NoError(t, err)
	assert.True(t, out.OK())

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", target.ID).Error)
	assert.Equal(t, newCustomer, stored.CustomerID)
	assert.Equal(t, int64(25050), stored.Amount)
	assert.Equal(t, models.InvoiceStatusPaid, stored.Status)
	assert.Equal(t, "2022-12-06", time.Time(stored.Date).Format(time.DateOnly))
	assert.Equal(t, 1, views.invalidations)
}

func TestUpdateInvoiceUnknownID(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	svc, views := newTestService(t, db)

	out, err := svc.UpdateInvoice(context.Background(), uuid.NewString(), InvoiceInput{CustomerID: customerID, Amount: "1", Status: "paid"})
	require.NoError(t, err)
	assert.True(t, out.NotFound)
	assert.Equal(t, msgInvoiceNotFound, out.Message)
	assert.Zero(t, views.invalidations)
}

func TestUpdateInvoiceMalformedID(t *testing.T) {
	db := testutil.OpenDB(t)
	svc, _ := newTestService(t, db)

	_, err := svc.UpdateInvoice(context.Background(), "17", InvoiceInput{CustomerID: customerID, Amount: "x", Status: "paid"})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must be a valid invoice id", verr.Violations["id"])
	assert.Equal(t, "must be a number", verr.Violations["amount"])
}

func TestUpdateInvoiceStoreFailure(t *testing.T) {
	db := testutil.OpenDB(t)
	svc, _ := newTestService(t, db)
	testutil.CloseDB(t, db)

	out, err := svc.UpdateInvoice(context.Background(), uuid.NewString(), InvoiceInput{CustomerID: customerID, Amount: "1", Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, msgUpdateFailed, out.Message)
}

func TestDeleteInvoice(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	invoices := testutil.SeedInvoices(t, db)
	svc, views := newTestService(t, db)
	before := countInvoices(t, db)

	out := svc.DeleteInvoice(context.Background(), invoices[3].ID.String())
	assert.True(t, out.OK())
	assert.Equal(t, before-1, countInvoices(t, db))
	assert.Equal(t, 1, views.invalidations)

	err := db.First(&models.Invoice{}, "id = ?", invoices[3].ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteInvoiceMissingIsNoop(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedCustomers(t, db)
	testutil.SeedInvoices(t, db)
	svc, views := newTestService(t, db)
	before := countInvoices(t, db)

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		out := svc.DeleteInvoice(context.Background(), id)
		assert.True(t, out.OK(), id)
	}
	assert.Equal(t, before, countInvoices(t, db))
	assert.Zero(t, views.invalidations)
}

func TestDeleteInvoiceStoreFailure(t *testing.T) {
	db := testutil.OpenDB(t)
	svc, _ := newTestService(t, db)
	testutil.CloseDB(t, db)

	out := svc.DeleteInvoice(context.Background(), uuid.NewString())
	assert.Equal(t, msgDeleteFailed, out.Message)
}
