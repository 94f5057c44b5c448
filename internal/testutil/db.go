// Package testutil opens throwaway SQLite stores seeded with dashboard fixtures.
package testutil

import (
	"strings"
	"testing"
	"time"

	"invoice-dashboard-backend/internal/config"
	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory database private to t.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CloseDB closes the underlying pool so every later query fails.
func CloseDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func Date(s string) datatypes.Date {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return datatypes.Date(d)
}

var Customers = []models.Customer{
	{ID: uuid.MustParse("3958dc9e-712f-4377-85e9-fec4b6a6442a"), Name: "Delba de Oliveira", Email: "delba@oliveira.com", ImageURL: "/customers/delba-de-oliveira.png"},
	{ID: uuid.MustParse("3958dc9e-742f-4377-85e9-fec4b6a6442a"), Name: "Lee Robinson", Email: "lee@robinson.com", ImageURL: "/customers/lee-robinson.png"},
	{ID: uuid.MustParse("3958dc9e-737f-4377-85e9-fec4b6a6442a"), Name: "Hector Simpson", Email: "hector@simpson.com", ImageURL: "/customers/hector-simpson.png"},
	{ID: uuid.MustParse("50ca3e18-62cd-11ee-8c99-0242ac120002"), Name: "Steven Tey", Email: "steven@tey.com", ImageURL: "/customers/steven-tey.png"},
	{ID: uuid.MustParse("3958dc9e-787f-4377-85e9-fec4b6a6442a"), Name: "Steph Dietz", Email: "steph@dietz.com", ImageURL: "/customers/steph-dietz.png"},
	{ID: uuid.MustParse("76d65c26-f784-44a2-ac19-586678f7c2f2"), Name: "Michael Novotny", Email: "michael@novotny.com", ImageURL: "/customers/michael-novotny.png"},
	{ID: uuid.MustParse("d6e15727-9fe1-4961-8c5b-ea44a9bd81aa"), Name: "Evil Rabbit", Email: "evil@rabbit.com", ImageURL: "/customers/evil-rabbit.png"},
	{ID: uuid.MustParse("126eed9c-c90c-4ef6-a4a8-fcf7408d3c66"), Name: "Emil Kowalski", Email: "emil@kowalski.com", ImageURL: "/customers/emil-kowalski.png"},
	{ID: uuid.MustParse("cc27c14a-0acf-4f4a-a6c9-d45682c144b9"), Name: "Amy Burns", Email: "amy@burns.com", ImageURL: "/customers/amy-burns.png"},
	{ID: uuid.MustParse("13d07535-c59e-4157-a011-f8d2ef4e0cbb"), Name: "Balazs Orban", Email: "balazs@orban.com", ImageURL: "/customers/balazs-orban.png"},
}

// InvoiceSeed is the 15-invoice sample set. Customer indexes into Customers.
var InvoiceSeed = []struct {
	Customer int
	Amount   int64
	Status   models.InvoiceStatus
	Date     string
}{
	{0, 15795, models.InvoiceStatusPending, "2022-12-06"},
	{1, 20348, models.InvoiceStatusPending, "2022-11-14"},
	{4, 3040, models.InvoiceStatusPaid, "2022-10-29"},
	{3, 44800, models.InvoiceStatusPaid, "2023-09-10"},
	{5, 34577, models.InvoiceStatusPending, "2023-08-05"},
	{7, 54246, models.InvoiceStatusPending, "2023-07-16"},
	{6, 666, models.InvoiceStatusPending, "2023-06-27"},
	{3, 32545, models.InvoiceStatusPaid, "2023-06-09"},
	{4, 1250, models.InvoiceStatusPaid, "2023-06-17"},
	{5, 8546, models.InvoiceStatusPaid, "2023-06-07"},
	{1, 500, models.InvoiceStatusPaid, "2023-08-19"},
	{5, 8945, models.InvoiceStatusPaid, "2023-06-03"},
	{2, 8945, models.InvoiceStatusPaid, "2023-06-18"},
	{0, 8945, models.InvoiceStatusPaid, "2023-10-04"},
	{2, 1000, models.InvoiceStatusPaid, "2022-06-05"},
}

var RevenueSeed = []models.Revenue{
	{Month: "Jan", Revenue: 2000},
	{Month: "Feb", Revenue: 1800},
	{Month: "Mar", Revenue: 2200},
	{Month: "Apr", Revenue: 2500},
	{Month: "May", Revenue: 2300},
	{Month: "Jun", Revenue: 3200},
	{Month: "Jul", Revenue: 3500},
	{Month: "Aug", Revenue: 3700},
	{Month: "Sep", Revenue: 2500},
	{Month: "Oct", Revenue: 2800},
	{Month: "Nov", Revenue: 3000},
	{Month: "Dec", Revenue: 4800},
}

const (
	UserEmail    = "user@nextmail.com"
	UserPassword = "123456"
)

func SeedCustomers(t *testing.T, db *gorm.DB) []models.Customer {
	t.Helper()
	customers := append([]models.Customer(nil), Customers...)
	if err := db.Create(&customers).Error; err != nil {
		t.Fatalf("seed customers: %v", err)
	}
	return customers
}

// SeedInvoices inserts InvoiceSeed and returns the rows in seed order.
// Customers must be seeded first.
func SeedInvoices(t *testing.T, db *gorm.DB) []models.Invoice {
	t.Helper()
	invoices := make([]models.Invoice, 0, len(InvoiceSeed))
	for _, s := range InvoiceSeed {
		invoices = append(invoices, models.Invoice{
			ID:         uuid.New(),
			CustomerID: Customers[s.Customer].ID,
			Amount:     s.Amount,
			Status:     s.Status,
			Date:       Date(s.Date),
		})
	}
	InsertInvoices(t, db, invoices...)
	return invoices
}

func InsertInvoices(t *testing.T, db *gorm.DB, invoices ...models.Invoice) {
	t.Helper()
	for i := range invoices {
		if err := db.Omit("Customer").Create(&invoices[i]).Error; err != nil {
			t.Fatalf("seed invoice %d: %v", i, err)
		}
	}
}

func SeedRevenue(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := append([]models.Revenue(nil), RevenueSeed...)
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed revenue: %v", err)
	}
}

func SeedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(UserPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		ID:       uuid.MustParse("410544b2-4001-4271-9855-fec4b6a6442a"),
		Name:     "User",
		Email:    UserEmail,
		Password: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedAll loads customers, invoices, revenue and the demo user.
func SeedAll(t *testing.T, db *gorm.DB) []models.Invoice {
	t.Helper()
	SeedCustomers(t, db)
	invoices := SeedInvoices(t, db)
	SeedRevenue(t, db)
	SeedUser(t, db)
	return invoices
}
