package invoicing

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"invoice-dashboard-backend/internal/apperr"
	"invoice-dashboard-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceInput carries the raw form fields of the create and edit forms.
type InvoiceInput struct {
	CustomerID string `form:"customerId" json:"customerId" validate:"required,uuid"`
	Amount     AmountText `form:"amount" json:"amount" validate:"required"`
	Status     string `form:"status" json:"status" validate:"required,oneof=pending paid"`
}

// AmountText is a dollar amount as entered. JSON bodies may carry it as a
// string or as a number.
type AmountText string

func (a *AmountText) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = AmountText(n.String())
	return nil
}

// invoiceFields is InvoiceInput after coercion.
type invoiceFields struct {
	CustomerID  uuid.UUID
	AmountCents int64
	Status      models.InvoiceStatus
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldNames = map[string]string{
	"CustomerID": "customerId",
	"Amount":     "amount",
	"Status":     "status",
}

func parseInput(in InvoiceInput) (invoiceFields, error) {
	in.CustomerID = strings.ToLower(strings.TrimSpace(in.CustomerID))
	in.Amount = AmountText(strings.TrimSpace(string(in.Amount)))
	in.Status = strings.TrimSpace(in.Status)

	verr := apperr.NewValidationError()
	if err := validate.Struct(in); err != nil {
		ferrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return invoiceFields{}, err
		}
		for _, fe := range ferrs {
			verr.Add(fieldNames[fe.Field()], violation(fe))
		}
	}

	var out invoiceFields
	if _, bad := verr.Violations["amount"]; !bad {
		cents, msg := toCents(string(in.Amount))
		if msg != "" {
			verr.Add("amount", msg)
		}
		out.AmountCents = cents
	}
	if !verr.Empty() {
		return invoiceFields{}, verr
	}

	out.CustomerID = uuid.MustParse(in.CustomerID)
	out.Status = models.InvoiceStatus(in.Status)
	return out, nil
}

func violation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "uuid":
		return "must be a valid customer id"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "invalid"
	}
}

const (
	maxCents      = 1<<53 - 1
	maxIntDigits  = 16
	maxFracDigits = 16
)

// plainDecimal is digits with an optional fraction. Exponents are refused so
// the size of the number is bounded by the length of the input.
var plainDecimal = regexp.MustCompile(`^(\d+)(?:\.(\d+))?$`)

// toCents converts a dollar amount to cents, rounding half up to the nearest cent.
func toCents(amount string) (int64, string) {
	digits := strings.TrimPrefix(amount, "-")
	m := plainDecimal.FindStringSubmatch(digits)
	if m == nil {
		return 0, "must be a number"
	}
	if digits != amount {
		return 0, "must not be negative"
	}
	if len(strings.TrimLeft(m[1], "0")) > maxIntDigits {
		return 0, "too large"
	}
	if len(m[2]) > maxFracDigits {
		return 0, "too many decimal places"
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, "must be a number"
	}
	cents := d.Shift(2)
	if cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, "too large"
	}
	return cents.Round(0).IntPart(), ""
}
