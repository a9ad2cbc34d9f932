package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty")

// CustomerForm is the shipping form. Every field is required.
type CustomerForm struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

// FormError lists blank required fields by their form names.
type FormError struct {
	Fields []string
}

func (e *FormError) Error() string {
	return "please fill in: " + strings.Join(e.Fields, ", ")
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

func (f CustomerForm) trimmed() CustomerForm {
	return CustomerForm{
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Address:    strings.TrimSpace(f.Address),
		City:       strings.TrimSpace(f.City),
		PostalCode: strings.TrimSpace(f.PostalCode),
	}
}

// Validate treats whitespace-only values as blank.
func (f CustomerForm) Validate() error {
	err := formValidator.Struct(f.trimmed())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &FormError{}
	for _, v := range verrs {
		fe.Fields = append(fe.Fields, v.Field())
	}
	return fe
}

type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// PendingOrder is the snapshot handed to the gateway. It is never authoritative
// for pricing; the server re-prices the items.
type PendingOrder struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"totalAmount"`
	Customer  CustomerForm    `json:"customer"`
	CreatedAt time.Time       `json:"createdAt"`
}

func BuildPreview(cart *Cart, form CustomerForm, now time.Time) (PendingOrder, error) {
	if cart == nil || cart.Len() == 0 || !cart.Total().IsPositive() {
		return PendingOrder{}, ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		return PendingOrder{}, err
	}

	items := cart.Items()
	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return PendingOrder{
		Items:     lines,
		Total:     cart.Total(),
		Customer:  form.trimmed(),
		CreatedAt: now,
	}, nil
}

// Summary renders the order the way the confirmation page lists it.
func (p PendingOrder) Summary() OrderSummary {
	s := OrderSummary{TotalAmount: p.Total}
	for _, l := range p.Items {
		s.Items = append(s.Items, fmt.Sprintf("%d x %s", l.Quantity, l.Name))
		s.TotalItems += l.Quantity
	}
	return s
}
