// Package forms validates user input before anything is sent to the API.
package forms

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/naveenspark/fridge/internal/selection"
	"github.com/naveenspark/fridge/pkg/client"
	"github.com/naveenspark/fridge/pkg/domain"
)

// ValidationError is a local input error. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

var datePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

// ParseDate accepts "" or a real YYYY-MM-DD calendar date.
func ParseDate(field, s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !datePattern.MatchString(s) {
		return nil, invalid(field, "use the YYYY-MM-DD date format")
	}
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return nil, invalid(field, "no such date: "+s)
	}
	return &s, nil
}

// ParseAmount parses a positive, finite quantity. A decimal comma is accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, invalid("amount", "enter a positive amount")
	}
	return f, nil
}

type LoginForm struct {
	Login    string
	Password string
}

func (f LoginForm) Validate() (client.Credentials, error) {
	login := strings.TrimSpace(f.Login)
	if login == "" {
		return client.Credentials{}, invalid("login", "login is required")
	}
	if f.Password == "" {
		return client.Credentials{}, invalid("password", "password is required")
	}
	return client.Credentials{Login: login, Password: f.Password}, nil
}

type FridgeForm struct {
	Name string
}

func (f FridgeForm) Validate() (string, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return "", invalid("name", "fridge name is required")
	}
	return name, nil
}

type ProductForm struct {
	Name string
	EAN  string
	Type selection.Selection
	Unit selection.Selection
}

func (f ProductForm) Validate() (client.CreateProductRequest, error) {
	var req client.CreateProductRequest

	name := strings.TrimSpace(f.Name)
	if name == "" {
		return req, invalid("name", "product name is required")
	}
	if f.Type.IsZero() || f.Type.ID == "" {
		return req, invalid("type", "choose a product type")
	}
	if f.Unit.IsZero() || f.Unit.ID == "" {
		return req, invalid("unit", "choose a default unit")
	}
	typeValue, ok := selection.ProductTypeValue(f.Type)
	if !ok {
		return req, invalid("type", "the selected product type is not valid")
	}
	unitValue, ok := selection.UnitValue(f.Unit)
	if !ok {
		return req, invalid("unit", "the selected unit is not valid")
	}

	req = client.CreateProductRequest{
		Name:        name,
		ProductType: typeValue,
		DefaultUnit: unitValue,
	}
	if ean := strings.TrimSpace(f.EAN); ean != "" {
		req.EAN = &ean
	}
	return req, nil
}

type FridgeItemForm struct {
	Product    selection.Selection
	Unit       selection.Selection
	CustomName string
	Amount     string
	BestBefore string
	OpenDate   string
}

// PickProduct selects a catalog product. The unit follows the product and an
// empty custom name takes the product's label.
func (f *FridgeItemForm) PickProduct(p selection.Selection) {
	f.Product = p
	f.Unit = selection.Selection{}
	if u, ok := domain.ProductUnit(p.Raw); ok {
		f.Unit = selection.Normalize(u)
	}
	if strings.TrimSpace(f.CustomName) == "" && p.Label != selection.Placeholder {
		f.CustomName = p.Label
	}
}

// Validate checks the form against the active fridge and builds the request.
func (f FridgeItemForm) Validate(activeFridge string) (client.AddFridgeItemRequest, error) {
	var req client.AddFridgeItemRequest

	if activeFridge == "" {
		return req, invalid("fridge", "choose an active fridge first")
	}
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return req, err
	}
	unit, ok := selection.UnitValue(f.Unit)
	if !ok {
		return req, invalid("unit", "choose a unit")
	}
	if f.Product.IsZero() || f.Product.ID == "" {
		return req, invalid("product", "choose a product from the catalog")
	}
	bestBefore, err := ParseDate("bestBeforeDate", f.BestBefore)
	if err != nil {
		return req, err
	}
	openDate, err := ParseDate("openDate", f.OpenDate)
	if err != nil {
		return req, err
	}

	req = client.AddFridgeItemRequest{
		FridgeID:       activeFridge,
		ProductID:      f.Product.ID,
		Amount:         amount,
		Unit:           unit,
		BestBeforeDate: bestBefore,
		OpenDate:       openDate,
	}
	if name := strings.TrimSpace(f.CustomName); name != "" {
		req.CustomName = &name
	}
	return req, nil
}
