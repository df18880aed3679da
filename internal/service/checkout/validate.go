package checkout

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"storefront/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// Territories lists the states accepted for each shipping country.
var Territories = map[domain.Country][]string{
	domain.CountryIndia:         {"Maharashtra", "Karnataka", "Kerala", "Tamil Nadu", "Delhi", "Gujarat"},
	domain.CountryUnitedStates:  {"California", "New York", "Texas", "Florida", "Illinois"},
	domain.CountryUnitedKingdom: {"England", "Scotland", "Wales", "Northern Ireland"},
	domain.CountryPakistan:      {"Punjab", "Sindh", "Khyber Pakhtunkhwa", "Balochistan"},
	domain.CountryCanada:        {"Ontario", "Quebec", "British Columbia", "Alberta"},
	domain.CountryAustralia:     {"New South Wales", "Victoria", "Queensland", "Western Australia"},
}

// ValidationError maps json field names to a human readable problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(keys, ", "))
}

type form struct {
	FirstName    string         `json:"firstName" validate:"required"`
	LastName     string         `json:"lastName" validate:"required"`
	AddressLine1 string         `json:"addressLine1" validate:"required"`
	PostalCode   string         `json:"postalCode" validate:"required"`
	Locality     string         `json:"locality" validate:"required"`
	State        string         `json:"state" validate:"required"`
	Country      domain.Country `json:"country" validate:"required,country"`
	Email        string         `json:"email" validate:"required,email_loose"`
	Phone        string         `json:"phone" validate:"required,phone10"`
	PAN          string         `json:"pan" validate:"required,pan"`
}

var labels = map[string]string{
	"firstName":    "First name",
	"lastName":     "Last name",
	"addressLine1": "Address",
	"postalCode":   "Postal code",
	"locality":     "Locality",
	"state":        "State",
	"country":      "Country",
	"email":        "Email",
	"phone":        "Phone number",
	"pan":          "PAN",
}

var formatMessages = map[string]string{
	"country":     "Please select a supported country",
	"email_loose": "Please enter a valid email address",
	"phone10":     "Please enter a valid 10-digit phone number",
	"pan":         "Please enter a valid PAN number",
	"territory":   "Please select a state in the chosen country",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "email_loose", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "pan", func(fl validator.FieldLevel) bool {
		return panPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "country", func(fl validator.FieldLevel) bool {
		_, ok := Territories[domain.Country(fl.Field().String())]
		return ok
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f := sl.Current().Interface().(form)
		states, ok := Territories[f.Country]
		if !ok || f.State == "" {
			return
		}
		for _, s := range states {
			if s == f.State {
				return
			}
		}
		sl.ReportError(f.State, "state", "State", "territory", string(f.Country))
	}, form{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ValidateForm checks the shipping form. It returns nil or a *ValidationError.
func (s *Service) ValidateForm(in domain.CheckoutFormData) error {
	f := form{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		Locality:     strings.TrimSpace(in.Locality),
		State:        in.State,
		Country:      in.Country,
		Email:        in.Email,
		Phone:        in.Phone,
		PAN:          in.PAN,
	}
	err := s.validate.Struct(f)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		if fe.Tag() == "required" {
			out.Fields[field] = labels[field] + " is required"
			continue
		}
		out.Fields[field] = formatMessages[fe.Tag()]
	}
	return out
}
