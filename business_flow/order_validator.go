package businessflow

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	// areas outside this range only need to trip the min/max rules
	areaFloor   = decimal.Zero
	areaCeiling = decimal.NewFromInt(1001)

	emailShapeRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	plPhoneRegex    = regexp.MustCompile(`^\+48 \d{3}( \d{3})?( \d{3})?$`)
)

// IsEmailShape reports whether s looks like local@domain.tld
func IsEmailShape(s string) bool {
	return emailShapeRegex.MatchString(s)
}

// IsPolishPhone accepts +48 followed by exactly nine digits in groups of three
func IsPolishPhone(s string) bool {
	if !plPhoneRegex.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits == 11
}

// ValidatedOrder is a sanitized submission ready to be priced and stored
type ValidatedOrder struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Street          string
	HouseNumber     string
	PostalCode      string
	City            string
	Address         string
	CleaningType    models.CleaningType
	SquareMeters    int
	PreferredDate   string
	AdditionalNotes *string

	// ServiceType prices the order. It comes from the calculator selection
	// when one was sent, otherwise from the cleaning type.
	ServiceType pricing.ServiceType
	AddOns      []pricing.AddOnRequest
	// FromCalculator is set when the client sent a calculator selection
	FromCalculator bool
}

type orderFields struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,max=255,email_shape"`
	Phone           string `json:"phone" validate:"required,pl_phone"`
	Street          string `json:"street" validate:"required,max=255"`
	HouseNumber     string `json:"house_number" validate:"required,max=32"`
	PostalCode      string `json:"postal_code" validate:"required,max=16"`
	City            string `json:"city" validate:"required,max=100"`
	CleaningType    string `json:"cleaning_type" validate:"required,cleaning_type"`
	SquareMeters    int    `json:"square_meters" validate:"min=1,max=1000"`
	PreferredDate   string `json:"preferred_date" validate:"required,calendar_date,not_past_date"`
	AdditionalNotes string `json:"additional_notes" validate:"max=5000"`
}

var fieldMessages = map[string]string{
	"required":      "Pole jest wymagane",
	"email_shape":   "Nieprawidłowy format adresu e-mail",
	"pl_phone":      "Nieprawidłowy format numeru telefonu",
	"cleaning_type": "Nieznany rodzaj sprzątania",
	"calendar_date": "Nieprawidłowy format daty (RRRR-MM-DD)",
	"not_past_date": "Data nie może być z przeszłości",
	"integer":       "Metraż musi być liczbą całkowitą",
}

// OrderValidator checks and sanitizes order submissions
type OrderValidator struct {
	validate *validator.Validate
	table    *pricing.Table
	loc      *time.Location
	now      func() time.Time
}

// NewOrderValidator builds a validator that judges dates against today in loc
func NewOrderValidator(table *pricing.Table, loc *time.Location) *OrderValidator {
	if loc == nil {
		loc = utils.LoadLocationOrUTC(utils.DefaultBusinessTimezone)
	}
	v := &OrderValidator{
		validate: validator.New(),
		table:    table,
		loc:      loc,
		now:      utils.UTCNow,
	}
	v.setupCustomValidations()
	return v
}

// WithClock replaces the clock used to decide what "today" is
func (v *OrderValidator) WithClock(now func() time.Time) *OrderValidator {
	v.now = now
	return v
}

// Location is the business time zone
func (v *OrderValidator) Location() *time.Location {
	return v.loc
}

func (v *OrderValidator) setupCustomValidations() {
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.validate.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		return IsEmailShape(fl.Field().String())
	})

	v.validate.RegisterValidation("pl_phone", func(fl validator.FieldLevel) bool {
		return IsPolishPhone(fl.Field().String())
	})

	v.validate.RegisterValidation("cleaning_type", func(fl validator.FieldLevel) bool {
		_, _, ok := v.resolveCleaningType(fl.Field().String())
		return ok
	})

	v.validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(utils.DateLayout, fl.Field().String())
		return err == nil
	})

	v.validate.RegisterValidation("not_past_date", func(fl validator.FieldLevel) bool {
		d, err := utils.ParseCalendarDate(fl.Field().String(), v.loc)
		if err != nil {
			return false
		}
		return !d.Before(utils.StartOfDay(v.now(), v.loc))
	})
}

// resolveCleaningType accepts stored types, their Polish aliases and
// calculator service types
func (v *OrderValidator) resolveCleaningType(s string) (models.CleaningType, pricing.ServiceType, bool) {
	if ct, ok := models.ParseCleaningType(s); ok {
		return ct, ct.PricingService(), true
	}
	st := pricing.ServiceType(strings.ToLower(strings.TrimSpace(s)))
	if v.table.IsKnown(st) {
		if ct, ok := models.CleaningTypeForService(st); ok {
			return ct, st, true
		}
	}
	return "", "", false
}

// parseArea reads a submitted area. Blank reads as 0 so the min rule reports
// it. Fractions and non-numbers are not areas.
func parseArea(raw dto.AreaInput) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	switch {
	case d.LessThan(areaFloor):
		return 0, true
	case d.GreaterThan(areaCeiling):
		return int(areaCeiling.IntPart()), true
	}
	return int(d.IntPart()), true
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return msg
	}
	switch {
	case fe.Field() == "square_meters":
		return "Metraż musi być między 1 a 1000 m²"
	case fe.Tag() == "max":
		return "Maksymalna długość to " + fe.Param() + " znaków"
	default:
		return "Nieprawidłowa wartość"
	}
}

// Validate sanitizes req and checks every rule. A failure is a *ValidationError
// listing all violations.
func (v *OrderValidator) Validate(req *dto.SubmitOrderRequest) (*ValidatedOrder, error) {
	if req == nil {
		ve := &ValidationError{}
		ve.add("body", "required", fieldMessages["required"])
		return nil, ve
	}

	fields := orderFields{
		FirstName:       utils.SanitizeInput(req.FirstName),
		LastName:        utils.SanitizeInput(req.LastName),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		Street:          utils.SanitizeInput(req.Street),
		HouseNumber:     utils.SanitizeInput(req.HouseNumber),
		PostalCode:      utils.SanitizeInput(req.PostalCode),
		City:            utils.SanitizeInput(req.City),
		CleaningType:    strings.TrimSpace(req.CleaningType),
		PreferredDate:   strings.TrimSpace(req.PreferredDate),
		AdditionalNotes: utils.DerefString(utils.SanitizeOptional(req.AdditionalNotes)),
	}

	ve := &ValidationError{}
	area, areaOK := parseArea(req.SquareMeters)
	fields.SquareMeters = area
	if !areaOK {
		// reported once as "integer" below
		fields.SquareMeters = 1
	}
	if err := v.validate.Struct(&fields); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("order validation: %w", err)
		}
		for _, fe := range verrs {
			ve.add(fe.Field(), fe.Tag(), fieldMessage(fe))
		}
	}
	if !areaOK {
		ve.add("square_meters", "integer", fieldMessages["integer"])
	}

	out := &ValidatedOrder{
		FirstName:       fields.FirstName,
		LastName:        fields.LastName,
		Email:           fields.Email,
		Phone:           fields.Phone,
		Street:          fields.Street,
		HouseNumber:     fields.HouseNumber,
		PostalCode:      fields.PostalCode,
		City:            fields.City,
		Address:         models.ComposeAddress(fields.Street, fields.HouseNumber, fields.PostalCode, fields.City),
		SquareMeters:    fields.SquareMeters,
		PreferredDate:   fields.PreferredDate,
		AdditionalNotes: utils.SanitizeOptional(req.AdditionalNotes),
	}
	if ct, st, ok := v.resolveCleaningType(fields.CleaningType); ok {
		out.CleaningType = ct
		out.ServiceType = st
	}

	if q := req.Quote; q != nil {
		v.validateSelection(q, out, ve)
	}

	if len(ve.Fields) > 0 {
		return nil, ve
	}
	return out, nil
}

func (v *OrderValidator) validateSelection(q *dto.QuoteSelectionRequest, out *ValidatedOrder, ve *ValidationError) {
	st := pricing.ServiceType(strings.TrimSpace(q.ServiceType))
	if !v.table.IsKnown(st) {
		ve.add("quote.service_type", "service_type", "Nieznany rodzaj usługi")
	} else {
		out.ServiceType = st
		out.FromCalculator = true
		if ct, ok := models.CleaningTypeForService(st); ok {
			out.CleaningType = ct
		}
	}

	for i, a := range q.AddOns {
		id := strings.TrimSpace(a.ID)
		if _, ok := v.table.AddOn(id); !ok {
			ve.add(fmt.Sprintf("quote.add_ons[%d].id", i), "add_on", "Nieznana usługa dodatkowa")
			continue
		}
		if a.Quantity < 0 {
			ve.add(fmt.Sprintf("quote.add_ons[%d].quantity", i), "min", "Ilość nie może być ujemna")
			continue
		}
		out.AddOns = append(out.AddOns, pricing.AddOnRequest{ID: id, Quantity: a.Quantity})
	}
}
