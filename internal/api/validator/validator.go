package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"smartentrance/internal/models"
	"smartentrance/internal/services"
	"smartentrance/internal/views"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() (echo.Validator, error) {
	v := playgroundvalidator.New()

	// Report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]playgroundvalidator.Func{
		"payment_method": validatePaymentMethod,
		"view_flavor":    validateViewFlavor,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s: %w", tag, err)
		}
	}
	v.RegisterStructValidation(validateBuildingAddress, services.CreateBuildingRequest{})

	return &CustomValidator{validator: v}, nil
}

// validateBuildingAddress reports street_address unless the autocomplete result names
// both the street and the street number.
func validateBuildingAddress(sl playgroundvalidator.StructLevel) {
	req := sl.Current().Interface().(services.CreateBuildingRequest)
	if !IsStreetAddress(req.Address) {
		sl.ReportError(req.Address, "address", "Address", "street_address", "")
	}
}

// IsStreetAddress reports whether addr has a route and a street number component.
func IsStreetAddress(addr services.PlaceAddress) bool {
	if strings.TrimSpace(addr.FormattedAddress) == "" {
		return false
	}
	_, hasRoute := addr.Component("route")
	_, hasNumber := addr.Component("street_number")
	return hasRoute && hasNumber
}

func validatePaymentMethod(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidPaymentMethod(models.PaymentMethod(fl.Field().String()))
}

func validateViewFlavor(fl playgroundvalidator.FieldLevel) bool {
	_, err := views.ParseFlavor(fl.Field().String())
	return err == nil
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// SelectBuildingRequest picks a managed building as the dashboard scope.
type SelectBuildingRequest struct {
	BuildingID int64 `json:"buildingId" validate:"required,gt=0"`
}

// SelectUnitRequest picks one of the user's homes as the dashboard scope.
type SelectUnitRequest struct {
	UnitID int64 `json:"unitId" validate:"required,gt=0"`
}

type SectionQuery struct {
	Flavor string `query:"flavor" json:"flavor" validate:"required,view_flavor"`
	Period string `query:"period" json:"period" validate:"omitempty,datetime=2006-01"`
}

type UpdateFeeRequest struct {
	MonthlyFee float64 `json:"monthlyFee" validate:"gte=0"`
}

type DocumentUploadRequest struct {
	Title string `form:"title" json:"title" validate:"required,max=200"`
}
