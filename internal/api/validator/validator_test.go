package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartentrance/internal/models"
	"smartentrance/internal/services"
)

func newValidator(t *testing.T) *CustomValidator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v.(*CustomValidator)
}

func failedTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve ValidationErrors
	require.True(t, errors.As(err, &ve), "expected validation errors, got %v", err)
	out := map[string]string{}
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func address(types ...[]string) services.PlaceAddress {
	a := services.PlaceAddress{FormattedAddress: "bul. Vitosha 1, Sofia"}
	for _, ts := range types {
		a.Components = append(a.Components, services.AddressComponent{LongName: "x", Types: ts})
	}
	return a
}

func TestStreetAddress(t *testing.T) {
	v := newValidator(t)

	ok := services.CreateBuildingRequest{Name: "Blok A", Address: address([]string{"route"}, []string{"street_number"})}
	assert.NoError(t, v.Validate(ok))

	noNumber := services.CreateBuildingRequest{Name: "Blok A", Address: address([]string{"route"}, []string{"locality"})}
	assert.Equal(t, map[string]string{"address": "street_address"}, failedTags(t, v.Validate(noNumber)))

	noRoute := services.CreateBuildingRequest{Name: "Blok A", Address: address([]string{"street_number"})}
	assert.Equal(t, "street_address", failedTags(t, v.Validate(noRoute))["address"])
}

func TestPaymentMethod(t *testing.T) {
	v := newValidator(t)

	req := services.RecordPaymentRequest{UnitID: 3, Amount: 20, Method: models.PaymentMethodBank}
	assert.NoError(t, v.Validate(req))

	req.Method = "crypto"
	assert.Equal(t, map[string]string{"method": "payment_method"}, failedTags(t, v.Validate(req)))
}

func TestPasswordConfirmation(t *testing.T) {
	v := newValidator(t)

	req := services.RegisterRequest{
		FirstName: "Ivan", LastName: "Petrov", Email: "ivan@example.com",
		Password: "longenough", ConfirmPassword: "different1",
	}
	assert.Equal(t, map[string]string{"confirmPassword": "eqfield"}, failedTags(t, v.Validate(req)))

	req.ConfirmPassword = req.Password
	assert.NoError(t, v.Validate(req))
}

func TestLoginRequiresValidEmail(t *testing.T) {
	v := newValidator(t)

	tags := failedTags(t, v.Validate(services.LoginRequest{Email: "nope"}))
	assert.Equal(t, "email", tags["email"])
	assert.Equal(t, "required", tags["password"])
}

func TestViewFlavor(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Validate(SectionQuery{Flavor: "manager", Period: "2026-09"}))
	tags := failedTags(t, v.Validate(SectionQuery{Flavor: "owner", Period: "September"}))
	assert.Equal(t, "view_flavor", tags["flavor"])
	assert.Equal(t, "datetime", tags["period"])
}

func TestValidationErrorsMessage(t *testing.T) {
	v := newValidator(t)
	err := v.Validate(SelectUnitRequest{})
	assert.EqualError(t, err, "validation failed on fields: unitId")
}
