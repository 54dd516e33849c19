package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("9876543210"))
	assert.True(t, ValidPhone("6000000000"))
	assert.False(t, ValidPhone("5876543210"), "must start with 6-9")
	assert.False(t, ValidPhone("987654321"), "too short")
	assert.False(t, ValidPhone("98765432100"), "too long")
	assert.False(t, ValidPhone("98765four10"))
	assert.False(t, ValidPhone(""))
}

func TestValidPincode(t *testing.T) {
	assert.True(t, ValidPincode("400001"))
	assert.False(t, ValidPincode("4000"))
	assert.False(t, ValidPincode("4000011"))
	assert.False(t, ValidPincode("40000a"))
}

func TestValidateProfile(t *testing.T) {
	errs := ValidateProfile(UserProfile{Name: "Asha", Phone: "9876543210"})
	assert.Empty(t, errs)

	errs = ValidateProfile(UserProfile{})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "phone")

	errs = ValidateProfile(UserProfile{Name: "Asha", Phone: "12345"})
	assert.Contains(t, errs, "phone")

	// Email is optional but must be well formed when present
	errs = ValidateProfile(UserProfile{Name: "Asha", Phone: "9876543210", Email: "not-an-email"})
	assert.Contains(t, errs, "email")
}

func TestValidateAddress(t *testing.T) {
	good := Address{
		Name: "Asha", Phone: "9876543210",
		Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001",
	}
	assert.Empty(t, ValidateAddress(good))

	bad := Address{Phone: "12", Pincode: "999"}
	errs := ValidateAddress(bad)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "line1")
	assert.Contains(t, errs, "city")
	assert.Contains(t, errs, "pincode")
}

func TestContentItemKey(t *testing.T) {
	assert.Equal(t, "a1", ContentItem{ID: "a1"}.Key())
	assert.Equal(t, "c2", ContentItem{ContentID: "c2"}.Key())
	assert.Equal(t, "a1", ContentItem{ID: "a1", ContentID: "c2"}.Key(), "_id wins when both are set")
	assert.Equal(t, "", ContentItem{}.Key())
}

func TestOrderCompleted(t *testing.T) {
	assert.True(t, Order{OrderStatus: "completed", PaymentStatus: "completed"}.Completed())
	assert.False(t, Order{OrderStatus: "completed", PaymentStatus: "pending"}.Completed())
	assert.False(t, Order{OrderStatus: "cancelled", PaymentStatus: "completed"}.Completed())
	assert.False(t, Order{}.Completed())
}
