package model

import "regexp"

var (
	phoneRe   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidPhone checks for a valid Indian 10-digit mobile number.
func ValidPhone(s string) bool { return phoneRe.MatchString(s) }

// ValidPincode checks for a 6-digit postal code.
func ValidPincode(s string) bool { return pincodeRe.MatchString(s) }

// ValidEmail does a shallow shape check on an email address.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// ValidateProfile returns field-level messages for a registration or
// profile-update form. An empty map means the profile is acceptable.
func ValidateProfile(p UserProfile) map[string]string {
	errs := map[string]string{}
	if p.Name == "" {
		errs["name"] = "Name is required"
	}
	if p.Phone == "" {
		errs["phone"] = "Phone number is required"
	} else if !ValidPhone(p.Phone) {
		errs["phone"] = "Please enter a valid 10-digit number"
	}
	if p.Email != "" && !ValidEmail(p.Email) {
		errs["email"] = "Please enter a valid email"
	}
	return errs
}

// ValidateAddress returns field-level messages for a hard-copy
// delivery address.
func ValidateAddress(a Address) map[string]string {
	errs := map[string]string{}
	if a.Name == "" {
		errs["name"] = "Name is required"
	}
	if !ValidPhone(a.Phone) {
		errs["phone"] = "Please enter a valid 10-digit number"
	}
	if a.Line1 == "" {
		errs["line1"] = "Address is required"
	}
	if a.City == "" {
		errs["city"] = "City is required"
	}
	if !ValidPincode(a.Pincode) {
		errs["pincode"] = "Please enter a valid 6-digit pincode"
	}
	return errs
}
