package domain

import (
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	PasswordMinLength = 6
	NameMinLength     = 2
	maxTitleLength    = 120
	maxAge            = 150
)

// ValidationErrors maps a field name to a human-readable problem.
// It unwraps to ErrInvalidInput.
type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	if _, ok := v[field]; !ok {
		v[field] = message
	}
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+v[f])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrInvalidInput
}

// Err returns v as an error, or nil when it is empty.
func (v ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// ValidateNewListing checks a create payload.
func ValidateNewListing(in NewListing) error {
	errs := make(ValidationErrors)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		errs.Add("title", "Title is too long")
	}

	if in.PriceCents < 0 {
		errs.Add("priceCents", "Price cannot be negative")
	}

	if strings.TrimSpace(in.ImageURL) == "" {
		errs.Add("imageUrl", "Image is required")
	}

	if (in.Lat == nil) != (in.Lng == nil) {
		errs.Add("location", "Latitude and longitude must be set together")
	} else if in.Lat != nil {
		if *in.Lat < -90 || *in.Lat > 90 {
			errs.Add("lat", "Latitude must be between -90 and 90")
		}
		if *in.Lng < -180 || *in.Lng > 180 {
			errs.Add("lng", "Longitude must be between -180 and 180")
		}
	}

	return errs.Err()
}

// ValidateCredentials checks the shape of a login attempt. Whether the
// account exists is decided by the store.
func ValidateCredentials(c Credentials) error {
	errs := make(ValidationErrors)
	validateEmail(c.Email, errs)
	validatePassword(c.Password, errs)
	return errs.Err()
}

// ValidateSignup checks the registration form.
func ValidateSignup(s Signup) error {
	errs := make(ValidationErrors)
	validateName(s.Name, errs)
	validateEmail(s.Email, errs)
	validatePassword(s.Password, errs)
	return errs.Err()
}

// ValidateProfilePatch checks only the fields present in the patch.
func ValidateProfilePatch(p ProfilePatch) error {
	errs := make(ValidationErrors)
	if p.Name != nil {
		validateName(*p.Name, errs)
	}
	if p.Email != nil {
		validateEmail(*p.Email, errs)
	}
	if p.Age != nil && (*p.Age < 0 || *p.Age > maxAge) {
		errs.Add("age", "Age must be between 0 and 150")
	}
	return errs.Err()
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		errs.Add("email", "Please enter a valid email")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if password == "" {
		errs.Add("password", "Password is required")
		return
	}
	if utf8.RuneCountInString(password) < PasswordMinLength {
		errs.Add("password", "Password must be at least 6 characters")
	}
}

func validateName(name string, errs ValidationErrors) {
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if utf8.RuneCountInString(name) < NameMinLength {
		errs.Add("name", "Name must be at least 2 characters")
	}
}
