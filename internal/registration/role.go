// File: internal/registration/role.go
package registration

import (
	"fmt"
	"strings"

	"marketplace_onboarding/internal/common"
)

// Role is the account type picked on the first screen.
type Role string

const (
	RoleSeller   Role = "seller"
	RoleBuyer    Role = "buyer"
	RoleCustomer Role = "customer"
)

// PendingVerificationRoute is where unverified sellers and buyers land after submitting.
const PendingVerificationRoute = "/pending-verification"

// ParseRole accepts the public role names. "user" is taken as customer.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "seller":
		return RoleSeller, nil
	case "buyer":
		return RoleBuyer, nil
	case "customer", "user":
		return RoleCustomer, nil
	}
	return "", common.ErrBadRequest.WithDetails(fmt.Sprintf("Unknown registration role %q.", raw))
}

// Normalize returns the role name the marketplace API stores.
func (r Role) Normalize() string {
	if r == RoleCustomer {
		return "user"
	}
	return string(r)
}

// HasProfile reports whether the role goes through the company and verification steps.
func (r Role) HasProfile() bool {
	return r == RoleSeller || r == RoleBuyer
}

func (r Role) Step1Route() string {
	if r == RoleCustomer {
		return "/register"
	}
	return "/" + string(r) + "/register"
}

func (r Role) Step2Route() string {
	return "/" + string(r) + "/register/step2"
}

func (r Role) Step3Route() string {
	return "/" + string(r) + "/register/step3"
}

// DoneRoute is the landing page after a verified registration.
func (r Role) DoneRoute() string {
	if r == RoleCustomer {
		return "/"
	}
	return "/" + string(r) + "/dashboard"
}
