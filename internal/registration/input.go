// File: internal/registration/input.go
package registration

import (
	"errors"
	"strings"

	"marketplace_onboarding/internal/common"
	"marketplace_onboarding/internal/draft"

	"github.com/go-playground/validator/v10"
)

// CredentialsInput is the body of the first step.
type CredentialsInput struct {
	FullName        string `json:"full_name" validate:"required"`
	WorkEmail       string `json:"work_email" validate:"required"`
	MobileNumber    string `json:"mobile_number" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// passwordConfirmation is only checked for roles that keep a draft.
type passwordConfirmation struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// CompanyProfileInput is the body of the second step.
type CompanyProfileInput struct {
	CompanyName  string `json:"company_name" validate:"required"`
	Country      string `json:"country" validate:"required"`
	City         string `json:"city" validate:"required"`
	BusinessType string `json:"business_type" validate:"required"`
}

const (
	msgRequiredFields    = "Please fill in all required fields."
	msgPasswordsMismatch = "Passwords do not match."
	msgIncompleteDraft   = "Registration details are incomplete. Please complete the previous steps."
	msgMissingDocuments  = "Please upload all required documents."
)

// normalize trims everything but the passwords.
func (in *CredentialsInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.WorkEmail = strings.TrimSpace(in.WorkEmail)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
}

func (in *CompanyProfileInput) normalize() {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Country = strings.TrimSpace(in.Country)
	in.City = strings.TrimSpace(in.City)
	in.BusinessType = strings.TrimSpace(in.BusinessType)
}

func (in *CredentialsInput) toDraft() *draft.Credentials {
	return &draft.Credentials{
		FullName:        in.FullName,
		WorkEmail:       in.WorkEmail,
		MobileNumber:    in.MobileNumber,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
}

func (in *CompanyProfileInput) toDraft() *draft.CompanyProfile {
	return &draft.CompanyProfile{
		CompanyName:  in.CompanyName,
		Country:      in.Country,
		City:         in.City,
		BusinessType: in.BusinessType,
	}
}

// validateCredentials runs the required checks and, for sellers and buyers, the
// password confirmation. All field errors are reported together.
func validateCredentials(v *validator.Validate, role Role, in *CredentialsInput) error {
	details := map[string]string{}
	mismatch := false

	if err := collect(v.Struct(in), details); err != nil {
		return err
	}
	if role.HasProfile() {
		confirm := passwordConfirmation{Password: in.Password, ConfirmPassword: in.ConfirmPassword}
		var vErrs validator.ValidationErrors
		err := v.Struct(confirm)
		if errors.As(err, &vErrs) {
			for _, fe := range vErrs {
				mismatch = mismatch || fe.Tag() == "eqfield"
			}
		}
		if err := collect(err, details); err != nil {
			return err
		}
	}
	if len(details) == 0 {
		return nil
	}

	message := msgRequiredFields
	if mismatch && len(details) == 1 {
		message = msgPasswordsMismatch
	}
	return common.NewValidationAPIError(details).WithMessage(message)
}

func validateCompanyProfile(v *validator.Validate, in *CompanyProfileInput) error {
	details := map[string]string{}
	if err := collect(v.Struct(in), details); err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	return common.NewValidationAPIError(details).WithMessage(msgRequiredFields)
}

// collect merges validator field errors into details and passes other errors through.
func collect(err error, details map[string]string) error {
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	for field, msg := range common.FormatValidationErrors(vErrs) {
		details[field] = msg
	}
	return nil
}
