// File: internal/draft/model.go
package draft

import "time"

// KeyPrefix is the fixed name every draft is stored under, suffixed with the session id.
const KeyPrefix = "registration_draft"

// Key returns the storage key of the draft owned by session sid.
func Key(sid string) string {
	return KeyPrefix + ":" + sid
}

// Credentials is the account data collected by the first step.
type Credentials struct {
	FullName        string `json:"fullName"`
	WorkEmail       string `json:"workEmail"`
	MobileNumber    string `json:"mobileNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// CompanyProfile is the business data collected by the second step.
type CompanyProfile struct {
	CompanyName  string `json:"companyName"`
	Country      string `json:"country"`
	City         string `json:"city"`
	BusinessType string `json:"businessType"`
}

// Draft is the partially completed registration of one session.
// Role holds the server-side role name (seller or buyer) and never changes once set.
type Draft struct {
	Role      string          `json:"role"`
	Step1     *Credentials    `json:"step1,omitempty"`
	Step2     *CompanyProfile `json:"step2,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Redacted returns a copy of d safe to hand back to clients.
func (d *Draft) Redacted() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	if d.Step1 != nil {
		step1 := *d.Step1
		step1.Password = ""
		step1.ConfirmPassword = ""
		out.Step1 = &step1
	}
	if d.Step2 != nil {
		step2 := *d.Step2
		out.Step2 = &step2
	}
	return &out
}
