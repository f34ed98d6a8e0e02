// File: internal/audit/model.go
package audit

import (
	"database/sql/driver"

	"marketplace_onboarding/internal/common"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Outcome of a registration attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Stage at which a failed attempt stopped.
type Stage string

const (
	StageValidation Stage = "validation"
	StageRegister   Stage = "register"
	StageUpload     Stage = "upload"
	StageProfile    Stage = "profile"
)

// URLList is stored as text[] on postgres and as a pq array literal elsewhere.
type URLList []string

func (l URLList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *URLList) Scan(src interface{}) error {
	var a pq.StringArray
	if err := a.Scan(src); err != nil {
		return err
	}
	*l = URLList(a)
	return nil
}

// GormDBDataType picks the column type per dialect.
func (URLList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// RegistrationAttempt records one final submission (or customer registration).
type RegistrationAttempt struct {
	common.BaseModel
	SessionID    string  `gorm:"size:64;not null;index" json:"session_id"`
	Role         string  `gorm:"size:20;not null;index" json:"role"`
	Email        string  `gorm:"size:255;not null;index" json:"email"`
	CompanyName  string  `gorm:"size:255" json:"company_name,omitempty"`
	Outcome      Outcome `gorm:"size:20;not null;index" json:"outcome"`
	FailedStage  *Stage  `gorm:"size:20" json:"failed_stage,omitempty"`
	Message      string  `gorm:"type:text" json:"message,omitempty"`
	Verified     *bool   `json:"verified,omitempty"`
	DocumentURLs URLList `json:"document_urls"`
	UpstreamUser string  `gorm:"size:64" json:"upstream_user_id,omitempty"`
}

// TableName specifies the table name for GORM.
func (RegistrationAttempt) TableName() string {
	return "registration_attempts"
}

// ListFilter narrows the admin listing. Empty fields match everything.
type ListFilter struct {
	Role    string `form:"role" binding:"omitempty,oneof=seller buyer user"`
	Outcome string `form:"outcome" binding:"omitempty,oneof=succeeded failed"`
	Email   string `form:"email"`
}
