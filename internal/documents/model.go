// File: internal/documents/model.go
package documents

import (
	"time"

	"marketplace_onboarding/internal/common"
)

// StagedDocument is a file the local uploader stored for a registration session.
// It stays unattached until a registration that references its URL succeeds.
type StagedDocument struct {
	common.BaseModel
	SessionID    string     `gorm:"size:64;not null;index" json:"session_id"`
	OriginalName string     `gorm:"size:255" json:"original_name"`
	ContentType  string     `gorm:"size:100" json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	RelativePath string     `gorm:"size:512;not null;uniqueIndex" json:"relative_path"`
	URL          string     `gorm:"size:1024;not null;index" json:"url"`
	Attached     bool       `gorm:"not null;default:false;index" json:"attached"`
	AttachedAt   *time.Time `json:"attached_at,omitempty"`
}

// TableName specifies the table name for GORM.
func (StagedDocument) TableName() string {
	return "staged_documents"
}
