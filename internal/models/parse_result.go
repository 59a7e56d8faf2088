package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ParseStatus string

const (
	StatusSucceeded   ParseStatus = "succeeded"
	StatusUnparseable ParseStatus = "unparseable"
	StatusInvalid     ParseStatus = "invalid"
	StatusGatewayFail ParseStatus = "gateway_failed"
	StatusRenderFail  ParseStatus = "render_failed"
)

// ParseResult is the stored outcome of one parse request.
type ParseResult struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID   *uuid.UUID     `gorm:"type:uuid" json:"document_id,omitempty"`
	Status       ParseStatus    `gorm:"not null" json:"status"`
	Record       datatypes.JSON `json:"record,omitempty"`
	Warnings     datatypes.JSON `json:"warnings,omitempty"`
	Renders      datatypes.JSON `json:"renders,omitempty"`
	InvalidField datatypes.JSON `json:"invalid_fields,omitempty"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Document *Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (ParseResult) TableName() string {
	return "parse_results"
}
