package dto

import (
	"wellness/shared/constant"
	"wellness/shared/model"
	"wellness/shared/timezone"
)

// Metadata is the audit block embedded in every response, with times rendered in the studio's timezone.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

func NewMetadata(m model.Metadata) Metadata {
	return Metadata{
		CreatedAt:  timezone.Format(m.CreatedAt, constant.DateFormat),
		ModifiedAt: timezone.Format(m.ModifiedAt, constant.DateFormat),
		CreatedBy:  m.CreatedBy,
		ModifiedBy: m.ModifiedBy,
	}
}
