package domain

import (
	"time"

	"kizuki-server/internal/memoutil"
)

const CaseStatusDraft = "draft"

// Case holds the property and work details attached to one memo. There is
// at most one Case per (UserID, MemoID).
type Case struct {
	ID           string    `json:"id"`
	MemoID       string    `json:"memo_id"`
	UserID       string    `json:"user_id"`
	PropertyName *string   `json:"property_name"`
	Address      *string   `json:"address"`
	Period       *string   `json:"period"`
	WorkDetail   *string   `json:"work_detail"`
	ProductCodes []string  `json:"product_codes"`
	Status       *string   `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CasePatch replaces every editable field of a Case. A nil field is
// written as null, it does not keep the stored value.
type CasePatch struct {
	PropertyName *string
	Address      *string
	Period       *string
	WorkDetail   *string
	ProductCodes []string
	Status       *string
}

// Apply overwrites the editable fields of c with p.
func (p CasePatch) Apply(c *Case) {
	c.PropertyName = p.PropertyName
	c.Address = p.Address
	c.Period = p.Period
	c.WorkDetail = p.WorkDetail
	c.ProductCodes = p.ProductCodes
	c.Status = p.Status
}

type UpdateCaseRequest struct {
	PropertyName *string  `json:"property_name" validate:"omitempty,max=200"`
	Address      *string  `json:"address" validate:"omitempty,max=500"`
	Period       *string  `json:"period" validate:"omitempty,max=200"`
	WorkDetail   *string  `json:"work_detail" validate:"omitempty,max=5000"`
	ProductCodes []string `json:"product_codes" validate:"omitempty,max=200,dive,max=64"`
	// ProductCodesText is the raw comma separated form field, used only
	// when ProductCodes is absent.
	ProductCodesText *string `json:"product_codes_text" validate:"omitempty,max=5000"`
	Status           *string `json:"status" validate:"omitempty,max=32"`
}

func (r *UpdateCaseRequest) Patch() CasePatch {
	codes := r.ProductCodes
	if codes == nil && r.ProductCodesText != nil {
		codes = memoutil.ParseProductCodes(*r.ProductCodesText)
	}

	return CasePatch{
		PropertyName: r.PropertyName,
		Address:      r.Address,
		Period:       r.Period,
		WorkDetail:   r.WorkDetail,
		ProductCodes: codes,
		Status:       r.Status,
	}
}
