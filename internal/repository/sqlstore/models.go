package sqlstore

import (
	"time"

	"kizuki-server/internal/domain"
)

type memoRow struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"size:36;not null;index:idx_memos_user_created,priority:1"`
	Content    string    `gorm:"type:text;not null"`
	Title      string    `gorm:"size:128;not null"`
	DisplayKey string    `gorm:"size:32;not null;index"`
	CreatedAt  time.Time `gorm:"not null;index:idx_memos_user_created,priority:2"`
}

func (memoRow) TableName() string { return "memos" }

func newMemoRow(m *domain.Memo) *memoRow {
	return &memoRow{
		ID:         m.ID,
		UserID:     m.UserID,
		Content:    m.Content,
		Title:      m.Title,
		DisplayKey: m.DisplayKey,
		CreatedAt:  m.CreatedAt,
	}
}

func (r *memoRow) toDomain() *domain.Memo {
	return &domain.Memo{
		ID:         r.ID,
		UserID:     r.UserID,
		Content:    r.Content,
		Title:      r.Title,
		DisplayKey: r.DisplayKey,
		CreatedAt:  r.CreatedAt,
	}
}

type caseRow struct {
	ID           string   `gorm:"primaryKey;size:36"`
	UserID       string   `gorm:"size:36;not null;uniqueIndex:idx_cases_user_memo,priority:1"`
	MemoID       string   `gorm:"size:36;not null;uniqueIndex:idx_cases_user_memo,priority:2"`
	PropertyName *string  `gorm:"size:200"`
	Address      *string  `gorm:"size:500"`
	Period       *string  `gorm:"size:200"`
	WorkDetail   *string  `gorm:"type:text"`
	ProductCodes []string `gorm:"type:text;serializer:json"`
	Status       *string  `gorm:"size:32"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (caseRow) TableName() string { return "cases" }

func newCaseRow(c *domain.Case) *caseRow {
	return &caseRow{
		ID:           c.ID,
		UserID:       c.UserID,
		MemoID:       c.MemoID,
		PropertyName: c.PropertyName,
		Address:      c.Address,
		Period:       c.Period,
		WorkDetail:   c.WorkDetail,
		ProductCodes: c.ProductCodes,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (r *caseRow) toDomain() *domain.Case {
	return &domain.Case{
		ID:           r.ID,
		MemoID:       r.MemoID,
		UserID:       r.UserID,
		PropertyName: r.PropertyName,
		Address:      r.Address,
		Period:       r.Period,
		WorkDetail:   r.WorkDetail,
		ProductCodes: r.ProductCodes,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type userRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	Email       string `gorm:"size:255;not null;uniqueIndex"`
	DisplayName string `gorm:"size:50"`
	Password    string `gorm:"size:72;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (userRow) TableName() string { return "users" }
