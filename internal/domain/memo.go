package domain

import "time"

type Memo struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	Title      string    `json:"title"`
	DisplayKey string    `json:"display_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// No `required` on Content: blank input is reported as "empty" by the
// memo service, not as a validation failure.
type CreateMemoRequest struct {
	Content string `json:"content" validate:"max=20000"`
}

// MemoSummary is what the memo list menu renders.
type MemoSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	DisplayKey string    `json:"display_key"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *Memo) Summary() *MemoSummary {
	return &MemoSummary{
		ID:         m.ID,
		Title:      m.Title,
		DisplayKey: m.DisplayKey,
		CreatedAt:  m.CreatedAt,
	}
}
