// Package tasks implements the task list that sits behind the identity
// middleware. Every operation is scoped to the authenticated owner.
package tasks

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// DefaultCategory is applied when a task is created without one.
const DefaultCategory = "none"

// ValidPriority reports whether p is one of the accepted priority levels.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk" json:"-"`

	ID          uuid.UUID `bun:"id,pk,notnull" json:"id"`
	UserID      uuid.UUID `bun:"user_id,notnull" json:"userId"`
	Description string    `bun:"description,notnull" json:"description"`
	Category    string    `bun:"category,notnull" json:"category"`
	Priority    string    `bun:"priority,notnull" json:"priority"`
	Completed   bool      `bun:"completed,notnull" json:"completed"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Normalize trims the free-text fields and fills in defaults so that records
// hit storage in a canonical shape.
func (t *Task) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)

	if t.Category == "" {
		t.Category = DefaultCategory
	}

	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

func prepareTaskDefaults(task *Task) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	task.Normalize()
}
