package domain

import (
	"fmt"
	"time"
)

// ChecklistItemSpec is one label/description pair on a checklist template.
type ChecklistItemSpec struct {
	Label       string
	Description string
}

type ChecklistTemplate struct {
	ID         string
	Name       string
	AssignedTo string
	Pattern    RecurrencePattern
	Items      []ChecklistItemSpec
	CreatedAt  time.Time
}

type OccurrenceItem struct {
	Position    int
	Label       string
	Description string
	Checked     bool
	CheckedAt   *time.Time
}

// ChecklistOccurrence is one dated instantiation of a checklist template.
// DueDate never changes after creation.
type ChecklistOccurrence struct {
	ID          string
	TemplateID  string
	AssignedTo  string
	DueDate     time.Time
	Items       []OccurrenceItem
	Status      OccurrenceStatus
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CheckItem marks the item at position as checked. Checking an already
// checked item keeps the original CheckedAt.
func (o *ChecklistOccurrence) CheckItem(position int, now time.Time) error {
	item, err := o.item(position)
	if err != nil {
		return err
	}
	if !item.Checked {
		item.Checked = true
		item.CheckedAt = timePtr(now)
	}
	o.refreshStatus(now)
	return nil
}

// UncheckItem clears the item at position and reopens the occurrence.
func (o *ChecklistOccurrence) UncheckItem(position int, now time.Time) error {
	item, err := o.item(position)
	if err != nil {
		return err
	}
	item.Checked = false
	item.CheckedAt = nil
	o.refreshStatus(now)
	return nil
}

func (o *ChecklistOccurrence) item(position int) (*OccurrenceItem, error) {
	for i := range o.Items {
		if o.Items[i].Position == position {
			return &o.Items[i], nil
		}
	}
	return nil, fmt.Errorf("occurrence %s has no item at position %d", o.ID, position)
}

func (o *ChecklistOccurrence) refreshStatus(now time.Time) {
	o.UpdatedAt = now
	var last *time.Time
	for _, it := range o.Items {
		if !it.Checked {
			o.Status = OccurrencePending
			o.CompletedAt = nil
			return
		}
		if it.CheckedAt != nil && (last == nil || it.CheckedAt.After(*last)) {
			last = it.CheckedAt
		}
	}
	o.Status = OccurrenceCompleted
	if last == nil {
		last = timePtr(now)
	}
	o.CompletedAt = timePtr(*last)
}
