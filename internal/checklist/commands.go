package checklist

import (
	"fmt"
	"slices"
	"time"

	"github.com/climavet/climavet/internal/model"
)

// ErrItemNotFound is returned by item commands when the id is not present.
type ErrItemNotFound struct {
	ChecklistID int64
	ItemID      int64
}

func (e ErrItemNotFound) Error() string {
	return fmt.Sprintf("item %d not found in checklist %d", e.ItemID, e.ChecklistID)
}

// Clone returns a deep copy of c so callers can change it freely.
func Clone(c model.Checklist) model.Checklist {
	c.Items = slices.Clone(c.Items)
	c.DisasterTypeNames = slices.Clone(c.DisasterTypeNames)
	return c
}

// ReplaceItem returns a new snapshot with the item of the same id swapped for
// item. Unknown ids leave the items as they were.
func ReplaceItem(c model.Checklist, item model.ChecklistItem) model.Checklist {
	next := Clone(c)
	if _, i := next.ItemByID(item.ID); i >= 0 {
		next.Items[i] = item
	}
	return Recompute(next)
}

// ApplyUpdate applies u to the item with itemID. When the quantity changes
// without an explicit status, the status is derived from the quantities.
func ApplyUpdate(c model.Checklist, itemID int64, u model.ItemUpdate, now time.Time) (model.Checklist, error) {
	item, i := c.ItemByID(itemID)
	if i < 0 {
		return c, ErrItemNotFound{ChecklistID: c.ID, ItemID: itemID}
	}
	if u.QuantityCurrent != nil {
		item.QuantityCurrent = *u.QuantityCurrent
	}
	if u.Location != nil {
		item.Location = *u.Location
	}
	if u.Supplier != nil {
		item.Supplier = *u.Supplier
	}
	if u.Notes != nil {
		item.Notes = *u.Notes
	}
	switch {
	case u.Status != nil:
		item.Status = *u.Status
	case u.QuantityCurrent != nil:
		item.Status = DeriveStatus(item.QuantityCurrent, item.QuantityNeeded)
	}
	checked := now
	item.LastChecked = &checked
	return ReplaceItem(c, item), nil
}

// ToggleItem flips an item between in stock and out of stock.
func ToggleItem(c model.Checklist, itemID int64) (model.Checklist, error) {
	item, i := c.ItemByID(itemID)
	if i < 0 {
		return c, ErrItemNotFound{ChecklistID: c.ID, ItemID: itemID}
	}
	if item.Status == model.StatusInStock {
		item.Status = model.StatusOutOfStock
	} else {
		item.Status = model.StatusInStock
	}
	return ReplaceItem(c, item), nil
}

// ToggleUpdate is the ItemUpdate that ToggleItem applies to item.
func ToggleUpdate(item model.ChecklistItem) model.ItemUpdate {
	s := model.StatusInStock
	if item.Status == model.StatusInStock {
		s = model.StatusOutOfStock
	}
	return model.ItemUpdate{Status: &s}
}

// Add returns list with c appended.
func Add(list []model.Checklist, c model.Checklist) []model.Checklist {
	next := make([]model.Checklist, 0, len(list)+1)
	next = append(next, list...)
	return append(next, c)
}

// Replace returns list with the checklist of the same id swapped for c.
func Replace(list []model.Checklist, c model.Checklist) []model.Checklist {
	next := slices.Clone(list)
	for i := range next {
		if next[i].ID == c.ID {
			next[i] = c
		}
	}
	return next
}

// Remove returns list without the checklist with id.
func Remove(list []model.Checklist, id int64) []model.Checklist {
	next := make([]model.Checklist, 0, len(list))
	for _, c := range list {
		if c.ID != id {
			next = append(next, c)
		}
	}
	return next
}
