package checklist

import (
	"net/url"
	"strings"

	"github.com/climavet/climavet/internal/model"
)

// Group is one category's worth of matching items, in their original order.
type Group struct {
	Category model.Category
	Items    []model.ChecklistItem
}

// Grouping is the filtered view of a checklist. Groups appear in the order
// their category is first seen in the item list.
type Grouping struct {
	Groups []Group
}

// Len returns the number of matching items across all groups.
func (g Grouping) Len() int {
	n := 0
	for _, grp := range g.Groups {
		n += len(grp.Items)
	}
	return n
}

// Empty reports whether no item matched. Callers render an explicit
// "no items match" state for this case.
func (g Grouping) Empty() bool {
	return g.Len() == 0
}

// Map returns the grouping as category -> items.
func (g Grouping) Map() map[model.Category][]model.ChecklistItem {
	m := make(map[model.Category][]model.ChecklistItem, len(g.Groups))
	for _, grp := range g.Groups {
		m[grp.Category] = grp.Items
	}
	return m
}

// Match reports whether item passes all four filter predicates.
func Match(item model.ChecklistItem, c model.FilterCriteria) bool {
	c = c.Normalize()
	if c.Category != model.All && string(item.Category) != c.Category {
		return false
	}
	if c.Priority != model.All && string(item.Priority) != c.Priority {
		return false
	}
	if c.Status != model.All && string(item.Status) != c.Status {
		return false
	}
	return strings.Contains(strings.ToLower(item.Description), strings.ToLower(c.Search))
}

// GroupItems filters items by c and groups the survivors by category.
// items is not modified.
func GroupItems(items []model.ChecklistItem, c model.FilterCriteria) Grouping {
	c = c.Normalize()
	index := make(map[model.Category]int)
	var g Grouping
	for _, item := range items {
		if !Match(item, c) {
			continue
		}
		i, ok := index[item.Category]
		if !ok {
			i = len(g.Groups)
			index[item.Category] = i
			g.Groups = append(g.Groups, Group{Category: item.Category})
		}
		g.Groups[i].Items = append(g.Groups[i].Items, item)
	}
	return g
}

// ParseCriteria reads category, priority, status and search from query values.
func ParseCriteria(v url.Values) model.FilterCriteria {
	c := model.FilterCriteria{
		Category: strings.TrimSpace(v.Get("category")),
		Priority: strings.TrimSpace(v.Get("priority")),
		Status:   strings.TrimSpace(v.Get("status")),
		Search:   v.Get("search"),
	}
	return c.Normalize()
}

// HasCriteria reports whether any filter key is present in v.
func HasCriteria(v url.Values) bool {
	for _, k := range []string{"category", "priority", "status", "search"} {
		if v.Has(k) {
			return true
		}
	}
	return false
}
