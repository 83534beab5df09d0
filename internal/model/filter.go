package model

import "strings"

// All is the wildcard value for the category, priority and status filters.
const All = "ALL"

type FilterCriteria struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
	Search   string `json:"search"`
}

// DefaultCriteria matches every item.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Category: All, Priority: All, Status: All}
}

// Normalize maps blank or "all" enum filters to All. Other values are kept
// verbatim since they are compared exactly.
func (c FilterCriteria) Normalize() FilterCriteria {
	c.Category = normalizeEnum(c.Category)
	c.Priority = normalizeEnum(c.Priority)
	c.Status = normalizeEnum(c.Status)
	return c
}

// IsDefault reports whether c matches every item.
func (c FilterCriteria) IsDefault() bool {
	n := c.Normalize()
	return n.Category == All && n.Priority == All && n.Status == All && n.Search == ""
}

func normalizeEnum(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, All) {
		return All
	}
	return v
}
