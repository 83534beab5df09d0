package model

import "time"

type Category string

const (
	CategoryRecords       Category = "RECORDS_AND_DOCUMENTS"
	CategoryMedical       Category = "MEDICAL_SUPPLIES"
	CategorySustenance    Category = "SUSTENANCE"
	CategoryEvacuation    Category = "EVACUATION_HANDLING_AND_TRANSPORTATION_RESOURCES"
	CategorySanitation    Category = "SANITATION"
	CategoryCommunication Category = "COMMUNICATION_DEVICES_AND_OPERATIONAL_TOOLS"
	CategoryFacility      Category = "FACILITY_AND_SAFETY_GEAR"
	CategoryShelter       Category = "SHELTER_AND_BEDDING"
	CategoryStaff         Category = "STAFF_AND_OWNER_RESOURCES"
)

// Categories lists the categories the backend knows about, in display order.
var Categories = []Category{
	CategoryRecords,
	CategoryMedical,
	CategorySustenance,
	CategoryEvacuation,
	CategorySanitation,
	CategoryCommunication,
	CategoryFacility,
	CategoryShelter,
	CategoryStaff,
}

type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

type Status string

const (
	StatusInStock    Status = "IN_STOCK"
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusNotNeeded  Status = "NOT_NEEDED"
	StatusOrdered    Status = "ORDERED"
)

var Statuses = []Status{StatusInStock, StatusLowStock, StatusOutOfStock, StatusOrdered, StatusNotNeeded}

// ValidStatus reports whether s is one of the backend's item statuses.
func ValidStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type ReviewFrequency string

const (
	ReviewNone       ReviewFrequency = "NONE"
	ReviewWeekly     ReviewFrequency = "WEEKLY"
	ReviewBiweekly   ReviewFrequency = "BIWEEKLY"
	ReviewMonthly    ReviewFrequency = "MONTHLY"
	ReviewQuarterly  ReviewFrequency = "QUARTERLY"
	ReviewBiannually ReviewFrequency = "BIANNUALLY"
	ReviewAnnually   ReviewFrequency = "ANNUALLY"
)

type ChecklistItem struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Category        Category   `json:"category"`
	Priority        Priority   `json:"priority"`
	Status          Status     `json:"status"`
	QuantityCurrent float64    `json:"quantity_current"`
	QuantityNeeded  float64    `json:"quantity_needed"`
	Unit            string     `json:"unit"`
	Location        string     `json:"location,omitempty"`
	Supplier        string     `json:"supplier,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	LastChecked     *time.Time `json:"last_checked,omitempty"`
}

type Checklist struct {
	ID                   int64           `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Items                []ChecklistItem `json:"items"`
	DisasterTypeNames    []string        `json:"disaster_type_names"`
	TotalItems           int             `json:"total_items"`
	ItemsInStock         int             `json:"items_in_stock"`
	ItemsOutOfStock      int             `json:"items_out_of_stock"`
	CompletionPercentage int             `json:"completion_percentage"`
	ReviewFrequency      ReviewFrequency `json:"review_frequency,omitempty"`
	LastReviewed         *time.Time      `json:"last_reviewed,omitempty"`
}

// ItemByID returns the item with the given id and its index, or -1.
func (c Checklist) ItemByID(id int64) (ChecklistItem, int) {
	for i, item := range c.Items {
		if item.ID == id {
			return item, i
		}
	}
	return ChecklistItem{}, -1
}

type NewChecklist struct {
	ClinicID      int64   `json:"clinic_id" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required,min=1,max=255"`
	Description   string  `json:"description" validate:"max=2000"`
	DisasterTypes []int64 `json:"disaster_types" validate:"required,min=1,dive,gt=0"`
}

// ItemUpdate carries the fields a user may edit on a checklist item. Nil
// fields are left unchanged.
type ItemUpdate struct {
	Status          *Status  `json:"status,omitempty" validate:"omitempty,oneof=IN_STOCK OUT_OF_STOCK LOW_STOCK NOT_NEEDED ORDERED"`
	QuantityCurrent *float64 `json:"quantity_current,omitempty" validate:"omitempty,gte=0"`
	Location        *string  `json:"location,omitempty" validate:"omitempty,max=255"`
	Supplier        *string  `json:"supplier,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}
