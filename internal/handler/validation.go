package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// fieldMessages maps Struct.Field:tag to the text shown to the user.
var fieldMessages = map[string]string{
	"NewChecklist.ClinicID:required":      "Select your clinic before creating a checklist.",
	"NewChecklist.ClinicID:gt":            "Select your clinic before creating a checklist.",
	"NewChecklist.Name:required":          "Checklist name is required.",
	"NewChecklist.Name:max":               "Checklist name must be at most 255 characters.",
	"NewChecklist.Description:max":        "Description must be at most 2000 characters.",
	"NewChecklist.DisasterTypes:required": "Select at least one disaster type.",
	"NewChecklist.DisasterTypes:min":      "Select at least one disaster type.",
	"ItemUpdate.Status:oneof":             "Unknown item status.",
	"ItemUpdate.QuantityCurrent:gte":      "Quantity cannot be negative.",
	"ItemUpdate.Location:max":             "Location must be at most 255 characters.",
}

// validationMessage validates v and returns the first failure as a user
// facing sentence, or "" when v is valid.
func validationMessage(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid input."
	}
	fe := verrs[0]
	key := fmt.Sprintf("%s:%s", structField(fe.StructNamespace()), fe.Tag())
	if msg, ok := fieldMessages[key]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}

// structField strips slice indexes so NewChecklist.DisasterTypes[0] maps to
// NewChecklist.DisasterTypes.
func structField(ns string) string {
	for i, r := range ns {
		if r == '[' {
			return ns[:i]
		}
	}
	return ns
}
