package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/climavet/climavet/internal/model"
)

var csvHeader = []string{
	"name", "description", "category", "priority", "status",
	"quantity_current", "quantity_needed", "unit",
	"location", "supplier", "notes",
}

// CSV writes one row per item, in item order, under a fixed header.
func CSV(w io.Writer, c model.Checklist) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range c.Items {
		row := []string{
			item.Name,
			item.Description,
			string(item.Category),
			string(item.Priority),
			string(item.Status),
			formatQuantity(item.QuantityCurrent),
			formatQuantity(item.QuantityNeeded),
			item.Unit,
			item.Location,
			item.Supplier,
			item.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for item %d: %w", item.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
