package checklist

import (
	"math"
	"time"

	"github.com/climavet/climavet/internal/model"
)

// ProgressResult is the completion state of a checklist.
type ProgressResult struct {
	Completed  int
	Total      int
	Percentage int
}

// Summary holds the counters a checklist carries alongside its items.
type Summary struct {
	TotalItems           int
	InStock              int
	OutOfStock           int
	CompletionPercentage int
}

// Completed reports whether an item counts toward completion.
func Completed(item model.ChecklistItem) bool {
	return item.Status == model.StatusInStock
}

// Progress counts completed items. Percentage is 0 for an empty checklist.
func Progress(c model.Checklist) ProgressResult {
	p := ProgressResult{Total: len(c.Items)}
	for _, item := range c.Items {
		if Completed(item) {
			p.Completed++
		}
	}
	p.Percentage = Percent(p.Completed, p.Total)
	return p
}

// Percent returns round(100*part/whole), or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return roundHalfUp(100 * float64(part) / float64(whole))
}

// FillPercentage is how full an item's stock is, clamped to [0,100].
// An item that needs nothing reports 0.
func FillPercentage(current, needed float64) int {
	if needed <= 0 || current <= 0 || math.IsNaN(current) || math.IsNaN(needed) {
		return 0
	}
	pct := roundHalfUp(100 * current / needed)
	if pct > 100 {
		return 100
	}
	return pct
}

// ItemFill is FillPercentage for a single item.
func ItemFill(item model.ChecklistItem) int {
	return FillPercentage(item.QuantityCurrent, item.QuantityNeeded)
}

// Summarize derives the checklist counters from items.
func Summarize(items []model.ChecklistItem) Summary {
	s := Summary{TotalItems: len(items)}
	done := 0
	for _, item := range items {
		switch item.Status {
		case model.StatusInStock:
			s.InStock++
			done++
		case model.StatusOutOfStock:
			s.OutOfStock++
		}
	}
	s.CompletionPercentage = Percent(done, s.TotalItems)
	return s
}

// Recompute returns a copy of c whose counters match its items.
func Recompute(c model.Checklist) model.Checklist {
	s := Summarize(c.Items)
	c.TotalItems = s.TotalItems
	c.ItemsInStock = s.InStock
	c.ItemsOutOfStock = s.OutOfStock
	c.CompletionPercentage = s.CompletionPercentage
	return c
}

// DeriveStatus picks a stock status from quantities alone.
func DeriveStatus(current, needed float64) model.Status {
	switch {
	case current >= needed:
		return model.StatusInStock
	case current > 0 && current < needed:
		return model.StatusLowStock
	default:
		return model.StatusOutOfStock
	}
}

// Band classifies a percentage for progress bar colouring.
func Band(pct int) string {
	switch {
	case pct >= 80:
		return "good"
	case pct >= 50:
		return "fair"
	default:
		return "poor"
	}
}

var reviewIntervals = map[model.ReviewFrequency]time.Duration{
	model.ReviewWeekly:     7 * 24 * time.Hour,
	model.ReviewBiweekly:   14 * 24 * time.Hour,
	model.ReviewMonthly:    30 * 24 * time.Hour,
	model.ReviewQuarterly:  90 * 24 * time.Hour,
	model.ReviewBiannually: 182 * 24 * time.Hour,
	model.ReviewAnnually:   365 * 24 * time.Hour,
}

// ReviewDue reports whether c is due for a review at now. A checklist with
// a review frequency that has never been reviewed is always due.
func ReviewDue(c model.Checklist, now time.Time) bool {
	interval, ok := reviewIntervals[c.ReviewFrequency]
	if !ok {
		return false
	}
	if c.LastReviewed == nil {
		return true
	}
	return !now.Before(c.LastReviewed.Add(interval))
}

// roundHalfUp rounds .5 up, so 0.5 -> 1 and 2.5 -> 3.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
