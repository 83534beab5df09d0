package tui

import (
	"errors"
	"time"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/model"
)

var errNotFound = errors.New("checklist not found")

var now = time.Now

func fetchMessage(err error) string {
	if errors.Is(err, errNotFound) {
		return "No checklists found."
	}
	return api.Message(err, "Failed to fetch checklists")
}

// cycle steps current through All followed by values, wrapping around.
func cycle(current string, values []string) string {
	all := append([]string{model.All}, values...)
	for i, v := range all {
		if v == current {
			return all[(i+1)%len(all)]
		}
	}
	return model.All
}

func enumValues[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// categoryValues lists the categories present in c in first-seen order.
func categoryValues(c model.Checklist) []string {
	seen := map[model.Category]bool{}
	var out []string
	for _, item := range c.Items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, string(item.Category))
		}
	}
	return out
}
