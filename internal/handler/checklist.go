package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/climavet/climavet/internal/api"
	checklistpkg "github.com/climavet/climavet/internal/checklist"
	"github.com/climavet/climavet/internal/clinic"
	"github.com/climavet/climavet/internal/model"
	"github.com/climavet/climavet/internal/store"
	"github.com/climavet/climavet/internal/websocket"
)

type ChecklistHandler struct {
	backend     Backend
	filterStore *store.FilterStore
	hub         Broadcaster
	renderer    *Renderer
	logger      *slog.Logger
	now         func() time.Time
}

func NewChecklistHandler(b Backend, fs *store.FilterStore, hub Broadcaster, rr *Renderer, logger *slog.Logger) *ChecklistHandler {
	return &ChecklistHandler{backend: b, filterStore: fs, hub: hub, renderer: rr, logger: logger, now: time.Now}
}

func (h *ChecklistHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type checklistForm struct {
	Name          string
	Description   string
	DisasterTypes []int64
}

type builderPage struct {
	Page
	Types []model.DisasterType
	Form  checklistForm
}

type checklistPage struct {
	Page
	Checklist  model.Checklist
	Progress   checklistpkg.ProgressResult
	Criteria   model.FilterCriteria
	Grouping   checklistpkg.Grouping
	Categories []model.Category
	Priorities []model.Priority
	Statuses   []model.Status
	ReviewDue  bool
}

func (h *ChecklistHandler) view(c model.Checklist, criteria model.FilterCriteria, clinicID int64) checklistPage {
	return checklistPage{
		Page:       Page{ClinicID: clinicID},
		Checklist:  c,
		Progress:   checklistpkg.Progress(c),
		Criteria:   criteria,
		Grouping:   checklistpkg.GroupItems(c.Items, criteria),
		Categories: categoriesFor(c),
		Priorities: model.Priorities,
		Statuses:   model.Statuses,
		ReviewDue:  checklistpkg.ReviewDue(c, h.now()),
	}
}

// categoriesFor lists the known categories, then any others the items use,
// so the filter can select every category present.
func categoriesFor(c model.Checklist) []model.Category {
	seen := make(map[model.Category]bool, len(model.Categories))
	out := append([]model.Category(nil), model.Categories...)
	for _, cat := range out {
		seen[cat] = true
	}
	for _, item := range c.Items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}

// New shows the checklist builder.
func (h *ChecklistHandler) New(w http.ResponseWriter, r *http.Request) {
	data := builderPage{Page: Page{ClinicID: clinic.ID(r.Context())}}
	types, err := h.backend.ListDisasterTypes(r.Context())
	if err != nil {
		h.logger.Error("list disaster types", "error", err)
		data.Error = api.Message(err, "Failed to load disaster types. Please try again later.")
	}
	data.Types = types
	h.renderer.Page(w, http.StatusOK, "checklist_new", data)
}

// Create validates the builder form, creates the checklist and sends the
// browser to it.
func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	form := checklistForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	var badType bool
	for _, v := range r.Form["disaster_types"] {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badType = true
			continue
		}
		form.DisasterTypes = append(form.DisasterTypes, id)
	}

	in := model.NewChecklist{
		ClinicID:      clinic.ID(r.Context()),
		Name:          form.Name,
		Description:   form.Description,
		DisasterTypes: form.DisasterTypes,
	}

	msg := validationMessage(in)
	if msg == "" && badType {
		msg = "Unknown disaster type selected."
	}
	if msg != "" {
		h.renderBuilder(w, r, form, msg)
		return
	}

	created, err := h.backend.CreateChecklist(r.Context(), in)
	if err != nil {
		h.logger.Error("create checklist", "error", err)
		h.renderBuilder(w, r, form, api.Message(err, "Failed to create checklist. Please try again later."))
		return
	}

	h.logger.Info("checklist created", "id", created.ID, "clinic", in.ClinicID)
	h.broadcast(websocket.ChecklistCreated(*created))
	redirect(w, r, fmt.Sprintf("/checklists/%d", created.ID))
}

func (h *ChecklistHandler) renderBuilder(w http.ResponseWriter, r *http.Request, form checklistForm, msg string) {
	data := builderPage{Page: Page{ClinicID: clinic.ID(r.Context()), Error: msg}, Form: form}
	types, err := h.backend.ListDisasterTypes(r.Context())
	if err != nil {
		h.logger.Error("list disaster types", "error", err)
	}
	data.Types = types

	if isHTMX(r) {
		h.renderer.Partial(w, "checklist-form", data)
		return
	}
	h.renderer.Page(w, http.StatusUnprocessableEntity, "checklist_new", data)
}

// View renders a checklist with the filters last used on it.
func (h *ChecklistHandler) View(w http.ResponseWriter, r *http.Request) {
	clinicID := clinic.ID(r.Context())
	c, ok := h.load(w, r)
	if !ok {
		return
	}

	criteria := h.savedCriteria(c.ID)
	if err := r.ParseForm(); err == nil && checklistpkg.HasCriteria(r.Form) {
		criteria = checklistpkg.ParseCriteria(r.Form)
	}

	h.renderer.Page(w, http.StatusOK, "checklist", h.view(*c, criteria, clinicID))
}

// Items re-renders the grouped item list for the query's criteria and
// remembers them for the checklist.
func (h *ChecklistHandler) Items(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadPartial(w, r)
	if !ok {
		return
	}

	criteria := checklistpkg.ParseCriteria(r.URL.Query())
	if err := h.filterStore.Save(c.ID, criteria); err != nil {
		h.logger.Error("save filter", "checklist", c.ID, "error", err)
	}

	h.renderer.Partial(w, "checklist-body", h.view(*c, criteria, clinic.ID(r.Context())))
}

// ToggleItem flips an item between in stock and out of stock.
func (h *ChecklistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, func(prior model.Checklist, itemID int64) (model.Checklist, model.ItemUpdate, string) {
		item, _ := prior.ItemByID(itemID)
		next, err := checklistpkg.ToggleItem(prior, itemID)
		if err != nil {
			return prior, model.ItemUpdate{}, "Item not found."
		}
		return next, checklistpkg.ToggleUpdate(item), ""
	})
}

// UpdateItem applies the edit form to an item.
func (h *ChecklistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, func(prior model.Checklist, itemID int64) (model.Checklist, model.ItemUpdate, string) {
		u, msg := parseItemUpdate(r)
		if msg != "" {
			return prior, u, msg
		}
		next, err := checklistpkg.ApplyUpdate(prior, itemID, u, h.now())
		if err != nil {
			return prior, u, "Item not found."
		}
		if u.Status == nil {
			// Send the derived status so the backend agrees with the view.
			item, _ := next.ItemByID(itemID)
			u.Status = &item.Status
		}
		return next, u, ""
	})
}

type itemCommand func(prior model.Checklist, itemID int64) (next model.Checklist, u model.ItemUpdate, errMsg string)

// mutateItem runs cmd against the current snapshot, sends the resulting
// update to the backend and renders the new snapshot. When the backend
// rejects the change the prior snapshot is rendered with the error.
func (h *ChecklistHandler) mutateItem(w http.ResponseWriter, r *http.Request, cmd itemCommand) {
	itemID, err := pathID(r, "item")
	if err != nil {
		h.renderer.InlineError(w, "Invalid item id.")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.InlineError(w, "Invalid form data.")
		return
	}

	prior, ok := h.loadPartial(w, r)
	if !ok {
		return
	}
	clinicID := clinic.ID(r.Context())

	criteria := h.savedCriteria(prior.ID)
	if checklistpkg.HasCriteria(r.Form) {
		criteria = checklistpkg.ParseCriteria(r.Form)
	}

	next, u, msg := cmd(*prior, itemID)
	if msg != "" {
		view := h.view(*prior, criteria, clinicID)
		view.Error = msg
		h.renderer.Partial(w, "checklist-body", view)
		return
	}

	stored, err := h.backend.UpdateItem(r.Context(), prior.ID, itemID, u)
	if err != nil {
		h.logger.Error("update item", "checklist", prior.ID, "item", itemID, "error", err)
		view := h.view(*prior, criteria, clinicID)
		view.Error = api.Message(err, "Failed to update item. Please try again later.")
		h.renderer.Partial(w, "checklist-body", view)
		return
	}
	if stored != nil && stored.ID == itemID {
		next = checklistpkg.ReplaceItem(next, *stored)
	}

	item, _ := next.ItemByID(itemID)
	h.broadcast(websocket.ItemUpdated(next, item))
	h.renderer.Partial(w, "checklist-body", h.view(next, criteria, clinicID))
}

// parseItemUpdate reads the edit form. Blank fields are left unchanged,
// except that text fields present in the form are always applied so they
// can be cleared.
func parseItemUpdate(r *http.Request) (model.ItemUpdate, string) {
	var u model.ItemUpdate

	if v := strings.TrimSpace(r.FormValue("item_status")); v != "" {
		s := model.Status(v)
		u.Status = &s
	}
	if v := strings.TrimSpace(r.FormValue("quantity_current")); v != "" {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return u, "Quantity must be a number."
		}
		u.QuantityCurrent = &q
	}
	if _, ok := r.Form["location"]; ok {
		v := strings.TrimSpace(r.FormValue("location"))
		u.Location = &v
	}
	if _, ok := r.Form["supplier"]; ok {
		v := strings.TrimSpace(r.FormValue("supplier"))
		u.Supplier = &v
	}
	if _, ok := r.Form["notes"]; ok {
		v := strings.TrimSpace(r.FormValue("notes"))
		u.Notes = &v
	}

	return u, validationMessage(u)
}

func (h *ChecklistHandler) savedCriteria(checklistID int64) model.FilterCriteria {
	saved, err := h.filterStore.Get(checklistID)
	if err != nil {
		h.logger.Error("load saved filter", "checklist", checklistID, "error", err)
	}
	if saved == nil {
		return model.DefaultCriteria()
	}
	return *saved
}

// load fetches the checklist named in the path for a full page, writing
// the error page itself when that fails.
func (h *ChecklistHandler) load(w http.ResponseWriter, r *http.Request) (*model.Checklist, bool) {
	clinicID := clinic.ID(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		h.renderer.Error(w, http.StatusBadRequest, clinicID, "Checklist", "Invalid checklist id.")
		return nil, false
	}
	c, err := h.backend.GetChecklist(r.Context(), id, clinicID)
	if err != nil {
		h.logger.Error("fetch checklist", "id", id, "error", err)
		h.renderer.Error(w, http.StatusBadGateway, clinicID, "Checklist", api.Message(err, "Failed to fetch checklists"))
		return nil, false
	}
	if c == nil {
		h.renderer.Error(w, http.StatusNotFound, clinicID, "Checklist", "No checklists found.")
		return nil, false
	}
	return c, true
}

// loadPartial is load for HTMX fragments: failures render inline.
func (h *ChecklistHandler) loadPartial(w http.ResponseWriter, r *http.Request) (*model.Checklist, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		h.renderer.InlineError(w, "Invalid checklist id.")
		return nil, false
	}
	c, err := h.backend.GetChecklist(r.Context(), id, clinic.ID(r.Context()))
	if err != nil {
		h.logger.Error("fetch checklist", "id", id, "error", err)
		h.renderer.InlineError(w, api.Message(err, "Failed to fetch checklists"))
		return nil, false
	}
	if c == nil {
		h.renderer.InlineError(w, "No checklists found.")
		return nil, false
	}
	return c, true
}
