package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/clinic"
	"github.com/climavet/climavet/internal/model"
)

const selectDisasterTypeMsg = "Please select a disaster type before generating a plan."

type PlanHandler struct {
	backend  Backend
	renderer *Renderer
	logger   *slog.Logger
}

func NewPlanHandler(b Backend, rr *Renderer, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{backend: b, renderer: rr, logger: logger}
}

type plansPage struct {
	Page
	Risk  string
	Types []model.DisasterType
	Plans []model.PlanSummary
}

type generatorPage struct {
	Page
	Types []model.DisasterType
}

type planResult struct {
	Page
	Plan *model.DisasterPlan
}

// Plans lists the plan summaries for ?risk=. The risk selector is filled
// from the disaster types.
func (h *PlanHandler) Plans(w http.ResponseWriter, r *http.Request) {
	data := plansPage{
		Page: Page{ClinicID: clinic.ID(r.Context())},
		Risk: strings.TrimSpace(r.URL.Query().Get("risk")),
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		types, err := h.backend.ListDisasterTypes(ctx)
		data.Types = types
		return err
	})
	if data.Risk != "" {
		g.Go(func() error {
			plans, err := h.backend.ListPlans(ctx, data.Risk)
			data.Plans = plans
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Error("list plans", "risk", data.Risk, "error", err)
		data.Error = api.Message(err, "An error occurred while fetching disaster plans.")
	}

	if isHTMX(r) {
		h.renderer.Partial(w, "plan-list", data)
		return
	}
	h.renderer.Page(w, http.StatusOK, "plans", data)
}

// Generator shows the disaster type picker.
func (h *PlanHandler) Generator(w http.ResponseWriter, r *http.Request) {
	data := generatorPage{Page: Page{ClinicID: clinic.ID(r.Context())}}

	types, err := h.backend.ListDisasterTypes(r.Context())
	if err != nil {
		h.logger.Error("list disaster types", "error", err)
		data.Error = api.Message(err, "Failed to load disaster types. Please try again later.")
	}
	data.Types = types

	h.renderer.Page(w, http.StatusOK, "generate", data)
}

// Generate renders the plan for ?disaster_type=. An empty selection is
// answered locally without calling the backend.
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("disaster_type"))
	if raw == "" {
		h.renderer.InlineError(w, selectDisasterTypeMsg)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.renderer.InlineError(w, selectDisasterTypeMsg)
		return
	}

	plan, err := h.backend.GeneratePlan(r.Context(), id)
	if err != nil {
		h.logger.Error("generate plan", "disaster_type", id, "error", err)
		h.renderer.InlineError(w, api.Message(err, "Failed to generate disaster plan. Please try again later."))
		return
	}

	h.renderer.Partial(w, "plan-result", planResult{Plan: plan})
}
