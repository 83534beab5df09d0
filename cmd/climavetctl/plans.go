package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/model"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List disaster types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.client.ListDisasterTypes(cmd.Context())
			if err != nil {
				return errors.New(api.Message(err, "Failed to load disaster types"))
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, t := range types {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Name, t.Description)
			}
			return tw.Flush()
		},
	}
}

func newPlansCmd(a *app) *cobra.Command {
	var risk string
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List disaster plans for a risk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := a.client.ListPlans(cmd.Context(), risk)
			if err != nil {
				return errors.New(api.Message(err, "An error occurred while fetching disaster plans."))
			}
			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintf(out, "No disaster plans found for %s.\n", risk)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE")
			for _, p := range plans {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.DisasterType)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&risk, "risk", "", "Disaster type name, e.g. Flood")
	cmd.MarkFlagRequired("risk")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var typeID int64
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a disaster plan for a disaster type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if typeID <= 0 {
				return errors.New("Please select a disaster type before generating a plan.")
			}
			plan, err := a.client.GeneratePlan(cmd.Context(), typeID)
			if err != nil {
				return errors.New(api.Message(err, "Failed to generate disaster plan. Please try again later."))
			}
			printPlan(cmd.OutOrStdout(), *plan)
			return nil
		},
	}
	cmd.Flags().Int64Var(&typeID, "type", 0, "Disaster type id (see 'climavetctl types')")
	return cmd
}

func printPlan(w io.Writer, p model.DisasterPlan) {
	fmt.Fprintln(w, p.DisplayName())
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	printSteps(w, "Commonly Affected Regions", p.CommonRegions)
	printSteps(w, "Preparation Steps", p.PreparationSteps)
	printSteps(w, "Response Steps", p.ResponseSteps)
	printSteps(w, "Recovery Steps", p.RecoverySteps)
	if len(p.EmergencyContacts) > 0 {
		fmt.Fprintln(w, "\nEmergency Contacts")
		for _, c := range p.EmergencyContacts {
			fmt.Fprintf(w, "  - %s (%s): %s\n", c.Name, c.Type, c.Phone)
		}
	}
	if len(p.SuppliesNeeded) > 0 {
		fmt.Fprintln(w, "\nSupplies Needed")
		for _, s := range p.SuppliesNeeded {
			fmt.Fprintf(w, "  - %s: %s %s\n", s.Item, strconv.FormatFloat(s.Quantity, 'f', -1, 64), s.Unit)
		}
	}
	printSteps(w, "Training Requirements", p.TrainingRequirements)
}

func printSteps(w io.Writer, title string, steps []string) {
	if len(steps) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for i, s := range steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}
