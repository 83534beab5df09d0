package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/checklist"
	"github.com/climavet/climavet/internal/export"
	"github.com/climavet/climavet/internal/model"
)

func newChecklistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Show or export a checklist",
	}
	cmd.AddCommand(newChecklistShowCmd(a), newChecklistExportCmd(a))
	return cmd
}

func newChecklistShowCmd(a *app) *cobra.Command {
	criteria := model.DefaultCriteria()
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a checklist's progress and items grouped by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.fetchChecklist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printChecklist(cmd.OutOrStdout(), *c, criteria.Normalize())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&criteria.Category, "category", model.All, "Only items in this category")
	f.StringVar(&criteria.Priority, "priority", model.All, "Only items with this priority")
	f.StringVar(&criteria.Status, "status", model.All, "Only items with this status")
	f.StringVar(&criteria.Search, "search", "", "Case-insensitive substring of the description")
	return cmd
}

func newChecklistExportCmd(a *app) *cobra.Command {
	var (
		format     string
		passphrase string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a checklist as JSON, CSV or a passphrase-sealed JSON file",
		Long: `Write a checklist to stdout or --output.

With --passphrase the JSON export is sealed with a key derived from the
passphrase and can only be read back with it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if passphrase != "" {
				if f == export.FormatCSV {
					return errors.New("--passphrase only applies to JSON exports")
				}
				f = export.FormatSealed
			}
			if f == export.FormatSealed && passphrase == "" {
				return errors.New("sealed export needs --passphrase")
			}

			c, err := a.fetchChecklist(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}

			if f == export.FormatSealed {
				err = export.WriteSealed(w, *c, passphrase)
			} else {
				err = export.Write(w, *c, f)
			}
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json or csv")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Seal the JSON export with this passphrase")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write instead of stdout")
	return cmd
}

// fetchChecklist loads a checklist for the active clinic by its id argument.
func (a *app) fetchChecklist(ctx context.Context, arg string) (*model.Checklist, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid checklist id %q", arg)
	}
	clinicID, err := a.requireClinic()
	if err != nil {
		return nil, err
	}
	c, err := a.client.GetChecklist(ctx, id, clinicID)
	if err != nil {
		a.logger.Debug("fetch checklist", "id", id, "error", err)
		return nil, errors.New(api.Message(err, "Failed to fetch checklists"))
	}
	if c == nil {
		return nil, errors.New("No checklists found.")
	}
	return c, nil
}

func printChecklist(w io.Writer, c model.Checklist, criteria model.FilterCriteria) {
	p := checklist.Progress(c)
	fmt.Fprintln(w, c.Name)
	if c.Description != "" {
		fmt.Fprintln(w, c.Description)
	}
	fmt.Fprintf(w, "%d of %d items completed (%d%%)\n", p.Completed, p.Total, p.Percentage)

	g := checklist.GroupItems(c.Items, criteria)
	if g.Empty() {
		fmt.Fprintln(w, "\nNo items match your filters")
		return
	}
	for _, grp := range g.Groups {
		fmt.Fprintf(w, "\n%s (%d items)\n", grp.Category, len(grp.Items))
		for _, item := range grp.Items {
			mark := " "
			if checklist.Completed(item) {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s  %s/%s %s  %s  %d%%\n", mark, item.Name,
				strconv.FormatFloat(item.QuantityCurrent, 'f', -1, 64),
				strconv.FormatFloat(item.QuantityNeeded, 'f', -1, 64),
				item.Unit, item.Status, checklist.ItemFill(item))
		}
	}
}
