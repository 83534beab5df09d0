package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/climavet/climavet/internal/config"
	"github.com/climavet/climavet/internal/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	var keymapPath string
	cmd := &cobra.Command{
		Use:   "browse <id>",
		Short: "Browse and update a checklist interactively",
		Long: `Open a checklist in the terminal browser.

Key bindings are read from keys.toml in the user config directory, which
is created with the defaults on first run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid checklist id %q", args[0])
			}
			clinicID, err := a.requireClinic()
			if err != nil {
				return err
			}

			if keymapPath == "" {
				if keymapPath, err = config.DefaultKeymapPath(); err != nil {
					return err
				}
			}
			cfg, err := config.LoadOrCreateTUI(keymapPath)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.client, id, clinicID, cfg)
		},
	}
	cmd.Flags().StringVar(&keymapPath, "keymap", "", "Path to the keymap TOML file")
	return cmd
}
