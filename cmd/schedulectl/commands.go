package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dosada05/team-schedule/db"
	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/services"
	"github.com/Dosada05/team-schedule/sheets"
)

type settingStore interface {
	GetAll(ctx context.Context) ([]models.Setting, error)
	Delete(ctx context.Context, key string) error
}

// runtime: всё, что нужно командам. Собирается лениво в PersistentPreRunE.
type runtime struct {
	schedule      services.ScheduleService
	settings      settingStore
	sheetsEnabled bool
	applySchema   func(ctx context.Context) error
	close         func() error
}

type loader func(ctx context.Context) (*runtime, error)

var errSheetsDisabled = errors.New("google sheets credentials are not configured (GOOGLE_CREDENTIALS_FILE or GOOGLE_ACCESS_TOKEN)")

// newRootCmd возвращает корневую команду и функцию, закрывающую поднятые ресурсы.
// cleanup вызывается и после ошибки команды.
func newRootCmd(load loader) (*cobra.Command, func() error) {
	var rt *runtime

	root := &cobra.Command{
		Use:           "schedulectl",
		Short:         "Team schedule admin CLI",
		Long:          `Administrative commands for the team schedule service: database schema, weekly analytics and spreadsheet sync.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsRuntime(cmd) {
				return nil
			}
			var err error
			rt, err = load(cmd.Context())
			return err
		},
	}

	get := func() *runtime { return rt }

	root.AddCommand(schemaCmd(get))
	root.AddCommand(analyticsCmd(get))
	root.AddCommand(sheetCmd(get))
	root.AddCommand(settingsCmd(get))

	cleanup := func() error {
		if rt == nil || rt.close == nil {
			return nil
		}
		return rt.close()
	}
	return root, cleanup
}

// needsRuntime: справка и печать схемы работают без БД.
func needsRuntime(cmd *cobra.Command) bool {
	if f := cmd.Flags().Lookup("print"); f != nil && f.Changed {
		return false
	}
	return cmd.Runnable()
}

func addWeekFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVar(start, "start", "", "week start date (weekStartDate)")
	cmd.Flags().StringVar(end, "end", "", "week end date (weekEndDate)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func schemaCmd(rt func() *runtime) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create missing database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
				return err
			}
			if err := rt().applySchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the DDL instead of applying it")
	return cmd
}

func analyticsCmd(rt func() *runtime) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print best time slots and the most available day for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := rt().schedule.GetAnalytics(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	addWeekFlags(cmd, &start, &end)
	return cmd
}

func sheetCmd(rt func() *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Spreadsheet mirror operations",
	}

	requireSheets := func() error {
		if !rt().sheetsEnabled {
			return errSheetsDisabled
		}
		return nil
	}

	var pushStart, pushEnd string
	push := &cobra.Command{
		Use:   "push",
		Short: "Rewrite the week tab from the stored schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSheets(); err != nil {
				return err
			}
			schedule, err := rt().schedule.Republish(cmd.Context(), pushStart, pushEnd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d players to tab %s\n",
				len(schedule.ScheduleData.Players), sheets.TabName(schedule.WeekStartDate))
			return nil
		},
	}
	addWeekFlags(push, &pushStart, &pushEnd)

	var pullStart, pullEnd string
	pull := &cobra.Command{
		Use:   "pull",
		Short: "Overwrite the stored schedule with the week tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSheets(); err != nil {
				return err
			}
			schedule, err := rt().schedule.ImportFromSheet(cmd.Context(), pullStart, pullEnd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d players from tab %s\n",
				len(schedule.ScheduleData.Players), sheets.TabName(schedule.WeekStartDate))
			return nil
		},
	}
	addWeekFlags(pull, &pullStart, &pullEnd)

	info := &cobra.Command{
		Use:   "info",
		Short: "Print the spreadsheet id and URL (creates the spreadsheet on first use)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSheets(); err != nil {
				return err
			}
			info, err := rt().schedule.GetSpreadsheetInfo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "spreadsheet: %s\nurl:         %s\n", info.SpreadsheetID, info.URL)
			return nil
		},
	}

	cmd.AddCommand(push, pull, info)
	return cmd
}

func settingsCmd(rt func() *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect stored key/value settings",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := rt().settings.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE")
			for _, s := range settings {
				fmt.Fprintf(w, "%s\t%s\n", s.Key, s.Value)
			}
			return w.Flush()
		},
	}

	unset := &cobra.Command{
		Use:   "unset KEY",
		Short: "Delete a setting (e.g. google_spreadsheet_id to create a fresh spreadsheet)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt().settings.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, unset)
	return cmd
}
