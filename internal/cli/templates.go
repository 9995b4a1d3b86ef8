package cli

import (
	"github.com/spf13/cobra"

	"github.com/fastygo/powertimer/api/transport"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List, seed and use timer templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			templates, err := a.client.ListTemplates(ctx)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				outln(cmd, "no templates (run `timerctl templates seed`)")
				return nil
			}
			for _, t := range templates {
				outf(cmd, "%-36s  %-20s  %3d min  %s\n", t.ID, t.Name, t.DurationMinutes, transport.DisplayFor(t.Category).Label)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Insert the default templates that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			created, err := a.client.SeedTemplates(ctx)
			if err != nil {
				return err
			}
			outf(cmd, "created %d templates\n", created)
			return nil
		},
	})

	var name string
	use := &cobra.Command{
		Use:   "use <template-id>",
		Short: "Create a timer from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			timer, err := a.client.InstantiateTemplate(ctx, args[0], name)
			if err != nil {
				return err
			}
			outln(cmd, formatTimer(*timer))
			return nil
		},
	}
	use.Flags().StringVar(&name, "name", "", "timer name (defaults to the template name)")
	cmd.AddCommand(use)

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completed-session statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			s, err := a.client.Stats(ctx)
			if err != nil {
				return err
			}
			outf(cmd, "Sessions: %d (today %d)\n", s.TotalSessions, s.TodaySessions)
			outf(cmd, "Time: %s (today %s)\n", formatClock(s.TotalTimeSeconds), formatClock(s.TodayTimeSeconds))
			outf(cmd, "Average: %s\n", formatClock(int(s.AverageSessionDuration)))
			for category, seconds := range s.Categories {
				outf(cmd, "  %-14s %s\n", transport.DisplayFor(category).Label, formatClock(seconds))
			}
			return nil
		},
	}
}
