package main

import (
	"fmt"

	"github.com/Chroma-Case/PLDGenerator/internal/adapters/github"
	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/logger"
	"github.com/Chroma-Case/PLDGenerator/internal/services"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var fetch bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a settings file",
		Long: `check validates the settings file. With --fetch it also reads the
milestone and lists the issues that would be skipped, without writing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("settings")
			cfg := config.Load()
			if path == "" {
				path = cfg.SettingsFile
			}
			st, err := config.LoadSettings(path)
			if err != nil {
				return err
			}
			start, end, _ := st.SprintDates()
			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "settings ok\n")
			fmt.Fprintf(out, "  repository: %s/%s milestone %d\n", st.Repository.Owner, st.Repository.Name, st.Repository.Milestone)
			fmt.Fprintf(out, "  sprint:     %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
			fmt.Fprintf(out, "  members:    %d\n", len(st.Members))
			if len(st.Repository.Projects) > 0 {
				fmt.Fprintf(out, "  projects:   %v\n", st.Repository.Projects)
			}
			if !fetch {
				return nil
			}

			log := logger.NewWriter(cfg, cmd.ErrOrStderr())
			svc := services.New(cfg, log, github.NewClient(cfg, log), nil, nil, nil, nil)
			report, err := svc.BuildReport(cmd.Context(), st)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  stories:    %d (%d ignored by label)\n", len(report.Stories), len(report.IgnoredIssues))
			if len(report.Skipped) == 0 {
				color.New(color.FgGreen).Fprintf(out, "no issue skipped\n")
				return nil
			}
			warn := color.New(color.FgYellow)
			warn.Fprintf(out, "%d issue(s) skipped:\n", len(report.Skipped))
			for _, sk := range report.Skipped {
				warn.Fprintf(out, "  - #%d %s: %s\n", sk.Number, sk.Title, sk.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "read the milestone and list skipped issues")
	return cmd
}
