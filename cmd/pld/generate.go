package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/adapters/github"
	"github.com/Chroma-Case/PLDGenerator/internal/adapters/openai"
	"github.com/Chroma-Case/PLDGenerator/internal/adapters/telegram"
	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/logger"
	"github.com/Chroma-Case/PLDGenerator/internal/output"
	"github.com/Chroma-Case/PLDGenerator/internal/prompt"
	"github.com/Chroma-Case/PLDGenerator/internal/repo"
	"github.com/Chroma-Case/PLDGenerator/internal/services"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	out     string
	format  string
	yes     bool
	store   bool
	notify  bool
	quiet   bool
	noColor bool

	// confirm asks before anything is written, stored or sent. Nil when
	// stdin is not a terminal.
	confirm func(title, message string) (bool, error)
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the sprint report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("settings")
			return runGenerate(cmd.Context(), cmd, path, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", output.FormatJSON, "output format: json or yaml")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "write without asking for confirmation")
	cmd.Flags().BoolVar(&opts.store, "store", false, "record the run in the configured store")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "send the digest to the configured Telegram chats")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the summary tables")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, path string, opts *generateOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.noColor {
		color.NoColor = true
	}
	cfg := config.Load()
	if path == "" {
		path = cfg.SettingsFile
	}
	st, err := config.LoadSettings(path)
	if err != nil {
		return err
	}
	log := logger.NewWriter(cfg, cmd.ErrOrStderr())

	var (
		llm   services.Summarizer
		tg    services.Notifier
		store services.Store
	)
	if cfg.OpenAIKey != "" {
		llm = openai.NewClient(cfg, log)
	}
	if opts.notify && cfg.TelegramToken != "" {
		tg = telegram.NewClient(cfg, log)
	}
	if opts.store {
		s, err := repo.Open(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		store = s
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc := services.New(cfg, log, github.NewClient(cfg, log), llm, tg, store, nil)
	started := time.Now()
	report, err := svc.BuildReport(ctx, st)
	if err != nil {
		svc.Record(ctx, started, nil, err)
		return err
	}

	if !opts.quiet {
		output.Summary(cmd.ErrOrStderr(), report)
	}
	confirm := opts.confirm
	if confirm == nil && isTerminal(os.Stdin) {
		confirm = func(title, message string) (bool, error) {
			return prompt.Ask(title, message, os.Stdin, cmd.ErrOrStderr())
		}
	}
	if !opts.yes && confirm != nil {
		target := opts.out
		if target == "" {
			target = "stdout"
		}
		msg := fmt.Sprintf("%s/%s milestone %d: %d stories, %d projects, charge %s, %d skipped",
			st.Repository.Owner, st.Repository.Name, st.Repository.Milestone,
			len(report.Stories), len(report.Projects), strconv.FormatFloat(report.SprintCharge, 'f', -1, 64), len(report.Skipped))
		ok, err := confirm("Write the report to "+target+"?", msg)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "cancelled")
			return nil
		}
	}
	svc.Record(ctx, started, report, nil)

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := output.Write(w, report, format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
