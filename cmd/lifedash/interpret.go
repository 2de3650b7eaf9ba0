package main

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"lifedash/internal/command/adapters/rules"
	"lifedash/internal/command/handler"
	"lifedash/internal/command/models"
	commandservice "lifedash/internal/command/service"
	entryservice "lifedash/internal/entries/service"
	entrymemory "lifedash/internal/entries/store/memory"
	"lifedash/internal/platform/logger"
)

var (
	interpretUser    string
	interpretConfirm bool
	interpretSave    bool
	interpretHour    int
	interpretVerbose bool
	interpretUnits   string
)

var interpretCmd = &cobra.Command{
	Use:   "interpret [message]",
	Short: "Run a message through the pipeline with the rules backend",
	Long: `Interprets a message offline with the rule-based language backend and
prints the response. Nothing is persisted unless --save is given, and then
only to an in-memory store that lives for this invocation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func init() {
	interpretCmd.Flags().StringVarP(&interpretUser, "user", "u", "cli", "user id to interpret as")
	interpretCmd.Flags().BoolVar(&interpretConfirm, "confirm", false, "confirm destructive commands")
	interpretCmd.Flags().BoolVar(&interpretSave, "save", false, "persist to an in-memory store instead of a dry run")
	interpretCmd.Flags().IntVar(&interpretHour, "hour", -1, "user's local hour (0-23) for urgency")
	interpretCmd.Flags().StringVar(&interpretUnits, "units", "", "preferred unit system for unitless values (imperial|metric)")
	interpretCmd.Flags().BoolVarP(&interpretVerbose, "verbose", "v", false, "log pipeline stages to stderr")
	rootCmd.AddCommand(interpretCmd)
}

func runInterpret(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if interpretVerbose {
		log = logger.NewWithWriter(cmd.ErrOrStderr(), "debug", false)
	}

	entries, err := entryservice.New(entrymemory.New(), cat, entryservice.WithLogger(log))
	if err != nil {
		return err
	}
	svc, err := commandservice.New(
		commandservice.NewPipeline(cat, rules.New(cat), commandservice.PipelineConfig{}),
		entries,
		commandservice.WithLogger(log),
	)
	if err != nil {
		return err
	}

	req := models.Request{
		Message:   strings.Join(args, " "),
		UserID:    interpretUser,
		Confirmed: interpretConfirm,
		DryRun:    !interpretSave,
	}
	if interpretUnits != "" {
		req.Preferences = map[string]string{models.PreferenceUnits: interpretUnits}
	}
	if interpretHour >= 0 && interpretHour <= 23 {
		hour := interpretHour
		req.UserTime = &models.UserTime{LocalHour: &hour}
	}

	resp := svc.Interpret(context.Background(), req)
	return printJSON(cmd, handler.FromResponse(resp))
}
