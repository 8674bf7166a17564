package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
	"github.com/sadopc/sitetrackr/internal/tui"
)

type TuiCmd struct {
	flags     *Flags
	exportDir string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Open the site dashboard",
		UsageText: "sitetrackr tui [options]",
		Flags:     cmd.Flags(),
		Action:    cmd.run,
	})
	return app
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-dir",
			Usage:       "directory for exports started from the dashboard (defaults to home)",
			Sources:     cli.EnvVars("SITETRACKR_EXPORT_DIR"),
			Destination: &cmd.exportDir,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config
	s, err := cmd.flags.OpenStore()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(s, tui.Options{
		Currency: s.SettingOr(store.SettingCurrency, cfg.Currency),
		Defaults: items.Defaults{
			Category: s.SettingOr(store.SettingDefaultCategory, cfg.Defaults.Category),
			Name:     s.SettingOr(store.SettingDefaultItemName, cfg.Defaults.ItemName),
			Owner:    s.SettingOr(store.SettingDefaultOwner, cfg.Defaults.Owner),
		},
		ExportDir: cmd.exportDir,
	})
	if err != nil {
		return fmt.Errorf("load save file: %w", err)
	}

	log.Info().Str("db", cfg.DBPath()).Msg("starting dashboard")

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	final, runErr := p.Run()

	// Persist whatever the last autosave may not have reached.
	if last, ok := final.(tui.App); ok {
		if err := last.Flush(); err != nil {
			log.Error().Err(err).Msg("final save failed")
			if runErr == nil {
				return fmt.Errorf("final save: %w", err)
			}
		}
	}

	if runErr != nil {
		return fmt.Errorf("run dashboard: %w", runErr)
	}
	return nil
}
