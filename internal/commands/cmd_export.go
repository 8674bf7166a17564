package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sadopc/sitetrackr/internal/export"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

type ExportCmd struct {
	flags  *Flags
	format string
	out    string
}

func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "export",
		Usage:       "Export the schedule to CSV, JSON or Markdown",
		UsageText:   "sitetrackr export [--format csv|json|md] [--out PATH]",
		Description: "Writes the work items of the save file. JSON and Markdown include the project header.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format (csv, json, md)",
				Value:       "csv",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path (defaults to sitetrackr-export-<date>.<ext> in the current directory)",
				Destination: &cmd.out,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ExportCmd) run(_ context.Context, c *cli.Command) error {
	path, err := cmd.export(time.Now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(c.Root().Writer, path)
	return nil
}

// export writes the file and returns its path.
func (cmd *ExportCmd) export(now time.Time) (string, error) {
	ext, err := exportExt(cmd.format)
	if err != nil {
		return "", err
	}

	s, err := cmd.flags.OpenStore()
	if err != nil {
		return "", err
	}
	list, err := s.ListItems()
	if err != nil {
		return "", fmt.Errorf("load work items: %w", err)
	}
	info, err := s.GetProjectInfo()
	if err != nil {
		return "", fmt.Errorf("load project info: %w", err)
	}

	path := cmd.out
	if path == "" {
		path = "sitetrackr-export-" + now.Format(items.DateLayout) + ext
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	switch ext {
	case ".csv":
		err = export.ToCSV(list, path)
	case ".json":
		err = export.ToJSON(*info, list, path)
	default:
		currency := s.SettingOr(store.SettingCurrency, cmd.flags.Config.Currency)
		md := export.Markdown(*info, list, currency, items.Day(now))
		err = os.WriteFile(path, []byte(md), 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", cmd.format, err)
	}

	log.Info().Str("path", path).Int("items", len(list)).Str("format", cmd.format).Msg("exported")
	return path, nil
}

func exportExt(format string) (string, error) {
	switch format {
	case "csv":
		return ".csv", nil
	case "json":
		return ".json", nil
	case "md", "markdown":
		return ".md", nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or md)", format)
}
