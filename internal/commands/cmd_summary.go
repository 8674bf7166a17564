package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/sadopc/sitetrackr/internal/export"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

type SummaryCmd struct {
	flags *Flags
	raw   bool
}

func NewSummaryCmd(flags *Flags) *SummaryCmd {
	return &SummaryCmd{flags: flags}
}

func (cmd *SummaryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "summary",
		Usage:       "Print a project summary",
		UsageText:   "sitetrackr summary [--raw]",
		Description: "Prints the budget totals, per-category progress and overdue items as Markdown, rendered for the terminal unless --raw is set or stdout is not a terminal.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print the Markdown source",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *SummaryCmd) run(_ context.Context, c *cli.Command) error {
	md, err := cmd.markdown(time.Now())
	if err != nil {
		return err
	}

	fd := int(os.Stdout.Fd())
	if cmd.raw || !term.IsTerminal(fd) {
		_, err = io.WriteString(c.Root().Writer, md)
		return err
	}

	width := 100
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = min(w, 120)
	}
	out, err := renderMarkdown(md, width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.Root().Writer, out)
	return err
}

func (cmd *SummaryCmd) markdown(now time.Time) (string, error) {
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
	currency := s.SettingOr(store.SettingCurrency, cmd.flags.Config.Currency)
	return export.Markdown(*info, list, currency, items.Day(now)), nil
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
