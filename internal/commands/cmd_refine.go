package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type RefineCmd struct {
	flags       *Flags
	in          string
	instruction string
	out         string
}

func NewRefineCmd(flags *Flags) *RefineCmd {
	return &RefineCmd{flags: flags}
}

func (cmd *RefineCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "refine",
		Usage:       "Apply an instruction to a generated HTML app",
		UsageText:   "sitetrackr refine --in FILE --instruction TEXT [--out FILE]",
		Description: "Sends the existing document and the instruction to the model and writes the full updated document. Without --out the input file is overwritten.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Usage:       "HTML file to refine",
				Required:    true,
				Destination: &cmd.in,
			},
			&cli.StringFlag{
				Name:        "instruction",
				Aliases:     []string{"m"},
				Usage:       "change to make",
				Required:    true,
				Destination: &cmd.instruction,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file (defaults to --in)",
				Destination: &cmd.out,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RefineCmd) run(ctx context.Context, c *cli.Command) error {
	if strings.TrimSpace(cmd.instruction) == "" {
		return fmt.Errorf("instruction is empty")
	}
	current, err := os.ReadFile(cmd.in)
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd.in, err)
	}

	cfg := cmd.flags.Config.GenAI
	client, err := newGenAIClient(cfg, cfg.Model)
	if err != nil {
		return err
	}

	log.Info().Str("model", client.Model()).Str("in", cmd.in).Msg("refining app")

	html, err := client.Refine(ctx, string(current), cmd.instruction)
	if err != nil {
		return fmt.Errorf("refine: %w", err)
	}

	out := cmd.out
	if out == "" {
		out = cmd.in
	}
	if err := writeHTML(out, html); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(c.Root().Writer, out)
	return nil
}
