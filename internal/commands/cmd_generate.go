package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sadopc/sitetrackr/internal/config"
	"github.com/sadopc/sitetrackr/internal/genai"
)

type GenerateCmd struct {
	flags  *Flags
	prompt string
	image  string
	out    string
	flash  bool
}

func NewGenerateCmd(flags *Flags) *GenerateCmd {
	return &GenerateCmd{flags: flags}
}

func (cmd *GenerateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "generate",
		Usage:     "Turn a prompt or a sketch into a single-file HTML app",
		UsageText: "sitetrackr generate [--prompt TEXT] [--image FILE] --out FILE [--flash]",
		Description: `Sends the prompt and optional image to the configured model and writes
the returned HTML document to --out. Open the file in a browser to try it.
The API key is read from the environment variable named by genai.api_key_env.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "what to build",
				Destination: &cmd.prompt,
			},
			&cli.StringFlag{
				Name:        "image",
				Aliases:     []string{"i"},
				Usage:       "image or PDF to bring to life",
				Destination: &cmd.image,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "HTML file to write",
				Required:    true,
				Destination: &cmd.out,
			},
			&cli.BoolFlag{
				Name:        "flash",
				Usage:       "use the faster model (genai.fast_model)",
				Destination: &cmd.flash,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *GenerateCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config.GenAI
	model := cfg.Model
	if cmd.flash {
		model = cfg.FastModel
	}
	client, err := newGenAIClient(cfg, model)
	if err != nil {
		return err
	}

	var att *genai.Attachment
	if cmd.image != "" {
		att, err = readAttachment(cmd.image)
		if err != nil {
			return err
		}
	}

	log.Info().Str("model", client.Model()).Bool("attachment", att != nil).Msg("generating app")

	html, err := client.BringToLife(ctx, cmd.prompt, att)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if err := writeHTML(cmd.out, html); err != nil {
		return err
	}
	if html == genai.FailedContent {
		log.Warn().Str("out", cmd.out).Msg("model returned no content")
	}

	_, _ = fmt.Fprintln(c.Root().Writer, cmd.out)
	return nil
}

func newGenAIClient(cfg config.GenAI, model string) (*genai.Client, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("no API key: set %s", cfg.APIKeyEnv)
	}
	return genai.New(genai.Options{
		Endpoint:    cfg.Endpoint,
		Model:       model,
		APIKey:      key,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		Logger:      log.Logger,
	})
}

// readAttachment loads path and sniffs its MIME type. Only images and PDFs
// are accepted.
func readAttachment(path string) (*genai.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("attachment is empty")
	}

	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") && mime != "application/pdf" {
		return nil, fmt.Errorf("unsupported attachment type %s (want an image or PDF)", mime)
	}
	return &genai.Attachment{Data: data, MIMEType: mime}, nil
}

func writeHTML(path, html string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
