package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	layoutio "github.com/labelsmith/labelsmith/pkg/io"
	"github.com/labelsmith/labelsmith/pkg/pipeline"
)

// previewOpts collects the preview command flags.
type previewOpts struct {
	output string
	format string
	scale  float64
	media  string
	engine engineOpts
}

// previewCommand creates the preview command for rendering layouts.
func (c *CLI) previewCommand() *cobra.Command {
	var opts previewOpts

	cmd := &cobra.Command{
		Use:   "preview [layout.json]",
		Short: "Render a print preview from a layout file",
		Long: `Render a print preview from a layout file.

The png format rasterizes the layout as it would print. The svg and dot
formats draw the measured item bounds instead, which helps when
debugging overlap and ordering problems (svg needs the graphviz dot
binary on PATH).

Rendered artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), args[0], opts)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatPNG, "output format: png (default), svg, dot")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "pixels per dot for png output")
	cmd.Flags().StringVarP(&opts.media, "media", "m", "", "media profile id (overrides the layout file)")
	engineFlags(cmd, &opts.engine)

	return cmd
}

// runPreview loads the layout, renders it, and writes the artifact.
func (c *CLI) runPreview(ctx context.Context, input string, opts previewOpts) error {
	l, err := layoutio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	st := pipeline.State{Media: l.Media, Items: l.Items}
	if opts.media != "" {
		st.Media = opts.media
	}

	registry, err := c.newRegistry(opts.engine.mediaFile)
	if err != nil {
		return fmt.Errorf("load media profiles: %w", err)
	}
	runner, err := c.newRunner(opts.engine, registry)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s preview...", opts.format))
	spinner.Start()

	data, cacheHit, err := runner.Preview(ctx, st, pipeline.PreviewOptions{Format: opts.format, Scale: opts.scale})
	if err != nil {
		spinner.StopWithError("Preview failed")
		return fmt.Errorf("render preview: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := opts.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + opts.format
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Preview complete")
	printFile(outputPath)
	printStats(len(st.Items), 0, cacheHit)

	return nil
}
