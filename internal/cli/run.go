package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/labelsmith/labelsmith/pkg/bridge"
	layoutio "github.com/labelsmith/labelsmith/pkg/io"
	"github.com/labelsmith/labelsmith/pkg/pipeline"
)

// runOpts collects the run command flags.
type runOpts struct {
	// layout is the starting layout file. Empty starts from an empty
	// layout.
	layout string

	// output receives the repaired layout JSON. Empty writes to stdout.
	output string

	// media overrides the media profile id from the layout file.
	media string

	// pick opens the interactive media selector before the batch runs.
	pick bool

	// rebuild forces from-scratch rebuild semantics for the batch.
	rebuild bool

	// preview additionally writes a PNG preview to this path.
	preview string

	engine engineOpts
}

// runCommand creates the run command for applying action batches.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [actions.json]",
		Short: "Apply a JSON action batch to a label layout",
		Long: `Apply a JSON action batch to a label layout.

The batch file holds either a JSON array of actions or an object with an
"actions" array, an optional "forceRebuild" flag, and an optional
"media" id. The starting layout loads from --layout when given and is
empty otherwise. The repaired layout is written as JSON to --output, or
to stdout when no output file is set.

Actions that cannot be applied are reported and skipped; the rest of the
batch still runs. Text measurements are cached locally for faster
subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runActions(cmd.Context(), args[0], opts)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", "", "starting layout file (default: empty layout)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.media, "media", "m", "", "media profile id (overrides the layout file)")
	cmd.Flags().BoolVar(&opts.pick, "pick-media", false, "choose the media profile interactively")

	// Batch flags
	cmd.Flags().BoolVar(&opts.rebuild, "rebuild", false, "treat the batch as a from-scratch rebuild")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "also write a PNG preview to this file")
	engineFlags(cmd, &opts.engine)

	return cmd
}

// runActions loads the batch and layout, runs the engine, and writes the
// repaired layout.
func (c *CLI) runActions(ctx context.Context, input string, opts runOpts) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read actions %s: %w", input, err)
	}
	batch, err := bridge.ParseBatch(data)
	if err != nil {
		return fmt.Errorf("parse actions %s: %w", input, err)
	}
	if opts.rebuild {
		force := true
		batch.ForceRebuild = &force
	}

	st := pipeline.State{}
	if opts.layout != "" {
		l, err := layoutio.ImportJSON(opts.layout)
		if err != nil {
			return fmt.Errorf("load layout %s: %w", opts.layout, err)
		}
		st.Media = l.Media
		st.Items = l.Items
	}
	if opts.media != "" {
		st.Media = opts.media
	}

	registry, err := c.newRegistry(opts.engine.mediaFile)
	if err != nil {
		return fmt.Errorf("load media profiles: %w", err)
	}
	if opts.pick {
		profile, err := pickMedia(registry.List())
		if err != nil {
			return err
		}
		if profile == nil {
			printDetail("No selection made")
			return nil
		}
		st.Media = profile.ID
	}

	runner, err := c.newRunner(opts.engine, registry)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Applying %d actions...", len(batch.Actions)))
	spinner.Start()

	st, res, err := runner.Apply(ctx, st, batch)
	if err != nil {
		spinner.StopWithError("Batch failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	toStdout := opts.output == ""
	if toStdout {
		// Layout JSON owns stdout; keep diagnostics on the log stream.
		for _, msg := range res.Warnings {
			logger.Warn(msg)
		}
		for _, msg := range res.Errors {
			logger.Error(msg)
		}
	} else {
		for _, msg := range res.Warnings {
			printWarning("%s", msg)
		}
		for _, msg := range res.Errors {
			printError("%s", msg)
		}
	}

	out := &layoutio.Layout{Media: st.Media, Items: st.Items}
	if err := writeLayout(out, opts.output); err != nil {
		return err
	}

	if opts.preview != "" {
		png, _, err := runner.Preview(ctx, st, pipeline.PreviewOptions{Format: pipeline.FormatPNG})
		if err != nil {
			return fmt.Errorf("render preview: %w", err)
		}
		if err := os.WriteFile(opts.preview, png, 0o644); err != nil {
			return fmt.Errorf("write preview %s: %w", opts.preview, err)
		}
	}

	applied := len(batch.Actions) - len(res.Errors)
	if applied < 0 {
		applied = 0
	}

	if toStdout {
		prog.done(fmt.Sprintf("Applied %d of %d actions, %d items", applied, len(batch.Actions), len(st.Items)))
	} else {
		printSuccess("Applied %d of %d actions", applied, len(batch.Actions))
		printFile(opts.output)
		if opts.preview != "" {
			printFile(opts.preview)
		}
		printStats(len(st.Items), len(res.Warnings), false)
		printNewline()
		printNextStep("Preview", "labelsmith preview "+opts.output)
	}

	if len(res.Errors) > 0 {
		return fmt.Errorf("%d of %d actions failed", len(res.Errors), len(batch.Actions))
	}
	return nil
}

// writeLayout writes l as JSON to path, or to stdout when path is empty.
func writeLayout(l *layoutio.Layout, path string) error {
	w, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if err := layoutio.WriteJSON(l, w); err != nil {
		w.Close()
		return fmt.Errorf("write layout: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
