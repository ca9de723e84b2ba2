package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/export"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing treemap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		outDir  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout <input>...",
		Short: "Compute treemap layouts and write them as JSON",
		Long: `Compute treemap layouts for one or more tree files.

Inputs are TM3 (.tm3), XML (.xml) or JSON (.json) documents. Arguments may be
glob patterns, including ** for recursive matches:

  treemap layout 'data/**/*.tm3'

Each input produces <input>.layout.json next to it (or in --out-dir) listing
every displayed rectangle. Results are cached by input content and options.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			if output != "" && len(inputs) > 1 {
				return errs.New(errs.ErrCodeInvalidInput, "--output needs a single input, got %d", len(inputs))
			}
			opts := c.options(cmd.Flags(), &flags)
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), inputs, opts, output, outDir, noCache)
		},
	}

	flags.register(cmd.Flags(), true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single input only)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for layout files (default: next to each input)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached layout exists")

	return cmd
}

// runLayout lays out each input and writes its layout file.
func (c *CLI) runLayout(ctx context.Context, inputs []string, opts pipeline.Options, output, outDir string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts.Input = input

		spinner := newSpinnerWithContext(ctx, "Laying out "+input+"...")
		spinner.Start()
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			spinner.StopWithError("Layout failed: " + input)
			return err
		}
		spinner.Stop()

		path := layoutPath(input, output, outDir)
		if err := export.WriteFile(path, res.Layout); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}

		printSuccess("Layout complete")
		printFile(path)
		printStats(len(res.Layout.Rects), len(res.Layout.Leaves()), res.CacheInfo.LayoutHit)
	}
	if len(inputs) > 1 {
		prog.done(fmt.Sprintf("Laid out %d inputs", len(inputs)))
	}

	printNewline()
	printNextStep("Explore", appName+" view "+inputs[0])
	return nil
}

// expandInputs resolves glob arguments. Plain paths are kept as given so a
// missing file reports FILE_NOT_FOUND rather than "no match".
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !hasGlobMeta(arg) {
			out = append(out, arg)
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "bad glob pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "expand %s", arg)
		}
		if len(matches) == 0 {
			return nil, errs.New(errs.ErrCodeFileNotFound, "no files match %q", arg)
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// layoutPath picks the output file for input.
func layoutPath(input, output, outDir string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input)) + layoutSuffix
	if outDir != "" {
		return filepath.Join(outDir, filepath.Base(base))
	}
	return base
}
