package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// hitCommand creates the hit command, which reports what lies under a point.
func (c *CLI) hitCommand() *cobra.Command {
	var (
		flags layoutFlags
		x, y  float64
	)

	cmd := &cobra.Command{
		Use:   "hit <input>",
		Short: "Report the node under a point of the layout",
		Long: `Lay out a tree and report the deepest node under (--x, --y), together
with the chain of enclosing groups. Coordinates are in viewport units with
the origin at the top-left corner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd.Flags(), &flags)
			opts.Input = args[0]
			return c.runHit(cmd.Context(), opts, x, y)
		},
	}

	flags.register(cmd.Flags(), true)
	cmd.Flags().Float64Var(&x, "x", 0, "point x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "point y coordinate")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

func (c *CLI) runHit(ctx context.Context, opts pipeline.Options, x, y float64) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	root, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	m, err := runner.BuildMap(ctx, root, opts)
	if err != nil {
		return err
	}

	n, ok := m.Hit(x, y)
	observability.Layout().OnHit(ctx, x, y, ok)
	if !ok {
		printWarning("Nothing at (%s, %s)", formatFloat(x), formatFloat(y))
		return nil
	}

	p := opts.Provider()
	printSuccess("%s", StyleHighlight.Render(p.Label(n)))
	printKeyValue("path", source.PathOf(n, p))
	printKeyValue("weight", formatFloat(n.Weight()))
	if !n.IsLeaf() {
		printKeyValue("kind", "group")
	} else {
		printKeyValue("value", p.ValueLabel(n.Value()))
	}
	printKeyValue("bounds", formatRect(n.Bounds()))

	chain := treemap.NewHitTester(m.Zoom()).Ancestors(x, y)
	if len(chain) > 1 {
		printNewline()
		for _, a := range chain[:len(chain)-1] {
			printDetail("in %s  %s", p.Label(a), formatRect(a.Bounds()))
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRect(r treemap.Rect) string {
	return fmt.Sprintf("x=%.1f y=%.1f w=%.1f h=%.1f", r.X, r.Y, r.W, r.H)
}
