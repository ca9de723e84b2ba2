package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/color"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

var strategyHelp = map[string]string{
	split.NameSquarified:        "rows of near-square cells, best aspect ratios",
	split.NameSortedWeightOrder: "balanced binary cuts over weight-sorted items",
	split.NameWeightOrder:       "balanced binary cuts, input order kept",
	split.NameSlice:             "one strip per item along the longer side",
	split.NameEqualCount:        "binary cuts halving the item count",
}

// strategiesCommand lists the layout strategies and other named choices.
func (c *CLI) strategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List layout strategies, color providers and input formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Strategies"))
			for _, name := range split.Names() {
				label := name
				if name == c.Config.Strategy {
					label += " *"
				}
				printKeyValue(label, strategyHelp[name])
			}
			printNewline()
			fmt.Println(StyleTitle.Render("Colors"))
			for _, name := range color.Names() {
				printDetail("%s", name)
			}
			printNewline()
			fmt.Println(StyleTitle.Render("Formats"))
			for _, name := range source.Formats() {
				printDetail("%s", name)
			}
			return nil
		},
	}
}
