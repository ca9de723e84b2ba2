package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/color"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/treemap"
	"github.com/matzehuels/treemap/pkg/treemap/split"
)

const (
	// viewBorder is the default gutter in terminal cells.
	viewBorder = 1.0

	// statusLines are reserved below the map.
	statusLines = 2
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "view <input>",
		Short: "Explore a treemap interactively in the terminal",
		Long: `Open an interactive treemap in the terminal.

  mouse move, arrows, hjkl   highlight the leaf under the cursor
  click, enter               zoom into the group under the cursor
  right click, esc, bksp     zoom back out
  s                          cycle layout strategy
  p                          toggle keep-proportion zoom
  q                          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd.Flags(), &flags)
			opts.Input = args[0]
			if !cmd.Flags().Changed("border") {
				opts.Border = pipeline.Float(viewBorder)
			}
			return c.runView(cmd.Context(), opts)
		},
	}

	flags.register(cmd.Flags(), false)
	return cmd
}

func (c *CLI) runView(ctx context.Context, opts pipeline.Options) error {
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
	p := opts.Provider()
	colors, err := color.ByName(opts.Color, p)
	if err != nil {
		return err
	}
	color.Fit(colors, root)

	model := newViewModel(ctx, m, p, colors, opts.Strategy)
	prog := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err = prog.Run()
	return err
}

// =============================================================================
// viewModel - bubbletea model around a treemap.Map
// =============================================================================

// viewModel maps terminal cells onto viewport units one to one. A cell is
// hit-tested at its center.
type viewModel struct {
	ctx      context.Context
	m        *treemap.Map
	provider treemap.Provider
	colors   treemap.ColorProvider
	strategy string

	width, height    int
	cursorX, cursorY int
	err              error
}

func newViewModel(ctx context.Context, m *treemap.Map, p treemap.Provider, colors treemap.ColorProvider, strategy string) *viewModel {
	return &viewModel{
		ctx:      ctx,
		m:        m,
		provider: p,
		colors:   colors,
		strategy: strategy,
	}
}

func (v *viewModel) Init() tea.Cmd { return nil }

func (v *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		v.mouse(msg)
	case tea.KeyMsg:
		return v, v.key(msg)
	}
	return v, nil
}

func (v *viewModel) resize(w, h int) {
	v.width, v.height = w, h
	v.m.SetViewport(treemap.Rect{W: float64(w), H: float64(max(0, h-statusLines))})
	v.cursorX = min(v.cursorX, max(0, w-1))
	v.cursorY = min(v.cursorY, max(0, h-statusLines-1))
	v.relayout()
}

func (v *viewModel) mouse(msg tea.MouseMsg) {
	v.cursorX, v.cursorY = msg.X, msg.Y
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		v.zoomIn()
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		v.zoomOut()
	default:
		v.hover()
	}
}

func (v *viewModel) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		v.moveCursor(0, -1)
	case "down", "j":
		v.moveCursor(0, 1)
	case "left", "h":
		v.moveCursor(-1, 0)
	case "right", "l":
		v.moveCursor(1, 0)
	case "enter", " ":
		v.zoomIn()
	case "esc", "backspace":
		v.zoomOut()
	case "s":
		v.strategy = split.Next(v.strategy)
		s, err := split.ByName(v.strategy)
		if err != nil {
			v.err = err
			return nil
		}
		v.m.SetStrategy(s)
		v.relayout()
	case "p":
		v.m.SetKeepProportion(!v.m.Zoom().KeepProportion())
		v.relayout()
	}
	return nil
}

func (v *viewModel) moveCursor(dx, dy int) {
	v.cursorX = min(max(0, v.cursorX+dx), max(0, v.width-1))
	v.cursorY = min(max(0, v.cursorY+dy), max(0, v.height-statusLines-1))
	v.hover()
}

// cursorPoint is the center of the cursor cell.
func (v *viewModel) cursorPoint() (x, y float64) {
	return float64(v.cursorX) + 0.5, float64(v.cursorY) + 0.5
}

func (v *viewModel) hover() {
	x, y := v.cursorPoint()
	if leaf, changed := v.m.Hover(x, y); changed {
		observability.Layout().OnHit(v.ctx, x, y, leaf != nil)
	}
}

// zoomIn focuses the displayed node's child under the cursor.
func (v *viewModel) zoomIn() {
	x, y := v.cursorPoint()
	child, ok := treemap.NewHitTester(v.m.Zoom()).Child(x, y)
	if !ok {
		return
	}
	if err := v.m.ZoomTo(child); err != nil {
		v.err = err
		return
	}
	observability.Layout().OnZoom(v.ctx, source.PathOf(child, v.provider), true)
	v.relayout()
}

func (v *viewModel) zoomOut() {
	if !v.m.Zoom().Zoomed() {
		return
	}
	v.m.Unzoom()
	observability.Layout().OnZoom(v.ctx, "", false)
	v.relayout()
}

func (v *viewModel) relayout() {
	hooks := observability.Layout()
	hooks.OnLayoutStart(v.ctx, v.strategy, v.m.Displayed().Len())
	start := time.Now()
	err := v.m.Layout()
	hooks.OnLayoutComplete(v.ctx, v.strategy, time.Since(start), err)
	v.err = err
	if err == nil {
		v.hover()
	}
}

// =============================================================================
// Rendering
// =============================================================================

var (
	styleGutter    = lipgloss.NewStyle().Background(lipgloss.Color("235"))
	styleStatusBar = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("238"))
	styleHelp      = lipgloss.NewStyle().Foreground(colorGray)
)

func (v *viewModel) View() string {
	if v.width == 0 || v.height <= statusLines {
		return "loading..."
	}
	rows := v.height - statusLines
	var b strings.Builder
	labeled := make(map[*treemap.Node]bool)
	for y := 0; y < rows; y++ {
		line := v.cellRow(y)
		for x := 0; x < len(line); {
			end := x
			for end < len(line) && line[end] == line[x] {
				end++
			}
			b.WriteString(v.renderRun(line[x], end-x, labeled))
			x = end
		}
		b.WriteByte('\n')
	}
	b.WriteString(v.statusBar())
	b.WriteByte('\n')
	b.WriteString(v.helpLine())
	return b.String()
}

// cellRow resolves every cell of row y to the leaf under its center.
func (v *viewModel) cellRow(y int) []*treemap.Node {
	line := make([]*treemap.Node, v.width)
	for x := range line {
		if n, ok := v.m.Hit(float64(x)+0.5, float64(y)+0.5); ok && n.IsLeaf() {
			line[x] = n
		}
	}
	return line
}

// renderRun draws n cells of leaf (nil for gutter). The first run of each
// leaf carries its label.
func (v *viewModel) renderRun(leaf *treemap.Node, n int, labeled map[*treemap.Node]bool) string {
	text := strings.Repeat(" ", n)
	if leaf == nil {
		return styleGutter.Render(text)
	}
	if !labeled[leaf] {
		labeled[leaf] = true
		text = fitLabel(v.provider.Label(leaf), n)
	}

	fill := v.colors.Color(leaf.Value())
	style := lipgloss.NewStyle()
	if leaf == v.m.ActiveLeaf() {
		fill = fill.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.35).Clamped()
		style = style.Bold(true)
	}
	return style.
		Background(lipgloss.Color(fill.Hex())).
		Foreground(lipgloss.Color(contrast(fill))).
		Render(text)
}

// fitLabel pads or truncates s to exactly n cells.
func fitLabel(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		if n > 1 {
			return string(r[:n-1]) + "…"
		}
		return string(r[:n])
	}
	return s + strings.Repeat(" ", n-len(r))
}

// contrast picks black or white text for a fill.
func contrast(c colorful.Color) string {
	if l, _, _ := c.Lab(); l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}

func (v *viewModel) statusBar() string {
	crumbs := []string{v.provider.Label(v.m.Root())}
	for _, n := range v.m.Displayed().Path()[1:] {
		crumbs = append(crumbs, v.provider.Label(n))
	}
	left := " " + strings.Join(crumbs, " / ")
	if leaf := v.m.ActiveLeaf(); leaf != nil {
		left += "  " + iconArrow + " " + strings.ReplaceAll(v.provider.Tooltip(leaf), "\n", " · ")
	}
	right := v.strategy
	if v.m.Zoom().KeepProportion() {
		right += " · keep-proportion"
	}
	right += " "
	left = fitLabel(left, max(0, v.width-lipgloss.Width(right)))
	return styleStatusBar.Render(left + right)
}

func (v *viewModel) helpLine() string {
	if v.err != nil {
		return styleIconError.Render(fmt.Sprintf(" %s %v", iconError, v.err))
	}
	return styleHelp.Render(" click/enter zoom · esc back · s strategy · p proportion · q quit")
}
