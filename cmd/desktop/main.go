package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"golang.org/x/image/font/basicfont"

	"gasladder/pkg/asm"
	"gasladder/pkg/config"
	"gasladder/pkg/ladder"
	"gasladder/pkg/utils"
)

const (
	screenWidth  = 640
	screenHeight = 480
	lineHeight   = 14
	listingTop   = 2 * lineHeight
	stepLimit    = 1 << 16
	viewerFound  = "FOUND({{.Value}})"
)

var (
	highlightColor = color.RGBA{0x30, 0x50, 0x90, 0xff}
	actionColor    = color.RGBA{0x90, 0xe0, 0x90, 0xff}
	statusColor    = color.RGBA{0xff, 0xd0, 0x60, 0xff}
)

// viewer holds the listing and the machine stepping through it. It has no
// ebiten state so it can be driven from tests.
type viewer struct {
	opts    ladder.Options
	lines   []string
	prog    *asm.Program
	machine *asm.Machine

	input  string
	value  int
	loaded bool
	err    error
}

// newViewer generates the ladder for opts and assembles it with its exit
// label appended, so the final jumps land past the last node.
func newViewer(opts ladder.Options) (*viewer, error) {
	res, err := ladder.Generate(opts)
	if err != nil {
		return nil, err
	}
	source := res.Text + fmt.Sprintf("%d:\n", opts.LabelBase+res.Program.Exit.Target)
	prog, err := asm.Assemble(source)
	if err != nil {
		return nil, errors.Wrap(err, "assemble listing")
	}
	return &viewer{
		opts:    opts,
		lines:   strings.Split(strings.TrimRight(source, "\n"), "\n"),
		prog:    prog,
		machine: asm.NewMachine(prog),
	}, nil
}

// setValue loads v into the dispatch register and rewinds the machine.
func (v *viewer) setValue(n int) {
	v.value = n
	v.loaded = true
	v.err = nil
	v.machine.Set(v.opts.Register, n)
	v.machine.Reset()
}

func (v *viewer) step() {
	if !v.loaded || v.machine.Halted {
		return
	}
	v.err = v.machine.Step()
}

func (v *viewer) run() {
	if !v.loaded {
		return
	}
	v.err = v.machine.Run(stepLimit)
}

// typed applies typed characters to the input buffer.
func (v *viewer) typed(chars []rune) {
	for _, r := range chars {
		switch {
		case r >= '0' && r <= '9':
			v.input += string(r)
		case r == '-' && v.input == "":
			v.input = "-"
		}
	}
}

func (v *viewer) backspace() {
	if v.input != "" {
		v.input = v.input[:len(v.input)-1]
	}
}

// submit parses the input buffer as the value to dispatch.
func (v *viewer) submit() {
	n, err := strconv.Atoi(v.input)
	if err != nil {
		v.err = errors.Errorf("not a number: %q", v.input)
		return
	}
	v.input = ""
	v.setValue(n)
}

// currentLine is the zero-based listing line of the statement about to run,
// or -1 when nothing is loaded or the machine has halted.
func (v *viewer) currentLine() int {
	if !v.loaded {
		return -1
	}
	st, ok := v.machine.Current()
	if !ok {
		return -1
	}
	return st.Line - 1
}

func (v *viewer) status() string {
	switch {
	case v.err != nil:
		return "error: " + v.err.Error()
	case !v.loaded:
		return fmt.Sprintf("type a value in [%d..%d], Enter to load", v.opts.Domain.Min, v.opts.Domain.Max)
	case v.machine.Halted:
		acts := make([]string, len(v.machine.Actions))
		for i, a := range v.machine.Actions {
			acts[i] = a.Text
		}
		return fmt.Sprintf("%s=%d done in %d steps: %s", v.opts.Register, v.value, v.machine.Steps, strings.Join(acts, "; "))
	default:
		return fmt.Sprintf("%s=%d step %d  Z=%t N=%t  (Space step, R run)", v.opts.Register, v.value, v.machine.Steps, v.machine.Z, v.machine.N)
	}
}

// visibleRange returns the half-open range of lines to draw so that current
// stays on screen.
func visibleRange(current, total, rows int) (int, int) {
	if total <= rows {
		return 0, total
	}
	first := current - rows/2
	if first < 0 {
		first = 0
	}
	if first+rows > total {
		first = total - rows
	}
	return first, first + rows
}

type Game struct {
	v    *viewer
	face text.Face
}

func (g *Game) Update() error {
	g.v.typed(ebiten.AppendInputChars(nil))
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.v.backspace()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.v.submit()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.v.step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.v.run()
	}
	return nil
}

func (g *Game) drawText(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, g.face, op)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawText(screen, "value: "+g.v.input+"_", 4, 0, color.White)
	g.drawText(screen, g.v.status(), 4, lineHeight, statusColor)

	rows := (screenHeight - listingTop) / lineHeight
	current := g.v.currentLine()
	first, last := visibleRange(current, len(g.v.lines), rows)
	for i := first; i < last; i++ {
		y := listingTop + (i-first)*lineHeight
		clr := color.Color(color.White)
		if i == current {
			screen.SubImage(image.Rect(0, y, screenWidth, y+lineHeight)).(*ebiten.Image).Fill(highlightColor)
		}
		if g.v.machine.Halted && g.v.executed(i) {
			clr = actionColor
		}
		g.drawText(screen, strings.ReplaceAll(g.v.lines[i], "\t", "  "), 4, y, clr)
	}
}

// executed reports whether line i held an action that ran.
func (v *viewer) executed(i int) bool {
	for _, a := range v.machine.Actions {
		if v.prog.Statements[a.PC].Line-1 == i {
			return true
		}
	}
	return false
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// options reads ladder settings the same way the command line tool does,
// minus the output settings.
func options(fs afero.Fs, lookupEnv func(string) (string, bool), args []string) (ladder.Options, error) {
	flags := pflag.NewFlagSet("gasladder-desktop", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "YAML config file; the first ladder is shown")
	lo := flags.Int("min", ladder.DefaultDomain.Min, "lowest value of the domain")
	hi := flags.Int("max", ladder.DefaultDomain.Max, "highest value of the domain")
	register := flags.StringP("register", "r", ladder.DefaultRegister, "register compared against each pivot")
	found := flags.String("found", viewerFound, "found action template")
	if err := flags.Parse(args); err != nil {
		return ladder.Options{}, err
	}

	var file config.File
	if *configPath != "" {
		fullPath, _, err := utils.GetPathInfo(*configPath)
		if err != nil {
			return ladder.Options{}, err
		}
		if file, err = config.Load(fs, fullPath); err != nil {
			return ladder.Options{}, err
		}
	}
	// actions that name their value make the listing easier to follow
	if len(file.Ladders) == 0 {
		file.Ladders = []config.Ladder{{}}
	}
	for i := range file.Ladders {
		if file.Ladders[i].Found == nil {
			file.Ladders[i].Found = found
		}
	}

	envGlobal, env, err := config.FromEnv(lookupEnv)
	if err != nil {
		return ladder.Options{}, err
	}

	var overrides config.Ladder
	if flags.Changed("min") {
		overrides.Min = lo
	}
	if flags.Changed("max") {
		overrides.Max = hi
	}
	if flags.Changed("found") {
		overrides.Found = found
	}
	if flags.Changed("register") {
		overrides.Register = register
	}
	cfg := config.Consolidate(file, envGlobal, env, config.Global{}, overrides)
	if err := cfg.Validate(); err != nil {
		return ladder.Options{}, err
	}
	return cfg.Ladders[0].Options(nil), nil
}

func main() {
	opts, err := options(afero.NewOsFs(), os.LookupEnv, os.Args[1:])
	if err != nil {
		log.Fatalf("Bad options: %v", err)
	}
	v, err := newViewer(opts)
	if err != nil {
		log.Fatalf("Failed to build ladder: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("gasladder")

	game := &Game{v: v, face: text.NewGoXFace(basicfont.Face7x13)}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
