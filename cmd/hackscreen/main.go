package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"hackasm/pkg/cpu"
	"hackasm/pkg/utils"
)

type Game struct {
	vm            *cpu.CPU
	screenImg     *ebiten.Image // reused 512x256 canvas
	stepsPerFrame int
	lastChar      rune
	showStatus    bool
}

func (g *Game) Update() error {
	pressed := inpututil.AppendPressedKeys(nil)
	if chars := ebiten.AppendInputChars(nil); len(chars) > 0 {
		g.lastChar = chars[len(chars)-1]
	}
	if len(pressed) == 0 {
		g.lastChar = 0
	}
	g.vm.SetKey(hackKey(pressed, g.lastChar))
	g.runFrame()
	return nil
}

func (g *Game) runFrame() {
	for i := 0; i < g.stepsPerFrame && !g.vm.Halted; i++ {
		g.vm.Step()
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.FramebufferRGBA())
	screen.DrawImage(g.screenImg, &ebiten.DrawImageOptions{})

	if g.showStatus {
		status := fmt.Sprintf("PC=%d A=%d D=%d steps=%d", g.vm.PC, g.vm.A, g.vm.D, g.vm.Steps)
		if g.vm.Halted {
			status += " halted"
		}
		ebitenutil.DebugPrintAt(screen, status, 4, cpu.ScreenHeight-16)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight
}

func newGame(program []uint16, stepsPerFrame int) (*Game, error) {
	vm := cpu.NewCPU()
	if err := vm.Load(program); err != nil {
		return nil, err
	}
	return &Game{vm: vm, stepsPerFrame: stepsPerFrame}, nil
}

func newRootCmd() *cobra.Command {
	var (
		stepsPerFrame int
		scale         int
		status        bool
	)
	cmd := &cobra.Command{
		Use:          "hackscreen program.asm|program.hack",
		Short:        "Run a Hack program in a window showing its screen",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fullPath, _, err := utils.GetPathInfo(args[0])
			if err != nil {
				return err
			}
			program, err := utils.LoadProgram(fullPath)
			if err != nil {
				return err
			}
			glog.V(1).Infof("loaded %d words from %s", len(program), fullPath)

			game, err := newGame(program, stepsPerFrame)
			if err != nil {
				return err
			}
			game.showStatus = status

			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetWindowSize(cpu.ScreenWidth*scale, cpu.ScreenHeight*scale)
			ebiten.SetWindowTitle("Hack - " + args[0])
			return ebiten.RunGame(game)
		},
	}
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 20000, "instructions executed per frame")
	cmd.Flags().IntVar(&scale, "scale", 2, "initial window scale")
	cmd.Flags().BoolVar(&status, "status", false, "overlay registers and step count")
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	return cmd
}

func main() {
	_ = flag.Set("logtostderr", "true")
	err := newRootCmd().Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
