// Command ddg runs the discrete differential geometry tools on meshes and
// point sets from the command line.
//
// Usage:
//
//	ddg [-config file.toml] [-v] <command> [flags]
//
// Commands:
//
//	curvature  estimate per-vertex curvature
//	smooth     relax a mesh towards a minimal surface
//	param      parameterize a disk-like mesh onto a circle or square
//	cvt        compute a centroidal Voronoi tessellation and plot it
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/soypat/ddg"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ddg:", err)
		os.Exit(1)
	}
}

var commands = map[string]func(cfg config, args []string) error{
	"curvature": runCurvature,
	"smooth":    runSmooth,
	"param":     runParam,
	"cvt":       runCVT,
}

var errUsage = errors.New("usage: ddg [-config file.toml] [-v] <curvature|smooth|param|cvt> [flags]")

func run(args []string, logOut io.Writer) error {
	fs := flag.NewFlagSet("ddg", flag.ContinueOnError)
	fs.SetOutput(logOut)
	var (
		cfgPath = fs.String("config", "", "TOML configuration file")
		verbose = fs.Bool("v", false, "log solver details")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	ddg.SetLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))
	defer ddg.SetLogger(nil)

	if fs.NArg() == 0 {
		return errUsage
	}
	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		return fmt.Errorf("unknown command %q\n%w", fs.Arg(0), errUsage)
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	return cmd(cfg, fs.Args()[1:])
}
