// copperline - layout assistance for PCB editors with an automation socket.
//
// Two commands: "stitch" draws markers where signal vias sit too far from
// ground stitching vias, "neckdown" cuts tracks where they cross footprint
// courtyards so their width can be necked down through dense areas.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/config"
	"github.com/copperforge/copperline/internal/hostbridge"
	"github.com/copperforge/copperline/internal/neckdown"
	"github.com/copperforge/copperline/internal/report"
	"github.com/copperforge/copperline/internal/stitch"
	"github.com/copperforge/copperline/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "stitch":
		handleStitch(args)
	case "neckdown":
		handleNeckdown(args)
	case "version":
		fmt.Printf("copperline version %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`copperline - PCB layout assistance over the editor's automation socket

Usage: copperline <command> [options]

Commands:
  stitch     Mark signal vias that sit too far from a ground stitching via
  neckdown   Cut tracks where they cross footprint courtyard boundaries
  version    Show copperline version
  help       Show this help message

Common Flags:
  --socket <path>      Editor automation socket
                       (default: /tmp/pcb-automation.sock)
  --config <file>      JSON configuration file
  --sides <sides>      front, back, or both (default: both)
  --netclass <list>    Comma-separated net classes to process (default: all)
  --selection          Operate only on the items selected in the editor
  --dry-run            Compute and report without modifying the board

Stitch Flags:
  --threshold <mm>     Maximum signal-to-ground via distance (default: 2.0)
  --ground-class <l>   Comma-separated ground net classes (default: GND)
  --report <file>      Also write an interactive HTML chart
  --plot <file>        Also write a PNG snapshot

Neckdown Flags:
  --offset <mm>        Cut distance outside the courtyard edge (default: 0.5)

Examples:
  # Mark stitching gaps wider than 2.5 mm on the back copper layer
  copperline stitch --threshold 2.5 --sides back

  # See what the cutter would do to the selected tracks
  copperline neckdown --selection --dry-run

  # Cut signal-class tracks at every courtyard, with an explicit socket
  copperline neckdown --netclass signal --socket /run/user/1000/pcb.sock`)
}

// commonFlags are shared between the stitch and neckdown subcommands.
type commonFlags struct {
	socket    *string
	configFn  *string
	side      *string
	netclass  *string
	selection *bool
	dryRun    *bool
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		socket:    fs.String("socket", "", "Editor automation socket path"),
		configFn:  fs.String("config", "", "JSON configuration file"),
		side:      fs.String("sides", "both", "Board sides: front, back, or both"),
		netclass:  fs.String("netclass", "", "Comma-separated net classes to process"),
		selection: fs.Bool("selection", false, "Operate only on the editor selection"),
		dryRun:    fs.Bool("dry-run", false, "Compute without modifying the board"),
	}
}

// resolve loads the config file (if any) and builds the extraction filter.
func (cf commonFlags) resolve() (*config.Config, board.Filter, error) {
	cfg := config.Empty()
	if *cf.configFn != "" {
		loaded, err := config.Load(*cf.configFn)
		if err != nil {
			return nil, board.Filter{}, err
		}
		cfg = loaded
	}

	side, err := board.ParseSide(*cf.side)
	if err != nil {
		return nil, board.Filter{}, err
	}

	return cfg, board.Filter{
		Side:          side,
		NetClasses:    splitList(*cf.netclass),
		SelectionOnly: *cf.selection,
	}, nil
}

func (cf commonFlags) connect(cfg *config.Config) (*hostbridge.Client, error) {
	socket := *cf.socket
	if socket == "" {
		socket = cfg.GetSocket()
	}
	return hostbridge.Dial(socket)
}

func handleStitch(args []string) {
	fs := flag.NewFlagSet("stitch", flag.ExitOnError)
	cf := registerCommon(fs)
	threshold := fs.Float64("threshold", 0, "Maximum signal-to-ground via distance in mm")
	groundClass := fs.String("ground-class", "", "Comma-separated ground net classes")
	reportFn := fs.String("report", "", "Write an interactive HTML chart to this file")
	plotFn := fs.String("plot", "", "Write a PNG snapshot to this file")
	fs.Parse(args)

	cfg, filter, err := cf.resolve()
	if err != nil {
		exitErr(err)
	}

	params := stitch.Params{
		Threshold:     *threshold,
		GroundClasses: splitList(*groundClass),
	}
	if params.Threshold == 0 {
		params.Threshold = cfg.GetThresholdMM()
	}
	if len(params.GroundClasses) == 0 {
		params.GroundClasses = cfg.GetGroundClasses()
	}

	doc, err := cf.connect(cfg)
	if err != nil {
		exitErr(err)
	}
	defer doc.Close()

	snap, err := board.Extract(doc, filter)
	if err != nil {
		exitErr(err)
	}
	log.Printf("[stitch] extracted %d vias", len(snap.Vias))

	signal, ground := stitch.Partition(snap.Vias, params.GroundClasses)
	violations := stitch.Analyze(snap.Vias, params)
	log.Printf("[stitch] %d signal vias checked against %d ground vias, %d violations",
		len(signal), len(ground), len(violations))

	if *cf.dryRun {
		log.Printf("[stitch] dry run, annotation layer left unchanged")
	} else if err := stitch.Render(doc, cfg.GetAnnotationLayer(), violations); err != nil {
		exitErr(err)
	}

	stats := report.Summarize(signal, ground, violations)
	log.Printf("[stitch] %s", stats)

	if *reportFn != "" {
		if err := report.WriteHTML(*reportFn, signal, ground, violations, params.Threshold); err != nil {
			exitErr(err)
		}
		log.Printf("[stitch] wrote report to %s", *reportFn)
	}
	if *plotFn != "" {
		if err := report.WritePNG(*plotFn, signal, ground, violations, params.Threshold); err != nil {
			exitErr(err)
		}
		log.Printf("[stitch] wrote plot to %s", *plotFn)
	}
}

func handleNeckdown(args []string) {
	fs := flag.NewFlagSet("neckdown", flag.ExitOnError)
	cf := registerCommon(fs)
	offset := fs.Float64("offset", -1, "Cut distance outside the courtyard edge in mm")
	fs.Parse(args)

	cfg, filter, err := cf.resolve()
	if err != nil {
		exitErr(err)
	}

	params := neckdown.Params{Offset: *offset}
	if params.Offset < 0 {
		params.Offset = cfg.GetOffsetMM()
	}

	doc, err := cf.connect(cfg)
	if err != nil {
		exitErr(err)
	}
	defer doc.Close()

	snap, err := board.Extract(doc, filter)
	if err != nil {
		exitErr(err)
	}
	log.Printf("[neckdown] extracted %d tracks and %d footprints", len(snap.Tracks), len(snap.Footprints))

	res := neckdown.Cut(snap.Tracks, snap.Footprints, params)
	if res.SkippedCourtyards > 0 {
		log.Printf("[neckdown] skipped %d malformed courtyards", res.SkippedCourtyards)
	}
	if !res.Changed() {
		log.Printf("[neckdown] nothing to cut")
		return
	}
	log.Printf("[neckdown] replacing %d tracks with %d pieces", len(res.Remove), len(res.Create))

	if *cf.dryRun {
		log.Printf("[neckdown] dry run, board left unchanged")
		return
	}

	commit, err := doc.Begin()
	if err != nil {
		exitErr(err)
	}
	if err := doc.RemoveTracks(res.Remove); err != nil {
		dropAndExit(commit, err)
	}
	if err := doc.CreateTracks(res.Create); err != nil {
		dropAndExit(commit, err)
	}
	if err := commit.Push(); err != nil {
		exitErr(err)
	}
	log.Printf("[neckdown] done")
}

func dropAndExit(commit board.Commit, err error) {
	if dropErr := commit.Drop(); dropErr != nil {
		log.Printf("dropping commit: %v", dropErr)
	}
	exitErr(err)
}

func exitErr(err error) {
	if errors.Is(err, hostbridge.ErrNoDocument) {
		fmt.Fprintln(os.Stderr, "Error: the editor has no board document open")
	} else if errors.Is(err, board.ErrEmptySelection) {
		fmt.Fprintln(os.Stderr, "Error: --selection given but nothing is selected")
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
