package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
)

var baseDir string

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.cfrec|file.pcap ...\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

// parseView parses a WxH view size.
func parseView(v string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(v, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("view size %q: want WxH", v)
	}
	return w, h, nil
}

func main() {
	os.Exit(run())
}

// run is the body of main; deferred cleanup runs before the exit code is
// returned.
func run() (code int) {
	settingsPath := flag.String("settings", "settings.json", "settings file")
	debugFlag := flag.Bool("debug", false, "verbose/debug logging")
	view := flag.String("view", "", "view size WxH (default from settings)")
	fps := flag.Int("fps", -1, "replay rate in messages per second, 0 for unpaced (default from settings)")
	dump := flag.Bool("dump", false, "print the final view of each file")
	jobs := flag.Int("jobs", 0, "files replayed at once (default from settings)")
	port := flag.Int("port", 0, "server TCP port in captures (default from settings)")
	save := flag.String("save", "", "write the messages of the single input to this .cfrec file")
	report := flag.String("report", "", "write the replay reports as JSON to this file")
	writeSettings := flag.Bool("write-settings", false, "write the effective settings back to the settings file")
	flag.Usage = usage
	flag.Parse()

	baseDir = os.Getenv("PWD")
	if baseDir == "" {
		var err error
		if baseDir, err = os.Getwd(); err != nil {
			log.Fatalf("get working directory: %v", err)
		}
	}

	path := *settingsPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	s, err := loadSettings(path)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}
	if *view != "" {
		if s.ViewWidth, s.ViewHeight, err = parseView(*view); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *fps >= 0 {
		s.ReplayFPS = *fps
	}
	if *jobs > 0 {
		s.Jobs = *jobs
	}
	if *port > 0 {
		s.ServerPort = *port
	}
	s.Debug = s.Debug || *debugFlag
	gs = s

	setupLogging(gs.Debug)
	defer func() {
		if r := recover(); r != nil {
			logError("panic: %v\n%s", r, debug.Stack())
			code = 1
		}
	}()
	if *writeSettings {
		saveSettings(path, gs)
	}

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		return 2
	}

	if *save != "" {
		if len(files) != 1 {
			logError("-save needs exactly one input")
			return 2
		}
		frames, _, err := loadFrames(files[0], gs)
		if err != nil {
			logError("load %s: %v", files[0], err)
			return 1
		}
		if err := saveRecording(*save, frames); err != nil {
			logError("save %s: %v", *save, err)
			return 1
		}
		logDebug("wrote %d frames to %s", len(frames), *save)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reports := replayFiles(ctx, files, gs, *dump)
	failed := false
	colorize := gs.Color && stdoutIsTerminal()
	for _, r := range reports {
		r.write(os.Stdout)
		if r.Err != nil {
			failed = true
		}
		if *dump && r.session != nil {
			if err := dumpView(os.Stdout, r.session.Store, colorize); err != nil {
				logError("dump %s: %v", r.Path, err)
			}
			r.session.Close()
		}
	}
	if *report != "" {
		if err := saveReports(*report, reports); err != nil {
			logError("save report: %v", err)
		}
	}
	if failed {
		return 1
	}
	return 0
}
