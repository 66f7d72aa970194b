//go:build windows

// Package main implements the remote session bridge: a headless process
// that pairs one RDP client connection to a pair of named-pipe IPC
// channels (inputs, updates) for a web-facing gateway to drive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rcarmo/remotesession-bridge/internal/bridge"
	"github.com/rcarmo/remotesession-bridge/internal/capture"
	"github.com/rcarmo/remotesession-bridge/internal/config"
	"github.com/rcarmo/remotesession-bridge/internal/ipc"
	"github.com/rcarmo/remotesession-bridge/internal/logging"
	"github.com/rcarmo/remotesession-bridge/internal/printer"
	"github.com/rcarmo/remotesession-bridge/internal/rdpfacade"
	"github.com/rcarmo/remotesession-bridge/internal/session"
)

var (
	appName    = "Remote Session Bridge"
	appVersion = "dev" // injected at build time via -ldflags
)

func main() {
	args, action := parseFlags()
	if action != "" {
		return
	}
	if err := run(args); err != nil {
		logging.Default().Error("%v", err)
		os.Exit(1)
	}
}

type parsedArgs struct {
	sessionID    uint32
	debugLog     bool
	debugCapture bool
	logLevel     string
}

//go:noinline
func parseFlags() (parsedArgs, string) {
	return parseFlagsWithArgs(os.Args[1:])
}

func parseFlagsWithArgs(args []string) (parsedArgs, string) {
	fs := flag.NewFlagSet("bridge", flag.ContinueOnError)
	sessionIDFlag := fs.Uint("session-id", 0, "MyrtilleSessionId (required)")
	debugLogFlag := fs.Bool("debug-log", false, "redirect stdout/stderr to a per-process log file")
	debugCaptureFlag := fs.Bool("debug-capture", false, "save emitted frames to disk for troubleshooting")
	logLevelFlag := fs.String("log-level", "", "log level (debug, info, warn, error)")
	helpFlag := fs.Bool("help", false, "show help")
	versionFlag := fs.Bool("version", false, "show version")

	_ = fs.Parse(args)

	if *helpFlag {
		showHelp()
		return parsedArgs{}, "help"
	}
	if *versionFlag {
		showVersion()
		return parsedArgs{}, "version"
	}

	return parsedArgs{
		sessionID:    uint32(*sessionIDFlag),
		debugLog:     *debugLogFlag,
		debugCapture: *debugCaptureFlag,
		logLevel:     strings.TrimSpace(*logLevelFlag),
	}, ""
}

func run(args parsedArgs) error {
	opts := config.LoadOptions{
		SessionID:    args.sessionID,
		DebugLog:     args.debugLog,
		DebugCapture: args.debugCapture,
		LogLevel:     args.logLevel,
	}

	cfg, err := config.LoadWithOverrides(opts)
	if err != nil {
		err = fmt.Errorf("failed to load config: %w", err)
		logging.Default().Error("%v", err)
		return err
	}

	logging.Default().SetLevelFromString(cfg.Logging.Level)

	if cfg.Bridge.DebugLog {
		f, err := logging.Default().RedirectOutput(cfg.Bridge.ModuleParentDir, "remotesession-bridge")
		if err != nil {
			return fmt.Errorf("redirect logging: %w", err)
		}
		defer f.Close()
	}

	if cfg.Bridge.SessionID == 0 {
		err := fmt.Errorf("session-id is required (MyrtilleSessionId)")
		logging.Default().Error("%v", err)
		return err
	}

	logging.Default().Info("starting bridge for session %d", cfg.Bridge.SessionID)

	encoding := parseEncoding(cfg.Policy.DefaultEncoding)
	sess := session.New(cfg.Bridge.SessionID, encoding, cfg.Policy.DefaultQuality, cfg.Policy.DefaultQuantity)

	facade := &rdpfacade.Placeholder{}
	screen := capture.NoSurface{}
	cursor := capture.NoSurface{}

	registry := printer.NewRegistry(printer.WindowsSpooler{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inputsPath := ipc.PipePath(cfg.Bridge.PipeNameTemplate, cfg.Bridge.SessionID, "inputs")
	updatesPath := ipc.PipePath(cfg.Bridge.PipeNameTemplate, cfg.Bridge.SessionID, "updates")

	inputsChan, err := ipc.Listen(ctx, inputsPath)
	if err != nil {
		return fmt.Errorf("listen inputs channel: %w", err)
	}
	defer inputsChan.Close()

	updatesChan, err := ipc.Listen(ctx, updatesPath)
	if err != nil {
		return fmt.Errorf("listen updates channel: %w", err)
	}
	defer updatesChan.Close()

	b := bridge.New(sess, facade, screen, cursor, registry, inputsChan, updatesChan, cfg.Bridge.ReadChunkBytes)

	if cfg.Bridge.DebugCapture {
		b.EnableDebugCapture(cfg.Bridge.ModuleParentDir)
	}

	// A real client's bitmap/pointer-update callbacks would call
	// b.SendRegion(rect) and b.SendCursor() here; until one replaces the
	// placeholder there is nothing to drive those hooks.
	facade.OnBitmapUpdate = func() {}
	facade.OnPointerUpdate = func() { b.SendCursor() }

	b.Run()

	logging.Default().Info("bridge for session %d exiting", cfg.Bridge.SessionID)
	return nil
}

// parseEncoding maps the configured default encoding name to its wire
// value, per §3's ECD argument mapping (AUTO=0, PNG=1, JPEG=2, WEBP=3).
func parseEncoding(name string) session.Encoding {
	switch strings.ToUpper(name) {
	case "PNG":
		return session.EncodingPNG
	case "JPEG", "JPG":
		return session.EncodingJPEG
	case "WEBP":
		return session.EncodingWebP
	default:
		return session.EncodingAuto
	}
}

func showHelp() {
	fmt.Println(appName)
	fmt.Println("USAGE: remotesession-bridge -session-id N [options]")
	fmt.Println("OPTIONS:")
	fmt.Println("  -session-id     MyrtilleSessionId (required)")
	fmt.Println("  -debug-log      Redirect stdout/stderr to a per-process log file")
	fmt.Println("  -debug-capture  Save emitted frames to disk for troubleshooting")
	fmt.Println("  -log-level      Set log level (debug, info, warn, error)")
	fmt.Println("  -version        Show version information")
	fmt.Println("  -help           Show this help message")
	fmt.Println("ENVIRONMENT VARIABLES: MyrtilleSessionId, MyrtilleDebugLog, MyrtilleDebugCapture, MyrtilleLogLevel, MyrtilleDefaultEncoding, MyrtilleDefaultQuality, MyrtilleDefaultQuantity")
}

func showVersion() {
	fmt.Printf("%s %s\n", appName, appVersion)
}
