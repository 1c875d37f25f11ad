// VoxCart — a voice-driven shopping assistant.
//
// Usage:
//
//	voxcart [-verbose] [-quiet] [-voice]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hammamikhairi/voxcart/internal/assistant"
	"github.com/hammamikhairi/voxcart/internal/commerce"
	"github.com/hammamikhairi/voxcart/internal/config"
	"github.com/hammamikhairi/voxcart/internal/conversation"
	"github.com/hammamikhairi/voxcart/internal/display"
	"github.com/hammamikhairi/voxcart/internal/domain"
	"github.com/hammamikhairi/voxcart/internal/logger"
	"github.com/hammamikhairi/voxcart/internal/speech"
	"github.com/hammamikhairi/voxcart/internal/storage"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".voxcart-logs/voxcart.log", "file to write logs to (use \"stderr\" to log to console)")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if the Murf key is set")
	diskCache := flag.Bool("disk-cache", true, "persist TTS audio cache to disk (reads from disk even when false)")
	cacheDir := flag.String("cache-dir", ".voxcart-cache", "directory for persistent TTS audio cache")
	voice := flag.Bool("voice", false, "enable voice input via local Whisper STT")
	whisperBin := flag.String("whisper-bin", "whisper-cli", "path to the whisper-cpp CLI binary")
	whisperModel := flag.String("whisper-model", "bin/ggml-small.bin", "path to the Whisper GGML model file")
	debounce := flag.Duration("debounce", 1500*time.Millisecond, "silence window before a voice utterance is finalised")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs like
	// the whisper transcriber) to the same output so it doesn't spam
	// the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire the commerce backend: hosted commercetools project when
	// credentials are present, in-memory demo catalog otherwise.
	var catalog domain.Catalog
	var cart domain.CartService

	if cfg.Commerce.Configured() {
		client := commerce.NewClient(commerce.Credentials{
			ProjectKey:   cfg.Commerce.ProjectKey,
			ClientID:     cfg.Commerce.ClientID,
			ClientSecret: cfg.Commerce.ClientSecret,
			AuthURL:      cfg.Commerce.AuthURL,
			APIURL:       cfg.Commerce.APIURL,
			Scopes:       cfg.Commerce.ScopeList(),
		}, log)
		catalog = commerce.NewCatalogClient(client)
		cart = commerce.NewCartClient(client)
		log.Info("commerce: hosted project %s", cfg.Commerce.ProjectKey)
	} else {
		memCatalog := commerce.NewMemoryCatalog(log)
		catalog = memCatalog
		cart = commerce.NewMemoryCart(memCatalog, log)
		log.Info("commerce: in-memory demo catalog (set CTP_* env vars for a hosted project)")
	}

	store := storage.NewMemoryStore(log)
	ui := display.NewUI(cart)
	textNotifier := conversation.NewCLINotifier(log, ui.Printf)
	classifier := conversation.NewPatternClassifier(log)

	// Build the active notifier. If TTS is available, wrap the text notifier
	// with a SpeakingNotifier that also speaks through the Mouth.
	var activeNotifier domain.Notifier = textNotifier
	var mouth *speech.Mouth
	var asst *assistant.Assistant // assigned below; captured by the after-speak hook

	if cfg.Murf.APIKey != "" && !*noSpeech {
		rateWindow, err := time.ParseDuration(cfg.Murf.RateWindow)
		if err != nil {
			log.Error("invalid MURF_RATE_WINDOW %q: %v (using 1m)", cfg.Murf.RateWindow, err)
			rateWindow = time.Minute
		}
		ttsClient := speech.NewMurfClient(cfg.Murf.APIKey, log,
			speech.WithVoice(cfg.Murf.Voice),
			speech.WithRateLimiter(speech.NewRateLimiter(cfg.Murf.RateLimit, rateWindow)),
		)

		player, err := speech.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech disabled: %v", err)
		} else {
			// History records on playback completion, so lines the
			// user never heard (interrupted or dropped) are not
			// replayable via "repeat".
			mouth = speech.NewMouth(ttsClient, player, log,
				speech.WithCacheDir(*cacheDir),
				speech.WithDiskWrite(*diskCache),
				speech.WithAfterSpeak(func(text string) {
					log.Debug("spoke: %q", text)
					if asst != nil {
						asst.History().AddAssistant(text)
					}
				}),
			)
			mouth.Start(ctx)
			mouth.Prefetch(ctx, speech.CannedLines()...)
			activeNotifier = speech.NewSpeakingNotifier(textNotifier, mouth, log)
			log.Info("TTS enabled (voice=%s)", cfg.Murf.Voice)
		}
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s env var to enable", speech.EnvMurfAPIKey)
	}

	// Build voice input (STT) if enabled.
	var ear *speech.Ear
	if *voice {
		if _, err := os.Stat(*whisperModel); err != nil {
			fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", *whisperModel)
			os.Exit(1)
		}
		ear = speech.NewEar(*whisperBin, *whisperModel, mouth, log,
			speech.WithDebounce(*debounce),
		)
		go func() {
			if err := ear.Run(ctx); err != nil {
				log.Error("voice input stopped: %v", err)
			}
		}()
		log.Info("voice input enabled (bin=%s, model=%s, debounce=%s)", *whisperBin, *whisperModel, *debounce)
	}

	var asstOpts []assistant.Option
	if mouth != nil {
		asstOpts = append(asstOpts, assistant.WithPlaybackHistory())
	}
	asst = assistant.New(classifier, catalog, cart, store, ui, activeNotifier, log, asstOpts...)

	fmt.Println(display.RenderBanner())

	if ear != nil {
		fmt.Println(display.BannerStyle.Render("  Voice mode ON — just start talking, or type commands."))
		fmt.Println(display.BannerStyle.Render("  Type 'quit' to exit."))
	} else {
		fmt.Println(display.BannerStyle.Render("  Try \"add shoes to my cart\", or type 'help' for more."))
	}
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		runLoop(ctx, asst, catalog, ui, ear, mouth, log)
		// Brief pause so TTS can start the goodbye line.
		time.Sleep(300 * time.Millisecond)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

// runLoop drives the assistant from keyboard and voice input until the
// session ends or the context is cancelled.
func runLoop(ctx context.Context, asst *assistant.Assistant, catalog domain.Catalog, ui *display.UI, ear *speech.Ear, mouth *speech.Mouth, log *logger.Logger) {
	if err := asst.Start(ctx); err != nil {
		ui.PrintUrgent(fmt.Sprintf("Error starting session: %v", err))
		return
	}
	ui.Println("")
	showProducts(ctx, catalog, ui)

	// Voice channel (nil-safe: receiving on a nil channel blocks forever,
	// which is fine — select will only use the keyboard case).
	var voiceCh <-chan string
	if ear != nil {
		voiceCh = ear.C()
	}

	uiCh := ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		case input, ok = <-voiceCh:
			if !ok {
				// Voice input died; keep going on keyboard alone.
				voiceCh = nil
				continue
			}
			// Print what was heard so the user sees it in the REPL.
			ui.PrintVoice(input)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// A new command interrupts whatever is currently being spoken so
		// the assistant doesn't keep talking over its own response.
		if mouth != nil {
			mouth.Interrupt()
		}

		done, err := asst.Handle(ctx, input)
		if err != nil {
			log.Error("handling %q: %v", input, err)
		}
		ui.RefreshCart()

		if done {
			return
		}
	}
}

// showProducts prints the storefront catalog into the scrollback.
func showProducts(ctx context.Context, catalog domain.Catalog, ui *display.UI) {
	products, err := catalog.List(ctx)
	if err != nil {
		ui.PrintUrgent(fmt.Sprintf("Error loading products: %v", err))
		return
	}

	ui.PrintInfo("Available products:")
	ui.Println("")
	for _, p := range products {
		ui.PrintProduct(fmt.Sprintf("%-12s %s", p.Name, formatCents(p.Price)))
		if p.Description != "" {
			ui.PrintHint("    " + p.Description)
		}
	}
	ui.Println("")
	ui.PrintChat("Say \"add shoes to my cart\" to get started, or 'help' for more.")
}

func formatCents(p domain.Price) string {
	symbol := "€"
	switch p.CurrencyCode {
	case "USD":
		symbol = "$"
	case "GBP":
		symbol = "£"
	}
	return fmt.Sprintf("%s%d.%02d", symbol, p.CentAmount/100, p.CentAmount%100)
}
