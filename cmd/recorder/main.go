// Package main provides the interactive recorder entry point.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/RSB4760/soundrecorder/internal/app/session"
	"github.com/RSB4760/soundrecorder/internal/domain/device"
	"github.com/RSB4760/soundrecorder/internal/infra/config"
	"github.com/RSB4760/soundrecorder/internal/infra/logger"
	"github.com/RSB4760/soundrecorder/internal/infra/portaudio"
	"github.com/RSB4760/soundrecorder/internal/infra/statefile"
)

var (
	app        = kingpin.New("recorder", "sound recording session controller")
	configPath = app.Flag("config", "Path to config file").Default("config/recorder.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Recorder error: %v", err)
		os.Exit(1)
	}
}

// run executes the interactive session loop. A single goroutine owns the
// controller; backend callbacks are marshaled into it through the calls
// channel.
func run(cfg *config.Config) error {
	backend, err := portaudio.New()
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			zlog.Warn().Err(err).Msg("backend shutdown failed")
		}
	}()

	calls := make(chan func(), 16)

	ctl := session.New(backend,
		session.WithStoragePath(cfg.Storage.Path),
		session.WithFallbackPath(cfg.Storage.FallbackPath),
		session.WithNamePrefix(cfg.Recorder.NamePrefix),
		session.WithNameFormat(cfg.Recorder.NameFormat),
		session.WithDispatcher(func(fn func()) { calls <- fn }),
	)
	ctl.SetListener(session.ListenerFuncs{
		StateChanged: func(state session.State) {
			zlog.Info().Msgf("state: %s", state)
		},
		Error: func(code session.ErrorCode) {
			zlog.Error().Msgf("error: %s", code)
		},
		Info: func(what, extra int) {
			zlog.Info().Msgf("info: what=%d extra=%d", what, extra)
		},
	})
	if cfg.Recorder.MaxDurationMs > 0 {
		ctl.SetMaxDuration(time.Duration(cfg.Recorder.MaxDurationMs) * time.Millisecond)
	}

	// Adopt the previous session's sample, if any.
	if blob, err := statefile.Load(cfg.Storage.StateFile); err == nil {
		ctl.RestoreState(blob)
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	fmt.Println("commands: record pause resume stop play delete clear status save restore quit")
	for {
		select {
		case fn := <-calls:
			fn()
		case line, ok := <-lines:
			if !ok {
				ctl.Stop()
				return nil
			}
			if done := handle(ctl, cfg, line); done {
				return nil
			}
		}
	}
}

// handle executes one command line. Returns true to quit.
func handle(ctl *session.Controller, cfg *config.Config, line string) bool {
	switch line {
	case "record":
		ctl.SetChannels(cfg.Recorder.Channels)
		ctl.SetSamplingRate(cfg.Recorder.SamplingRate)
		ctl.StartRecording(device.FormatWAV, cfg.Recorder.FileExtension, device.SourceMic, device.EncoderPCM16)
	case "pause":
		ctl.PauseRecording()
	case "resume":
		ctl.ResumeRecording()
	case "stop":
		ctl.Stop()
	case "play":
		ctl.StartPlayback()
	case "delete":
		ctl.Delete()
	case "clear":
		ctl.Clear()
	case "status":
		fmt.Printf("state=%s file=%q length=%ds progress=%ds peak=%d\n",
			ctl.State(), ctl.SampleFile(), ctl.SampleLength(), ctl.Progress(), ctl.PeakAmplitude())
	case "save":
		blob := ctl.SaveState()
		if blob == nil {
			fmt.Println("nothing to save")
			break
		}
		if err := statefile.Save(cfg.Storage.StateFile, blob); err != nil {
			zlog.Error().Err(err).Msg("save failed")
		}
	case "restore":
		blob, err := statefile.Load(cfg.Storage.StateFile)
		if err != nil {
			zlog.Error().Err(err).Msg("restore failed")
			break
		}
		ctl.RestoreState(blob)
	case "quit", "exit":
		ctl.Stop()
		return true
	case "":
	default:
		fmt.Printf("unknown command %q\n", line)
	}
	return false
}
