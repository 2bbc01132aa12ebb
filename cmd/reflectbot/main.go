// Command reflectbot runs the self-reflection journaling assistant: an
// hourly scheduler offers activity polls over Discord, accepted polls walk a
// short rating dialogue, and completed reflections land in a spreadsheet
// (with local fallbacks when the spreadsheet is unreachable).
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/bot"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/chat"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/config"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/logger"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/schedule"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/sheets"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/writeback"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("LOG_PRETTY") == "true")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	if err := os.MkdirAll(cfg.StatePath, 0755); err != nil {
		log.Fatal().Err(err).Str("path", cfg.StatePath).Msg("create state directory")
	}

	queue := reflection.NewQueue(cfg.Tunables.QueueCapacity, cfg.Tunables.Retention())
	if err := queue.Load(cfg.SnapshotPath); err != nil {
		log.Info().Err(err).Msg("starting with a fresh poll queue")
	} else {
		log.Info().Int("size", queue.Size()).Msg("poll queue restored")
	}

	var store writeback.TableStore
	if cfg.SpreadsheetID != "" {
		store = sheets.New(sheets.Config{
			CredentialsFile: cfg.GoogleCredentialsFile,
			SpreadsheetID:   cfg.SpreadsheetID,
			SheetName:       cfg.SheetName,
		})
	} else {
		log.Warn().Msg("no spreadsheet configured, write-backs go to the local archive")
	}

	archive, err := writeback.OpenArchive(cfg.ArchivePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.ArchivePath).Msg("archive unavailable")
		archive = nil
	}

	writer := writeback.NewWriter(store, archive, writeback.Config{
		StartHour:   cfg.Tunables.LoggingStartHour,
		EndHour:     cfg.Tunables.LoggingEndHour,
		FailuresDir: cfg.Tunables.FailuresDir,
	}, log)
	writer.Start()

	messenger, err := chat.NewDiscord(chat.DiscordConfig{
		Token:        cfg.DiscordToken,
		TargetUserID: cfg.TargetUserID,
		ChannelID:    cfg.ChannelID,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("discord client")
	}

	b := bot.New(messenger, queue, writer, cfg.TargetUserID, log)
	if cfg.DebugMode {
		b.EnableDebugMode(true)
		log.Info().Msg("debug commands enabled")
	}
	messenger.OnUpdate(b.HandleUpdate)

	var days schedule.DayAppender
	if store != nil {
		days = writer
	}
	scheduler := schedule.New(schedule.Config{
		StartHour:    cfg.Tunables.LoggingStartHour,
		EndHour:      cfg.Tunables.LoggingEndHour,
		MinuteStart:  cfg.Tunables.PollMinuteStart,
		MinuteEnd:    cfg.Tunables.PollMinuteEnd,
		CleanupHour:  cfg.Tunables.CleanupHour,
		Timezone:     cfg.Timezone,
		SnapshotPath: cfg.SnapshotPath,
	}, b, queue, days, log)

	if err := messenger.Start(); err != nil {
		log.Fatal().Err(err).Msg("discord session")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	log.Info().Str("timezone", cfg.Timezone.String()).Msg("self-reflection bot running")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	scheduler.Stop()
	if err := messenger.Stop(); err != nil {
		log.Error().Err(err).Msg("close discord session")
	}
	writer.Stop()

	if err := queue.Save(cfg.SnapshotPath); err != nil {
		log.Error().Err(err).Msg("final queue snapshot")
	} else {
		log.Info().Int("size", queue.Size()).Msg("poll queue saved")
	}
	if archive != nil {
		if err := archive.Close(); err != nil {
			log.Error().Err(err).Msg("close archive")
		}
	}
}
