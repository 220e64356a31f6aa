package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/asalkeld/fetchbot/bot"
	"github.com/asalkeld/fetchbot/config"
	"github.com/asalkeld/fetchbot/metrics"
	"github.com/asalkeld/fetchbot/standup"
	"github.com/asalkeld/fetchbot/store"
	"github.com/asalkeld/fetchbot/web"
)

const (
	header = "  __      _       _     _           _\n" +
		" / _| ___| |_ ___| |__ | |__   ___ | |_\n" +
		"| |_ / _ \\ __/ __| '_ \\| '_ \\ / _ \\| __|\n" +
		"|  _|  __/ || (__| | | | |_) | (_) | |_\n" +
		"|_|  \\___|\\__\\___|_| |_|_.__/ \\___/ \\__|"
	Version = "0.1.0"
)

func main() {
	fmt.Println(header)
	fmt.Println("Version", Version)
	fmt.Println("")

	logger := logrus.New()

	// A missing .env is fine; the environment itself may be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalln(err)
	}

	rooms, err := config.LoadRooms(cfg.RoomsFile)
	if err != nil {
		logger.Fatalln(err)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalln(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalln("database unreachable:", err)
	}
	if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatalln(err)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	slackAPIClient := slack.New(cfg.SlackToken)
	pg := store.NewPostgres(db)

	var b *bot.Bot
	notifier := bot.NewNotifier(slackAPIClient, cfg.SendRatePerSecond, logger, func() { b.Stop() })

	dispatcher := standup.NewDispatcher(pg, notifier, logger, cfg.BotSlackID,
		standup.WithMetrics(collector),
		standup.WithAdmins(rooms.AdminIDs()))

	b = bot.New(slackAPIClient, logger, dispatcher, pg, rooms, cfg.BotName)
	dispatcher.SetChannelCompleteHook(b.DigestHook())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.RunKickoffs(ctx, time.Minute)

	handler := web.NewHandler(pg, logger)
	go func() {
		addr := ":" + cfg.HTTPPort
		logger.WithFields(logrus.Fields{"addr": addr}).Info("HTTP server listening.")
		if err := http.ListenAndServe(addr, web.NewRouter(handler, registry)); err != nil {
			logger.Fatalln(err)
		}
	}()

	if err := b.Run(ctx); err != nil {
		logger.Fatalln(err)
	}
}
