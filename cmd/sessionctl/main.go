// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattermost/mattermost/server/public/shared/mlog"

	"github.com/rtcsync/sessionkit/logger"
	"github.com/rtcsync/sessionkit/perf"
	"github.com/rtcsync/sessionkit/session"
	"github.com/rtcsync/sessionkit/store"
	"github.com/rtcsync/sessionkit/transport/ws"
)

func archive(db store.Store, channel, kind string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	key := fmt.Sprintf("%s/%s/%s", kind, channel, time.Now().UTC().Format(time.RFC3339))
	return db.Set(key, string(data))
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.toml", "Path to the configuration file for sessionctl.")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("sessionctl: failed to load config: %s", err.Error())
	}

	if err := cfg.IsValid(); err != nil {
		log.Fatalf("sessionctl: failed to validate config: %s", err.Error())
	}

	slog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("sessionctl: failed to create logger: %s", err.Error())
	}

	metrics := perf.NewMetrics("sessionkit", nil)
	if cfg.Metrics.ListenAddress != "" {
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.ListenAddress, metrics.Handler()); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics listener failed", mlog.Err(err))
			}
		}()
	}

	var db store.Store
	if cfg.Store.DataSource != "" {
		db, err = store.New(cfg.Store.DataSource)
		if err != nil {
			log.Fatalf("sessionctl: failed to open store: %s", err.Error())
		}
		defer db.Close()

		keys, err := db.Keys("session_stats/")
		if err != nil {
			slog.Error("failed to list archived stats", mlog.Err(err))
		} else {
			slog.Info("opened stats archive",
				mlog.String("path", cfg.Store.DataSource),
				mlog.Int("archivedSessions", len(keys)))
		}
	}

	adapter, err := ws.NewAdapter(ws.ClientConfig{
		URL:       cfg.Transport.URL,
		AuthToken: cfg.Transport.AuthToken,
	}, ws.WithLogger(slog))
	if err != nil {
		log.Fatalf("sessionctl: failed to create transport adapter: %s", err.Error())
	}

	opts := []session.Option{
		session.WithLogger(slog),
		session.WithMetrics(metrics),
	}
	if db != nil {
		opts = append(opts, session.WithTransportStatsHandler(func(stats session.TransportStats) {
			if err := archive(db, cfg.Call.Channel, "transport_stats", stats); err != nil {
				slog.Error("failed to archive transport stats", mlog.Err(err))
			}
		}))
	}

	sess, err := session.New(adapter, opts...)
	if err != nil {
		log.Fatalf("sessionctl: failed to create session: %s", err.Error())
	}

	role, err := session.ParseRole(cfg.Call.Role)
	if err != nil {
		log.Fatalf("sessionctl: failed to parse role: %s", err.Error())
	}
	if err := sess.SetRole(role); err != nil {
		log.Fatalf("sessionctl: failed to set role: %s", err.Error())
	}

	if err := sess.JoinChannel(cfg.Call.Channel, cfg.Call.Token, session.ID(cfg.Call.ID)); err != nil {
		log.Fatalf("sessionctl: failed to join channel: %s", err.Error())
	}

	if cfg.Call.Video {
		if err := sess.EnableVideo(true); err != nil {
			slog.Error("failed to enable video", mlog.Err(err))
		}
	}

	subID, changesCh, err := sess.Subscribe()
	if err != nil {
		log.Fatalf("sessionctl: failed to subscribe: %s", err.Error())
	}

	go func() {
		for change := range changesCh {
			switch change.Type {
			case session.ChangeVideoStats:
				slog.Debug("video stats",
					mlog.Uint("id", uint32(change.ID)),
					mlog.Int("width", change.Stats.Width),
					mlog.Int("height", change.Stats.Height),
					mlog.Int("frameRate", change.Stats.FrameRate))
			default:
				slog.Info("state change",
					mlog.String("type", string(change.Type)),
					mlog.Uint("id", uint32(change.ID)),
					mlog.Any("members", sess.Members()),
					mlog.Any("videoEnabled", sess.VideoEnabled()))
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	stats, err := sess.LeaveChannel(true)
	if err != nil {
		slog.Error("failed to leave channel", mlog.Err(err))
	} else if db != nil {
		if err := archive(db, stats.Channel, "session_stats", stats); err != nil {
			slog.Error("failed to archive session stats", mlog.Err(err))
		}
	}

	if err := sess.Unsubscribe(subID); err != nil {
		slog.Error("failed to unsubscribe", mlog.Err(err))
	}

	if err := sess.Close(); err != nil {
		slog.Error("failed to close session", mlog.Err(err))
	}
}
