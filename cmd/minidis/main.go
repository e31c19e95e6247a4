// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/jbreiding/minidis/internal/command"
	"github.com/jbreiding/minidis/internal/command/commands"
	"github.com/jbreiding/minidis/internal/config"
	"github.com/jbreiding/minidis/internal/database"
	"github.com/jbreiding/minidis/internal/datastruct/set"
	"github.com/jbreiding/minidis/internal/event"
	"github.com/jbreiding/minidis/internal/protocol/resp"
	"github.com/jbreiding/minidis/pkg/log"
)

var Version = "1.0.0"

func main() {
	app := &cli.App{
		Name:    "minidis",
		Usage:   "in-memory RESP key-value server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "configuration file path"},
			&cli.StringFlag{Name: "bind", Usage: "address to listen on"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "port to listen on"},
			&cli.StringFlag{Name: "loglevel", Usage: "debug, verbose, notice, warning or error"},
			&cli.StringFlag{Name: "logfile", Usage: "log to this file instead of stdout"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal("startup failed: %v", err)
	}
}

func run(cctx *cli.Context) error {
	cfg := config.Default()
	if path := cctx.String("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return err
		}
	}
	if v := cctx.String("bind"); v != "" {
		cfg.Bind = v
	}
	if v := cctx.Int("port"); v != 0 {
		cfg.Port = v
	}
	if v := cctx.String("loglevel"); v != "" {
		cfg.LogLevel = v
	}
	if v := cctx.String("logfile"); v != "" {
		cfg.LogFile = v
	}
	cfg.ApplyEnv()

	log.SetLevelString(cfg.LogLevel)
	log.SetFile(cfg.LogFile)
	defer log.Sync()

	set.MaxIntsetEntries = cfg.SetMaxIntsetEntries
	resp.MaxBulkStringSize = cfg.ProtoMaxBulkLen

	log.Info("minidis %s starting", Version)

	db := database.NewDB()
	dispatcher := command.NewDispatcher(db)
	commands.RegisterAll(dispatcher)
	log.Info("registered %d commands", dispatcher.Commands())

	loop, err := event.NewLoop()
	if err != nil {
		return err
	}
	defer loop.Close()

	srv := event.NewServer(loop, dispatcher, db, cfg.Bind, cfg.Port, cfg.MaxClients)
	if err := srv.Start(); err != nil {
		return err
	}

	// The reactor owns the main goroutine; signals just ask it to stop.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal %s, shutting down", sig)
		loop.Stop()
	}()

	err = srv.Run()
	srv.Stop()
	log.Info("minidis shutdown complete")
	return err
}
