// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

// chubbcord is a terminal Discord client. It polls the active channel
// and prints new messages into the scrollback while reading commands
// and outgoing messages line by line from stdin.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/chubbcord/chubbcord/chat"
	"github.com/chubbcord/chubbcord/config"
	"github.com/chubbcord/chubbcord/discord"
	"github.com/chubbcord/chubbcord/lib/version"
	"github.com/chubbcord/chubbcord/tokenstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		email           string
		password        string
		channelID       string
		token           string
		configPath      string
		showAttachments bool
		verbose         bool
		showVersion     bool
	)

	flagSet := pflag.NewFlagSet("chubbcord", pflag.ContinueOnError)
	flagSet.StringVarP(&email, "email", "e", "", "account email for password login")
	flagSet.StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	flagSet.StringVarP(&channelID, "channel", "c", "", "channel ID to open at startup")
	flagSet.StringVarP(&token, "token", "t", "", "authenticate with an existing token instead of logging in")
	flagSet.BoolVarP(&showAttachments, "attach", "a", false, "download attachments as they appear")
	flagSet.StringVar(&configPath, "config", "", "path to config file (default ~/.chubbcord/config.yaml)")
	flagSet.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Printf("chubbcord %s\n", version.Info())
		return nil
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level, verbose),
	}))
	slog.SetDefault(logger)

	client, err := discord.NewClient(discord.ClientConfig{
		APIBaseURL:    cfg.API.BaseURL,
		LookupBaseURL: cfg.API.LookupURL,
		HTTPClient:    &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()

	session, err := resolveSession(ctx, client, cfg, email, password, token, logger)
	if err != nil {
		return err
	}

	cache, err := chat.NewAttachmentCache(cfg.Paths.AttachmentDir)
	if err != nil {
		return err
	}

	resolver := chat.NewUserResolver(chat.UserResolverConfig{
		Lookup: session,
		Logger: logger,
	})
	styles := chat.DefaultStyles()
	formatter := chat.NewFormatter(chat.FormatterConfig{
		Resolver:        resolver,
		Cache:           cache,
		Downloader:      session,
		Styles:          styles,
		ShowAttachments: showAttachments || cfg.Chat.ShowAttachments,
		SelfID:          session.UserID(),
		Logger:          logger,
	})
	poller := chat.NewPoller(chat.PollerConfig{
		Session:   session,
		Formatter: formatter,
		Output:    os.Stdout,
		Logger:    logger,
		Interval:  cfg.PollInterval(),
		Limit:     cfg.Chat.MessageLimit,
	})
	controller := chat.NewController(chat.ControllerConfig{
		Session:  session,
		Poller:   poller,
		Resolver: resolver,
		Cache:    cache,
		Styles:   styles,
		Input:    os.Stdin,
		Output:   os.Stdout,
		Logger:   logger,
	})

	// The watcher owns the two exits that bypass the input loop:
	// interrupt signals and a dead poller. Both go through the shared
	// shutdown so the attachment cache is cleaned exactly once.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-signals:
			logger.Debug("shutting down on signal", "signal", sig)
			controller.Shutdown()
			os.Exit(0)
		case err := <-poller.Fatal():
			controller.Shutdown()
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}()

	controller.Welcome(ctx)
	if channelID != "" {
		if err := poller.Start(channelID); err != nil {
			return err
		}
	}

	return controller.Run(ctx)
}

// logLevel maps the config level to slog, with --verbose forcing
// debug.
func logLevel(level string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// resolveSession produces an authenticated session, in preference
// order: an explicit --token, the persisted token file when fresh,
// a password login (persisting the new token for the next run).
func resolveSession(ctx context.Context, client *discord.Client, cfg *config.Config, email, password, token string, logger *slog.Logger) (*discord.APISession, error) {
	if token != "" {
		session := client.SessionFromToken("", token)
		if _, err := session.WhoAmI(ctx); err != nil {
			return nil, fmt.Errorf("token rejected: %w", err)
		}
		return session, nil
	}

	state, valid, err := tokenstore.Check(cfg.Paths.TokenFile, tokenstore.MaxAge)
	if err != nil {
		logger.Warn("token file unreadable, logging in fresh", "error", err)
	}
	if valid {
		session := client.SessionFromToken(state.UserID, state.Token)
		if _, err := session.WhoAmI(ctx); err == nil {
			logger.Debug("reusing persisted token", "user_id", session.UserID())
			return session, nil
		}
		logger.Debug("persisted token rejected, logging in fresh")
	}

	if email == "" {
		return nil, fmt.Errorf("no valid token; pass --email to log in or --token to supply one")
	}
	if password == "" {
		password, err = promptPassword()
		if err != nil {
			return nil, err
		}
	}

	session, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := tokenstore.Write(cfg.Paths.TokenFile, tokenstore.State{
		UserID:    session.UserID(),
		Token:     session.Token(),
		Timestamp: time.Now(),
	}); err != nil {
		logger.Warn("could not persist token", "error", err)
	}
	return session, nil
}

// promptPassword reads the password from the terminal without echo.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	entered, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(entered), nil
}
