// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/chubbcord/chubbcord/discord"
)

const banner = `
       _           _     _                       _
   ___| |__  _   _| |__ | |__   ___ ___  _ __ __| |
  / __| '_ \| | | | '_ \| '_ \ / __/ _ \| '__/ _' |
 | (__| | | | |_| | |_) | |_) | (_| (_) | | | (_| |
  \___|_| |_|\__,_|_.__/|_.__/ \___\___/|_|  \__,_|
`

const helpText = `Commands:
  :help                  show this help
  :q                     quit
  :cr                    clear the screen and re-render the channel
  :li                    list guilds and channels, then pick one by number
  :dm                    list direct message channels, then pick one
  :we                    show the welcome banner
  :attach:<path>:<text>  send a file with an optional message
Anything else is sent to the current channel.`

// ControllerConfig holds configuration for creating a Controller.
type ControllerConfig struct {
	// Session performs sends, uploads, and listings. Required.
	Session discord.Session
	// Poller is the channel poll loop the controller starts, stops,
	// and rebinds on channel switches. Required.
	Poller *Poller
	// Resolver resolves the user's own display name for the banner.
	Resolver *UserResolver
	// Cache is cleaned on shutdown.
	Cache *AttachmentCache
	// Styles is the terminal palette.
	Styles Styles
	// Input is the command stream, stdin in production.
	Input io.Reader
	// Output receives everything the controller prints.
	Output io.Writer
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// ClearScreen clears the terminal. If nil, termenv escape codes
	// are written to Output.
	ClearScreen func()
}

// Controller is the blocking read-eval loop of the session: plain
// lines are sent to the active channel, ":"-prefixed lines are
// commands. It owns channel selection, so it is the only caller of
// Poller.Start and Poller.Stop besides the process signal watcher.
type Controller struct {
	session  discord.Session
	poller   *Poller
	resolver *UserResolver
	cache    *AttachmentCache
	styles   Styles
	scanner  *bufio.Scanner
	output   io.Writer
	logger   *slog.Logger
	clear    func()

	shutdownOnce sync.Once
}

// NewController creates a Controller.
func NewController(config ControllerConfig) *Controller {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	controller := &Controller{
		session:  config.Session,
		poller:   config.Poller,
		resolver: config.Resolver,
		cache:    config.Cache,
		styles:   config.Styles,
		scanner:  bufio.NewScanner(config.Input),
		output:   config.Output,
		logger:   logger,
		clear:    config.ClearScreen,
	}
	if controller.clear == nil {
		controller.clear = func() {
			termenv.NewOutput(controller.output).ClearScreen()
		}
	}
	return controller
}

// Run reads and dispatches lines until :q, end of input, or a read
// error. It performs the orderly shutdown itself before returning.
func (c *Controller) Run(ctx context.Context) error {
	for c.scanner.Scan() {
		if quit := c.dispatch(ctx, c.scanner.Text()); quit {
			c.Shutdown()
			return nil
		}
	}
	c.Shutdown()
	if err := c.scanner.Err(); err != nil {
		return fmt.Errorf("chat: reading input: %w", err)
	}
	return nil
}

// Shutdown stops the poller and cleans the attachment cache. Safe to
// call from the signal watcher concurrently with Run; it runs once.
func (c *Controller) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.poller.Stop()
		if c.cache != nil {
			if err := c.cache.Clean(); err != nil {
				c.logger.Warn("attachment cleanup failed", "error", err)
			}
		}
	})
}

// dispatch handles one input line. Returns true when the session
// should end.
func (c *Controller) dispatch(ctx context.Context, line string) bool {
	switch {
	case line == ":q":
		return true
	case line == ":help":
		fmt.Fprintln(c.output, helpText)
	case line == "":
		// Quietly redraw when a channel is active; otherwise swallow
		// the stray newline.
		if c.poller.Running() {
			c.clear()
			c.poller.Refresh()
		}
	case line == ":cr":
		if !c.requireChannel() {
			return false
		}
		c.clear()
		c.poller.Refresh()
	case line == ":li":
		c.selectFromGuilds(ctx)
	case line == ":dm":
		c.selectFromDMs(ctx)
	case line == ":we":
		c.Welcome(ctx)
	case strings.HasPrefix(line, ":attach:"):
		if !c.requireChannel() {
			return false
		}
		c.sendAttachment(ctx, line)
	case strings.HasPrefix(line, ":"):
		c.notice("unknown command %q; :help lists the commands", line)
	default:
		if !c.requireChannel() {
			return false
		}
		c.sendText(ctx, line)
	}
	return false
}

// Welcome prints the banner and greets the user by display name.
func (c *Controller) Welcome(ctx context.Context) {
	fmt.Fprintln(c.output, c.styles.Banner.Render(strings.TrimRight(banner, "\n")))

	name := c.session.UserID()
	if c.resolver != nil && name != "" {
		name = c.resolver.Resolve(ctx, name)
	}
	if name == "" {
		name = "stranger"
	}
	fmt.Fprintf(c.output, "Welcome, %s! Type :help for commands.\n", name)
}

// requireChannel reports whether a channel is active, printing a
// notice when it is not.
func (c *Controller) requireChannel() bool {
	if !c.poller.Running() {
		c.notice("no channel selected; use :li or :dm first")
		return false
	}
	return true
}

// sendText posts a plain message to the active channel and nudges the
// poller so the sent message shows up without waiting a full interval.
func (c *Controller) sendText(ctx context.Context, content string) {
	channelID := c.poller.ChannelID()
	if _, err := c.session.SendMessage(ctx, channelID, content, nil); err != nil {
		c.notice("send failed: %v", err)
		return
	}
	c.poller.Refresh()
}

// sendAttachment handles the :attach:<path>:<text> command: validate
// the file, run the three-step upload, and send the message carrying
// the stored filename.
func (c *Controller) sendAttachment(ctx context.Context, line string) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 3 || parts[2] == "" {
		c.notice("usage: :attach:<path>:<text>")
		return
	}
	path := parts[2]
	text := ""
	if len(parts) == 4 {
		text = parts[3]
	}

	info, err := os.Stat(path)
	if err != nil {
		c.notice("cannot attach %s: %v", path, err)
		return
	}
	if !info.Mode().IsRegular() {
		c.notice("cannot attach %s: not a regular file", path)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		c.notice("cannot attach %s: %v", path, err)
		return
	}
	defer file.Close()

	channelID := c.poller.ChannelID()
	filename := filepath.Base(path)

	target, err := c.session.RequestAttachmentUpload(ctx, channelID, filename, info.Size())
	if err != nil {
		c.notice("upload request failed: %v", err)
		return
	}
	if err := c.session.UploadAttachment(ctx, target, file); err != nil {
		c.notice("upload failed: %v", err)
		return
	}

	attachment := discord.SentAttachment{
		ID:               "0",
		Filename:         filename,
		UploadedFilename: target.UploadFilename,
	}
	if _, err := c.session.SendMessage(ctx, channelID, text, []discord.SentAttachment{attachment}); err != nil {
		c.notice("send failed: %v", err)
		return
	}
	c.poller.Refresh()
}

// selectFromGuilds runs the :li flow: print the guild/channel tree,
// stop the poller, and rebind it to the picked channel.
func (c *Controller) selectFromGuilds(ctx context.Context) {
	listing, rendered, err := BuildGuildListing(ctx, c.session, c.styles)
	if err != nil {
		c.notice("listing failed: %v", err)
		return
	}
	c.promptAndBind(listing, rendered)
}

// selectFromDMs runs the :dm flow over direct message channels.
func (c *Controller) selectFromDMs(ctx context.Context) {
	listing, rendered, err := BuildDMListing(ctx, c.session, c.resolver, c.styles)
	if err != nil {
		c.notice("listing failed: %v", err)
		return
	}
	c.promptAndBind(listing, rendered)
}

// promptAndBind shows a listing, reads a selection, and switches the
// poller to the picked channel. The poller is stopped before the
// prompt so its output cannot interleave with the listing; an invalid
// selection leaves it stopped.
func (c *Controller) promptAndBind(listing *Listing, rendered string) {
	if listing.Len() == 0 {
		c.notice("nothing to select")
		return
	}

	c.poller.Stop()

	fmt.Fprint(c.output, rendered)
	fmt.Fprint(c.output, "Channel number: ")

	if !c.scanner.Scan() {
		return
	}
	input := strings.TrimSpace(c.scanner.Text())

	index, err := strconv.Atoi(input)
	if err != nil {
		c.notice("not a number: %q", input)
		return
	}
	channelID, ok := listing.ChannelID(index)
	if !ok {
		c.notice("no channel with number %d", index)
		return
	}

	c.clear()
	if err := c.poller.Start(channelID); err != nil {
		c.notice("cannot start polling: %v", err)
	}
}

// notice prints a styled client-side message, distinct from chat
// content.
func (c *Controller) notice(format string, args ...any) {
	fmt.Fprintln(c.output, c.styles.Notice.Render(fmt.Sprintf(format, args...)))
}
