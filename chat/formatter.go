// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/chubbcord/chubbcord/discord"
)

// Downloader is the slice of discord.Session the formatter needs for
// fetching attachment bytes.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// FormatterConfig holds configuration for creating a Formatter.
type FormatterConfig struct {
	// Resolver resolves mention user IDs to display names.
	Resolver *UserResolver
	// Cache deduplicates attachment downloads. Required.
	Cache *AttachmentCache
	// Downloader fetches attachment bytes. May be nil when
	// ShowAttachments is false.
	Downloader Downloader
	// Styles is the terminal palette.
	Styles Styles
	// ShowAttachments enables downloading attachments into the cache
	// directory as they appear.
	ShowAttachments bool
	// SelfID is the logged-in user's ID, rendered with its own style.
	SelfID string
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Formatter renders messages as styled terminal lines.
type Formatter struct {
	resolver        *UserResolver
	cache           *AttachmentCache
	downloader      Downloader
	styles          Styles
	showAttachments bool
	selfID          string
	logger          *slog.Logger
}

// NewFormatter creates a Formatter.
func NewFormatter(config FormatterConfig) *Formatter {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		resolver:        config.Resolver,
		cache:           config.Cache,
		downloader:      config.Downloader,
		styles:          config.Styles,
		showAttachments: config.ShowAttachments,
		selfID:          config.SelfID,
		logger:          logger,
	}
}

// mentionPattern matches user mention tokens in both wire forms.
var mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

// groupMentionPattern matches the broadcast mentions, which carry no
// user ID and are emphasized as-is.
var groupMentionPattern = regexp.MustCompile(`@(everyone|here)`)

// Line renders the full terminal output for one message: an optional
// reply quote line, then timestamp, bracketed author, and content with
// mentions expanded, then an optional attachment suffix line.
func (f *Formatter) Line(ctx context.Context, message discord.Message) string {
	// The author's name arrived with the message; seed the resolver so
	// mentions of this user never hit the lookup service.
	f.resolver.Remember(message.Author.ID, message.Author.DisplayName())

	var line strings.Builder

	if quote := f.quoteLine(ctx, message); quote != "" {
		line.WriteString(quote)
		line.WriteString("\n")
	}

	authorStyle := f.styles.Author
	if message.Author.ID == f.selfID {
		authorStyle = f.styles.OwnAuthor
	}

	line.WriteString(f.styles.Timestamp.Render(formatTimestamp(message.Timestamp)))
	line.WriteString(" ")
	line.WriteString(authorStyle.Render("[" + message.Author.DisplayName() + "]"))
	line.WriteString(" ")
	line.WriteString(f.Format(ctx, message))

	return line.String()
}

// Format renders the message body: content with mentions expanded,
// plus the attachment suffix line when the message carries one.
func (f *Formatter) Format(ctx context.Context, message discord.Message) string {
	body := f.expandMentions(ctx, message.Content)
	if suffix := f.attachmentLine(ctx, message); suffix != "" {
		if body != "" {
			body += "\n"
		}
		body += suffix
	}
	return body
}

// expandMentions replaces mention tokens with styled display names. A
// failed resolution falls back to the raw numeric ID; it never fails
// the message.
func (f *Formatter) expandMentions(ctx context.Context, content string) string {
	expanded := mentionPattern.ReplaceAllStringFunc(content, func(token string) string {
		userID := mentionPattern.FindStringSubmatch(token)[1]
		return f.styles.Mention.Render("@" + f.resolver.Resolve(ctx, userID))
	})
	return groupMentionPattern.ReplaceAllStringFunc(expanded, func(token string) string {
		return f.styles.Mention.Render(token)
	})
}

// attachmentLine renders the filename suffix for the message's first
// attachment and, when display is enabled, downloads the file into the
// cache directory once per URL. The line itself renders every time the
// message does; only the download is deduplicated.
func (f *Formatter) attachmentLine(ctx context.Context, message discord.Message) string {
	if len(message.Attachments) == 0 {
		return ""
	}
	attachment := message.Attachments[0]

	if !f.showAttachments || f.downloader == nil {
		f.cache.MarkSeen(attachment.URL)
	} else if !f.cache.Seen(attachment.URL) {
		data, err := f.downloader.Download(ctx, attachment.URL)
		if err != nil {
			f.logger.Debug("attachment download failed",
				"filename", attachment.Filename, "error", err)
			// Leave the URL unseen so a later render can retry.
		} else if path, err := f.cache.Materialize(attachment.URL, attachment.Filename, data); err != nil {
			f.logger.Debug("attachment write failed",
				"filename", attachment.Filename, "error", err)
		} else {
			f.logger.Debug("attachment saved", "path", path)
		}
	}

	return f.styles.Attachment.Render("(attachment: " + attachment.Filename + ")")
}

// quoteLine renders the excerpt of the message a reply refers to. A
// reply whose parent was deleted gets a fixed placeholder. Non-replies
// render nothing.
func (f *Formatter) quoteLine(ctx context.Context, message discord.Message) string {
	if message.Reference == nil {
		return ""
	}
	if message.ReferencedMessage == nil {
		return f.styles.Quote.Render("    > Original message was deleted.")
	}

	parent := *message.ReferencedMessage
	excerpt := f.expandMentions(ctx, parent.Content)
	if len(parent.Attachments) > 0 {
		if excerpt != "" {
			excerpt += " "
		}
		excerpt += "(attachment: " + parent.Attachments[0].Filename + ")"
	}
	return f.styles.Quote.Render("    > " + parent.Author.DisplayName() + ": " + excerpt)
}

// formatTimestamp renders the wire timestamp as a local wall-clock
// time. Unparseable values degrade to the raw hour:minute slice.
func formatTimestamp(raw string) string {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if len(raw) >= 16 {
			return raw[11:16]
		}
		return raw
	}
	return parsed.Local().Format("15:04")
}
