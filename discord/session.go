// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"io"
)

// Session is an authenticated connection to the messaging service.
// It captures the operations the chat layer consumes, so tests can
// substitute a fake implementation without a network.
type Session interface {
	// UserID returns the authenticated user's ID. May be empty for
	// token-derived sessions until WhoAmI has been called.
	UserID() string

	// WhoAmI fetches the authenticated user's ID from the service and
	// caches it on the session.
	WhoAmI(ctx context.Context) (string, error)

	// Messages returns the newest messages in the channel, newest
	// first, at most limit entries.
	Messages(ctx context.Context, channelID string, limit int) ([]Message, error)

	// SendMessage posts content to the channel. attachments references
	// files previously uploaded via RequestAttachmentUpload and
	// UploadAttachment; it may be nil for a text-only message.
	SendMessage(ctx context.Context, channelID, content string, attachments []SentAttachment) (*Message, error)

	// LookupUsername resolves a user ID to a username through the
	// public lookup service. The result is not memoized here; the chat
	// layer caches it.
	LookupUsername(ctx context.Context, userID string) (string, error)

	// DMChannels returns the user's direct message channels.
	DMChannels(ctx context.Context) ([]Channel, error)

	// Guilds returns the guilds the user is a member of.
	Guilds(ctx context.Context) ([]Guild, error)

	// GuildChannels returns the text channels of the guild.
	GuildChannels(ctx context.Context, guildID string) ([]Channel, error)

	// RequestAttachmentUpload asks the service for a pre-authorized
	// storage destination for one file.
	RequestAttachmentUpload(ctx context.Context, channelID, filename string, size int64) (*UploadTarget, error)

	// UploadAttachment streams the file bytes to the storage
	// destination granted by RequestAttachmentUpload.
	UploadAttachment(ctx context.Context, target *UploadTarget, body io.Reader) error

	// Download fetches the bytes behind an attachment URL.
	Download(ctx context.Context, rawURL string) ([]byte, error)
}
