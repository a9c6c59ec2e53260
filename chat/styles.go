// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for every rendered element. All
// colors use ANSI 256-color codes for broad terminal compatibility.
type Styles struct {
	// Timestamp prefixes each message line.
	Timestamp lipgloss.Style
	// Author is the bracketed sender name.
	Author lipgloss.Style
	// OwnAuthor is the sender name for the logged-in user's messages.
	OwnAuthor lipgloss.Style
	// Mention highlights @displayname, @everyone, and @here tokens.
	Mention lipgloss.Style
	// Attachment is the filename suffix line under a message.
	Attachment lipgloss.Style
	// Quote is the indented reply excerpt above a reply.
	Quote lipgloss.Style
	// Banner is the welcome banner.
	Banner lipgloss.Style
	// Notice is for client-side informational and error lines.
	Notice lipgloss.Style
	// GuildHeader is a guild name line in channel listings.
	GuildHeader lipgloss.Style
	// Index is the local selection number in channel listings.
	Index lipgloss.Style
	// ChannelName is a channel or DM peer name in listings.
	ChannelName lipgloss.Style
	// OwnerTag marks guilds the user owns in listings.
	OwnerTag lipgloss.Style
}

// DefaultStyles returns the standard chubbcord palette.
func DefaultStyles() Styles {
	return Styles{
		Timestamp:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Author:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		OwnAuthor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		Mention:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		Attachment:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Quote:       lipgloss.NewStyle().Italic(true).Faint(true),
		Banner:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")),
		Notice:      lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
		GuildHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")),
		Index:       lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		ChannelName: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		OwnerTag:    lipgloss.NewStyle().Faint(true),
	}
}
