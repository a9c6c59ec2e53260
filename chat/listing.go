// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/chubbcord/chubbcord/discord"
)

// listingWidth is the render width of channel listings. Names longer
// than the line allows are truncated with an ellipsis.
const listingWidth = 80

// maxNameWidth bounds guild and channel names within the line.
const maxNameWidth = 70

// Listing maps the ephemeral selection indices shown by a ":li" or
// ":dm" listing to channel IDs. It is rebuilt from scratch on every
// listing and never persisted; an index is only meaningful for the
// prompt that directly follows it.
type Listing struct {
	byIndex map[int]string
}

// ChannelID returns the channel for a selection index.
func (l *Listing) ChannelID(index int) (string, bool) {
	id, ok := l.byIndex[index]
	return id, ok
}

// Len returns the number of selectable entries.
func (l *Listing) Len() int {
	return len(l.byIndex)
}

// BuildGuildListing enumerates the user's guilds and their text
// channels, returning the index mapping and the rendered tree.
func BuildGuildListing(ctx context.Context, session discord.Session, styles Styles) (*Listing, string, error) {
	guilds, err := session.Guilds(ctx)
	if err != nil {
		return nil, "", err
	}

	listing := &Listing{byIndex: make(map[int]string)}
	var rendered strings.Builder
	index := 1

	for _, guild := range guilds {
		rendered.WriteString(guildHeader(guild, styles))
		rendered.WriteString("\n")

		channels, err := session.GuildChannels(ctx, guild.ID)
		if err != nil {
			return nil, "", err
		}
		for _, channel := range channels {
			listing.byIndex[index] = channel.ID
			rendered.WriteString(entryLine(index, "#"+channel.Name, styles))
			rendered.WriteString("\n")
			index++
		}
	}

	return listing, rendered.String(), nil
}

// BuildDMListing enumerates the user's direct message channels,
// returning the index mapping and the rendered list. Peer names come
// from the recipient metadata; resolver, when non-nil, is seeded with
// them so later mentions skip the lookup service.
func BuildDMListing(ctx context.Context, session discord.Session, resolver *UserResolver, styles Styles) (*Listing, string, error) {
	channels, err := session.DMChannels(ctx)
	if err != nil {
		return nil, "", err
	}

	listing := &Listing{byIndex: make(map[int]string)}
	var rendered strings.Builder
	index := 1

	for _, channel := range channels {
		var names []string
		for _, recipient := range channel.Recipients {
			names = append(names, recipient.DisplayName())
			if resolver != nil {
				resolver.Remember(recipient.ID, recipient.DisplayName())
			}
		}
		name := strings.Join(names, ", ")
		if name == "" {
			name = channel.Name
		}

		listing.byIndex[index] = channel.ID
		rendered.WriteString(entryLine(index, "@"+name, styles))
		rendered.WriteString("\n")
		index++
	}

	return listing, rendered.String(), nil
}

// guildHeader renders a guild name line, with the owner tag pushed to
// the right edge when the user owns the guild.
func guildHeader(guild discord.Guild, styles Styles) string {
	header := styles.GuildHeader.Render(truncateName(guild.Name, maxNameWidth))
	if !guild.Owner {
		return header
	}

	tag := styles.OwnerTag.Render("(owner)")
	// Measure display cells, not bytes: strip styling first, then
	// account for wide runes in emoji or CJK guild names.
	used := runewidth.StringWidth(ansi.Strip(header)) + runewidth.StringWidth(ansi.Strip(tag))
	padding := listingWidth - used
	if padding < 1 {
		padding = 1
	}
	return header + strings.Repeat(" ", padding) + tag
}

// entryLine renders one selectable row: right-aligned index, then the
// channel or peer name.
func entryLine(index int, name string, styles Styles) string {
	return fmt.Sprintf("  %s  %s",
		styles.Index.Render(fmt.Sprintf("%3d", index)),
		styles.ChannelName.Render(truncateName(name, maxNameWidth)))
}

// truncateName bounds a name to max display cells, appending an
// ellipsis when it was cut.
func truncateName(name string, max int) string {
	if runewidth.StringWidth(name) <= max {
		return name
	}
	return runewidth.Truncate(name, max, "…")
}
