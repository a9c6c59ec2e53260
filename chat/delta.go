// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import "github.com/chubbcord/chubbcord/discord"

// Delta returns the messages in newer whose ID does not appear in
// older, preserving newer's order. Identity is by ID only, so an edit
// to an already-rendered message does not surface again. Duplicate IDs
// within newer are emitted once.
func Delta(newer, older []discord.Message) []discord.Message {
	rendered := make(map[string]struct{}, len(older))
	for _, message := range older {
		rendered[message.ID] = struct{}{}
	}

	var fresh []discord.Message
	for _, message := range newer {
		if _, ok := rendered[message.ID]; ok {
			continue
		}
		rendered[message.ID] = struct{}{}
		fresh = append(fresh, message)
	}
	return fresh
}
