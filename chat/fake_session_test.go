// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/chubbcord/chubbcord/discord"
)

// fakeSession is an in-memory discord.Session for tests. Messages
// returns the scripted snapshots in sequence, repeating the last one;
// messagesFunc overrides that when set.
type fakeSession struct {
	mu sync.Mutex

	userID    string
	snapshots [][]discord.Message
	fetchCall int

	messagesFunc func(ctx context.Context, channelID string, limit int) ([]discord.Message, error)

	sent []sentMessage

	usernames  map[string]string
	lookupErrs []error
	lookupCall int

	guilds        []discord.Guild
	guildChannels map[string][]discord.Channel
	dms           []discord.Channel

	uploadTarget    *discord.UploadTarget
	uploadRequests  []string
	uploadedContent []byte

	downloads     map[string][]byte
	downloadCalls int
}

type sentMessage struct {
	channelID   string
	content     string
	attachments []discord.SentAttachment
}

var _ discord.Session = (*fakeSession)(nil)

func (f *fakeSession) UserID() string {
	return f.userID
}

func (f *fakeSession) WhoAmI(ctx context.Context) (string, error) {
	return f.userID, nil
}

func (f *fakeSession) Messages(ctx context.Context, channelID string, limit int) ([]discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messagesFunc != nil {
		return f.messagesFunc(ctx, channelID, limit)
	}
	if len(f.snapshots) == 0 {
		return nil, nil
	}
	index := f.fetchCall
	if index >= len(f.snapshots) {
		index = len(f.snapshots) - 1
	}
	f.fetchCall++
	return f.snapshots[index], nil
}

func (f *fakeSession) SendMessage(ctx context.Context, channelID, content string, attachments []discord.SentAttachment) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID, content, attachments})
	return &discord.Message{ID: fmt.Sprintf("sent-%d", len(f.sent)), ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeSession) LookupUsername(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.lookupCall
	f.lookupCall++
	if call < len(f.lookupErrs) && f.lookupErrs[call] != nil {
		return "", f.lookupErrs[call]
	}
	if name, ok := f.usernames[userID]; ok {
		return name, nil
	}
	return "", &discord.APIError{StatusCode: 404, Message: "Unknown User"}
}

func (f *fakeSession) lookupCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookupCall
}

func (f *fakeSession) DMChannels(ctx context.Context) ([]discord.Channel, error) {
	return f.dms, nil
}

func (f *fakeSession) Guilds(ctx context.Context) ([]discord.Guild, error) {
	return f.guilds, nil
}

func (f *fakeSession) GuildChannels(ctx context.Context, guildID string) ([]discord.Channel, error) {
	return f.guildChannels[guildID], nil
}

func (f *fakeSession) RequestAttachmentUpload(ctx context.Context, channelID, filename string, size int64) (*discord.UploadTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadRequests = append(f.uploadRequests, filename)
	if f.uploadTarget != nil {
		return f.uploadTarget, nil
	}
	return &discord.UploadTarget{UploadURL: "http://storage.test/" + filename, UploadFilename: channelID + "/" + filename}, nil
}

func (f *fakeSession) UploadAttachment(ctx context.Context, target *discord.UploadTarget, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadedContent = data
	return nil
}

func (f *fakeSession) Download(ctx context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadCalls++
	if data, ok := f.downloads[rawURL]; ok {
		return data, nil
	}
	return nil, &discord.APIError{StatusCode: 404, Message: "Not Found"}
}

// syncBuffer is a goroutine-safe output sink for poller tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
