// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// APISession is an authenticated session backed by the HTTP API.
type APISession struct {
	client *Client
	userID string
	token  string
}

// Compile-time interface check.
var _ Session = (*APISession)(nil)

// UserID returns the authenticated user's ID, or the empty string for
// a token-derived session that has not called WhoAmI yet.
func (s *APISession) UserID() string {
	return s.userID
}

// Token returns the session's token, for persistence across runs.
func (s *APISession) Token() string {
	return s.token
}

// WhoAmI fetches the authenticated user's ID and caches it on the
// session. Also serves as a cheap token validity check.
func (s *APISession) WhoAmI(ctx context.Context) (string, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/users/@me", s.token, nil)
	if err != nil {
		return "", fmt.Errorf("discord: whoami failed: %w", err)
	}

	var user currentUserResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("discord: failed to parse whoami response: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("discord: whoami response missing user ID")
	}

	s.userID = user.ID
	return user.ID, nil
}

// Messages returns the newest messages in the channel, newest first,
// at most limit entries.
func (s *APISession) Messages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	body, err := s.client.doRequest(ctx, http.MethodGet, "/channels/"+channelID+"/messages", s.token, nil, query)
	if err != nil {
		return nil, fmt.Errorf("discord: fetching messages for channel %s failed: %w", channelID, err)
	}

	var messages []Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, fmt.Errorf("discord: failed to parse messages response: %w", err)
	}
	return messages, nil
}

// SendMessage posts content to the channel and returns the created
// message.
func (s *APISession) SendMessage(ctx context.Context, channelID, content string, attachments []SentAttachment) (*Message, error) {
	request := sendMessageRequest{
		Content:     content,
		Attachments: attachments,
	}
	if request.Attachments == nil {
		request.Attachments = []SentAttachment{}
	}

	body, err := s.client.doRequest(ctx, http.MethodPost, "/channels/"+channelID+"/messages", s.token, request)
	if err != nil {
		return nil, fmt.Errorf("discord: sending message to channel %s failed: %w", channelID, err)
	}

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("discord: failed to parse send response: %w", err)
	}
	return &message, nil
}

// LookupUsername resolves a user ID to a username through the public
// lookup service. The endpoint is unauthenticated and aggressively
// rate limited; use IsRateLimited on the returned error to decide
// whether a delayed retry is worthwhile.
func (s *APISession) LookupUsername(ctx context.Context, userID string) (string, error) {
	requestURL := s.client.lookupBaseURL + "/v1/user/" + userID

	body, err := s.client.doRequestRaw(ctx, http.MethodGet, requestURL, "", "", nil)
	if err != nil {
		return "", fmt.Errorf("discord: username lookup for %s failed: %w", userID, err)
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return "", fmt.Errorf("discord: failed to parse lookup response: %w", err)
	}
	if lookup.Username == "" {
		return "", fmt.Errorf("discord: lookup response missing username for %s", userID)
	}
	return lookup.Username, nil
}

// DMChannels returns the user's direct message channels. Group DMs and
// other channel types are filtered out.
func (s *APISession) DMChannels(ctx context.Context) ([]Channel, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/users/@me/channels", s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("discord: fetching DM channels failed: %w", err)
	}

	var channels []Channel
	if err := json.Unmarshal(body, &channels); err != nil {
		return nil, fmt.Errorf("discord: failed to parse DM channels response: %w", err)
	}

	direct := make([]Channel, 0, len(channels))
	for _, channel := range channels {
		if channel.Type == ChannelTypeDM {
			direct = append(direct, channel)
		}
	}
	return direct, nil
}

// Guilds returns the guilds the user is a member of.
func (s *APISession) Guilds(ctx context.Context) ([]Guild, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/users/@me/guilds", s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("discord: fetching guilds failed: %w", err)
	}

	var guilds []Guild
	if err := json.Unmarshal(body, &guilds); err != nil {
		return nil, fmt.Errorf("discord: failed to parse guilds response: %w", err)
	}
	return guilds, nil
}

// GuildChannels returns the text channels of the guild. Voice channels,
// categories, and other types are filtered out.
func (s *APISession) GuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/guilds/"+guildID+"/channels", s.token, nil)
	if err != nil {
		return nil, fmt.Errorf("discord: fetching channels for guild %s failed: %w", guildID, err)
	}

	var channels []Channel
	if err := json.Unmarshal(body, &channels); err != nil {
		return nil, fmt.Errorf("discord: failed to parse guild channels response: %w", err)
	}

	text := make([]Channel, 0, len(channels))
	for _, channel := range channels {
		if channel.Type == ChannelTypeGuildText {
			text = append(text, channel)
		}
	}
	return text, nil
}

// RequestAttachmentUpload asks the service for a pre-authorized storage
// destination for one file.
func (s *APISession) RequestAttachmentUpload(ctx context.Context, channelID, filename string, size int64) (*UploadTarget, error) {
	request := attachmentUploadRequest{
		Files: []attachmentUploadFile{{Filename: filename, FileSize: size}},
	}

	body, err := s.client.doRequest(ctx, http.MethodPost, "/channels/"+channelID+"/attachments", s.token, request)
	if err != nil {
		return nil, fmt.Errorf("discord: requesting upload for %s failed: %w", filename, err)
	}

	var response attachmentUploadResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("discord: failed to parse upload grant response: %w", err)
	}
	if len(response.Attachments) == 0 {
		return nil, fmt.Errorf("discord: upload grant response contained no targets")
	}
	return &response.Attachments[0], nil
}

// UploadAttachment streams the file bytes to the storage destination
// granted by RequestAttachmentUpload.
func (s *APISession) UploadAttachment(ctx context.Context, target *UploadTarget, body io.Reader) error {
	if target == nil || target.UploadURL == "" {
		return fmt.Errorf("discord: upload target is missing its URL")
	}

	if _, err := s.client.doRequestRaw(ctx, http.MethodPut, target.UploadURL, s.token, "application/octet-stream", body); err != nil {
		return fmt.Errorf("discord: uploading %s failed: %w", target.UploadFilename, err)
	}
	return nil
}

// Download fetches the bytes behind an attachment URL.
func (s *APISession) Download(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := s.client.doRequestRaw(ctx, http.MethodGet, rawURL, s.token, "", nil)
	if err != nil {
		return nil, fmt.Errorf("discord: downloading %s failed: %w", rawURL, err)
	}
	return body, nil
}
