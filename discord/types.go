// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package discord

// Channel types retained by the client. All other types (voice,
// category, forum, ...) are filtered out at the API boundary.
const (
	// ChannelTypeGuildText is a text channel inside a guild.
	ChannelTypeGuildText = 0
	// ChannelTypeDM is a one-to-one direct message channel.
	ChannelTypeDM = 1
)

// Author identifies the sender of a message.
type Author struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
}

// DisplayName returns the author's display name, preferring the global
// name over the account username when set.
func (a Author) DisplayName() string {
	if a.GlobalName != "" {
		return a.GlobalName
	}
	return a.Username
}

// Attachment is a read-only descriptor of a file attached to a message.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// MessageReference marks a message as a reply to another message.
// The API sends this field only for replies.
type MessageReference struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
}

// Message is one chat message as returned by the messages endpoint.
// Messages are immutable once fetched; every fetch decodes fresh
// copies, so snapshots never alias each other.
//
// Reference != nil marks the message as a reply. ReferencedMessage is
// the parent's content, or nil when the parent was deleted — the API
// sends an explicit null in that case, so the two nils are
// distinguished by Reference.
type Message struct {
	ID                string            `json:"id"`
	ChannelID         string            `json:"channel_id"`
	Author            Author            `json:"author"`
	Content           string            `json:"content"`
	Timestamp         string            `json:"timestamp"`
	Attachments       []Attachment      `json:"attachments"`
	Reference         *MessageReference `json:"message_reference,omitempty"`
	ReferencedMessage *Message          `json:"referenced_message,omitempty"`
}

// Channel is a guild text channel or a direct message channel.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
	// Recipients holds the DM peers. Empty for guild channels.
	Recipients []Author `json:"recipients,omitempty"`
}

// Guild is a server the user is a member of.
type Guild struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner bool   `json:"owner"`
}

// AuthResponse is returned by Login.
type AuthResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// loginRequest is the request body for password login.
type loginRequest struct {
	Login         string  `json:"login"`
	Password      string  `json:"password"`
	Undelete      bool    `json:"undelete"`
	LoginSource   *string `json:"login_source"`
	GiftCodeSKUID *string `json:"gift_code_sku_id"`
}

// currentUserResponse is returned by the /users/@me endpoint.
type currentUserResponse struct {
	ID string `json:"id"`
}

// lookupResponse is returned by the public username lookup service.
type lookupResponse struct {
	Username string `json:"username"`
}

// UploadTarget is a pre-authorized storage destination for one
// attachment, returned by RequestAttachmentUpload and consumed by
// UploadAttachment.
type UploadTarget struct {
	// UploadURL is the absolute URL to PUT the file bytes to.
	UploadURL string `json:"upload_url"`
	// UploadFilename is the name of the file in remote storage,
	// referenced when sending the accompanying message.
	UploadFilename string `json:"upload_filename"`
}

// SentAttachment references an uploaded file in an outgoing message.
type SentAttachment struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	UploadedFilename string `json:"uploaded_filename"`
}

// attachmentUploadRequest asks for upload targets for a set of files.
type attachmentUploadRequest struct {
	Files []attachmentUploadFile `json:"files"`
}

type attachmentUploadFile struct {
	Filename string `json:"filename"`
	FileSize int64  `json:"file_size"`
}

// attachmentUploadResponse carries the granted upload targets, in the
// order of the requested files.
type attachmentUploadResponse struct {
	Attachments []UploadTarget `json:"attachments"`
}

// sendMessageRequest is the request body for sending a message.
type sendMessageRequest struct {
	Content     string           `json:"content"`
	Attachments []SentAttachment `json:"attachments"`
}
