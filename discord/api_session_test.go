// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWhoAmI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/users/@me" {
			t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		if got := request.Header.Get("Authorization"); got != "tok-abc" {
			t.Errorf("Authorization = %q, want bare token", got)
		}
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(map[string]any{"id": "100", "username": "alice"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	session := client.SessionFromToken("", "tok-abc")
	if session.UserID() != "" {
		t.Errorf("UserID = %q before WhoAmI, want empty", session.UserID())
	}

	userID, err := session.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if userID != "100" {
		t.Errorf("WhoAmI = %q, want 100", userID)
	}
	if session.UserID() != "100" {
		t.Errorf("UserID = %q after WhoAmI, want 100", session.UserID())
	}
}

func TestMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/channels/555/messages" {
			t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		if got := request.URL.Query().Get("limit"); got != "35" {
			t.Errorf("limit = %q, want 35", got)
		}
		writer.Header().Set("Content-Type", "application/json")
		// Newest first, as the real endpoint returns them.
		writer.Write([]byte(`[
			{"id": "3", "channel_id": "555", "author": {"id": "100", "username": "alice"}, "content": "newest"},
			{"id": "2", "channel_id": "555", "author": {"id": "200", "username": "bob"}, "content": "middle",
			 "message_reference": {"message_id": "1", "channel_id": "555"},
			 "referenced_message": null},
			{"id": "1", "channel_id": "555", "author": {"id": "100", "username": "alice"}, "content": "oldest",
			 "attachments": [{"id": "900", "filename": "cat.png", "url": "https://cdn.example/cat.png", "size": 1234}]}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	session := client.SessionFromToken("100", "tok-abc")

	messages, err := session.Messages(context.Background(), "555", 35)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	if messages[0].ID != "3" || messages[2].ID != "1" {
		t.Errorf("order not preserved: got %s..%s, want 3..1", messages[0].ID, messages[2].ID)
	}

	// Reply whose parent was deleted: reference present, parent nil.
	reply := messages[1]
	if reply.Reference == nil {
		t.Error("message 2 should carry a reference")
	}
	if reply.ReferencedMessage != nil {
		t.Error("message 2's parent should be nil (deleted)")
	}

	// Plain message: no reference at all.
	if messages[0].Reference != nil {
		t.Error("message 3 should not carry a reference")
	}

	attachment := messages[2].Attachments[0]
	if attachment.Filename != "cat.png" || attachment.Size != 1234 {
		t.Errorf("attachment = %+v, want cat.png/1234", attachment)
	}
}

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || request.URL.Path != "/channels/555/messages" {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
			return
		}

		var body map[string]any
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["content"] != "hello" {
			t.Errorf("content = %v, want hello", body["content"])
		}
		if _, ok := body["attachments"].([]any); !ok {
			t.Errorf("attachments should always be an array, got %T", body["attachments"])
		}

		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(map[string]any{
			"id": "42", "channel_id": "555", "content": "hello",
			"author": map[string]any{"id": "100", "username": "alice"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	session := client.SessionFromToken("100", "tok-abc")

	message, err := session.SendMessage(context.Background(), "555", "hello", nil)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if message.ID != "42" {
		t.Errorf("message ID = %q, want 42", message.ID)
	}
}

func TestLookupUsername(t *testing.T) {
	t.Run("successful lookup", func(t *testing.T) {
		lookupServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/v1/user/200" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}
			if got := request.Header.Get("Authorization"); got != "" {
				t.Errorf("lookup should be unauthenticated, got Authorization %q", got)
			}
			writer.Header().Set("Content-Type", "application/json")
			json.NewEncoder(writer).Encode(map[string]any{"username": "bob"})
		}))
		defer lookupServer.Close()

		client := newTestClient(t, "http://localhost:1", lookupServer.URL)
		session := client.SessionFromToken("100", "tok-abc")

		username, err := session.LookupUsername(context.Background(), "200")
		if err != nil {
			t.Fatalf("LookupUsername failed: %v", err)
		}
		if username != "bob" {
			t.Errorf("username = %q, want bob", username)
		}
	})

	t.Run("rate limited plain text", func(t *testing.T) {
		lookupServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusTooManyRequests)
			writer.Write([]byte("rate limited"))
		}))
		defer lookupServer.Close()

		client := newTestClient(t, "http://localhost:1", lookupServer.URL)
		session := client.SessionFromToken("100", "tok-abc")

		_, err := session.LookupUsername(context.Background(), "200")
		if !IsRateLimited(err) {
			t.Errorf("IsRateLimited = false, want true: %v", err)
		}
	})
}

func TestChannelEnumeration(t *testing.T) {
	t.Run("DM channels filtered by type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/users/@me/channels" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}
			writer.Header().Set("Content-Type", "application/json")
			writer.Write([]byte(`[
				{"id": "1", "type": 1, "recipients": [{"id": "200", "username": "bob"}]},
				{"id": "2", "type": 3, "recipients": [{"id": "200"}, {"id": "300"}]},
				{"id": "3", "type": 1, "recipients": [{"id": "400", "username": "carol", "global_name": "Carol"}]}
			]`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		session := client.SessionFromToken("100", "tok-abc")

		channels, err := session.DMChannels(context.Background())
		if err != nil {
			t.Fatalf("DMChannels failed: %v", err)
		}
		if len(channels) != 2 {
			t.Fatalf("got %d channels, want 2 (group DM filtered)", len(channels))
		}
		if channels[0].ID != "1" || channels[1].ID != "3" {
			t.Errorf("unexpected channels: %+v", channels)
		}
		if got := channels[1].Recipients[0].DisplayName(); got != "Carol" {
			t.Errorf("DisplayName = %q, want global name preferred", got)
		}
	})

	t.Run("guild channels filtered by type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/guilds/777/channels" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}
			writer.Header().Set("Content-Type", "application/json")
			writer.Write([]byte(`[
				{"id": "10", "name": "general", "type": 0},
				{"id": "11", "name": "voice-lounge", "type": 2},
				{"id": "12", "name": "random", "type": 0},
				{"id": "13", "name": "category", "type": 4}
			]`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		session := client.SessionFromToken("100", "tok-abc")

		channels, err := session.GuildChannels(context.Background(), "777")
		if err != nil {
			t.Fatalf("GuildChannels failed: %v", err)
		}
		if len(channels) != 2 {
			t.Fatalf("got %d channels, want 2 text channels", len(channels))
		}
		if channels[0].Name != "general" || channels[1].Name != "random" {
			t.Errorf("unexpected channels: %+v", channels)
		}
	})

	t.Run("guilds", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/users/@me/guilds" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}
			writer.Header().Set("Content-Type", "application/json")
			writer.Write([]byte(`[{"id": "777", "name": "Go Nuts", "owner": true}]`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		session := client.SessionFromToken("100", "tok-abc")

		guilds, err := session.Guilds(context.Background())
		if err != nil {
			t.Fatalf("Guilds failed: %v", err)
		}
		if len(guilds) != 1 || guilds[0].Name != "Go Nuts" || !guilds[0].Owner {
			t.Errorf("unexpected guilds: %+v", guilds)
		}
	})
}

func TestAttachmentUpload(t *testing.T) {
	var uploadedBody string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.Method == http.MethodPost && request.URL.Path == "/channels/555/attachments":
			var body attachmentUploadRequest
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode grant request: %v", err)
			}
			if len(body.Files) != 1 || body.Files[0].Filename != "cat.png" || body.Files[0].FileSize != 4 {
				t.Errorf("unexpected grant request: %+v", body)
			}
			writer.Header().Set("Content-Type", "application/json")
			// The real API returns an absolute storage URL; point it
			// back at this server.
			json.NewEncoder(writer).Encode(map[string]any{
				"attachments": []map[string]any{{
					"upload_url":      "http://" + request.Host + "/upload/cat.png",
					"upload_filename": "555/cat.png",
				}},
			})

		case request.Method == http.MethodPut && request.URL.Path == "/upload/cat.png":
			body, err := io.ReadAll(request.Body)
			if err != nil {
				t.Fatalf("failed to read upload body: %v", err)
			}
			uploadedBody = string(body)
			writer.WriteHeader(http.StatusOK)

		default:
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	session := client.SessionFromToken("100", "tok-abc")

	target, err := session.RequestAttachmentUpload(context.Background(), "555", "cat.png", 4)
	if err != nil {
		t.Fatalf("RequestAttachmentUpload failed: %v", err)
	}
	if target.UploadFilename != "555/cat.png" {
		t.Errorf("UploadFilename = %q, want 555/cat.png", target.UploadFilename)
	}

	if err := session.UploadAttachment(context.Background(), target, strings.NewReader("meow")); err != nil {
		t.Fatalf("UploadAttachment failed: %v", err)
	}
	if uploadedBody != "meow" {
		t.Errorf("uploaded body = %q, want meow", uploadedBody)
	}
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/attachments/900/cat.png" {
			t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		writer.Write([]byte("binary-bytes"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	session := client.SessionFromToken("100", "tok-abc")

	body, err := session.Download(context.Background(), server.URL+"/attachments/900/cat.png")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(body) != "binary-bytes" {
		t.Errorf("body = %q, want binary-bytes", body)
	}
}
