package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
)

func TestSendMarkdownV2(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botT0KEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(config.Config{TelegramToken: "T0KEN"}, zerolog.Nop()).WithAPI(srv.URL + "/")
	require.NoError(t, c.SendMarkdownV2(context.Background(), 42, "*PLD*"))

	assert.Equal(t, 42.0, got["chat_id"])
	assert.Equal(t, "*PLD*", got["text"])
	assert.Equal(t, "MarkdownV2", got["parse_mode"])
}

func TestSendMessage_Plain(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	c := NewClient(config.Config{TelegramToken: "t"}, zerolog.Nop()).WithAPI(srv.URL)
	require.NoError(t, c.SendMessage(context.Background(), 1, "hi"))
	assert.NotContains(t, got, "parse_mode")
}

func TestSend_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false,"description":"Bad Request: can't parse entities"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(config.Config{TelegramToken: "t"}, zerolog.Nop()).WithAPI(srv.URL)
	err := c.SendMarkdownV2(context.Background(), 1, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")

	err = NewClient(config.Config{}, zerolog.Nop()).SendMessage(context.Background(), 1, "x")
	require.Error(t, err)
}
