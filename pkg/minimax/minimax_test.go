package minimax

import (
	"CallWaitingAI/pkg/outbound"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, baseURL string) ISpeech {
	t.Helper()
	t.Setenv("MINIMAX_API_KEY", "key")
	t.Setenv("MINIMAX_GROUP_ID", "group-1")
	t.Setenv("MINIMAX_API_URL", baseURL)
	t.Setenv("MINIMAX_MODEL", "")

	client, err := New(testLogger())
	require.NoError(t, err)
	return client
}

func speechReq() SpeechRequest {
	return SpeechRequest{
		Text: "Hello caller",
		Voice: VoiceSetting{
			VoiceID: VoiceID("marcy"),
			Speed:   1.0,
			Vol:     1.0,
		},
		Audio: DefaultAudioSetting(),
	}
}

func TestSynthesize_RequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data":{"audio_url":"https://cdn/x.mp3"},"base_resp":{"status_code":0}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	result, err := client.Synthesize(context.Background(), speechReq())
	require.NoError(t, err)

	assert.Equal(t, "/t2a_v2", gotPath)
	assert.Equal(t, "Bearer key", gotAuth)
	assert.Equal(t, "group-1", gotBody["group_id"])
	assert.Equal(t, "speech-02-hd", gotBody["model"])
	assert.Equal(t, "Hello caller", gotBody["text"])

	voice, ok := gotBody["voice_setting"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, VoiceID("marcy"), voice["voice_id"])

	audio, ok := gotBody["audio_setting"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(32000), audio["sample_rate"])
	assert.Equal(t, "mp3", audio["format"])

	assert.Equal(t, "https://cdn/x.mp3", result.AudioURL)
	assert.Empty(t, result.Audio)
}

func TestSynthesize_HexAudioDecoded(t *testing.T) {
	payload := []byte{0x49, 0x44, 0x33, 0x04}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]interface{}{
			"data":      map[string]interface{}{"audio": hex.EncodeToString(payload)},
			"base_resp": map[string]interface{}{"status_code": 0},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	result, err := client.Synthesize(context.Background(), speechReq())
	require.NoError(t, err)
	assert.Empty(t, result.AudioURL)
	assert.Equal(t, payload, result.Audio)
}

func TestSynthesize_BaseRespFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"base_resp":{"status_code":1004,"status_msg":"invalid api key"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Synthesize(context.Background(), speechReq())
	require.Error(t, err)

	kind, ok := outbound.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, outbound.KindProtocol, kind)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestSynthesize_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Synthesize(context.Background(), speechReq())
	require.Error(t, err)

	kind, ok := outbound.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, outbound.KindProtocol, kind)
}

func TestSynthesize_NoAudioInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"base_resp":{"status_code":0}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.Synthesize(context.Background(), speechReq())
	require.Error(t, err)

	kind, ok := outbound.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, outbound.KindProtocol, kind)
}

func TestVoiceID(t *testing.T) {
	assert.Equal(t, "moss_audio_fdad4786-ab84-11f0-a816-023f15327f7a", VoiceID("marcy"))
	assert.Equal(t, "moss_audio_4e6eb029-ab89-11f0-a74c-2a7a0b4baedc", VoiceID("odia"))
	assert.Equal(t, VoiceID("ODIA"), VoiceID("odia"))
	assert.Equal(t, VoiceID("odia"), VoiceID("somebody else"))
}

func TestNew_Unconfigured(t *testing.T) {
	t.Setenv("MINIMAX_API_KEY", "")
	t.Setenv("MINIMAX_GROUP_ID", "")

	_, err := New(testLogger())
	assert.ErrorIs(t, err, outbound.ErrNotConfigured)
}
