package minimax

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"CallWaitingAI/pkg/outbound"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.minimax.io/v1"
	defaultModel   = "speech-02-hd"
)

// Speech synthesis gets the longest outbound budget in the process.
const synthesizeTimeout = 15 * time.Second

type VoiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Vol     float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
}

type AudioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
}

type SpeechRequest struct {
	Text  string
	Voice VoiceSetting
	Audio AudioSetting
}

// SpeechResult carries either a hosted audio locator or the raw audio
// bytes, depending on what the API returned for this request.
type SpeechResult struct {
	AudioURL string
	Audio    []byte
}

type ISpeech interface {
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error)
}

type minimaxClient struct {
	baseURL string
	apiKey  string
	groupID string
	model   string
	client  *http.Client
	log     *logrus.Logger
}

func New(log *logrus.Logger) (ISpeech, error) {
	apiKey := os.Getenv("MINIMAX_API_KEY")
	groupID := os.Getenv("MINIMAX_GROUP_ID")
	if apiKey == "" || groupID == "" {
		return nil, outbound.ErrNotConfigured
	}

	baseURL := os.Getenv("MINIMAX_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := os.Getenv("MINIMAX_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &minimaxClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		groupID: groupID,
		model:   model,
		client:  &http.Client{Timeout: synthesizeTimeout},
		log:     log,
	}, nil
}

// synthesizeResponse is the single response schema for t2a_v2. The audio
// comes back hex-encoded in data.audio, or as a hosted URL on accounts
// with file delivery enabled.
type synthesizeResponse struct {
	Data struct {
		Audio    string `json:"audio"`
		AudioURL string `json:"audio_url"`
	} `json:"data"`
	BaseResp struct {
		StatusCode int    `json:"status_code"`
		StatusMsg  string `json:"status_msg"`
	} `json:"base_resp"`
}

func (m *minimaxClient) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error) {
	const op = "minimax.synthesize"

	payload := map[string]interface{}{
		"group_id":      m.groupID,
		"model":         m.model,
		"text":          req.Text,
		"voice_setting": req.Voice,
		"audio_setting": req.Audio,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, outbound.NewMalformed(op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/t2a_v2", bytes.NewReader(body))
	if err != nil {
		return nil, outbound.NewMalformed(op, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, outbound.Classify(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, outbound.NewMalformed(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, outbound.NewProtocol(op, resp.StatusCode, string(raw))
	}

	var decoded synthesizeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, outbound.NewMalformed(op, err)
	}

	if decoded.BaseResp.StatusCode != 0 {
		return nil, outbound.NewProtocol(op, resp.StatusCode, decoded.BaseResp.StatusMsg)
	}

	if decoded.Data.AudioURL != "" {
		return &SpeechResult{AudioURL: decoded.Data.AudioURL}, nil
	}

	if decoded.Data.Audio != "" {
		audio, err := hex.DecodeString(decoded.Data.Audio)
		if err != nil {
			return nil, outbound.NewMalformed(op, err)
		}
		return &SpeechResult{Audio: audio}, nil
	}

	m.log.WithFields(logrus.Fields{
		"status_msg": decoded.BaseResp.StatusMsg,
	}).Warn("Synthesis response carried no audio")

	return nil, outbound.NewProtocol(op, resp.StatusCode, "response carried no audio")
}

// VoiceID resolves a persona name to its MiniMax voice. Unknown names get
// the default African male voice.
func VoiceID(name string) string {
	voices := map[string]string{
		"odia":   "moss_audio_4e6eb029-ab89-11f0-a74c-2a7a0b4baedc",
		"marcus": "moss_audio_a59cd561-ab87-11f0-a74c-2a7a0b4baedc",
		"marcy":  "moss_audio_fdad4786-ab84-11f0-a816-023f15327f7a",
		"joslyn": "moss_audio_141d8c4c-a6f8-11f0-84c1-0ec6fa858d82",
	}

	if id, ok := voices[strings.ToLower(name)]; ok {
		return id
	}
	return voices["odia"]
}

// DefaultAudioSetting is the MP3 profile used for every synthesis call.
func DefaultAudioSetting() AudioSetting {
	return AudioSetting{
		SampleRate: 32000,
		Bitrate:    128000,
		Format:     "mp3",
	}
}
