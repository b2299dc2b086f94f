package actionsService

import (
	"CallWaitingAI/internal/api/actions"
	contextPkg "CallWaitingAI/pkg/context"
	"CallWaitingAI/pkg/formatter"
	"CallWaitingAI/pkg/minimax"
	"CallWaitingAI/pkg/outbound"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// loveTopicTriggers select the curated long-form script over the literal
// utterance. Matched case-insensitively as substrings.
var loveTopicTriggers = []string{"love", "romance"}

const loveScript = `The true meaning of love whispers to us in the quiet moments between heartbeats.

Love is not just an emotion, but a choice we make each day. It's the gentle touch that says "you matter" without words. It's seeing someone's flaws and choosing to stay, not despite them, but because they make that person beautifully human.

True love is patient. It doesn't rush or demand, but waits with open arms. It's the safety of knowing someone will catch you when you fall, and the courage to let yourself be vulnerable.

Love is found in small gestures - a warm cup of coffee on a cold morning, a listening ear after a difficult day, or simply sitting together in comfortable silence. It's choosing kindness when anger would be easier.

The deepest love starts with loving yourself - accepting your own imperfections and treating yourself with the same compassion you'd show a dear friend. Only then can you truly give love to others.

Love is not possession, but freedom. It's wanting the best for someone, even if that means letting them go. It's celebrating their dreams and supporting their journey, wherever it may lead.

In the end, love is the thread that connects all hearts, the light that guides us home, and the gentle reminder that we are never truly alone in this beautiful, complex world.`

// IsLoveTopic reports whether the utterance should get the curated love
// script and the gentle voice instead of a literal read-back.
func IsLoveTopic(text string) bool {
	lowered := strings.ToLower(text)
	for _, trigger := range loveTopicTriggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

func gentleVoice() minimax.VoiceSetting {
	return minimax.VoiceSetting{
		VoiceID: minimax.VoiceID("odia"),
		Speed:   0.9,
		Vol:     0.8,
		Pitch:   0,
	}
}

func neutralVoice() minimax.VoiceSetting {
	return minimax.VoiceSetting{
		VoiceID: minimax.VoiceID("marcy"),
		Speed:   1.0,
		Vol:     1.0,
		Pitch:   0,
	}
}

// sendToMinimax synthesizes speech for the latest utterance. Love-topic
// turns get the curated script in the gentle voice; everything else is read
// back literally in Marcy's voice. Synthesis failure is silent to the
// caller; the rendering channel decides its own fallback.
func (s *actionService) sendToMinimax(ctx context.Context, turn actions.TurnContext) []actions.Directive {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(turn.UserText) == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Debug("Empty utterance, nothing to synthesize")
		return nil
	}

	if s.speech == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Warn("Speech service not configured, synthesis skipped")
		return nil
	}

	text := turn.UserText
	voice := neutralVoice()
	if IsLoveTopic(turn.UserText) {
		text = loveScript
		voice = gentleVoice()
	}

	result, err := s.speech.Synthesize(ctx, minimax.SpeechRequest{
		Text:  text,
		Voice: voice,
		Audio: minimax.DefaultAudioSetting(),
	})
	if err != nil {
		fields := logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
			"error":      err.Error(),
		}
		switch kind, _ := outbound.KindOf(err); kind {
		case outbound.KindTimeout:
			s.log.WithFields(fields).Error("Speech synthesis timed out")
		case outbound.KindConnection:
			s.log.WithFields(fields).Error("Speech service unreachable")
		case outbound.KindProtocol:
			s.log.WithFields(fields).Error("Speech service rejected the request")
		default:
			s.log.WithFields(fields).Error("Speech synthesis failed")
		}
		return nil
	}

	audioURL := result.AudioURL
	if audioURL == "" && len(result.Audio) > 0 {
		audioURL = s.mirrorAudio(requestID, result.Audio)
	}

	if audioURL == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
		}).Warn("Synthesis returned audio with no usable locator")
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": turn.SessionID,
		"audio_url":  audioURL,
	}).Info("Speech synthesized")

	return []actions.Directive{
		actions.NewCustom("", map[string]interface{}{
			"audio_url":    audioURL,
			"tts_provider": "minimax",
		}),
		actions.NewUtterance(formatter.Format("I've prepared an audio reply for you.")),
	}
}

// mirrorAudio uploads hex-delivered audio bytes to S3 so the rendering
// channel always receives a locator rather than a payload.
func (s *actionService) mirrorAudio(requestID string, audio []byte) string {
	if s.s3 == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("No S3 bucket configured for audio mirror")
		return ""
	}

	name := fmt.Sprintf("tts/%d.mp3", time.Now().UnixNano())
	if s.utils != nil {
		if ulid, err := s.utils.NewULIDFromTimestamp(time.Now()); err == nil {
			name = fmt.Sprintf("tts/%s.mp3", ulid)
		}
	}

	url, err := s.s3.UploadBytes(name, audio)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to mirror synthesized audio")
		return ""
	}

	// The bucket may be private, so hand out a presigned URL. On presign
	// failure the raw object location is still better than nothing.
	signed, err := s.s3.PresignUrl(url)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to presign mirrored audio, using raw location")
		return url
	}

	return signed
}
