package voice

import (
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Intent is the classified meaning of a driver's spoken response.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentAccept
	IntentDecline
	IntentRepeat
)

// Keyword lists are ordered slices so classification is deterministic.
// Matching is case-insensitive substring, precedence repeat > accept > decline.
var (
	repeatKeywords = []string{
		"repeat", "again", "say again", "come again", "pardon",
		"didn't catch", "what was that", "one more time",
	}
	acceptKeywords = []string{
		"yes", "yeah", "yep", "sure", "accept", "okay", "ok",
		"will do", "absolutely", "affirmative", "i will", "i can",
	}
	declineKeywords = []string{
		"no", "nope", "nah", "decline", "can't", "cannot", "won't",
		"busy", "unavailable", "negative", "not available",
	}
)

// Classify maps a transcript to an intent. Repeat requests win over
// accept/decline so a driver asking to hear the offer again is never
// committed by a stray "yes".
func Classify(transcript string) Intent {
	t := strings.ToLower(transcript)
	if containsAny(t, repeatKeywords) {
		return IntentRepeat
	}
	return ClassifyResponse(transcript)
}

// ClassifyResponse classifies accept/decline only, used once the repeat cap
// is exhausted. Accept wins when both keyword sets match.
func ClassifyResponse(transcript string) Intent {
	t := strings.ToLower(transcript)
	if containsAny(t, acceptKeywords) {
		return IntentAccept
	}
	if containsAny(t, declineKeywords) {
		return IntentDecline
	}
	return IntentUnknown
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// emotionScores maps utterance emotion labels to a 0-1 sentiment value.
var emotionScores = map[string]float64{
	"happy":      0.90,
	"excited":    0.85,
	"satisfied":  0.80,
	"calm":       0.65,
	"neutral":    0.60,
	"confused":   0.40,
	"fearful":    0.35,
	"sad":        0.30,
	"frustrated": 0.25,
	"angry":      0.20,
}

const neutralSentiment = 0.5

// Sentiment averages the emotion labels of a transcription's utterances.
// Unlabeled or unknown emotions count as neutral; no utterances at all
// yields the neutral default.
func Sentiment(utterances []Utterance) float64 {
	if len(utterances) == 0 {
		return neutralSentiment
	}
	scores := make([]float64, len(utterances))
	for i, u := range utterances {
		score, ok := emotionScores[strings.ToLower(u.Emotion)]
		if !ok {
			score = neutralSentiment
		}
		scores[i] = score
	}
	return stat.Mean(scores, nil)
}
