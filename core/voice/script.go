package voice

import (
	"fmt"
	"strings"
	"time"

	"github.com/cheetahx/dispatch/core/model"
)

// SpeechRateWPM approximates TTS playback speed, used to size the recording
// window so capture outlives the spoken offer.
const SpeechRateWPM = 185

// RepeatPrompt is spoken before replaying the offer script.
const RepeatPrompt = "Sure, let me repeat that."

// BuildScript renders the spoken offer for one candidate.
func BuildScript(driver model.Driver, order model.Order, route model.RoutingResult) string {
	instructions := ""
	if order.SpecialInstructions != "" {
		instructions = fmt.Sprintf(" Note: %s.", order.SpecialInstructions)
	}
	return fmt.Sprintf(
		"Hi %s, Cheetah Express here. New job: pick up at %s, drop off at %s. "+
			"%.0f minutes to pickup, %.0f minute trip.%s Say yes to accept or no to decline.",
		driver.Name, order.Pickup.Label(), order.Dropoff.Label(),
		route.ETAToPickup.Minutes(), route.TotalTripTime.Minutes(), instructions)
}

// EstimatePlayback guesses how long the given text takes to speak, plus a
// second of headroom for synthesis startup.
func EstimatePlayback(text string) time.Duration {
	words := len(strings.Fields(text))
	spoken := float64(words) / SpeechRateWPM * 60
	return time.Duration(spoken*float64(time.Second)) + time.Second
}

// AckMessage is the closing phrase spoken after classification.
func AckMessage(outcome model.CallOutcome) string {
	switch outcome {
	case model.CallAccepted:
		return "Order confirmed."
	case model.CallDeclined:
		return "You have declined."
	default:
		return ""
	}
}
