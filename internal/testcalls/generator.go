package testcalls

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Speech profiles for generated user turns.
const (
	profileFluent   = 0
	profileHesitant = 1
)

const randomFloatDivisor = 1_000_000

// Word pools for synthetic utterances.
var agentPhrases = []string{
	"hello let's practice describing your morning routine",
	"great job can you tell me what you had for breakfast",
	"now try saying that sentence a little faster",
}

var userTokens = []string{
	"good", "morning", "i", "woke", "up", "at", "seven", "thirty",
	"then", "had", "breakfast", "with", "my", "family", "scrambled",
	"eggs", "and", "toast", "orange", "juice",
}

// wordTiming mirrors the webhook word schema.
type wordTiming struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// turnPayload mirrors the webhook turn schema.
type turnPayload struct {
	Role  string       `json:"role"`
	Words []wordTiming `json:"words"`
}

// callPayload mirrors the webhook delivery schema.
type callPayload struct {
	Type           string   `json:"type"`
	EventTimestamp int64    `json:"event_timestamp"`
	Data           callData `json:"data"`
}

type callData struct {
	AgentID        string        `json:"agent_id"`
	ConversationID string        `json:"conversation_id"`
	Status         string        `json:"status"`
	UserID         string        `json:"user_id"`
	Transcript     []turnPayload `json:"transcript"`
}

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [0, n).
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateCall builds one synthetic conversation. Roughly half the
// conversations use the hesitant profile, which produces slow speech and
// long inter-word gaps so dysarthria indicators fire.
func generateCall(eventTimestamp int64) callPayload {
	profile := profileFluent
	if randomFloat() < 0.5 {
		profile = profileHesitant
	}

	conversationID := "conv_" + uuid.New().String()
	transcript := []turnPayload{}
	clock := 0.0

	for i := 0; i < 3; i++ {
		agentTurn := agentTurnAt(agentPhrases[i%len(agentPhrases)], &clock)
		transcript = append(transcript, agentTurn)
		transcript = append(transcript, userTurnAt(profile, &clock))
	}

	return callPayload{
		Type:           "post_call_transcription",
		EventTimestamp: eventTimestamp,
		Data: callData{
			AgentID:        "agent_loadtest",
			ConversationID: conversationID,
			Status:         "done",
			UserID:         "user_" + uuid.New().String(),
			Transcript:     transcript,
		},
	}
}

// agentTurnAt emits an agent phrase at a fluent pace starting at *clock.
func agentTurnAt(phrase string, clock *float64) turnPayload {
	words := []wordTiming{}
	for _, tok := range strings.Fields(phrase) {
		start := *clock
		end := start + 0.25
		words = append(words, wordTiming{Text: tok, Start: start, End: end})
		*clock = end + 0.05
	}
	*clock += 0.5
	return turnPayload{Role: "agent", Words: words}
}

// userTurnAt emits a user turn whose pacing depends on the speech profile.
func userTurnAt(profile int, clock *float64) turnPayload {
	count := 4 + randomInt(8)
	words := []wordTiming{}
	for i := 0; i < count; i++ {
		tok := userTokens[randomInt(len(userTokens))]

		gap := 0.05 + randomFloat()*0.1
		wordDur := 0.2 + randomFloat()*0.15
		if profile == profileHesitant {
			// Long hesitations past the pause threshold, slow articulation.
			gap = 0.6 + randomFloat()*0.8
			wordDur = 0.35 + randomFloat()*0.3
		}

		start := *clock
		if i > 0 {
			start += gap
		}
		end := start + wordDur
		words = append(words, wordTiming{Text: tok, Start: start, End: end})
		*clock = end
	}
	*clock += 0.5
	return turnPayload{Role: "user", Words: words}
}
