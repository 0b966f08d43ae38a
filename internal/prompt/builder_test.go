package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPromptContainsPersonaName(t *testing.T) {
	p := PetProfile{
		Name:          "Momo",
		Species:       "Cat",
		Personality:   "aloof but affectionate",
		SpeakingStyle: "tsundere",
		UserCall:      "servant",
	}

	rendered := SystemPrompt(p)

	assert.Contains(t, rendered, "Momo")
	assert.Contains(t, rendered, "Cat")
	assert.Contains(t, rendered, "aloof but affectionate")
	assert.Contains(t, rendered, "Address the user as 'servant'")
}

func TestSystemPromptOmitsEmptyFields(t *testing.T) {
	p := PetProfile{
		Name:    "Momo",
		Species: "Cat",
	}

	rendered := SystemPrompt(p)

	assert.NotContains(t, rendered, "Breed:")
	assert.NotContains(t, rendered, "Likes:")
	assert.NotContains(t, rendered, "Dislikes:")
	assert.NotContains(t, rendered, "Birthday:")
	assert.NotContains(t, rendered, "Other notes:")
}

func TestSystemPromptDeterministic(t *testing.T) {
	p := PetProfile{
		Name:        "Bandi",
		Species:     "Dog",
		Breed:       "Shiba Inu",
		Likes:       "walks, snacks",
		Dislikes:    "loud noises",
		Personality: "playful",
	}

	assert.Equal(t, SystemPrompt(p), SystemPrompt(p))
}

func TestBuildMessageOrder(t *testing.T) {
	p := PetProfile{Name: "Momo", Species: "Cat"}
	history := []Turn{
		{Sender: "user", Content: "hello"},
		{Sender: "bot", Content: "meow"},
		{Sender: "user", Content: "are you hungry?"},
		{Sender: "bot", Content: "always"},
	}

	messages := Build(p, history, "want a snack?")

	require.Len(t, messages, 6)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Equal(t, "hello", messages[1].Content)
	assert.Equal(t, RoleAssistant, messages[2].Role)
	assert.Equal(t, "meow", messages[2].Content)
	assert.Equal(t, RoleUser, messages[5].Role)
	assert.Equal(t, "want a snack?", messages[5].Content)
}

func TestBuildDoesNotMutateHistory(t *testing.T) {
	p := PetProfile{Name: "Momo", Species: "Cat"}
	history := []Turn{
		{Sender: "user", Content: "hello"},
		{Sender: "bot", Content: "meow"},
	}
	original := make([]Turn, len(history))
	copy(original, history)

	Build(p, history, "still there?")

	assert.Equal(t, original, history)
}

func TestLatestWindowBoundsAndOrder(t *testing.T) {
	var history []Turn
	for i := 0; i < 30; i++ {
		history = append(history, Turn{Sender: "user", Content: fmt.Sprintf("msg-%d", i)})
	}

	window := LatestWindow(history, 10)

	require.Len(t, window, 10)
	assert.Equal(t, "msg-20", window[0].Content)
	assert.Equal(t, "msg-29", window[9].Content)

	// Shorter history comes back whole
	short := LatestWindow(history[:3], 10)
	require.Len(t, short, 3)
	assert.Equal(t, "msg-0", short[0].Content)

	// The window is a copy, not a view
	window[0].Content = "mutated"
	assert.Equal(t, "msg-20", history[20].Content)
}
