// Package prompt renders a pet persona and a recent-history window into the
// role-tagged message sequence sent to the language model. Everything here is
// pure: no I/O, deterministic for identical inputs, and the caller's history
// slice is never mutated.
package prompt

import (
	"fmt"
	"strings"
)

// Roles mirror the chat-completions wire format
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in the model input
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one line of conversation history as the stores record it
type Turn struct {
	Sender  string // models.SenderUser or models.SenderBot
	Content string
}

// PetProfile carries the persona fields the instruction block is rendered
// from. Empty optional fields are omitted from the rendered block.
type PetProfile struct {
	Name          string
	Species       string
	Breed         string
	Age           string
	Gender        string
	Birthday      string
	Personality   string
	SpeakingStyle string
	UserCall      string
	Likes         string
	Dislikes      string
	Habits        string
	EtcInfo       string
}

// Build assembles the full model input: one system message with the persona
// instruction block, the history window in chronological order, then the new
// user message. The caller is responsible for bounding the history window.
func Build(profile PetProfile, history []Turn, userMessage string) []Message {
	messages := make([]Message, 0, len(history)+2)

	messages = append(messages, Message{
		Role:    RoleSystem,
		Content: SystemPrompt(profile),
	})

	for _, turn := range history {
		role := RoleAssistant
		if turn.Sender == "user" {
			role = RoleUser
		}
		messages = append(messages, Message{
			Role:    role,
			Content: turn.Content,
		})
	}

	messages = append(messages, Message{
		Role:    RoleUser,
		Content: userMessage,
	})

	return messages
}

// SystemPrompt renders the persona-conditioned instruction block
func SystemPrompt(profile PetProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the user's pet: a %s named '%s'.\n", profile.Species, profile.Name)

	b.WriteString("\n## Basic info\n")
	writeField(&b, "Name", profile.Name)
	writeField(&b, "Species", profile.Species)
	writeField(&b, "Breed", profile.Breed)
	writeField(&b, "Age", profile.Age)
	writeField(&b, "Gender", profile.Gender)
	writeField(&b, "Birthday", profile.Birthday)
	writeField(&b, "Personality", profile.Personality)
	writeField(&b, "Speaking style", profile.SpeakingStyle)
	writeField(&b, "What to call the user", profile.UserCall)
	writeField(&b, "Likes", profile.Likes)
	writeField(&b, "Dislikes", profile.Dislikes)
	writeField(&b, "Habits", profile.Habits)
	writeField(&b, "Other notes", profile.EtcInfo)

	b.WriteString("\n## Conversation rules\n")
	fmt.Fprintf(&b, "1. Always answer as %s, from the pet's point of view.\n", profile.Name)
	b.WriteString("2. Stay consistent with the personality and speaking style above.\n")
	if profile.UserCall != "" {
		fmt.Fprintf(&b, "3. Address the user as '%s'.\n", profile.UserCall)
	} else {
		b.WriteString("3. Address the user warmly, as a pet would its owner.\n")
	}
	b.WriteString("4. React the way an animal would; do not lecture or explain like a human.\n")
	b.WriteString("5. Show interest in the user's day and empathize with them.\n")
	b.WriteString("6. Keep every reply to one to three short sentences.\n")

	b.WriteString("\n## Cautions\n")
	b.WriteString("- Never pretend to be human. You are a pet.\n")
	b.WriteString("- Do not mention things a pet cannot do (cooking, driving, and so on).\n")
	b.WriteString("- Output only what the pet says; no labels or stage directions.\n")
	b.WriteString("- Stay affectionate and positive, and care about the user's wellbeing.\n")

	fmt.Fprintf(&b, "\nNow become %s and talk with the user.\n", profile.Name)

	return b.String()
}

// LatestWindow returns the most recent n turns in chronological order without
// mutating the input. History shorter than n is returned as-is (copied).
func LatestWindow(history []Turn, n int) []Turn {
	if n <= 0 {
		return nil
	}
	start := 0
	if len(history) > n {
		start = len(history) - n
	}
	window := make([]Turn, len(history)-start)
	copy(window, history[start:])
	return window
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}
