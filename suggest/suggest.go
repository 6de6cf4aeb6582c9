// Package suggest produces heuristic reply suggestions from a room's
// recent messages. It is a pure function over its inputs and holds no
// state, so it stays outside the connection-handling core.
package suggest

import (
	"strings"

	"github.com/chatwave/chat_backend/models"
)

const maxSuggestions = 3

// Generate returns up to three suggested replies for the user, based on the
// most recent messages in chronological order.
func Generate(messages []models.Message, currentUserID uint) []string {
	if len(messages) == 0 {
		return []string{
			"Hello! How's everyone doing?",
			"What's on your mind today?",
			"Any updates to share?",
		}
	}

	last := messages[len(messages)-1]
	lastContent := strings.ToLower(last.Content)

	// Don't suggest responses to the user's own messages.
	if last.SenderID == currentUserID {
		return []string{
			"Looking forward to hearing everyone's thoughts!",
			"What do you all think?",
			"Anyone else have ideas on this?",
		}
	}

	var suggestions []string

	switch {
	case strings.Contains(lastContent, "?"):
		suggestions = questionSuggestions(lastContent)
	case containsAny(lastContent, "hello", "hi", "hey", "good morning", "good afternoon", "good evening"):
		suggestions = []string{
			"Hey there!",
			"Hello! Good to see you!",
			"Hi! How's it going?",
		}
	case containsAny(lastContent, "awesome", "great", "amazing", "fantastic"):
		suggestions = []string{
			"Absolutely! That's fantastic!",
			"I totally agree!",
			"That's really awesome!",
		}
	case containsAny(lastContent, "problem", "issue", "help", "stuck"):
		suggestions = []string{
			"I'd be happy to help!",
			"Let me know if you need assistance",
			"What can we do to help?",
		}
	case containsAny(lastContent, "thank", "thanks"):
		suggestions = []string{
			"You're very welcome!",
			"Happy to help!",
			"No problem at all!",
		}
	case containsAny(lastContent, "project", "work", "deadline", "meeting"):
		suggestions = []string{
			"Sounds like a solid plan!",
			"Let me know how I can contribute",
			"When do we need this completed?",
		}
	case containsAny(lastContent, "weekend", "friday", "monday"):
		suggestions = []string{
			"Hope you have a great weekend!",
			"Enjoy your time off!",
			"Looking forward to next week!",
		}
	default:
		suggestions = toneSuggestions(messages)
	}

	if len(suggestions) == 0 {
		suggestions = []string{
			"That's interesting!",
			"Thanks for sharing!",
			"Good point!",
		}
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func questionSuggestions(lastContent string) []string {
	switch {
	case strings.Contains(lastContent, "how are you") || strings.Contains(lastContent, "how's it going"):
		return []string{
			"I'm doing great, thanks for asking!",
			"Pretty good, how about you?",
			"All good here! How's your day going?",
		}
	case strings.Contains(lastContent, "what") && strings.Contains(lastContent, "think"):
		return []string{
			"I think that's a great point!",
			"Interesting perspective, I agree!",
			"That makes a lot of sense to me",
		}
	case strings.Contains(lastContent, "anyone") || strings.Contains(lastContent, "everybody"):
		return []string{
			"Count me in!",
			"I'm interested!",
			"Sounds good to me!",
		}
	default:
		return []string{
			"That's a good question!",
			"Let me think about that...",
			"Hmm, interesting point!",
		}
	}
}

// toneSuggestions falls back on the overall flow of the conversation when
// no keyword matched the last message.
func toneSuggestions(messages []models.Message) []string {
	positive := false
	for _, m := range messages {
		if containsAny(strings.ToLower(m.Content), "good", "nice", "love", "happy", "excited") {
			positive = true
			break
		}
	}

	lastFew := messages
	if len(lastFew) > 3 {
		lastFew = lastFew[len(lastFew)-3:]
	}
	discussion := len(lastFew) > 1
	for _, m := range lastFew {
		if len(m.Content) <= 10 {
			discussion = false
			break
		}
	}

	switch {
	case positive:
		return []string{
			"That's really nice to hear!",
			"I love that energy!",
			"Glad things are going well!",
		}
	case discussion:
		return []string{
			"That's an interesting point!",
			"I see what you mean",
			"Thanks for sharing that perspective",
		}
	default:
		return []string{
			"Interesting! Tell me more",
			"That makes sense",
			"I appreciate you sharing that",
		}
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
