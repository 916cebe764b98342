package classifier

import "github.com/Afran-zero/ai-chat-nfsw/core"

// Reference sets are the fixed similarity anchors for each intent label.
// They are configuration, not user data: their embeddings are computed once
// per process and cached for the Classifier's lifetime.

var careReferences = []string{
	"I need relationship advice",
	"How can I communicate better with my partner",
	"I'm feeling sad and need support",
	"Help me understand my emotions",
	"What should I do about this conflict",
	"I need help with trust issues",
	"How do I express my feelings",
	"We're having communication problems",
	"I want to improve our relationship",
	"How do I deal with jealousy",
}

var intimateReferences = []string{
	"I want something romantic and intimate",
	"Let's talk about our desires",
	"I'm in the mood for something playful",
	"Tell me something seductive",
	"I want to explore our intimacy",
	"Let's have some adult fun",
	"I'm feeling flirty tonight",
	"Talk dirty to me",
	"Let's spice things up",
	"I want something sensual",
}

var neutralReferences = []string{
	"What's the weather like",
	"Tell me a joke",
	"What should we have for dinner",
	"Plan our weekend",
	"Remind me about the appointment",
	"What movie should we watch",
	"Help me with this recipe",
	"What time is it",
	"Tell me about something interesting",
	"Let's play a game",
}

var referenceSets = map[core.IntentLabel][]string{
	core.IntentCare:     careReferences,
	core.IntentIntimate: intimateReferences,
	core.IntentNeutral:  neutralReferences,
}
