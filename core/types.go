package core

// IntentLabel identifies one of the three fixed intent categories.
// The declaration order is significant: classification tie-breaks resolve
// to the first label in this order.
type IntentLabel int

const (
	IntentCare IntentLabel = iota
	IntentIntimate
	IntentNeutral
)

// IntentLabels lists all labels in tie-break order.
var IntentLabels = [...]IntentLabel{IntentCare, IntentIntimate, IntentNeutral}

func (l IntentLabel) String() string {
	switch l {
	case IntentCare:
		return "care"
	case IntentIntimate:
		return "intimate"
	case IntentNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

// IntentScores is the result of a single classification call.
// Scores are normalized to sum to 1 when at least one raw similarity was
// nonzero, and are all zero otherwise (Primary defaults to IntentNeutral).
// A fresh value is produced per call; it is never persisted.
type IntentScores struct {
	Primary IntentLabel
	Scores  map[IntentLabel]float64
}

// Confidence returns the normalized score of the primary label.
func (s IntentScores) Confidence() float64 {
	return s.Scores[s.Primary]
}

// Message is a single conversation turn supplied by the caller.
// History ordering is the caller's responsibility; the core never
// fetches or reorders it.
type Message struct {
	Role    string // "user", "assistant", or a participant nickname
	Content string
}

// RelationshipFacts is structured onboarding data about the conversation's
// participants. All fields are optional; empty facts render nothing.
type RelationshipFacts struct {
	RelationshipType   string
	Anniversary        string
	CommunicationStyle string
	Interests          []string
}

// Empty reports whether no fact is set.
func (f RelationshipFacts) Empty() bool {
	return f.RelationshipType == "" && f.Anniversary == "" &&
		f.CommunicationStyle == "" && len(f.Interests) == 0
}
