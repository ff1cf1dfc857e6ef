package entity

// Verdict is the moderation result for a piece of text.
type Verdict struct {
	TrustScore  int    `json:"trust_score"`
	TrustTag    string `json:"trust_tag"`
	Explanation string `json:"explanation"`
	Fallback    bool   `json:"fallback"`
}

// NeutralVerdict is used whenever the moderation service cannot give an answer.
func NeutralVerdict() Verdict {
	return Verdict{TrustScore: 50, TrustTag: "🟡", Explanation: "AI moderation unavailable", Fallback: true}
}

// ChainAction is the action byte recorded with every on-chain log entry.
type ChainAction uint8

const (
	ChainCreate ChainAction = iota
	ChainEdit
	ChainSoftDelete
)

func (a ChainAction) String() string {
	switch a {
	case ChainCreate:
		return "create"
	case ChainEdit:
		return "edit"
	case ChainSoftDelete:
		return "soft_delete"
	default:
		return "unknown"
	}
}

// ChainEntry is what gets submitted to the logging program.
type ChainEntry struct {
	DisplayName string
	Hash        []byte
	Timestamp   int64 // unix milliseconds
	Action      ChainAction
}
