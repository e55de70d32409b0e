package domain

// Reaction is a lightweight emoji-style response dispatched against a story.
type Reaction string

const (
	ReactionLike  Reaction = "like"
	ReactionLove  Reaction = "love"
	ReactionLaugh Reaction = "laugh"
	ReactionWow   Reaction = "wow"
	ReactionSad   Reaction = "sad"
	ReactionFire  Reaction = "fire"
)

// Reactions returns the fixed panel order.
func Reactions() []Reaction {
	return []Reaction{
		ReactionLike,
		ReactionLove,
		ReactionLaugh,
		ReactionWow,
		ReactionSad,
		ReactionFire,
	}
}

func (r Reaction) Valid() bool {
	switch r {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionFire:
		return true
	}
	return false
}

func (r Reaction) Emoji() string {
	switch r {
	case ReactionLike:
		return "👍"
	case ReactionLove:
		return "❤️"
	case ReactionLaugh:
		return "😂"
	case ReactionWow:
		return "😮"
	case ReactionSad:
		return "😢"
	case ReactionFire:
		return "🔥"
	}
	return "❔"
}
