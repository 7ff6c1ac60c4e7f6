package models

// Swipe directions
const (
	DirectionPass      Direction = "pass"
	DirectionLike      Direction = "like"
	DirectionSuperlike Direction = "superlike"
)

// Notification kinds
const (
	NotificationKindLikedYou = "liked_you"
)

const (
	// SystemSenderID marks thread summaries written by the service, not a user.
	SystemSenderID = "system"
	// MatchGreeting is the summary a thread starts with.
	MatchGreeting = "Matched! Say Hi 👋"
	// EmptyThreadPreview is shown for a thread without summary text.
	EmptyThreadPreview = "Tap to chat"
	// AnonymousSenderName is used when the liker's profile has no name.
	AnonymousSenderName = "Someone"

	// MaxMessageLength is counted in runes after trimming.
	MaxMessageLength = 2000
	// ThreadKeySeparator joins the sorted, escaped participant ids of a
	// thread key.
	ThreadKeySeparator = "_"
)
