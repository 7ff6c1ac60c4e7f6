package dynamo

import (
	"fmt"
	"time"

	"vibin_match/models"
)

// Key attribute names and index names.
const (
	attrPK          = "PK"
	attrSK          = "SK"
	attrUserID      = "userId"
	attrThreadKey   = "threadKey"
	attrSentAt      = "sentAt"
	attrRecipientID = "recipientId"
	attrNotifID     = "notificationId"

	User1ActivityIndex = "user1-lastMessageAt-index"
	User2ActivityIndex = "user2-lastMessageAt-index"

	swipePKPrefix = "USER#"
	swipeSKPrefix = "SWIPE#"
)

func micros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func fromMicros(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

// profileItem is the stored shape of a user in the Users table.
type profileItem struct {
	UserID         string   `dynamodbav:"userId"`
	Name           string   `dynamodbav:"name,omitempty"`
	PhotoURL       string   `dynamodbav:"photoURL,omitempty"`
	Photos         []string `dynamodbav:"photos,omitempty"`
	University     string   `dynamodbav:"university,omitempty"`
	Major          string   `dynamodbav:"major,omitempty"`
	GraduationYear int      `dynamodbav:"graduationYear,omitempty"`
	Bio            string   `dynamodbav:"bio,omitempty"`
	Gender         string   `dynamodbav:"gender,omitempty"`
}

func (p profileItem) toModel() (models.UserProfile, error) {
	photo := p.PhotoURL
	if photo == "" && len(p.Photos) > 0 {
		photo = p.Photos[0]
	}
	profile := models.UserProfile{
		ID:             p.UserID,
		Name:           p.Name,
		Photo:          photo,
		University:     p.University,
		Major:          p.Major,
		GraduationYear: p.GraduationYear,
		Bio:            p.Bio,
		Gender:         p.Gender,
	}
	return profile, models.ValidateRecord("profile", profile)
}

// swipeItem is a SwipeDecision keyed PK=USER#actor, SK=SWIPE#target.
type swipeItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	ActorID   string `dynamodbav:"actorId"`
	TargetID  string `dynamodbav:"targetId"`
	Direction string `dynamodbav:"direction"`
	DecidedAt int64  `dynamodbav:"decidedAt"`
}

func newSwipeItem(d models.SwipeDecision) swipeItem {
	return swipeItem{
		PK:        swipePKPrefix + d.ActorID,
		SK:        swipeSKPrefix + d.TargetID,
		ActorID:   d.ActorID,
		TargetID:  d.TargetID,
		Direction: string(d.Direction),
		DecidedAt: micros(d.DecidedAt),
	}
}

func (s swipeItem) toModel() (models.SwipeDecision, error) {
	d := models.SwipeDecision{
		ActorID:   s.ActorID,
		TargetID:  s.TargetID,
		Direction: models.Direction(s.Direction),
		DecidedAt: fromMicros(s.DecidedAt),
	}
	return d, models.ValidateRecord("swipe", d)
}

// threadItem is a MatchThread. User1/User2 hold the sorted pair and feed
// the per-participant activity indexes.
type threadItem struct {
	ThreadKey           string   `dynamodbav:"threadKey"`
	Participants        []string `dynamodbav:"participants"`
	User1               string   `dynamodbav:"user1"`
	User2               string   `dynamodbav:"user2"`
	LastMessageText     string   `dynamodbav:"lastMessageText"`
	LastMessageSenderID string   `dynamodbav:"lastMessageSenderId"`
	LastMessageAt       int64    `dynamodbav:"lastMessageAt"`
	IsRead              bool     `dynamodbav:"isRead"`
	CreatedAt           int64    `dynamodbav:"createdAt"`
}

// user1 and user2 feed the per-user indexes and are the participants in
// sorted order.
func newThreadItem(t models.MatchThread) threadItem {
	u1, u2 := t.Participants[0], t.Participants[1]
	if u2 < u1 {
		u1, u2 = u2, u1
	}
	return threadItem{
		ThreadKey:           t.Key,
		Participants:        []string{t.Participants[0], t.Participants[1]},
		User1:               u1,
		User2:               u2,
		LastMessageText:     t.LastMessageText,
		LastMessageSenderID: t.LastMessageSenderID,
		LastMessageAt:       micros(t.LastMessageAt),
		IsRead:              t.IsRead,
		CreatedAt:           micros(t.CreatedAt),
	}
}

func (t threadItem) toModel() (models.MatchThread, error) {
	if len(t.Participants) != 2 {
		return models.MatchThread{}, fmt.Errorf("thread %s: %w: %d participants", t.ThreadKey, models.ErrMalformedRecord, len(t.Participants))
	}
	thread := models.MatchThread{
		Key:                 t.ThreadKey,
		Participants:        [2]string{t.Participants[0], t.Participants[1]},
		LastMessageText:     t.LastMessageText,
		LastMessageSenderID: t.LastMessageSenderID,
		LastMessageAt:       fromMicros(t.LastMessageAt),
		IsRead:              t.IsRead,
		CreatedAt:           fromMicros(t.CreatedAt),
	}
	return thread, models.ValidateRecord("thread", thread)
}

// messageItem is a Message keyed threadKey + sentAt.
type messageItem struct {
	ThreadKey string `dynamodbav:"threadKey"`
	SentAt    int64  `dynamodbav:"sentAt"`
	MessageID string `dynamodbav:"messageId"`
	SenderID  string `dynamodbav:"senderId"`
	Text      string `dynamodbav:"text"`
}

func newMessageItem(m models.Message) messageItem {
	return messageItem{
		ThreadKey: m.ThreadKey,
		SentAt:    micros(m.SentAt),
		MessageID: m.ID,
		SenderID:  m.SenderID,
		Text:      m.Text,
	}
}

func (m messageItem) toModel() (models.Message, error) {
	msg := models.Message{
		ID:        m.MessageID,
		ThreadKey: m.ThreadKey,
		SenderID:  m.SenderID,
		Text:      m.Text,
		SentAt:    fromMicros(m.SentAt),
	}
	return msg, models.ValidateRecord("message", msg)
}

// notificationItem is a Notification keyed recipientId + notificationId.
// ExpiresAt is epoch seconds for the table's TTL.
type notificationItem struct {
	RecipientID       string `dynamodbav:"recipientId"`
	NotificationID    string `dynamodbav:"notificationId"`
	Kind              string `dynamodbav:"kind"`
	SenderID          string `dynamodbav:"senderId"`
	SenderDisplayName string `dynamodbav:"senderDisplayName"`
	SenderPhoto       string `dynamodbav:"senderPhoto,omitempty"`
	Direction         string `dynamodbav:"direction,omitempty"`
	CreatedAt         int64  `dynamodbav:"createdAt"`
	Consumed          bool   `dynamodbav:"consumed"`
	ExpiresAt         int64  `dynamodbav:"expiresAt,omitempty"`
}

func newNotificationItem(n models.Notification) notificationItem {
	item := notificationItem{
		RecipientID:       n.RecipientID,
		NotificationID:    n.ID,
		Kind:              n.Kind,
		SenderID:          n.SenderID,
		SenderDisplayName: n.SenderDisplayName,
		SenderPhoto:       n.SenderPhoto,
		Direction:         string(n.Direction),
		CreatedAt:         micros(n.CreatedAt),
		Consumed:          n.Consumed,
	}
	if !n.ExpiresAt.IsZero() {
		item.ExpiresAt = n.ExpiresAt.Unix()
	}
	return item
}

func (n notificationItem) toModel() (models.Notification, error) {
	notification := models.Notification{
		RecipientID:       n.RecipientID,
		ID:                n.NotificationID,
		Kind:              n.Kind,
		SenderID:          n.SenderID,
		SenderDisplayName: n.SenderDisplayName,
		SenderPhoto:       n.SenderPhoto,
		Direction:         models.Direction(n.Direction),
		CreatedAt:         fromMicros(n.CreatedAt),
		Consumed:          n.Consumed,
	}
	if n.ExpiresAt > 0 {
		notification.ExpiresAt = time.Unix(n.ExpiresAt, 0).UTC()
	}
	return notification, models.ValidateRecord("notification", notification)
}
