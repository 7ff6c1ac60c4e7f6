// Package dynamo implements the store contracts on DynamoDB.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"vibin_match/models"
	"vibin_match/store"
)

// Tables names the DynamoDB tables of each collection.
type Tables struct {
	Users         string
	Swipes        string
	Threads       string
	Messages      string
	Notifications string
}

// DefaultTables are the table names used when none are configured.
var DefaultTables = Tables{
	Users:         "Users",
	Swipes:        "Swipes",
	Threads:       "MatchThreads",
	Messages:      "Messages",
	Notifications: "Notifications",
}

// Store implements store.Store on DynamoDB.
type Store struct {
	dynamo *DynamoService
	tables Tables
}

// NewStore returns a Store over ds.
func NewStore(ds *DynamoService, tables Tables) *Store {
	return &Store{dynamo: ds, tables: tables}
}

func (s *Store) Profiles() store.ProfileStore           { return profiles{s} }
func (s *Store) Swipes() store.SwipeLedger              { return swipes{s} }
func (s *Store) Threads() store.ThreadStore             { return threads{s} }
func (s *Store) Notifications() store.NotificationStore { return notifications{s} }

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

type profiles struct{ *Store }

func (p profiles) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	raw, err := p.dynamo.GetItem(ctx, p.tables.Users, stringKey(attrUserID, id))
	if err != nil {
		return nil, err
	}
	var item profileItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("profile %s: %w: %v", id, models.ErrMalformedRecord, err)
	}
	profile, err := item.toModel()
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// List scans the Users table. Malformed rows are reported through the
// sequence and iteration continues with the next row.
func (p profiles) List(ctx context.Context) iter.Seq2[models.UserProfile, error] {
	return func(yield func(models.UserProfile, error) bool) {
		for raw, err := range p.dynamo.ScanPages(ctx, &dynamodb.ScanInput{TableName: aws.String(p.tables.Users)}) {
			if err != nil {
				yield(models.UserProfile{}, err)
				return
			}
			var item profileItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				if !yield(models.UserProfile{}, fmt.Errorf("profile: %w: %v", models.ErrMalformedRecord, err)) {
					return
				}
				continue
			}
			profile, err := item.toModel()
			if !yield(profile, err) {
				return
			}
		}
	}
}

type swipes struct{ *Store }

func (s swipes) Upsert(ctx context.Context, d models.SwipeDecision) error {
	return s.dynamo.PutItem(ctx, s.tables.Swipes, newSwipeItem(d))
}

func (s swipes) Get(ctx context.Context, actorID, targetID string) (*models.SwipeDecision, error) {
	raw, err := s.dynamo.GetItem(ctx, s.tables.Swipes, map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: swipePKPrefix + actorID},
		attrSK: &types.AttributeValueMemberS{Value: swipeSKPrefix + targetID},
	})
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item swipeItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("swipe: %w: %v", models.ErrMalformedRecord, err)
	}
	d, err := item.toModel()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s swipes) ListTargets(ctx context.Context, actorID string) (map[string]models.Direction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tables.Swipes),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: swipePKPrefix + actorID},
			":sk": &types.AttributeValueMemberS{Value: swipeSKPrefix},
		},
	}
	out := map[string]models.Direction{}
	for raw, err := range s.dynamo.QueryPages(ctx, input) {
		if err != nil {
			return nil, err
		}
		var item swipeItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("swipe: %w: %v", models.ErrMalformedRecord, err)
		}
		d, err := item.toModel()
		if err != nil {
			return nil, err
		}
		out[d.TargetID] = d.Direction
	}
	return out, nil
}

type threads struct{ *Store }

func (t threads) CreateIfAbsent(ctx context.Context, thread models.MatchThread) (*models.MatchThread, bool, error) {
	created, err := t.dynamo.PutItemIfAbsent(ctx, t.tables.Threads, newThreadItem(thread), attrThreadKey)
	if err != nil {
		return nil, false, err
	}
	if created {
		return &thread, true, nil
	}
	existing, err := t.Get(ctx, thread.Key)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (t threads) Get(ctx context.Context, key string) (*models.MatchThread, error) {
	raw, err := t.dynamo.GetItem(ctx, t.tables.Threads, stringKey(attrThreadKey, key))
	if err != nil {
		return nil, err
	}
	return decodeThread(raw)
}

func decodeThread(raw map[string]types.AttributeValue) (*models.MatchThread, error) {
	var item threadItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("thread: %w: %v", models.ErrMalformedRecord, err)
	}
	thread, err := item.toModel()
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListByParticipant queries both activity indexes and merges them newest
// first.
func (t threads) ListByParticipant(ctx context.Context, userID string) ([]models.MatchThread, error) {
	out := []models.MatchThread{}
	for _, side := range []struct{ index, attr string }{
		{User1ActivityIndex, "user1"},
		{User2ActivityIndex, "user2"},
	} {
		items, err := t.dynamo.QueryAll(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(t.tables.Threads),
			IndexName:                 aws.String(side.index),
			KeyConditionExpression:    aws.String("#user = :user"),
			ExpressionAttributeNames:  map[string]string{"#user": side.attr},
			ExpressionAttributeValues: map[string]types.AttributeValue{":user": &types.AttributeValueMemberS{Value: userID}},
			ScanIndexForward:          aws.Bool(false),
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range items {
			thread, err := decodeThread(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, *thread)
		}
	}
	models.SortThreadsByActivity(out)
	return out, nil
}

func (t threads) AppendMessage(ctx context.Context, msg models.Message) error {
	item, err := attributevalue.MarshalMap(newMessageItem(msg))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	sentAt := &types.AttributeValueMemberN{Value: fmt.Sprint(micros(msg.SentAt))}

	err = t.dynamo.TransactWrite(ctx, []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:           aws.String(t.tables.Messages),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(sentAt)"),
		}},
		{Update: &types.Update{
			TableName:           aws.String(t.tables.Threads),
			Key:                 stringKey(attrThreadKey, msg.ThreadKey),
			UpdateExpression:    aws.String("SET lastMessageText = :text, lastMessageSenderId = :sender, lastMessageAt = :at, isRead = :false"),
			ConditionExpression: aws.String("attribute_exists(threadKey) AND lastMessageAt < :at"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":text":   &types.AttributeValueMemberS{Value: msg.Text},
				":sender": &types.AttributeValueMemberS{Value: msg.SenderID},
				":at":     sentAt,
				":false":  &types.AttributeValueMemberBOOL{Value: false},
			},
		}},
	})
	if errors.Is(err, errConditionFailed) {
		return store.ErrStaleThread
	}
	return err
}

func (t threads) MarkRead(ctx context.Context, key, viewerID string) (bool, error) {
	_, err := t.dynamo.UpdateItem(ctx, t.tables.Threads, stringKey(attrThreadKey, key),
		"SET isRead = :true",
		"attribute_exists(threadKey) AND isRead = :false AND lastMessageSenderId <> :viewer",
		map[string]types.AttributeValue{
			":true":   &types.AttributeValueMemberBOOL{Value: true},
			":false":  &types.AttributeValueMemberBOOL{Value: false},
			":viewer": &types.AttributeValueMemberS{Value: viewerID},
		}, nil)
	if errors.Is(err, errConditionFailed) {
		// Either already read, sent by the viewer, or missing.
		if _, getErr := t.Get(ctx, key); getErr != nil {
			return false, getErr
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t threads) Messages(ctx context.Context, key string) iter.Seq2[models.Message, error] {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(t.tables.Messages),
		KeyConditionExpression:    aws.String("threadKey = :key"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":key": &types.AttributeValueMemberS{Value: key}},
		ScanIndexForward:          aws.Bool(true),
		ConsistentRead:            aws.Bool(true),
	}
	return func(yield func(models.Message, error) bool) {
		for raw, err := range t.dynamo.QueryPages(ctx, input) {
			if err != nil {
				yield(models.Message{}, err)
				return
			}
			var item messageItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				yield(models.Message{}, fmt.Errorf("message: %w: %v", models.ErrMalformedRecord, err))
				return
			}
			msg, err := item.toModel()
			if !yield(msg, err) || err != nil {
				return
			}
		}
	}
}

type notifications struct{ *Store }

func (n notifications) Put(ctx context.Context, notification models.Notification) error {
	return n.dynamo.PutItem(ctx, n.tables.Notifications, newNotificationItem(notification))
}

// PutIfNotPending overwrites a consumed or expired notification with the same
// id. ExpiresAt is stored as epoch seconds, so expiry is compared at second
// precision.
func (n notifications) PutIfNotPending(ctx context.Context, notification models.Notification, now time.Time) (bool, error) {
	return n.dynamo.PutItemIf(ctx, n.tables.Notifications, newNotificationItem(notification),
		"attribute_not_exists(notificationId) OR consumed = :true OR expiresAt <= :now",
		nil,
		map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":now":  &types.AttributeValueMemberN{Value: fmt.Sprint(now.Unix())},
		})
}

func (n notifications) ListPending(ctx context.Context, recipientID string, now time.Time) ([]models.Notification, error) {
	// TTL deletion lags expiry, so expired rows are filtered here as well.
	items, err := n.dynamo.QueryAll(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(n.tables.Notifications),
		KeyConditionExpression:   aws.String("recipientId = :recipient"),
		FilterExpression:         aws.String("consumed = :false"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":recipient": &types.AttributeValueMemberS{Value: recipientID},
			":false":     &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}

	out := []models.Notification{}
	for _, raw := range items {
		var item notificationItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("notification: %w: %v", models.ErrMalformedRecord, err)
		}
		notification, err := item.toModel()
		if err != nil {
			return nil, err
		}
		if notification.Pending(now) {
			out = append(out, notification)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (n notifications) Consume(ctx context.Context, recipientID, notificationID string) error {
	_, err := n.dynamo.UpdateItem(ctx, n.tables.Notifications,
		map[string]types.AttributeValue{
			attrRecipientID: &types.AttributeValueMemberS{Value: recipientID},
			attrNotifID:     &types.AttributeValueMemberS{Value: notificationID},
		},
		"SET consumed = :true",
		"attribute_exists(notificationId)",
		map[string]types.AttributeValue{":true": &types.AttributeValueMemberBOOL{Value: true}},
		nil)
	if errors.Is(err, errConditionFailed) {
		return models.ErrNotFound
	}
	return err
}
