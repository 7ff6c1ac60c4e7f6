package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin_match/models"
	"vibin_match/store"
)

// fakeAPI returns scripted responses and records the last inputs.
type fakeAPI struct {
	items       map[string]map[string]types.AttributeValue
	putErr      error
	updateErr   error
	transactErr error
	queryPages  []*dynamodb.QueryOutput
	queryCalls  int

	lastPut      *dynamodb.PutItemInput
	lastUpdate   *dynamodb.UpdateItemInput
	lastTransact *dynamodb.TransactWriteItemsInput
	queries      []*dynamodb.QueryInput
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	for _, v := range in.Key {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			return &dynamodb.GetItemOutput{Item: f.items[s.Value]}, nil
		}
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPut = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastUpdate = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	if f.queryCalls < len(f.queryPages) {
		out := f.queryPages[f.queryCalls]
		f.queryCalls++
		return out, nil
	}
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeAPI) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{}, nil
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTransact = in
	return &dynamodb.TransactWriteItemsOutput{}, f.transactErr
}

func newTestStore(api *fakeAPI) *Store {
	return NewStore(NewDynamoService(api, zerolog.Nop()), DefaultTables)
}

func marshal(t *testing.T, v any) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAppendMessageStaleCondition(t *testing.T) {
	api := &fakeAPI{transactErr: &types.TransactionCanceledException{
		Message: aws.String("cancelled"),
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}}
	s := newTestStore(api)

	err := s.Threads().AppendMessage(context.Background(), models.Message{
		ID: "m1", ThreadKey: "a_b", SenderID: "a", Text: "hi", SentAt: t0,
	})
	assert.ErrorIs(t, err, store.ErrStaleThread)

	require.NotNil(t, api.lastTransact)
	require.Len(t, api.lastTransact.TransactItems, 2)
	update := api.lastTransact.TransactItems[1].Update
	require.NotNil(t, update)
	assert.Equal(t, "attribute_exists(threadKey) AND lastMessageAt < :at", aws.ToString(update.ConditionExpression))
	at := update.ExpressionAttributeValues[":at"].(*types.AttributeValueMemberN)
	assert.Equal(t, "1740830400000000", at.Value)
}

func TestCreateIfAbsentReturnsExisting(t *testing.T) {
	existing := models.NewMatchThread("a", "b", t0)
	existing.LastMessageText = "already chatting"
	existing.LastMessageSenderID = "a"

	api := &fakeAPI{
		putErr: &types.ConditionalCheckFailedException{Message: aws.String("exists")},
		items:  map[string]map[string]types.AttributeValue{"a_b": marshal(t, newThreadItem(existing))},
	}
	s := newTestStore(api)

	got, created, err := s.Threads().CreateIfAbsent(context.Background(), models.NewMatchThread("b", "a", t0.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "already chatting", got.LastMessageText)
	assert.Equal(t, "attribute_not_exists(#key)", aws.ToString(api.lastPut.ConditionExpression))
}

func TestMarkRead(t *testing.T) {
	thread := models.NewMatchThread("a", "b", t0)

	t.Run("changed", func(t *testing.T) {
		s := newTestStore(&fakeAPI{})
		changed, err := s.Threads().MarkRead(context.Background(), "a_b", "b")
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("condition failed on existing thread", func(t *testing.T) {
		api := &fakeAPI{
			updateErr: &types.ConditionalCheckFailedException{},
			items:     map[string]map[string]types.AttributeValue{"a_b": marshal(t, newThreadItem(thread))},
		}
		changed, err := newTestStore(api).Threads().MarkRead(context.Background(), "a_b", "b")
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("missing thread", func(t *testing.T) {
		api := &fakeAPI{updateErr: &types.ConditionalCheckFailedException{}}
		_, err := newTestStore(api).Threads().MarkRead(context.Background(), "a_b", "b")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestConsumeUnknownNotification(t *testing.T) {
	api := &fakeAPI{updateErr: &types.ConditionalCheckFailedException{}}
	err := newTestStore(api).Notifications().Consume(context.Background(), "bob", "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetMalformedThread(t *testing.T) {
	api := &fakeAPI{items: map[string]map[string]types.AttributeValue{
		"a_b": marshal(t, threadItem{ThreadKey: "a_b", Participants: []string{"a"}}),
	}}
	_, err := newTestStore(api).Threads().Get(context.Background(), "a_b")
	assert.ErrorIs(t, err, models.ErrMalformedRecord)
}

func TestSwipeGetAbsent(t *testing.T) {
	d, err := newTestStore(&fakeAPI{}).Swipes().Get(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestListByParticipantMergesIndexes(t *testing.T) {
	older := models.NewMatchThread("a", "c", t0)
	newer := models.NewMatchThread("b", "c", t0.Add(time.Minute))

	api := &fakeAPI{queryPages: []*dynamodb.QueryOutput{
		{Items: []map[string]types.AttributeValue{marshal(t, newThreadItem(older))}},
		{Items: []map[string]types.AttributeValue{marshal(t, newThreadItem(newer))}},
	}}
	got, err := newTestStore(api).Threads().ListByParticipant(context.Background(), "c")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b_c", got[0].Key)
	assert.Equal(t, "a_c", got[1].Key)

	require.Len(t, api.queries, 2)
	assert.Equal(t, User1ActivityIndex, aws.ToString(api.queries[0].IndexName))
	assert.Equal(t, User2ActivityIndex, aws.ToString(api.queries[1].IndexName))
}

func TestListPendingFiltersExpired(t *testing.T) {
	live := models.Notification{
		RecipientID: "bob", ID: "n1", Kind: models.NotificationKindLikedYou, SenderID: "alice",
		CreatedAt: t0, ExpiresAt: t0.Add(time.Hour),
	}
	expired := live
	expired.ID = "n0"
	expired.CreatedAt = t0.Add(-2 * time.Hour)
	expired.ExpiresAt = t0.Add(-time.Hour)

	api := &fakeAPI{queryPages: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{
		marshal(t, newNotificationItem(live)),
		marshal(t, newNotificationItem(expired)),
	}}}}
	got, err := newTestStore(api).Notifications().ListPending(context.Background(), "bob", t0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].ID)
}

type fakeAdmin struct {
	created []string
	ttl     *dynamodb.UpdateTimeToLiveInput
}

func (f *fakeAdmin) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if aws.ToString(in.TableName) == DefaultTables.Users {
		return nil, &types.ResourceInUseException{Message: aws.String("exists")}
	}
	f.created = append(f.created, aws.ToString(in.TableName))
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeAdmin) UpdateTimeToLive(_ context.Context, in *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	f.ttl = in
	return &dynamodb.UpdateTimeToLiveOutput{}, nil
}

func TestCreateTablesSkipsExisting(t *testing.T) {
	admin := &fakeAdmin{}
	require.NoError(t, CreateTables(context.Background(), admin, DefaultTables, zerolog.Nop()))
	assert.Equal(t, []string{"Swipes", "MatchThreads", "Messages", "Notifications"}, admin.created)
	require.NotNil(t, admin.ttl)
	assert.Equal(t, "expiresAt", aws.ToString(admin.ttl.TimeToLiveSpecification.AttributeName))
}

func TestThreadItemUsersComeFromParticipants(t *testing.T) {
	api := &fakeAPI{}
	s := newTestStore(api)

	thread := models.NewMatchThread("zed", "user_1", t0)
	_, created, err := s.Threads().CreateIfAbsent(context.Background(), thread)
	require.NoError(t, err)
	require.True(t, created)

	var item threadItem
	require.NoError(t, attributevalue.UnmarshalMap(api.lastPut.Item, &item))
	assert.Equal(t, "user%5F1_zed", item.ThreadKey)
	assert.Equal(t, "user_1", item.User1)
	assert.Equal(t, "zed", item.User2)
	assert.Equal(t, []string{"zed", "user_1"}, item.Participants)

	got, err := item.toModel()
	require.NoError(t, err)
	assert.Equal(t, thread.Participants, got.Participants)
}

func TestNotificationPutIfNotPending(t *testing.T) {
	n := models.Notification{
		RecipientID: "bob", ID: "n1", Kind: models.NotificationKindLikedYou, SenderID: "alice",
		CreatedAt: t0, ExpiresAt: t0.Add(time.Hour),
	}

	api := &fakeAPI{}
	written, err := newTestStore(api).Notifications().PutIfNotPending(context.Background(), n, t0)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "attribute_not_exists(notificationId) OR consumed = :true OR expiresAt <= :now",
		aws.ToString(api.lastPut.ConditionExpression))
	now := api.lastPut.ExpressionAttributeValues[":now"].(*types.AttributeValueMemberN)
	assert.Equal(t, "1740830400", now.Value)
	assert.Nil(t, api.lastPut.ExpressionAttributeNames)

	api = &fakeAPI{putErr: &types.ConditionalCheckFailedException{Message: aws.String("pending")}}
	written, err = newTestStore(api).Notifications().PutIfNotPending(context.Background(), n, t0)
	require.NoError(t, err)
	assert.False(t, written)
}

func TestListPendingEmptyIsNotNil(t *testing.T) {
	got, err := newTestStore(&fakeAPI{}).Notifications().ListPending(context.Background(), "bob", t0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
