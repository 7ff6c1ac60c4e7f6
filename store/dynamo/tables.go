package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// AdminAPI is the subset of *dynamodb.Client used to provision tables.
type AdminAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

func attrDef(name string, t types.ScalarAttributeType) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: t}
}

func keyElem(name string, t types.KeyType) types.KeySchemaElement {
	return types.KeySchemaElement{AttributeName: aws.String(name), KeyType: t}
}

func activityIndex(name, partition string) types.GlobalSecondaryIndex {
	return types.GlobalSecondaryIndex{
		IndexName: aws.String(name),
		KeySchema: []types.KeySchemaElement{
			keyElem(partition, types.KeyTypeHash),
			keyElem("lastMessageAt", types.KeyTypeRange),
		},
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

// TableDefinitions returns the CreateTable inputs for every collection.
func TableDefinitions(tables Tables) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:            aws.String(tables.Users),
			AttributeDefinitions: []types.AttributeDefinition{attrDef(attrUserID, types.ScalarAttributeTypeS)},
			KeySchema:            []types.KeySchemaElement{keyElem(attrUserID, types.KeyTypeHash)},
			BillingMode:          types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(tables.Swipes),
			AttributeDefinitions: []types.AttributeDefinition{
				attrDef(attrPK, types.ScalarAttributeTypeS),
				attrDef(attrSK, types.ScalarAttributeTypeS),
			},
			KeySchema:   []types.KeySchemaElement{keyElem(attrPK, types.KeyTypeHash), keyElem(attrSK, types.KeyTypeRange)},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(tables.Threads),
			AttributeDefinitions: []types.AttributeDefinition{
				attrDef(attrThreadKey, types.ScalarAttributeTypeS),
				attrDef("user1", types.ScalarAttributeTypeS),
				attrDef("user2", types.ScalarAttributeTypeS),
				attrDef("lastMessageAt", types.ScalarAttributeTypeN),
			},
			KeySchema: []types.KeySchemaElement{keyElem(attrThreadKey, types.KeyTypeHash)},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				activityIndex(User1ActivityIndex, "user1"),
				activityIndex(User2ActivityIndex, "user2"),
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(tables.Messages),
			AttributeDefinitions: []types.AttributeDefinition{
				attrDef(attrThreadKey, types.ScalarAttributeTypeS),
				attrDef(attrSentAt, types.ScalarAttributeTypeN),
			},
			KeySchema:   []types.KeySchemaElement{keyElem(attrThreadKey, types.KeyTypeHash), keyElem(attrSentAt, types.KeyTypeRange)},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(tables.Notifications),
			AttributeDefinitions: []types.AttributeDefinition{
				attrDef(attrRecipientID, types.ScalarAttributeTypeS),
				attrDef(attrNotifID, types.ScalarAttributeTypeS),
			},
			KeySchema:   []types.KeySchemaElement{keyElem(attrRecipientID, types.KeyTypeHash), keyElem(attrNotifID, types.KeyTypeRange)},
			BillingMode: types.BillingModePayPerRequest,
		},
	}
}

// CreateTables creates every table that does not exist yet and enables TTL
// on expiresAt for notifications.
func CreateTables(ctx context.Context, admin AdminAPI, tables Tables, log zerolog.Logger) error {
	for _, input := range TableDefinitions(tables) {
		name := aws.ToString(input.TableName)
		_, err := admin.CreateTable(ctx, input)
		var inUse *types.ResourceInUseException
		switch {
		case errors.As(err, &inUse):
			log.Info().Str("table", name).Msg("table already exists")
		case err != nil:
			return fmt.Errorf("failed to create table '%s': %w", name, err)
		default:
			log.Info().Str("table", name).Msg("✅ table created")
		}
	}

	_, err := admin.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tables.Notifications),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String("expiresAt"),
			Enabled:       aws.Bool(true),
		},
	})
	if err != nil {
		// Enabling TTL twice is rejected; an existing setup is fine.
		log.Warn().Err(err).Str("table", tables.Notifications).Msg("could not enable TTL")
	}
	return nil
}
