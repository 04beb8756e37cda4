package storage

import (
	"context"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"time"
)

const activityPartition = "activity"

// fixed width so that sort keys order lexically by time
const activitySortLayout = "2006-01-02T15:04:05.000000000Z07:00"

type ActivityLogStorage interface {
	Record(ctx context.Context, entry *ActivityEntry) error
	GetRecent(ctx context.Context, limit int32) ([]*ActivityEntry, error)
	DeleteAll(ctx context.Context) error
}

type DynamoActivityLogStorage struct {
	Client    *dynamodb.Client
	TableName string
}

// Record stores the entry under the activity partition. The sort key is the
// timestamp followed by a short random suffix so that entries sort by time.
func (s *DynamoActivityLogStorage) Record(ctx context.Context, entry *ActivityEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	suffix, err := gonanoid.New(8)
	if err != nil {
		return fmt.Errorf("generate activity id: %w", err)
	}
	entry.PK = activityPartition
	entry.SortKey = entry.Timestamp.UTC().Format(activitySortLayout) + "#" + suffix

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		logging.Log.Errorf("ACTIVITY: failed to marshal entry: %v", err)
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		logging.Log.Errorf("ACTIVITY: failed to record %s: %v", entry.Action, err)
		return err
	}
	return nil
}

// GetRecent returns the newest entries first.
func (s *DynamoActivityLogStorage) GetRecent(ctx context.Context, limit int32) ([]*ActivityEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: activityPartition},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	output, err := s.Client.Query(ctx, input)
	if err != nil {
		logging.Log.Errorf("ACTIVITY: query failed: %v", err)
		return nil, err
	}

	var entries []*ActivityEntry
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &entries); err != nil {
		logging.Log.Errorf("ACTIVITY: failed to unmarshal entries: %v", err)
		return nil, err
	}
	return entries, nil
}

func (s *DynamoActivityLogStorage) DeleteAll(ctx context.Context) error {
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		page, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.TableName,
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: activityPartition},
			},
			ExclusiveStartKey:    lastEvaluatedKey,
			ProjectionExpression: aws.String("PK, SK"),
		})
		if err != nil {
			logging.Log.Errorf("ACTIVITY: query for delete failed: %v", err)
			return err
		}

		deletes := make([]types.WriteRequest, 0, len(page.Items))
		for _, item := range page.Items {
			deletes = append(deletes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]},
				},
			})
		}

		// BatchWriteItem accepts at most 25 requests
		for start := 0; start < len(deletes); start += 25 {
			end := min(start+25, len(deletes))
			_, err := s.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{s.TableName: deletes[start:end]},
			})
			if err != nil {
				logging.Log.Errorf("ACTIVITY: batch delete failed: %v", err)
				return err
			}
		}

		if page.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = page.LastEvaluatedKey
	}

	logging.Log.Infof("ACTIVITY: log cleared")
	return nil
}
