package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"pollboard/application/ports"
	"pollboard/domain/core/valueobjects"
	pkgerrors "pollboard/pkg/errors"
)

// batchWriteLimit is DynamoDB's maximum batch write size.
const batchWriteLimit = 25

// BookmarkRepository implements ports.BookmarkRepository using DynamoDB.
// One item per (user, poll) pair; a poll-keyed GSI serves deletion cascades.
type BookmarkRepository struct {
	client    *dynamodb.Client
	tableName string
	pollIndex string
	logger    *zap.Logger
}

// NewBookmarkRepository creates a new BookmarkRepository
func NewBookmarkRepository(client *dynamodb.Client, tableName, pollIndex string, logger *zap.Logger) ports.BookmarkRepository {
	return &BookmarkRepository{
		client:    client,
		tableName: tableName,
		pollIndex: pollIndex,
		logger:    logger,
	}
}

// bookmarkItem represents the DynamoDB item structure for a bookmark
type bookmarkItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	UserID    string `dynamodbav:"UserID"`
	PollID    string `dynamodbav:"PollID"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

func bookmarkKey(userID string, pollID valueobjects.PollID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOOKMARK#%s", pollID.String())},
	}
}

// ListForUser returns the IDs of every poll the user has bookmarked
func (r *BookmarkRepository) ListForUser(ctx context.Context, userID string) ([]valueobjects.PollID, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").BeginsWith("BOOKMARK#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build key condition", err)
	}

	var ids []valueobjects.PollID
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query bookmarks", err)
		}

		for _, raw := range out.Items {
			var item bookmarkItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable bookmark item", zap.Error(err))
				continue
			}
			id, err := valueobjects.NewPollIDFromString(item.PollID)
			if err != nil {
				r.logger.Warn("skipping bookmark with invalid poll ID",
					zap.String("pollID", item.PollID),
				)
				continue
			}
			ids = append(ids, id)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return ids, nil
}

// Exists reports whether the user has bookmarked the poll
func (r *BookmarkRepository) Exists(ctx context.Context, userID string, pollID valueobjects.PollID) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       bookmarkKey(userID, pollID),
	})
	if err != nil {
		return false, pkgerrors.NewDatabaseError("get bookmark", err)
	}
	return out.Item != nil, nil
}

// Add stores a bookmark. Re-adding an existing bookmark overwrites the same
// item, so the operation is idempotent.
func (r *BookmarkRepository) Add(ctx context.Context, userID string, pollID valueobjects.PollID) error {
	item := bookmarkItem{
		PK:        fmt.Sprintf("USER#%s", userID),
		SK:        fmt.Sprintf("BOOKMARK#%s", pollID.String()),
		UserID:    userID,
		PollID:    pollID.String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal bookmark", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return pkgerrors.NewDatabaseError("save bookmark", err)
	}
	return nil
}

// Remove deletes a bookmark. Removing a missing bookmark is a no-op.
func (r *BookmarkRepository) Remove(ctx context.Context, userID string, pollID valueobjects.PollID) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       bookmarkKey(userID, pollID),
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete bookmark", err)
	}
	return nil
}

// RemoveAllForPoll deletes every user's bookmark of the poll. Used as the
// cascade when a poll is deleted.
func (r *BookmarkRepository) RemoveAllForPoll(ctx context.Context, pollID valueobjects.PollID) error {
	keyCond := expression.Key("PollID").Equal(expression.Value(pollID.String()))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build key condition", err)
	}

	var keys []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.pollIndex),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("query bookmarks by poll", err)
		}

		for _, raw := range out.Items {
			var item bookmarkItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				continue
			}
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			})
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	for start := 0; start < len(keys); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(keys) {
			end = len(keys)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}

		if _, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.tableName: requests,
			},
		}); err != nil {
			return pkgerrors.NewDatabaseError("batch delete bookmarks", err)
		}
	}

	return nil
}
