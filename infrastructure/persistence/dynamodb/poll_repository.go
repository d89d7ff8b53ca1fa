package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"pollboard/application/ports"
	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/valueobjects"
	pkgerrors "pollboard/pkg/errors"
)

// PollRepository implements ports.PollRepository using DynamoDB.
//
// Writes are guarded by a version condition: the aggregate bumps its version
// on every mutation, and Save only succeeds when the stored item is exactly
// one version behind. A failed condition surfaces as VERSION_CONFLICT so the
// handler can reload and retry.
type PollRepository struct {
	client      *dynamodb.Client
	tableName   string
	authorIndex string
	logger      *zap.Logger
}

// NewPollRepository creates a new PollRepository
func NewPollRepository(client *dynamodb.Client, tableName, authorIndex string, logger *zap.Logger) ports.PollRepository {
	return &PollRepository{
		client:      client,
		tableName:   tableName,
		authorIndex: authorIndex,
		logger:      logger,
	}
}

// pollItem represents the DynamoDB item structure for a poll
type pollItem struct {
	PK                 string           `dynamodbav:"PK"`
	SK                 string           `dynamodbav:"SK"`
	EntityType         string           `dynamodbav:"EntityType"`
	PollID             string           `dynamodbav:"PollID"`
	Title              string           `dynamodbav:"Title"`
	Description        string           `dynamodbav:"Description"`
	Options            []pollOptionItem `dynamodbav:"Options"`
	CreatedAt          string           `dynamodbav:"CreatedAt"`
	ExpiresAt          string           `dynamodbav:"ExpiresAt,omitempty"`
	IsPublic           bool             `dynamodbav:"IsPublic"`
	AllowMultipleVotes bool             `dynamodbav:"AllowMultipleVotes"`
	AllowComments      bool             `dynamodbav:"AllowComments"`
	Author             string           `dynamodbav:"Author"`
	AuthorID           string           `dynamodbav:"AuthorID"`
	TotalVotes         int              `dynamodbav:"TotalVotes"`
	Ballots            map[string][]int `dynamodbav:"Ballots"`
	Version            int              `dynamodbav:"Version"`
}

type pollOptionItem struct {
	Text  string `dynamodbav:"Text"`
	Votes int    `dynamodbav:"Votes"`
}

func pollPK(id valueobjects.PollID) string {
	return fmt.Sprintf("POLL#%s", id.String())
}

const pollSK = "METADATA"

// Save persists a poll with an optimistic concurrency check
func (r *PollRepository) Save(ctx context.Context, poll *aggregates.Poll) error {
	ballots := make(map[string][]int)
	for _, voter := range poll.Voters() {
		ballots[voter] = poll.BallotOf(voter)
	}

	options := make([]pollOptionItem, 0, len(poll.Options()))
	for _, opt := range poll.Options() {
		options = append(options, pollOptionItem{Text: opt.Text, Votes: opt.Votes})
	}

	item := pollItem{
		PK:                 pollPK(poll.ID()),
		SK:                 pollSK,
		EntityType:         "POLL",
		PollID:             poll.ID().String(),
		Title:              poll.Title(),
		Description:        poll.Description(),
		Options:            options,
		CreatedAt:          poll.CreatedAt().Format(time.RFC3339Nano),
		IsPublic:           poll.IsPublic(),
		AllowMultipleVotes: poll.AllowMultipleVotes(),
		AllowComments:      poll.AllowComments(),
		Author:             poll.Author(),
		AuthorID:           poll.AuthorID(),
		TotalVotes:         poll.TotalVotes(),
		Ballots:            ballots,
		Version:            poll.Version(),
	}
	if expiresAt := poll.ExpiresAt(); expiresAt != nil {
		item.ExpiresAt = expiresAt.Format(time.RFC3339Nano)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal poll", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if poll.Version() == 1 {
		// First write: the item must not exist yet.
		cond := expression.AttributeNotExists(expression.Name("PK"))
		expr, err := expression.NewBuilder().WithCondition(cond).Build()
		if err != nil {
			return pkgerrors.NewDatabaseError("build condition", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	} else {
		cond := expression.Name("Version").Equal(expression.Value(poll.Version() - 1))
		expr, err := expression.NewBuilder().WithCondition(cond).Build()
		if err != nil {
			return pkgerrors.NewDatabaseError("build condition", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewVersionConflictError(poll.ID().String())
		}
		r.logger.Error("failed to save poll",
			zap.String("pollID", poll.ID().String()),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("save poll", err)
	}

	return nil
}

// GetByID loads a poll by its identifier
func (r *PollRepository) GetByID(ctx context.Context, id valueobjects.PollID) (*aggregates.Poll, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pollPK(id)},
			"SK": &types.AttributeValueMemberS{Value: pollSK},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get poll", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("poll")
	}

	var item pollItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal poll", err)
	}

	return r.toAggregate(item)
}

// GetAll returns every poll in the table. The table holds one item per
// poll, so a scan stays proportional to the poll count.
func (r *PollRepository) GetAll(ctx context.Context) ([]*aggregates.Poll, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("POLL"))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build filter", err)
	}

	var polls []*aggregates.Poll
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan polls", err)
		}

		for _, raw := range out.Items {
			var item pollItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable poll item", zap.Error(err))
				continue
			}
			poll, err := r.toAggregate(item)
			if err != nil {
				r.logger.Warn("skipping invalid poll item",
					zap.String("pollID", item.PollID),
					zap.Error(err),
				)
				continue
			}
			polls = append(polls, poll)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return polls, nil
}

// GetByAuthor returns all polls created by the given author via the
// author GSI
func (r *PollRepository) GetByAuthor(ctx context.Context, authorID string) ([]*aggregates.Poll, error) {
	keyCond := expression.Key("AuthorID").Equal(expression.Value(authorID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build key condition", err)
	}

	var polls []*aggregates.Poll
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.authorIndex),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query polls by author", err)
		}

		for _, raw := range out.Items {
			var item pollItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable poll item", zap.Error(err))
				continue
			}
			poll, err := r.toAggregate(item)
			if err != nil {
				r.logger.Warn("skipping invalid poll item",
					zap.String("pollID", item.PollID),
					zap.Error(err),
				)
				continue
			}
			polls = append(polls, poll)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return polls, nil
}

// Delete removes a poll
func (r *PollRepository) Delete(ctx context.Context, id valueobjects.PollID) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pollPK(id)},
			"SK": &types.AttributeValueMemberS{Value: pollSK},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete poll", err)
	}
	return nil
}

func (r *PollRepository) toAggregate(item pollItem) (*aggregates.Poll, error) {
	id, err := valueobjects.NewPollIDFromString(item.PollID)
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse created at", err)
	}

	var expiresAt *time.Time
	if item.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339Nano, item.ExpiresAt)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("parse expires at", err)
		}
		expiresAt = &t
	}

	options := make([]aggregates.Option, 0, len(item.Options))
	for _, opt := range item.Options {
		options = append(options, aggregates.Option{Text: opt.Text, Votes: opt.Votes})
	}

	return aggregates.ReconstructPoll(
		id,
		item.Title,
		item.Description,
		options,
		createdAt,
		expiresAt,
		item.IsPublic,
		item.AllowMultipleVotes,
		item.AllowComments,
		item.Author,
		item.AuthorID,
		item.TotalVotes,
		item.Ballots,
		item.Version,
	)
}
