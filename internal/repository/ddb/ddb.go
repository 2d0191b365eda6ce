// Package ddb stores concept map notes in DynamoDB.
// This is the only layer that should have knowledge of DynamoDB specifics.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"brain2-conceptmap/internal/domain/conceptmap"
	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/repository"
)

const (
	notePrefix = "NOTE#"
	// BatchWriteItem accepts at most 25 requests.
	maxBatchWrite = 25
)

// API is the subset of the DynamoDB client the repository uses.
type API interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// ddbNote represents the structure of a note item in DynamoDB.
type ddbNote struct {
	PK        string   `dynamodbav:"PK"`
	SK        string   `dynamodbav:"SK"`
	NoteID    string   `dynamodbav:"NoteID"`
	UserID    string   `dynamodbav:"UserID"`
	Title     string   `dynamodbav:"Title"`
	Content   string   `dynamodbav:"Content"`
	Concepts  []string `dynamodbav:"Concepts"`
	Position  int64    `dynamodbav:"Position"`
	UpdatedAt string   `dynamodbav:"UpdatedAt"`
}

// NoteRepository reads and writes one user's notes. Items live under
// PK=USER#<user> and SK=NOTE#<note>; Position keeps the display order.
type NoteRepository struct {
	client    API
	tableName string
	userID    string
	logger    *zap.Logger
	now       func() time.Time
}

var _ repository.NoteStore = (*NoteRepository)(nil)

// NewNoteRepository creates a repository for userID's notes in tableName.
func NewNoteRepository(client API, tableName, userID string, logger *zap.Logger) *NoteRepository {
	return &NoteRepository{
		client:    client,
		tableName: tableName,
		userID:    userID,
		logger:    logger.Named("ddb"),
		now:       time.Now,
	}
}

// Name implements repository.NoteSource.
func (r *NoteRepository) Name() string { return "dynamodb" }

func (r *NoteRepository) pk() string {
	return fmt.Sprintf("USER#%s", r.userID)
}

// ListNotes queries every note item for the user and orders them by Position.
func (r *NoteRepository) ListNotes(ctx context.Context) ([]conceptmap.Note, error) {
	items, err := r.queryItems(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].NoteID < items[j].NoteID
	})

	notes := make([]conceptmap.Note, 0, len(items))
	for _, item := range items {
		notes = append(notes, toDomain(item))
	}
	return notes, nil
}

func (r *NoteRepository) queryItems(ctx context.Context) ([]ddbNote, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(r.pk())).
		And(expression.Key("SK").BeginsWith(notePrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewInternal("build note query", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []ddbNote
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError("query notes", err)
		}
		for _, raw := range page.Items {
			var item ddbNote
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping unreadable note item", zap.Error(err))
				continue
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// PutNote writes a note. A new note is placed after all existing ones; an
// existing note keeps its position.
func (r *NoteRepository) PutNote(ctx context.Context, note conceptmap.Note) error {
	note, err := repository.NormalizeNote(note)
	if err != nil {
		return err
	}

	items, err := r.queryItems(ctx)
	if err != nil {
		return err
	}
	position := int64(0)
	for _, item := range items {
		if item.NoteID == note.ID {
			position = item.Position
			break
		}
		if item.Position >= position {
			position = item.Position + 1
		}
	}

	av, err := attributevalue.MarshalMap(r.toItem(note, position))
	if err != nil {
		return apperrors.NewInternal("marshal note", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return mapError("put note", err)
	}
	r.logger.Debug("Note stored", zap.String("note_id", note.ID), zap.Int64("position", position))
	return nil
}

// DeleteNote removes a note, failing with NotFound when it does not exist.
func (r *NoteRepository) DeleteNote(ctx context.Context, id string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return apperrors.NewInternal("build delete condition", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      r.key(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return apperrors.NewNotFound("note " + id + " not found")
		}
		return mapError("delete note", err)
	}
	return nil
}

// ReplaceNotes writes the given notes with positions matching their order
// and deletes every stored note not in the list.
func (r *NoteRepository) ReplaceNotes(ctx context.Context, notes []conceptmap.Note) error {
	notes, err := repository.NormalizeNotes(notes)
	if err != nil {
		return err
	}

	existing, err := r.queryItems(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(notes))

	requests := make([]types.WriteRequest, 0, len(notes)+len(existing))
	for i, note := range notes {
		keep[note.ID] = struct{}{}
		av, err := attributevalue.MarshalMap(r.toItem(note, int64(i)))
		if err != nil {
			return apperrors.NewInternal("marshal note", err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}
	for _, item := range existing {
		if _, ok := keep[item.NoteID]; ok {
			continue
		}
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: r.key(item.NoteID)}})
	}

	for start := 0; start < len(requests); start += maxBatchWrite {
		end := start + maxBatchWrite
		if end > len(requests) {
			end = len(requests)
		}
		if err := r.batchWrite(ctx, requests[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *NoteRepository) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.tableName: requests}
	for attempt := 0; len(pending[r.tableName]) > 0; attempt++ {
		if attempt == 5 {
			return apperrors.NewUnavailable(
				fmt.Sprintf("%d note writes left unprocessed", len(pending[r.tableName])), nil,
			).WithCode(apperrors.CodeDynamoDBError)
		}
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt*50) * time.Millisecond):
			}
		}
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return mapError("batch write notes", err)
		}
		pending = out.UnprocessedItems
	}
	return nil
}

func (r *NoteRepository) key(noteID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: r.pk()},
		"SK": &types.AttributeValueMemberS{Value: notePrefix + noteID},
	}
}

func (r *NoteRepository) toItem(note conceptmap.Note, position int64) ddbNote {
	return ddbNote{
		PK:        r.pk(),
		SK:        notePrefix + note.ID,
		NoteID:    note.ID,
		UserID:    r.userID,
		Title:     note.Title,
		Content:   note.Content,
		Concepts:  note.Concepts,
		Position:  position,
		UpdatedAt: r.now().UTC().Format(time.RFC3339),
	}
}

func toDomain(item ddbNote) conceptmap.Note {
	id := item.NoteID
	if id == "" {
		id = strings.TrimPrefix(item.SK, notePrefix)
	}
	return conceptmap.Note{
		ID:       id,
		Title:    item.Title,
		Content:  item.Content,
		Concepts: append([]string(nil), item.Concepts...),
	}
}

// mapError converts SDK failures into application errors.
func mapError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return apperrors.NewNotFound(op + ": table not found").WithCode(apperrors.CodeDynamoDBError)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			return apperrors.NewUnavailable(op, err).WithCode(apperrors.CodeDynamoDBError)
		}
		if apiErr.ErrorFault() == smithy.FaultClient {
			return apperrors.NewInternal(op, err).WithCode(apperrors.CodeDynamoDBError)
		}
	}
	return apperrors.NewExternal(op, err).WithCode(apperrors.CodeDynamoDBError)
}
