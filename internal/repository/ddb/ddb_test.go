package ddb

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brain2-conceptmap/internal/domain/conceptmap"
	apperrors "brain2-conceptmap/internal/errors"
)

// fakeDynamo keeps items for a single partition keyed by SK.
type fakeDynamo struct {
	mu          sync.Mutex
	items       map[string]map[string]types.AttributeValue
	pageSize    int
	queryErr    error
	unprocessed int
	queries     int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}, pageSize: 2}
}

func sk(item map[string]types.AttributeValue) string {
	return item["SK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := sk(in.ExclusiveStartKey)
		for start < len(keys) && keys[start] <= after {
			start++
		}
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &dynamodb.QueryOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, f.items[k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"SK": &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[sk(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sk(in.Key)
	if _, ok := f.items[key]; !ok && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional check failed")}
	}
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for table, requests := range in.RequestItems {
		if len(requests) > maxBatchWrite {
			return nil, errors.New("too many requests in batch")
		}
		for _, req := range requests {
			if f.unprocessed > 0 {
				f.unprocessed--
				out.UnprocessedItems[table] = append(out.UnprocessedItems[table], req)
				continue
			}
			switch {
			case req.PutRequest != nil:
				f.items[sk(req.PutRequest.Item)] = req.PutRequest.Item
			case req.DeleteRequest != nil:
				delete(f.items, sk(req.DeleteRequest.Key))
			}
		}
	}
	return out, nil
}

func newRepo(client API) *NoteRepository {
	return NewNoteRepository(client, "brain2", "user-1", zap.NewNop())
}

func TestNoteRepository_PutAndList(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := newRepo(fake)

	// Ids sort differently from insertion order.
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.PutNote(ctx, conceptmap.Note{ID: id, Title: id, Concepts: []string{"B", "A", "B"}}))
	}
	require.NoError(t, repo.PutNote(ctx, conceptmap.Note{ID: "alpha", Title: "Alpha v2", Concepts: []string{"C"}}))

	notes, err := repo.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, []string{notes[0].ID, notes[1].ID, notes[2].ID})
	assert.Equal(t, "Alpha v2", notes[1].Title)
	assert.Equal(t, []string{"B", "A", "B"}, notes[0].Concepts, "concept order and duplicates survive")
	assert.Greater(t, fake.queries, 1, "listing pages through results")
}

func TestNoteRepository_ReplaceNotes(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := newRepo(fake)

	require.NoError(t, repo.PutNote(ctx, conceptmap.Note{ID: "stale", Concepts: []string{"X"}}))

	notes := make([]conceptmap.Note, 30)
	for i := range notes {
		notes[i] = conceptmap.Note{ID: string(rune('a'+i%26)) + string(rune('0'+i/26)), Concepts: []string{"C"}}
	}
	fake.unprocessed = 3
	require.NoError(t, repo.ReplaceNotes(ctx, notes))

	got, err := repo.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 30)
	for i := range notes {
		assert.Equal(t, notes[i].ID, got[i].ID)
	}
}

func TestNoteRepository_DeleteNote(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(newFakeDynamo())

	require.NoError(t, repo.PutNote(ctx, conceptmap.Note{ID: "n1"}))
	require.NoError(t, repo.DeleteNote(ctx, "n1"))
	assert.True(t, apperrors.IsNotFound(repo.DeleteNote(ctx, "n1")))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorType
	}{
		{"missing table", &types.ResourceNotFoundException{Message: aws.String("no table")}, apperrors.ErrorTypeNotFound},
		{"throttled", &smithy.GenericAPIError{Code: "ThrottlingException", Fault: smithy.FaultServer}, apperrors.ErrorTypeUnavailable},
		{"bad request", &smithy.GenericAPIError{Code: "ValidationException", Fault: smithy.FaultClient}, apperrors.ErrorTypeInternal},
		{"network", errors.New("dial tcp: refused"), apperrors.ErrorTypeExternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.TypeOf(mapError("op", tt.err)))
		})
	}

	assert.ErrorIs(t, mapError("op", context.Canceled), context.Canceled)
}

func TestNoteRepository_ListPropagatesQueryError(t *testing.T) {
	fake := newFakeDynamo()
	fake.queryErr = &types.ResourceNotFoundException{Message: aws.String("no table")}

	_, err := newRepo(fake).ListNotes(context.Background())
	assert.True(t, apperrors.IsNotFound(err))
}
