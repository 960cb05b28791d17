package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// These paths short-circuit before any session is opened, so they run without
// a store connection.

func TestListMessages_ZeroLimitSentinel(t *testing.T) {
	store := NewStore(nil, "")
	limit := 0

	messages, err := store.ListMessages(context.Background(), ListMessagesRequest{
		ThreadID: "thread-1",
		Limit:    &limit,
	})

	assert.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestGetMessagesByID_EmptyList(t *testing.T) {
	store := NewStore(nil, "")

	messages, err := store.GetMessagesByID(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, messages)
}

func TestDeleteMessages_EmptyListIsNoOp(t *testing.T) {
	store := NewStore(nil, "")

	assert.NoError(t, store.DeleteMessages(context.Background(), nil))
	assert.NoError(t, store.DeleteMessages(context.Background(), []string{}))
}

func TestCreateMessage_RequiresThreadID(t *testing.T) {
	store := NewStore(nil, "")

	_, err := store.CreateMessage(context.Background(), CreateMessageRequest{
		Content: "hello",
	})

	assert.Error(t, err)
}

func TestExecuteBatch_EmptyIsNoOp(t *testing.T) {
	store := NewStore(nil, "")

	assert.NoError(t, store.ExecuteBatch(context.Background(), nil))
}
