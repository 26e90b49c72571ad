package redis_utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	redis_utils "finance/src/utils/redis"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleData struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestRedisHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("Set serializes to JSON", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		handler := redis_utils.NewRedisHandlerFromClient(db)

		mock.ExpectSet("key", []byte(`{"name":"John","age":30}`), 10*time.Second).SetVal("OK")

		err := handler.Set(ctx, "key", sampleData{Name: "John", Age: 30}, 10*time.Second)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get deserializes JSON", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		handler := redis_utils.NewRedisHandlerFromClient(db)

		mock.ExpectGet("key").SetVal(`{"name":"John","age":30}`)

		var got sampleData
		require.NoError(t, handler.Get(ctx, "key", &got))
		assert.Equal(t, sampleData{Name: "John", Age: 30}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get on a missing key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		handler := redis_utils.NewRedisHandlerFromClient(db)

		mock.ExpectGet("missing").RedisNil()

		var got sampleData
		err := handler.Get(ctx, "missing", &got)
		assert.ErrorIs(t, err, redis_utils.ErrKeyNotFound)
	})

	t.Run("Get surfaces connection errors", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		handler := redis_utils.NewRedisHandlerFromClient(db)

		mock.ExpectGet("key").SetErr(errors.New("connection refused"))

		var got sampleData
		err := handler.Get(ctx, "key", &got)
		assert.ErrorContains(t, err, "connection refused")
		assert.NotErrorIs(t, err, redis_utils.ErrKeyNotFound)
	})

	t.Run("Delete and Exists", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		handler := redis_utils.NewRedisHandlerFromClient(db)

		mock.ExpectDel("key").SetVal(1)
		mock.ExpectExists("key").SetVal(0)

		require.NoError(t, handler.Delete(ctx, "key"))
		exists, err := handler.Exists(ctx, "key")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
