package events

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestChannel(t *testing.T) {
	assert.Equal(t, "transcriber:abc", Channel("abc"))
}

func TestNopPublish(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{SubmissionID: "x"}))
}

func TestRedisPublishUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	err := NewRedis(client, nil).Publish(context.Background(), Event{SubmissionID: "abc", Stage: "upload", Status: StatusStarted})
	assert.ErrorContains(t, err, "transcriber:abc")
}
