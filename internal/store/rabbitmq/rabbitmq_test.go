package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestQueueNames(t *testing.T) {
	if RetryQueue("chat_jobs") != "chat_jobs.retry" || DeadQueue("chat_jobs") != "chat_jobs.dlq" {
		t.Fatalf("unexpected queue names")
	}
}

func TestFormatExpiration(t *testing.T) {
	cases := map[time.Duration]string{
		2 * time.Second:         "2000",
		1500 * time.Millisecond: "1500",
		time.Microsecond:        "1",
	}
	for d, want := range cases {
		if got := formatExpiration(d); got != want {
			t.Fatalf("formatExpiration(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestJobMessageWireFormat(t *testing.T) {
	raw, err := json.Marshal(JobMessage{JobID: "01HZZZZZZZZZZZZZZZZZZZZZZZ"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"job_id":"01HZZZZZZZZZZZZZZZZZZZZZZZ"}` {
		t.Fatalf("unexpected body: %s", raw)
	}
}

func TestAttempt(t *testing.T) {
	cases := []struct {
		headers amqp.Table
		want    int
	}{
		{nil, 0},
		{amqp.Table{}, 0},
		{amqp.Table{AttemptHeader: int32(2)}, 2},
		{amqp.Table{AttemptHeader: int64(3)}, 3},
		{amqp.Table{AttemptHeader: "4"}, 0},
	}
	for _, tc := range cases {
		if got := Attempt(tc.headers); got != tc.want {
			t.Fatalf("Attempt(%v) = %d, want %d", tc.headers, got, tc.want)
		}
	}
}
