package stream

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(body string, stop func(), handlers Handlers) *Consumer {
	return NewConsumer(io.NopCloser(strings.NewReader(body)), stop, handlers, log.New(io.Discard, "", 0))
}

func TestConsumerReassemblesAnswer(t *testing.T) {
	body := "data: {\"content\":\"The pour \"}\n\n" +
		"data: {\"content\":\"is \"}\n\n" +
		"data: {\"content\":\"Monday.\"}\n\n" +
		"data: {\"done\":true,\"messageId\":\"msg-42\"}\n\n"

	var answer bytes.Buffer
	var completedID string
	consumer := newTestConsumer(body, func() {}, Handlers{
		OnChunk:    func(content string) { answer.WriteString(content) },
		OnComplete: func(messageID string) { completedID = messageID },
		OnError:    func(message string) { t.Fatalf("unexpected error event: %s", message) },
	})

	consumer.Run()

	assert.Equal(t, "The pour is Monday.", answer.String())
	assert.Equal(t, "msg-42", completedID)
}

func TestConsumerStopsAtTerminalFrame(t *testing.T) {
	// Anything after the done frame belongs to no event and must not be
	// surfaced.
	body := "data: {\"content\":\"hello\"}\n\n" +
		"data: {\"done\":true,\"messageId\":\"msg-1\"}\n\n" +
		"data: {\"content\":\"stale\"}\n\n"

	var chunks []string
	completed := 0
	consumer := newTestConsumer(body, func() {}, Handlers{
		OnChunk:    func(content string) { chunks = append(chunks, content) },
		OnComplete: func(string) { completed++ },
	})

	consumer.Run()

	assert.Equal(t, []string{"hello"}, chunks)
	assert.Equal(t, 1, completed)
}

func TestConsumerSkipsMalformedEvents(t *testing.T) {
	body := "data: {\"content\":\"good \"}\n\n" +
		"not an event at all\n\n" +
		"data: {broken json\n\n" +
		"data: {\"content\":\"still good\"}\n\n" +
		"data: {\"done\":true,\"messageId\":\"msg-9\"}\n\n"

	var answer bytes.Buffer
	var completedID string
	consumer := newTestConsumer(body, func() {}, Handlers{
		OnChunk:    func(content string) { answer.WriteString(content) },
		OnComplete: func(messageID string) { completedID = messageID },
	})

	consumer.Run()

	assert.Equal(t, "good still good", answer.String())
	assert.Equal(t, "msg-9", completedID)
}

func TestConsumerDispatchesErrorEvent(t *testing.T) {
	body := "data: {\"content\":\"partial\"}\n\n" +
		"data: {\"error\":\"generation failed\"}\n\n"

	var chunks []string
	var errMessage string
	consumer := newTestConsumer(body, func() {}, Handlers{
		OnChunk:    func(content string) { chunks = append(chunks, content) },
		OnComplete: func(string) { t.Fatal("complete must not fire after an error event") },
		OnError:    func(message string) { errMessage = message },
	})

	consumer.Run()

	assert.Equal(t, []string{"partial"}, chunks)
	assert.Equal(t, "generation failed", errMessage)
}

func TestConsumerCancelIsIdempotent(t *testing.T) {
	stops := 0
	consumer := newTestConsumer("", func() { stops++ }, Handlers{})

	consumer.Cancel()
	consumer.Cancel()
	consumer.Cancel()

	require.Equal(t, 1, stops)
}
