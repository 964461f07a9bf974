package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log"
	"strings"
	"sync"
)

// Handlers receives decoded events. A nil handler is skipped.
type Handlers struct {
	OnChunk    func(content string)
	OnComplete func(messageID string)
	OnError    func(message string)
}

// Consumer is the client half of the transport. It holds a single
// streamed byte source, buffers bytes until a full event (terminated by
// the blank-line delimiter) is available, and dispatches each decoded
// payload to the matching handler. Malformed events are logged and
// skipped rather than aborting the stream.
type Consumer struct {
	body     io.ReadCloser
	stop     func()
	handlers Handlers
	logger   *log.Logger

	cancelOnce sync.Once
}

// NewConsumer wraps a streamed response body. stop aborts the underlying
// transfer (typically the request's context cancel func); it may be nil.
func NewConsumer(body io.ReadCloser, stop func(), handlers Handlers, logger *log.Logger) *Consumer {
	return &Consumer{
		body:     body,
		stop:     stop,
		handlers: handlers,
		logger:   logger,
	}
}

// Run reads the stream to its end, dispatching one handler call per
// decoded event. It returns after a terminal event, end of stream, or
// cancellation.
func (c *Consumer) Run() error {
	defer c.body.Close()

	reader := bufio.NewReader(c.body)
	var buf bytes.Buffer

	for {
		chunk := make([]byte, 4096)
		n, readErr := reader.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			for {
				raw, ok := nextEvent(&buf)
				if !ok {
					break
				}
				if terminal := c.dispatch(raw); terminal {
					return nil
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}

// Cancel stops the underlying transfer. It is idempotent and safe to call
// after natural completion.
func (c *Consumer) Cancel() {
	c.cancelOnce.Do(func() {
		if c.stop != nil {
			c.stop()
		}
		c.body.Close()
	})
}

// nextEvent pops one complete event (up to the blank-line delimiter) off
// the buffer, or reports that none is complete yet.
func nextEvent(buf *bytes.Buffer) (string, bool) {
	data := buf.Bytes()
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return "", false
	}
	event := string(data[:idx])
	buf.Next(idx + 2)
	return event, true
}

type eventPayload struct {
	Content   *string `json:"content"`
	Done      bool    `json:"done"`
	MessageID string  `json:"messageId"`
	Error     string  `json:"error"`
}

// dispatch decodes one event and invokes the matching handler. Returns
// true for terminal events.
func (c *Consumer) dispatch(raw string) bool {
	var data string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	if data == "" {
		return false // comment or unknown field line
	}

	var payload eventPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		c.logger.Printf("[STREAM] Skipping malformed event: %v", err)
		return false
	}

	switch {
	case payload.Error != "":
		if c.handlers.OnError != nil {
			c.handlers.OnError(payload.Error)
		}
		return true
	case payload.Done:
		if c.handlers.OnComplete != nil {
			c.handlers.OnComplete(payload.MessageID)
		}
		return true
	case payload.Content != nil:
		if c.handlers.OnChunk != nil {
			c.handlers.OnChunk(*payload.Content)
		}
	}
	return false
}
