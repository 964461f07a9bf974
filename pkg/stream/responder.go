package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"construction-assist-be/pkg/llm"
)

const (
	defaultSplitThreshold = 60
	defaultGroupWords     = 4
	defaultPaceDelay      = 30 * time.Millisecond
	defaultQueueSize      = 64
)

// Responder drives token-incremental generation onto an event stream.
// Large provider tokens are re-split on word boundaries into small paced
// groups so the perceived delivery rate is smoother than the provider's
// native chunking. A bounded segment channel sits between the segmenter
// and the frame writer; the terminal frame is written only after that
// channel is closed and drained, which guarantees done/error arrives
// strictly after every content frame.
type Responder struct {
	splitThreshold int
	groupWords     int
	paceDelay      time.Duration
	queueSize      int
	logger         *log.Logger
}

func NewResponder(splitThreshold, groupWords int, paceDelay time.Duration, logger *log.Logger) *Responder {
	if splitThreshold <= 0 {
		splitThreshold = defaultSplitThreshold
	}
	if groupWords <= 0 {
		groupWords = defaultGroupWords
	}
	return &Responder{
		splitThreshold: splitThreshold,
		groupWords:     groupWords,
		paceDelay:      paceDelay,
		queueSize:      defaultQueueSize,
		logger:         logger,
	}
}

// segment is one scheduled output unit. Paced segments are delayed before
// writing so re-split token groups arrive at strictly increasing offsets.
type segment struct {
	text  string
	paced bool
}

// session is the ephemeral per-answer state: accumulated text, the queue
// of pending segments, and the generation outcome.
type session struct {
	accumulated  strings.Builder
	segments     chan segment
	doneReceived bool
	genErr       error
}

// Result reports how a streaming session ended.
type Result struct {
	// Answer is the full accumulated text, valid when Completed.
	Answer string
	// Completed means generation finished and every scheduled segment
	// was written before the terminal frame.
	Completed bool
	// Canceled means the client went away; no terminal frame was written.
	Canceled bool
	// GenErr is set when the generation capability failed mid-stream; an
	// error frame was written in its place.
	GenErr error
}

// Stream pumps deltas to the writer as content frames and finishes with a
// terminal frame. finish is called with the complete answer once delivery
// has drained, and returns the message id for the done frame.
//
// Cancellation (ctx done or a failed write to the client) stops further
// reads from the delta channel and suppresses the terminal frame.
func (r *Responder) Stream(ctx context.Context, w *bufio.Writer, deltas <-chan llm.Delta, finish func(answer string) string) Result {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &session{segments: make(chan segment, r.queueSize)}

	go r.segmenterLoop(sctx, sess, deltas)

	canceled := false
	for seg := range sess.segments {
		if canceled {
			continue // drain without writing
		}
		if seg.paced && r.paceDelay > 0 {
			time.Sleep(r.paceDelay)
		}
		if err := writeFrame(w, ContentFrame{Content: seg.text}); err != nil {
			r.logger.Printf("[STREAM] Client write failed, canceling: %v", err)
			cancel()
			canceled = true
		}
	}

	// The segment channel is closed and drained: generation and delivery
	// are both finished, in that order.
	if canceled || (sctx.Err() != nil && !sess.doneReceived && sess.genErr == nil) {
		return Result{Answer: sess.accumulated.String(), Canceled: true}
	}

	if sess.genErr != nil {
		r.logger.Printf("[STREAM] Generation failed mid-stream: %v", sess.genErr)
		if err := writeFrame(w, ErrorFrame{Error: "Sorry, something went wrong while generating the answer."}); err != nil {
			r.logger.Printf("[STREAM] Failed to write error frame: %v", err)
		}
		return Result{Answer: sess.accumulated.String(), GenErr: sess.genErr}
	}

	answer := sess.accumulated.String()
	messageID := finish(answer)
	if err := writeFrame(w, DoneFrame{Done: true, MessageID: messageID}); err != nil {
		r.logger.Printf("[STREAM] Failed to write done frame: %v", err)
		return Result{Answer: answer, Canceled: true}
	}
	return Result{Answer: answer, Completed: true}
}

// segmenterLoop consumes deltas, accumulates the raw answer, and schedules
// output segments. It owns the segment channel and closes it on exit.
func (r *Responder) segmenterLoop(ctx context.Context, sess *session, deltas <-chan llm.Delta) {
	defer close(sess.segments)

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deltas:
			if !ok {
				// Provider closed without an explicit done marker.
				sess.doneReceived = true
				return
			}
			if d.Err != nil {
				sess.genErr = d.Err
				return
			}
			if d.Done {
				sess.doneReceived = true
				return
			}
			if d.Content == "" {
				continue
			}

			sess.accumulated.WriteString(d.Content)
			for _, seg := range r.split(d.Content) {
				select {
				case sess.segments <- seg:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// split re-segments a token for pacing. Tokens at or under the threshold
// pass through as one immediate segment; larger ones are split on word
// boundaries into paced groups of a few words each.
func (r *Responder) split(token string) []segment {
	if len(token) <= r.splitThreshold {
		return []segment{{text: token}}
	}

	// Split on single spaces only: fields keep interior newlines and run-on
	// whitespace intact, so the concatenation of the segments reproduces
	// the token byte for byte.
	fields := strings.Split(token, " ")
	if len(fields) <= r.groupWords {
		return []segment{{text: token}}
	}

	var segs []segment
	for start := 0; start < len(fields); start += r.groupWords {
		end := start + r.groupWords
		if end > len(fields) {
			end = len(fields)
		}
		text := strings.Join(fields[start:end], " ")
		if start > 0 {
			text = " " + text
		}
		segs = append(segs, segment{text: text, paced: true})
	}
	return segs
}

func writeFrame(w *bufio.Writer, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return w.Flush()
}
