package stream

// Wire frames for the event stream. Every frame is serialized as a single
// "data: <JSON>" line followed by a blank line.

// ContentFrame is a text increment.
type ContentFrame struct {
	Content string `json:"content"`
}

// DoneFrame terminates a successful stream.
type DoneFrame struct {
	Done      bool   `json:"done"`
	MessageID string `json:"messageId"`
}

// ErrorFrame terminates a failed stream after bytes have already been
// written; failures before the first byte use a plain HTTP error instead.
type ErrorFrame struct {
	Error string `json:"error"`
}
