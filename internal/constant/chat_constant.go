package constant

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	// GenerationFailedReply is the user-visible apology sent when the
	// language model errors or is unreachable.
	GenerationFailedReply = "Sorry, something went wrong while generating the answer."
)

// Log module names.
const (
	ModuleChat         = "CHAT"
	ModuleDocument     = "DOCUMENT"
	ModuleInvalidation = "INVALIDATION"
	ModuleStream       = "STREAM"
)
