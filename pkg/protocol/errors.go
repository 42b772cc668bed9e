package protocol

const (
	ErrStreamInvalidJSON   = "E_STREAM_INVALID_JSON"
	ErrStreamBadStatus     = "E_STREAM_BAD_STATUS"
	ErrStreamUnexpectedEOF = "E_STREAM_UNEXPECTED_EOF"
)
