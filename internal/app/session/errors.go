package session

// ErrorCode classifies a failure reported through the listener. Errors
// are reported, never returned, across the controller's public boundary;
// every failed command emits exactly one code.
type ErrorCode int

const (
	NoError            ErrorCode = iota
	StorageAccessError           // directory/file creation failure, or playback I/O fault
	InternalError                // engine preparation/start failure, unclassified faults
	InCallRecordError            // capture start failed while a call holds the audio path
	UnsupportedFormat            // engine rejected the requested encoder
	RecordInterrupted            // asynchronous engine fault during active capture
)

// String returns the string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "no_error"
	case StorageAccessError:
		return "storage_access_error"
	case InternalError:
		return "internal_error"
	case InCallRecordError:
		return "in_call_record_error"
	case UnsupportedFormat:
		return "unsupported_format"
	case RecordInterrupted:
		return "record_interrupted"
	default:
		return "unknown"
	}
}
