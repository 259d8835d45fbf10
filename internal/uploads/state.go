package uploads

// State is the position of an upload attempt in its pipeline.
type State int

const (
	StateIdle State = iota
	StateFilePicked
	StateUploading
	StateRemoteProcessing
	StatePersisting
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFilePicked:
		return "file_picked"
	case StateUploading:
		return "uploading"
	case StateRemoteProcessing:
		return "remote_processing"
	case StatePersisting:
		return "persisting"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether an attempt is between its first remote call and its outcome.
func (s State) Busy() bool {
	return s == StateUploading || s == StateRemoteProcessing || s == StatePersisting
}
