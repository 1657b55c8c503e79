package pagemirror

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressDocumentFetched ProgressType = iota
	ProgressAssetsStarted
	ProgressAssetCompleted
	ProgressAssetFailed
	ProgressFinished
)

func (t ProgressType) String() string {
	switch t {
	case ProgressDocumentFetched:
		return "document fetched"
	case ProgressAssetsStarted:
		return "assets started"
	case ProgressAssetCompleted:
		return "asset completed"
	case ProgressAssetFailed:
		return "asset failed"
	case ProgressFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ProgressEvent reports progress during a mirror run.
type ProgressEvent struct {
	// RunID identifies the run the event belongs to. Events emitted by a
	// standalone Scheduler leave it empty.
	RunID     string
	Type      ProgressType
	URL       string
	Path      string // local file, when one was written
	Completed int
	Total     int
	Error     error

	// Size and Hash describe the stored content of a completed asset.
	Size int
	Hash string
}

// ProgressFunc is a callback for reporting mirror progress.
// It is always invoked from a single goroutine.
type ProgressFunc func(event ProgressEvent)
