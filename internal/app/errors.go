package app

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrChannelNotFound  = errors.New("channel not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrMessageEmpty     = errors.New("message content is empty")
	ErrNoDocuments      = errors.New("channel has no documents")
	ErrFileTooLarge     = errors.New("file exceeds maximum upload size")
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrMessageEnqueue   = errors.New("message enqueue failed")
)

// CapacityError rejects an upload that would push a channel over quota.
// The channel's counters are left untouched.
type CapacityError struct {
	LimitType string // "file_count" or "size"
	Current   int64
	Limit     int64
	Incoming  int64
}

func (e *CapacityError) Error() string {
	if e.LimitType == "file_count" {
		return fmt.Sprintf("file count limit exceeded: %d of %d files used", e.Current, e.Limit)
	}
	return fmt.Sprintf("size limit exceeded: %d of %d bytes used, cannot add %d bytes",
		e.Current, e.Limit, e.Incoming)
}
