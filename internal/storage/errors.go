package storage

import "errors"

// ErrNilRecord is returned when RecordCall is given a nil record.
var ErrNilRecord = errors.New("call record is nil")

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage is closed")
