package edcore

import (
	"io"
	"log"
)

// Options configures an Editor.
type Options struct {
	// UndoLimit caps the number of transactions kept for undo. Zero or less
	// keeps everything.
	UndoLimit int

	// ChunkSize is the number of replacements ReplaceAll applies between
	// progress callbacks and cancellation checks.
	ChunkSize int

	// Logger receives notable events. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		UndoLimit: 1000,
		ChunkSize: 512,
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

func (o Options) chunkSize() int {
	if o.ChunkSize < 1 {
		return DefaultOptions().ChunkSize
	}
	return o.ChunkSize
}
