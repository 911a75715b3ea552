package store

import "errors"

var (
	// ErrEntityNotFound is returned when no entity row exists for the
	// requested id.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrTemplateNotFound is returned when no template row exists for the
	// requested id.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrQueueItemNotFound is returned when no queue row exists for the
	// requested id.
	ErrQueueItemNotFound = errors.New("queue item not found")

	// ErrMetadataNotFound is returned when the requested metadata key has
	// never been set.
	ErrMetadataNotFound = errors.New("metadata key not found")
)
