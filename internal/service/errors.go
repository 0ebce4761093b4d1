package service

import "errors"

var (
	// ErrBlockNotPublished is returned when an unpublished block is designated
	// as the landing block.
	ErrBlockNotPublished = errors.New("landing block must be published")
	// ErrLandingBlockPrivate is returned when toggling privacy would hide the
	// current landing block. The landing block is always public, the coupling
	// is enforced on both writes.
	ErrLandingBlockPrivate = errors.New("landing block cannot be made private")
	// ErrNotRootBlock is returned when a child block is used where a root
	// block is required.
	ErrNotRootBlock = errors.New("block is not a root block")
)
