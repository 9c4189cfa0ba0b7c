package mmap

import "errors"

// Mode selects the protection of a mapping.
type Mode int

const (
	// ReadOnly maps pages with PROT_READ.
	ReadOnly Mode = iota
	// ReadWrite maps pages with PROT_READ|PROT_WRITE, MAP_SHARED.
	ReadWrite
)

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is not positive.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrShortFile is returned when the file is smaller than the requested mapping.
	ErrShortFile = errors.New("mmap: file shorter than mapping")
)
