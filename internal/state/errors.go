package state

import "errors"

// Errors returned while loading the versions file
var (
	ErrNoVersionsFile  = errors.New("no versions file")
	ErrCorruptVersions = errors.New("versions file is not valid JSON")
	ErrSchemaMismatch  = errors.New("versions file was written by an incompatible schema")
)
