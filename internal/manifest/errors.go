package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrNoManifests indicates the definitions file names no manifests
	ErrNoManifests = errors.New("definitions must contain at least one manifest")

	// ErrEmptyName indicates a manifest definition has no name
	ErrEmptyName = errors.New("manifest name cannot be empty")

	// ErrDuplicateName indicates two manifest definitions share a name
	ErrDuplicateName = errors.New("manifest name must be unique")

	// ErrEmptyVersion indicates a manifest definition has no version
	ErrEmptyVersion = errors.New("manifest version cannot be empty")

	// ErrEmptyURL indicates an entry is missing the required URL field
	ErrEmptyURL = errors.New("entry URL cannot be empty")

	// ErrInvalidFormat indicates the definitions file is not valid YAML or JSON
	ErrInvalidFormat = errors.New("definitions must be valid YAML or JSON")

	// ErrFileNotFound indicates the definitions file does not exist
	ErrFileNotFound = errors.New("definitions file not found")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")

	// ErrUnknownManifest indicates a lookup for a name that is not defined
	ErrUnknownManifest = errors.New("unknown manifest")
)
