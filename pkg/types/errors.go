package types

import (
	"errors"
	"fmt"
)

// Configuration errors
var (
	// ErrConfigNotFound indicates no project configuration file exists
	ErrConfigNotFound = errors.New("project configuration not found")

	// ErrConfigInvalid indicates a configuration file could not be parsed
	ErrConfigInvalid = errors.New("invalid project configuration")

	// ErrMissingConfigKey indicates a required configuration key is absent
	ErrMissingConfigKey = errors.New("missing configuration key")
)

// Manifest errors
var (
	// ErrManifestNotFound indicates a manifest file does not exist
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrInvalidManifest indicates a manifest file could not be parsed
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrNotAppManifest indicates a JSON document lacks a startup_app block
	ErrNotAppManifest = errors.New("not an application manifest")

	// ErrNotInjectable indicates injected mode was requested for a project
	// whose configuration does not declare it injectable
	ErrNotInjectable = errors.New("project is not injectable")
)

// Template errors
var (
	// ErrInvalidTemplate indicates a URL template could not be parsed or evaluated
	ErrInvalidTemplate = errors.New("invalid template")
)

// Version errors
var (
	// ErrInvalidVersion indicates a version string is neither a release
	// channel nor a literal build number
	ErrInvalidVersion = errors.New("invalid version")

	// ErrUnknownChannel indicates a release channel is not recognized
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrVersionMapped indicates a build number already carries a mapped
	// leading segment and cannot be mapped again
	ErrVersionMapped = errors.New("version already mapped")
)

// Launcher errors
var (
	// ErrRuntimeNotInstalled indicates the runtime launcher binary was not found
	ErrRuntimeNotInstalled = errors.New("runtime not installed")

	// ErrLaunchFailed indicates the runtime process could not be started
	ErrLaunchFailed = errors.New("launch failed")
)

// Build errors
var (
	// ErrBuildFailed indicates the source bundle could not be produced
	ErrBuildFailed = errors.New("build failed")
)

// AppError provides structured error information
type AppError struct {
	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// Err is the underlying error
	Err error

	// Fields contains additional context
	Fields map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAppError creates a new AppError
func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Fields:  make(map[string]interface{}),
	}
}

// WithField adds a field to the error
func (e *AppError) WithField(key string, value interface{}) *AppError {
	e.Fields[key] = value
	return e
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsManifestError checks if an error belongs to the manifest error family.
// The dev server uses this to fall through to static file serving instead
// of failing the request.
func IsManifestError(err error) bool {
	return errors.Is(err, ErrManifestNotFound) ||
		errors.Is(err, ErrInvalidManifest) ||
		errors.Is(err, ErrNotAppManifest)
}

// IsConfigError checks if an error belongs to the configuration error family
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrConfigInvalid) ||
		errors.Is(err, ErrMissingConfigKey)
}

// IsVersionError checks if an error belongs to the version error family
func IsVersionError(err error) bool {
	return errors.Is(err, ErrInvalidVersion) ||
		errors.Is(err, ErrUnknownChannel) ||
		errors.Is(err, ErrVersionMapped)
}
