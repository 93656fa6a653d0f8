package district

import (
	"fmt"
	"path/filepath"
)

// NotFoundError reports a missing shapefile or shapefile directory.
type NotFoundError struct {
	Path string
	// Dir is true when the containing directory itself is missing.
	Dir bool
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Dir {
		return fmt.Sprintf("district: directory %s does not exist", filepath.Dir(e.Path))
	}
	return fmt.Sprintf("district: shapefile %s not found", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Message is the text shown to the dashboard user.
func (e *NotFoundError) Message() string {
	dir, name := filepath.Split(e.Path)
	if e.Dir {
		return fmt.Sprintf("The directory `%s` does not exist. Please create it and add the shapefile.", dir)
	}
	return fmt.Sprintf("The shapefile `%s` does not exist in `%s`. Please add it along with its components.", name, dir)
}

// ParseError reports a shapefile that could not be read or does not carry the
// expected district attributes.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("district: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Message is the text shown to the dashboard user.
func (e *ParseError) Message() string {
	return fmt.Sprintf("Error loading shapefile: %v", e.Err)
}

// AccessError reports a shapefile path that exists but cannot be inspected,
// for example because of permissions.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("district: access %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// Message is the text shown to the dashboard user.
func (e *AccessError) Message() string {
	return fmt.Sprintf("Cannot read `%s`: %v. Please check its permissions.", e.Path, e.Err)
}
