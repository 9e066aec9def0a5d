// Package errors provides the classified error primitives used across sitebuilder.
//
// Every failure that can abort a build is expressed as a ClassifiedError carrying a
// category (config, plugin, render, filesystem, ...), a severity and structured
// context such as the stage and source path that failed. The CLI adapter maps
// categories to process exit codes.
//
// Example usage:
//
//	err := errors.RenderError("template execution failed").
//		WithContext("path", relPath).
//		WithCause(originalErr).
//		Build()
package errors
