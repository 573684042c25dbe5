// Package logger wraps zerolog with service-wide conventions: component
// tagging, standard field names, and console or JSON output selected by
// configuration.
package logger
