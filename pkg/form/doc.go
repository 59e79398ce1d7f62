// Package form holds the mutable side of a rendered schema: the value map
// keyed by field id and the last validation message per field.
package form
