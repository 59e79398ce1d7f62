// Package schema defines the declarative form description consumed by the
// validation, form and stepper packages: an ordered list of steps, each an
// ordered list of typed fields with optional validation rules, plus a session
// duration that is either unlimited or a custom number of minutes.
//
// Schemas are plain values. Documents can be decoded from JSON or YAML and
// loaded from files, fs.FS entries, or HTTP URLs through Loader. Structural
// checks live in the validation package; this package never rejects a schema
// beyond decoding errors.
package schema
