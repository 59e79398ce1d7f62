// Package render turns a filled form into output: a pongo2 text summary, or
// structured JSON and YAML documents. Renderers are looked up by name through
// a Registry.
package render
