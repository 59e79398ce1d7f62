// Package openapi describes the submission endpoint of a published form as an
// OpenAPI 3 document built with kin-openapi. Field rules become schema
// constraints so external clients can check a body before posting it.
package openapi
