// Package submission shapes a filled form for the onboarding API: values are
// split into predefined account fields and custom answers, files are uploaded
// and merged back as references, and the custom pages configuration used to
// publish a form is derived from its schema.
package submission
