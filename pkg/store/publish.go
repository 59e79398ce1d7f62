package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formstep/pkg/schema"
)

// ErrNotServable is returned by Resolve for drafts and deactivated forms.
var ErrNotServable = errors.New("store: form is not available")

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a url slug from a title.
func Slugify(title string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(slug, "-")
}

// Publish stores s as a new published, active form. An empty slug is
// derived from the schema title.
func Publish(ctx context.Context, st Store, s schema.FormSchema, name, slug string) (FormSettings, error) {
	if name == "" {
		name = s.Title
	}
	if slug == "" {
		slug = Slugify(s.Title)
	}
	if slug == "" {
		return FormSettings{}, fmt.Errorf("store: publish: slug is required")
	}
	return st.Create(ctx, FormSettings{
		Name:   name,
		Slug:   slug,
		Status: StatusPublished,
		Active: true,
		Schema: s,
	})
}

// Republish replaces the schema of an existing form and publishes it again.
func Republish(ctx context.Context, st Store, id string, s schema.FormSchema) (FormSettings, error) {
	current, err := st.Get(ctx, id)
	if err != nil {
		return FormSettings{}, err
	}
	current.Schema = s
	current.Status = StatusPublished
	return st.Update(ctx, current)
}

// SetActive toggles whether end users can fill the form.
func SetActive(ctx context.Context, st Store, id string, active bool) (FormSettings, error) {
	current, err := st.Get(ctx, id)
	if err != nil {
		return FormSettings{}, err
	}
	current.Active = active
	return st.Update(ctx, current)
}

// SetHidden toggles whether the form shows up in listings.
func SetHidden(ctx context.Context, st Store, id string, hidden bool) (FormSettings, error) {
	current, err := st.Get(ctx, id)
	if err != nil {
		return FormSettings{}, err
	}
	current.Hidden = hidden
	return st.Update(ctx, current)
}

// Resolve looks a form up by short id and checks it can be served.
func Resolve(ctx context.Context, st Store, shortID string) (FormSettings, error) {
	settings, err := st.GetByShortID(ctx, shortID)
	if err != nil {
		return FormSettings{}, err
	}
	if !settings.Servable() {
		return FormSettings{}, fmt.Errorf("%w: %s", ErrNotServable, shortID)
	}
	return settings, nil
}
