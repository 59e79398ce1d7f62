package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstep"
	"github.com/goliatone/go-formstep/internal/config"
	"github.com/goliatone/go-formstep/internal/logging"
	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/openapi"
	"github.com/goliatone/go-formstep/pkg/render"
	"github.com/goliatone/go-formstep/pkg/renderers/tui"
	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/stepper"
	"github.com/goliatone/go-formstep/pkg/store"
	"github.com/goliatone/go-formstep/pkg/submission"
	"github.com/goliatone/go-formstep/pkg/templates"
	"github.com/goliatone/go-formstep/pkg/validation"
)

type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	// driver replaces the survey prompts when set.
	driver tui.PromptDriver
}

func (a *app) run(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "formstep <command> [flags]",
		Short:             "Validate, publish and fill multi-step forms",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.AddCommand(
		a.validateCmd(),
		a.templatesCmd(),
		a.fillCmd(),
		a.publishCmd(),
		a.formsCmd(),
		a.contractCmd(),
	)
	root.AddCommand(a.settingsCmds()...)
	return root
}

func (a *app) validateCmd() *cobra.Command {
	var location string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schema document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			doc, err := a.loadDocument(ctx, location)
			if err != nil {
				return err
			}
			result := a.validate(doc)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if result.Valid {
				fmt.Fprintf(out, "%s: ok (%d steps, %d fields)\n", doc.Location(), result.Schema.StepCount(), len(result.Schema.Fields()))
			} else {
				for _, issue := range result.Issues {
					fmt.Fprintln(out, issue.String())
				}
			}
			return result.Err()
		},
	}
	cmd.Flags().StringVar(&location, "schema", "", "schema file path or URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validation result as JSON")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func (a *app) templatesCmd() *cobra.Command {
	var show string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List or print the predefined templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if show != "" {
				s, err := templates.Get(show)
				if err != nil {
					return err
				}
				raw, err := schema.Encode(s)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(raw))
				return err
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIPO\tNOMBRE")
			for _, tpl := range templates.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", tpl.ID, tpl.AccountType, tpl.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&show, "show", "", "print the template schema with this id")
	return cmd
}

func (a *app) fillCmd() *cobra.Command {
	var location, templateID, shortID, output string
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a form in the terminal and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.fill(cmd.Context(), cmd.OutOrStdout(), location, templateID, shortID, output)
		},
	}
	cmd.Flags().StringVar(&location, "schema", "", "schema file path or URL")
	cmd.Flags().StringVar(&templateID, "template", "", "predefined template id")
	cmd.Flags().StringVar(&shortID, "short-id", "", "published form short id")
	cmd.Flags().StringVar(&output, "output", a.cfg.Output, "result format: text, json or yaml")
	cmd.MarkFlagsMutuallyExclusive("schema", "template", "short-id")
	cmd.MarkFlagsOneRequired("schema", "template", "short-id")
	return cmd
}

func (a *app) fill(ctx context.Context, out io.Writer, location, templateID, shortID, output string) error {
	s, err := a.resolveSchema(ctx, location, templateID, shortID)
	if err != nil {
		return err
	}
	ctx = logging.WithFormID(ctx, s.ID)
	log := logging.FromContext(ctx)

	registry, err := render.NewDefaultRegistry()
	if err != nil {
		return err
	}
	if _, err := registry.Get(output); err != nil {
		return err
	}
	summary, err := registry.Get("text")
	if err != nil {
		return err
	}

	uploader, err := submission.NewDirUploader(a.cfg.UploadDir())
	if err != nil {
		return err
	}
	builder := submission.NewBuilder(submission.WithUploader(uploader))

	c, err := stepper.New(s)
	if err != nil {
		return err
	}
	defer c.Close()

	var envelope submission.Envelope
	submit := func(ctx context.Context, values form.Values) error {
		env, err := builder.Build(ctx, s, shortID, values)
		if err != nil {
			return err
		}
		if failed := env.FailedUploads(); len(failed) > 0 {
			return fmt.Errorf("%s: %s", failed[0].Field, failed[0].Error)
		}
		if err := a.saveEnvelope(env); err != nil {
			return err
		}
		envelope = env
		return nil
	}

	options := []tui.Option{tui.WithSummary(summary), tui.WithOutput(out)}
	if a.driver != nil {
		options = append(options, tui.WithPromptDriver(a.driver))
	}
	values, err := tui.New(options...).Run(ctx, c, submit)
	if err != nil {
		return err
	}
	log.Info("form submitted", "submission", envelope.ID, "uploads", len(envelope.Uploads))

	rendered, err := registry.Render(ctx, output, render.Input{Schema: s, Values: values}, render.RenderOptions{
		Submission: envelope.ID,
		Remaining:  -1,
	})
	if err != nil {
		return err
	}
	_, err = out.Write(rendered)
	return err
}

func (a *app) publishCmd() *cobra.Command {
	var location, name, slug string
	var pages bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Validate a schema and publish it under a short id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			s, err := a.loadSchema(ctx, location)
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			settings, err := store.Publish(ctx, st, s, name, slug)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "published %s as %s (%s)\n", settings.Name, settings.ShortID, settings.Slug)

			if pages {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(submission.CustomPagesConfig(s))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "schema", "", "schema file path or URL")
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the schema title")
	cmd.Flags().StringVar(&slug, "slug", "", "url slug, derived from the title when empty")
	cmd.Flags().BoolVar(&pages, "pages", false, "also print the custom pages configuration")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func (a *app) formsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List published forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			records, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SHORT ID\tSLUG\tESTADO\tACTIVO\tOCULTO")
			for _, record := range records {
				if record.Hidden && !all {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\n", record.ShortID, record.Slug, record.Status, record.Active, record.Hidden)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include hidden forms")
	return cmd
}

func (a *app) republishCmd() *cobra.Command {
	var shortID, location string
	cmd := &cobra.Command{
		Use:   "republish",
		Short: "Replace the schema of a published form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.loadSchema(ctx, location)
			if err != nil {
				return err
			}
			return a.updateForm(cmd, shortID, func(st store.Store, current store.FormSettings) (store.FormSettings, error) {
				return store.Republish(ctx, st, current.ID, s)
			})
		},
	}
	cmd.Flags().StringVar(&shortID, "short-id", "", "published form short id")
	cmd.Flags().StringVar(&location, "schema", "", "schema file path or URL")
	_ = cmd.MarkFlagRequired("short-id")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// toggleCmd builds the activate/deactivate and hide/unhide commands.
func (a *app) toggleCmd(use, short string, apply func(ctx context.Context, st store.Store, id string) (store.FormSettings, error)) *cobra.Command {
	var shortID string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.updateForm(cmd, shortID, func(st store.Store, current store.FormSettings) (store.FormSettings, error) {
				return apply(cmd.Context(), st, current.ID)
			})
		},
	}
	cmd.Flags().StringVar(&shortID, "short-id", "", "published form short id")
	_ = cmd.MarkFlagRequired("short-id")
	return cmd
}

func (a *app) settingsCmds() []*cobra.Command {
	setActive := func(active bool) func(context.Context, store.Store, string) (store.FormSettings, error) {
		return func(ctx context.Context, st store.Store, id string) (store.FormSettings, error) {
			return store.SetActive(ctx, st, id, active)
		}
	}
	setHidden := func(hidden bool) func(context.Context, store.Store, string) (store.FormSettings, error) {
		return func(ctx context.Context, st store.Store, id string) (store.FormSettings, error) {
			return store.SetHidden(ctx, st, id, hidden)
		}
	}
	return []*cobra.Command{
		a.republishCmd(),
		a.toggleCmd("activate", "Let end users fill a form again", setActive(true)),
		a.toggleCmd("deactivate", "Stop accepting submissions for a form", setActive(false)),
		a.toggleCmd("hide", "Remove a form from listings", setHidden(true)),
		a.toggleCmd("unhide", "Show a hidden form in listings", setHidden(false)),
	}
}

// updateForm looks the form up by short id without the servable check so
// deactivated forms can be managed.
func (a *app) updateForm(cmd *cobra.Command, shortID string, update func(store.Store, store.FormSettings) (store.FormSettings, error)) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	current, err := st.GetByShortID(cmd.Context(), shortID)
	if err != nil {
		return err
	}
	updated, err := update(st, current)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): status=%s active=%t hidden=%t\n",
		updated.Name, updated.ShortID, updated.Status, updated.Active, updated.Hidden)
	return err
}

func (a *app) contractCmd() *cobra.Command {
	var shortID, format string
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Print the OpenAPI contract for submitting a published form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.openStore()
			if err != nil {
				return err
			}
			settings, err := store.Resolve(ctx, st, shortID)
			if err != nil {
				return err
			}
			doc, err := openapi.SubmissionDocument(ctx, settings.Schema, settings.ShortID)
			if err != nil {
				return err
			}
			raw, err := openapi.Marshal(doc, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&shortID, "short-id", "", "published form short id")
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	_ = cmd.MarkFlagRequired("short-id")
	return cmd
}

func (a *app) resolveSchema(ctx context.Context, location, templateID, shortID string) (schema.FormSchema, error) {
	switch {
	case templateID != "":
		return templates.Get(templateID)
	case shortID != "":
		st, err := a.openStore()
		if err != nil {
			return schema.FormSchema{}, err
		}
		settings, err := store.Resolve(ctx, st, shortID)
		if err != nil {
			return schema.FormSchema{}, err
		}
		return settings.Schema, nil
	default:
		return a.loadSchema(ctx, location)
	}
}

func (a *app) loadDocument(ctx context.Context, location string) (schema.Document, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return schema.Document{}, err
	}
	loader := schema.NewLoader(schema.WithHTTPFallback(a.cfg.HTTPTimeout))
	return loader.Load(ctx, src)
}

func (a *app) loadSchema(ctx context.Context, location string) (schema.FormSchema, error) {
	fallback := schema.WithHTTPFallback(a.cfg.HTTPTimeout)
	if a.cfg.SanitizeSchemas {
		return formstep.LoadSanitizedSchema(ctx, location, fallback)
	}
	return formstep.LoadSchema(ctx, location, fallback)
}

func (a *app) validate(doc schema.Document) validation.SchemaValidationResult {
	if a.cfg.SanitizeSchemas {
		return formstep.SanitizeAndValidate(doc)
	}
	return validation.ValidateDocument(doc)
}

func (a *app) openStore() (store.Store, error) {
	ids, err := store.NewShortIDs(a.cfg.ShortIDMinLength)
	if err != nil {
		return nil, err
	}
	return store.NewDirStore(a.cfg.StoreDir(),
		store.WithShortIDs(ids),
		store.WithLogger(logging.WithFields("component", "store")),
	)
}

func (a *app) saveEnvelope(env submission.Envelope) error {
	dir := filepath.Join(a.cfg.DataDir, "submissions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, env.ID+".json"), raw, 0o644)
}
