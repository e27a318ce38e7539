package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
)

// resourceService is the part of services.ResourceService a view needs.
type resourceService[R models.Entity] interface {
	Name() string
	List(ctx context.Context, params models.ListParams) (models.Page[R], error)
	Get(ctx context.Context, id string) (R, error)
	Create(ctx context.Context, payload R) (R, error)
	Update(ctx context.Context, id string, payload R) (R, error)
	Remove(ctx context.Context, id string) error
	LocalCount(ctx context.Context) (int, error)
}

// resourceCmd is the type-erased command surface of one resource.
type resourceCmd interface {
	name() string
	matches(word string) bool
	list(ctx context.Context, params models.ListParams) error
	show(ctx context.Context, id string) error
	add(ctx context.Context) error
	edit(ctx context.Context, id string) error
	remove(ctx context.Context, id string) error
	localCount(ctx context.Context) (int, error)
	total(ctx context.Context) (int, error)
}

type field struct {
	label string
	value string
}

// resourceView renders and edits records of one type.
type resourceView[R models.Entity] struct {
	svc     resourceService[R]
	aliases []string
	printf  func(format string, args ...any)
	prompt  func() *prompter
	row     func(r R) string
	detail  func(r R) []field
	form    func(ctx context.Context, p *prompter, cur R) R
}

func (v *resourceView[R]) name() string { return v.svc.Name() }

func (v *resourceView[R]) matches(word string) bool {
	word = strings.ToLower(word)
	if word == v.svc.Name() {
		return true
	}
	for _, a := range v.aliases {
		if a == word {
			return true
		}
	}
	return false
}

func localMark(id string) string {
	if store.IsLocalID(id) {
		return "  [local]"
	}
	return ""
}

func (v *resourceView[R]) list(ctx context.Context, params models.ListParams) error {
	page, err := v.svc.List(ctx, params)
	if err != nil {
		return err
	}
	pg := page.Pagination
	v.printf("%s: page %d/%d, %d total (%s)\n", v.svc.Name(), pg.CurrentPage, max(pg.TotalPages, 1), pg.Total, page.Source)
	if page.Count() == 0 {
		v.printf("  (none)\n")
		return nil
	}
	for _, r := range page.Items {
		v.printf("  %-40s %s%s\n", r.RecordID(), v.row(r), localMark(r.RecordID()))
	}
	return nil
}

func (v *resourceView[R]) show(ctx context.Context, id string) error {
	r, err := v.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	v.print(r)
	return nil
}

func (v *resourceView[R]) print(r R) {
	v.printf("%-14s %s%s\n", "id:", r.RecordID(), localMark(r.RecordID()))
	for _, f := range v.detail(r) {
		if f.value == "" {
			continue
		}
		v.printf("%-14s %s\n", f.label+":", f.value)
	}
	if c := r.Created(); !c.IsZero() {
		v.printf("%-14s %s\n", "created:", c.Local().Format("2006-01-02 15:04"))
	}
}

func (v *resourceView[R]) add(ctx context.Context) error {
	var zero R
	p := v.prompt()
	r := v.form(ctx, p, zero)
	if p.err != nil {
		return p.err
	}
	out, err := v.svc.Create(ctx, r)
	if err != nil {
		return err
	}
	v.printf("Saved %s%s\n", out.RecordID(), localMark(out.RecordID()))
	return nil
}

func (v *resourceView[R]) edit(ctx context.Context, id string) error {
	cur, err := v.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	p := v.prompt()
	r := v.form(ctx, p, cur)
	if p.err != nil {
		return p.err
	}
	out, err := v.svc.Update(ctx, id, r)
	if err != nil {
		return err
	}
	v.printf("Updated %s%s\n", out.RecordID(), localMark(out.RecordID()))
	return nil
}

func (v *resourceView[R]) remove(ctx context.Context, id string) error {
	if err := v.svc.Remove(ctx, id); err != nil {
		return err
	}
	v.printf("Deleted %s\n", id)
	return nil
}

func (v *resourceView[R]) localCount(ctx context.Context) (int, error) {
	return v.svc.LocalCount(ctx)
}

func (v *resourceView[R]) total(ctx context.Context) (int, error) {
	page, err := v.svc.List(ctx, models.ListParams{Page: 1, Limit: 1})
	if err != nil {
		return 0, err
	}
	return page.Pagination.Total, nil
}

func (a *App) view(word string) (resourceCmd, error) {
	for _, v := range a.views {
		if v.matches(word) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("unknown resource %q (properties, reviews, blogs, contacts, visits)", word)
}

// parseListArgs reads "page=", "limit=" and "q=" and passes every other
// name=value pair through as a filter.
func parseListArgs(args []string) (models.ListParams, error) {
	pairs, rest := parsePairs(args)
	params := models.ListParams{Filters: map[string]string{}}
	if len(rest) > 0 {
		params.Search = strings.Join(rest, " ")
	}
	for k, val := range pairs {
		switch k {
		case "page", "limit":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return params, fmt.Errorf("%w: %s must be a positive number", errUsage, k)
			}
			if k == "page" {
				params.Page = n
			} else {
				params.Limit = n
			}
		case "q", "search":
			params.Search = val
		default:
			params.Filters[k] = val
		}
	}
	return params.Normalize(), nil
}

// List prints one page of a resource.
func (a *App) List(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: list <resource> [page=N] [limit=N] [q=text] [filter=value]", errUsage)
	}
	v, err := a.view(args[0])
	if err != nil {
		return err
	}
	params, err := parseListArgs(args[1:])
	if err != nil {
		return err
	}
	return v.list(ctx, params)
}

func (a *App) withID(args []string, verb string, fn func(v resourceCmd, id string) error) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: %s <resource> <id>", errUsage, verb)
	}
	v, err := a.view(args[0])
	if err != nil {
		return err
	}
	return fn(v, args[1])
}

func (a *App) Show(ctx context.Context, args []string) error {
	return a.withID(args, "show", func(v resourceCmd, id string) error { return v.show(ctx, id) })
}

func (a *App) Edit(ctx context.Context, args []string) error {
	return a.withID(args, "edit", func(v resourceCmd, id string) error { return v.edit(ctx, id) })
}

func (a *App) Delete(ctx context.Context, args []string) error {
	return a.withID(args, "delete", func(v resourceCmd, id string) error { return v.remove(ctx, id) })
}

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: add <resource>", errUsage)
	}
	v, err := a.view(args[0])
	if err != nil {
		return err
	}
	return v.add(ctx)
}
