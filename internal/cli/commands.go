package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/idilsaglam/names/internal/config"
	"github.com/idilsaglam/names/internal/dialog"
	"github.com/idilsaglam/names/internal/filter"
	"github.com/idilsaglam/names/internal/list"
	"github.com/idilsaglam/names/internal/model"
	"github.com/idilsaglam/names/internal/store"
	"github.com/idilsaglam/names/internal/tui"
	"github.com/idilsaglam/names/internal/ui"
)

// -------------- subcommand impls ----------------

func (a *app) runTUI(ctx context.Context) error {
	s, err := a.openStore(a.cfg.Watch)
	if err != nil {
		return err
	}
	return tui.Run(ctx, s, tui.Options{Mode: a.cfg.Mode(), Logger: a.log})
}

func (a *app) doList(ctx context.Context, query string) error {
	s, err := a.openStore(false)
	if err != nil {
		return err
	}
	all, err := s.Query(ctx, filter.All())
	if err != nil {
		return err
	}
	records := all.Records()
	// Indexes always refer to the unfiltered list so edit/rm can use them.
	index := make(map[string]int, len(records))
	for i, r := range records {
		index[r.ID] = i + 1
	}

	shown := records
	if query != "" {
		res, err := s.Query(ctx, filter.Build(query, a.cfg.Mode()))
		if err != nil {
			return err
		}
		shown = res.Records()
	}

	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d", ui.C(t.Title, "Names"), ui.C(t.Accent, "Total"), len(records))
	if query != "" {
		header += fmt.Sprintf("  %s %d", ui.C(t.Accent, "Matching "+fmt.Sprintf("%q", query)), len(shown))
	}
	lines := []string{header, ""}
	lines = append(lines, rowLines(shown, index, query)...)
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `names add \"Anna\" \"Beth's friend\"`"))
	ui.Panel(lines)
	return nil
}

func rowLines(rs []model.Record, index map[string]int, query string) []string {
	t := ui.Current()
	if len(rs) == 0 {
		return []string{ui.C(t.Muted, "no names")}
	}
	hl, _ := filter.NewHighlighter(query)
	out := make([]string, 0, 2*len(rs))
	for _, r := range rs {
		idx := fmt.Sprintf("%2d.", index[r.ID])
		text := truncate(r.Text, 60)
		sub := truncate(r.Subtext, 60)
		out = append(out,
			ui.C(t.Muted, idx)+" "+ui.Mark(text, hl.Ranges(text), t.Highlight),
			"    "+ui.Mark(sub, hl.Ranges(sub), t.Highlight))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func (a *app) doAdd(ctx context.Context, text, subtext string) error {
	s, err := a.openStore(false)
	if err != nil {
		return err
	}
	ok, err := dialog.Add(ctx, s, text, subtext)
	if err != nil {
		return err
	}
	if !ok {
		return usagef("add: %v", model.ErrEmptyField)
	}
	ui.OK("added")
	return nil
}

// lookup returns the record at a 1-based index of the unfiltered list.
func (a *app) lookup(ctx context.Context, s *store.Store, userIndex int) (model.Record, error) {
	res, err := s.Query(ctx, filter.All())
	if err != nil {
		return model.Record{}, err
	}
	rs := res.Records()
	if userIndex < 1 || userIndex > len(rs) {
		return model.Record{}, usagef("index out of range: have %d, got %d (run `names ls` to see valid indexes)", len(rs), userIndex)
	}
	return rs[userIndex-1], nil
}

func (a *app) doEdit(ctx context.Context, userIndex int, text, subtext string) error {
	s, err := a.openStore(false)
	if err != nil {
		return err
	}
	r, err := a.lookup(ctx, s, userIndex)
	if err != nil {
		return err
	}
	ok, err := dialog.Edit(ctx, s, r.ID, text, subtext)
	if err != nil {
		return err
	}
	if !ok {
		return usagef("edit: %v", model.ErrEmptyField)
	}
	ui.OK("edited")
	return nil
}

func (a *app) doRemove(ctx context.Context, userIndex int) error {
	s, err := a.openStore(false)
	if err != nil {
		return err
	}
	r, err := a.lookup(ctx, s, userIndex)
	if err != nil {
		return err
	}
	if err := dialog.Delete(ctx, s, r.ID); err != nil {
		return err
	}
	ui.OK("removed")
	return nil
}

// doWatch prints every batch the list would animate until ctx ends.
func (a *app) doWatch(ctx context.Context, query string) error {
	s, err := a.openStore(true)
	if err != nil {
		return err
	}
	// Events arrive one at a time on the store's delivery goroutine.
	var ctl *list.Controller
	ctl = list.New(s,
		list.WithMode(a.cfg.Mode()),
		list.WithLogger(a.log),
		list.WithDispatch(func(ev list.Event) {
			batch, ok := ctl.Apply(ev)
			if !ok {
				return
			}
			a.printBatch(ctl, ev, batch)
		}),
	)
	defer ctl.Close()

	a.log.Info("watching", "db", s.Path(), "query", query)
	if err := ctl.SetFilter(ctx, query); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (a *app) printBatch(ctl *list.Controller, ev list.Event, b list.Batch) {
	t := ui.Current()
	if b.Reload {
		fmt.Fprintf(a.stdout, "%s %d name(s)\n", ui.C(t.Title, "initial:"), ctl.Len())
		for _, r := range ctl.Rows() {
			fmt.Fprintf(a.stdout, "  %s  %s\n", ui.Mark(r.Text, r.TextHighlights, t.Highlight), ui.C(t.Muted, r.Subtext))
		}
		return
	}
	var parts []string
	for _, i := range b.Deletions {
		parts = append(parts, ui.C(t.Error, fmt.Sprintf("- #%d", i+1)))
	}
	for _, j := range b.Insertions {
		parts = append(parts, ui.C(t.Success, fmt.Sprintf("+ #%d %s", j+1, ev.Records[j].Text)))
	}
	for _, j := range b.Modifications {
		parts = append(parts, ui.C(t.Accent, fmt.Sprintf("~ #%d %s", j+1, ev.Records[j].Text)))
	}
	fmt.Fprintln(a.stdout, strings.Join(parts, "  "))
}

// doConfig prints the settings in effect after flags and environment, or
// saves them with --save.
func (a *app) doConfig() error {
	if a.save {
		if err := config.Save(a.cfgPath, a.cfg); err != nil {
			return err
		}
		ui.OK("saved " + a.cfgPath)
		return nil
	}
	b, err := a.cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(b)
	return err
}
