package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch"
	"github.com/letmevibethatforyou/sitesearch/render"
	"github.com/letmevibethatforyou/sitesearch/urlstate"
	"github.com/letmevibethatforyou/sitesearch/widget"
)

const helpText = `commands:
  search <term>   submit a new search term
  sort <key>      change the sort order (%s)
  next, prev      move between pages
  back, forward   step through the URL history
  url             print the current page URL
  help            show this help
  quit            exit`

// session drives one widget from text commands and prints its sinks.
type session struct {
	widget   *widget.Widget
	location *urlstate.Location
	history  *urlstate.MemoryHistory
	recorder *render.Recorder
	labels   render.Labels
	sorts    []sitesearch.SortKey
	styles   *render.Styles
	out      io.Writer
}

// run reads commands from in until EOF or quit.
func (s *session) run(ctx context.Context, in io.Reader) error {
	if err := s.report(s.widget.Load(ctx)); err != nil {
		return err
	}
	s.print()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.styles.FacetName.Render(s.labels.Label(render.LabelSearchFor)+" > "))
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		quit, err := s.exec(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// exec runs one command line. Search failures are printed, not returned.
func (s *session) exec(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintf(s.out, helpText+"\n", s.sortList())
		return false, nil
	case "url":
		fmt.Fprintln(s.out, s.location.String())
		return false, nil
	case "search", "s":
		s.widget.SetInput(arg)
		err = s.widget.Dispatch(ctx, widget.Submit{})
	case "sort":
		key := sitesearch.ParseSortKey(arg)
		if !s.allowed(key) {
			fmt.Fprintln(s.out, s.styles.Warning.Render(fmt.Sprintf("unknown sort %q, expected one of %s", arg, s.sortList())))
			return false, nil
		}
		err = s.widget.Dispatch(ctx, widget.ChangeSort{Sort: key})
	case "next", "n":
		err = s.widget.Dispatch(ctx, widget.PaginateNext{})
	case "prev", "p":
		err = s.widget.Dispatch(ctx, widget.PaginatePrev{})
	case "back", "forward":
		err = s.step(ctx, cmd == "back")
	default:
		fmt.Fprintln(s.out, s.styles.Warning.Render(fmt.Sprintf("unknown command %q, type help", cmd)))
		return false, nil
	}

	if err := s.report(err); err != nil {
		return false, err
	}
	s.print()
	return false, nil
}

// step moves through the history and restores the widget from the new URL.
func (s *session) step(ctx context.Context, back bool) error {
	move := s.history.Forward
	if back {
		move = s.history.Back
	}

	target, ok := move()
	if !ok {
		fmt.Fprintln(s.out, s.styles.Dim.Render("no history entry"))
		return nil
	}
	if err := s.location.Navigate(target); err != nil {
		return err
	}
	return s.widget.Restore(ctx)
}

// report prints expected failures and returns anything else.
func (s *session) report(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, widget.ErrPaginationDisabled):
		fmt.Fprintln(s.out, s.styles.Dim.Render("no page in that direction"))
		return nil
	case errors.Is(err, widget.ErrSuperseded):
		return nil
	case sitesearch.KindOf(err) != sitesearch.KindNone:
		fmt.Fprintln(s.out, s.styles.Warning.Render(sitesearch.KindOf(err).String()+": "+err.Error()))
		return nil
	default:
		return err
	}
}

func (s *session) print() {
	snap := s.recorder.Snapshot()
	if snap.Mutations == 0 {
		return
	}

	fmt.Fprintln(s.out, snap.Summary)
	if snap.Results != "" {
		fmt.Fprintln(s.out, snap.Results)
		fmt.Fprintln(s.out)
	}
	if snap.Facets != "" {
		fmt.Fprintln(s.out, snap.Facets)
	}
	if snap.PaginationVisible {
		fmt.Fprintln(s.out, s.pagination(snap))
	}
}

// pagination renders "Previous | 26-42 of 42 | Next" with disabled ends dimmed.
func (s *session) pagination(snap render.Snapshot) string {
	button := func(label string, disabled bool) string {
		if disabled {
			return s.styles.Dim.Render(label)
		}
		return s.styles.Title.Render(label)
	}
	return fmt.Sprintf("%s | %s of %d | %s",
		button(s.labels.Label(render.LabelPrevious), snap.PrevDisabled),
		snap.Range,
		snap.Count,
		button(s.labels.Label(render.LabelNext), snap.NextDisabled),
	)
}

func (s *session) allowed(key sitesearch.SortKey) bool {
	for _, k := range s.sorts {
		if k == key {
			return true
		}
	}
	return false
}

func (s *session) sortList() string {
	names := make([]string, 0, len(s.sorts))
	for _, k := range s.sorts {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
