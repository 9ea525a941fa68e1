package widget

import "github.com/letmevibethatforyou/sitesearch"

// Action is one user interaction fed to Dispatch.
type Action interface {
	// Name identifies the action in logs and spans.
	Name() string
	action()
}

// Submit makes the current input value the search term.
type Submit struct{}

// ChangeSort re-fetches the submitted term with a new ordering.
type ChangeSort struct {
	Sort sitesearch.SortKey
}

// PaginateNext moves to the following page.
type PaginateNext struct{}

// PaginatePrev moves to the preceding page.
type PaginatePrev struct{}

func (Submit) Name() string       { return "submit" }
func (ChangeSort) Name() string   { return "change-sort" }
func (PaginateNext) Name() string { return "paginate-next" }
func (PaginatePrev) Name() string { return "paginate-prev" }

func (Submit) action()       {}
func (ChangeSort) action()   {}
func (PaginateNext) action() {}
func (PaginatePrev) action() {}
