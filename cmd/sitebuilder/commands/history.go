package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	DB    string `arg:"" name:"db" help:"History database written by build --history" type:"existingfile"`
	Limit int    `short:"n" help:"Number of builds to show" default:"10"`
	Build string `help:"Print the full JSON report of one build"`
}

func (h *HistoryCmd) Run(g *Global, _ *CLI) error {
	store, err := history.Open(h.DB)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "open history database").
			WithContext("path", h.DB).
			Build()
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.Build != "" {
		return h.printReport(ctx, g, store)
	}

	entries, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(g.stdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BUILD\tSTARTED\tDURATION\tOUTCOME\tPAGES\tCOPIED\tREVISION")
	for _, e := range entries {
		outcome := string(e.Outcome)
		if e.FailedStage != "" {
			outcome += " (" + string(e.FailedStage) + ")"
		}
		rev := e.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			e.BuildID, e.Start.Format(time.RFC3339), e.Duration, outcome, e.Pages, e.FilesCopied, rev)
	}
	return w.Flush()
}

func (h *HistoryCmd) printReport(ctx context.Context, g *Global, store *history.Store) error {
	report, err := store.Report(ctx, h.Build)
	if errors.Is(err, history.ErrNotFound) {
		return ferrors.ValidationError("unknown build").WithContext("build_id", h.Build).Build()
	}
	if err != nil {
		return err
	}
	return writeReport(g.stdout(), report)
}

func writeReport(w io.Writer, report *build.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
