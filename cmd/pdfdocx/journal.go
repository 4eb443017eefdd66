// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"

	"github.com/spf13/viper"

	"github.com/pdiddy/pdfdocx/internal/convert"
	"github.com/pdiddy/pdfdocx/internal/history"
	"github.com/pdiddy/pdfdocx/pkg/types"
)

// journal records outcomes in the history database. A nil journal records
// nothing; journal failures are warnings only.
type journal struct {
	store   *history.Store
	batchID string
	warn    io.Writer
}

func historyPath(v *viper.Viper) string {
	if p := v.GetString("history.path"); p != "" {
		return p
	}
	return history.DefaultPath()
}

// openJournal opens the history database unless history is disabled.
func openJournal(v *viper.Viper, warn io.Writer) *journal {
	if !v.GetBool("history.enabled") {
		return nil
	}
	path := historyPath(v)
	store, err := history.Open(path)
	if err != nil {
		printWarning(warn, "history disabled: %v", err)
		return nil
	}
	return &journal{store: store, warn: warn}
}

func (j *journal) record(ctx context.Context, o convert.Outcome) {
	if j == nil {
		return
	}
	// Record interrupted runs too.
	_, err := j.store.Record(context.WithoutCancel(ctx), entryFor(o, j.batchID))
	if err != nil {
		printWarning(j.warn, "history: %v", err)
	}
}

func (j *journal) close() {
	if j == nil {
		return
	}
	if err := j.store.Close(); err != nil {
		printWarning(j.warn, "history: %v", err)
	}
}

func entryFor(o convert.Outcome, batchID string) types.HistoryEntry {
	e := types.HistoryEntry{
		BatchID:     batchID,
		Source:      o.Source,
		Destination: o.Destination,
		Pages:       o.Pages,
		Status:      o.Status(),
		StartedAt:   o.StartedAt,
		Duration:    o.Duration,
	}
	if o.Err != nil {
		e.ErrorKind = string(o.Kind)
		e.Error = o.Err.Error()
	}
	return e
}
