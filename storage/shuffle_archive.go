package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/karting-league/services"
)

// ShuffleArchive writes one JSON document per applied shuffle.
type ShuffleArchive struct {
	store ObjectStore
}

var _ services.ReportArchiver = (*ShuffleArchive)(nil)

func NewShuffleArchive(store ObjectStore) *ShuffleArchive {
	return &ShuffleArchive{store: store}
}

func ShuffleReportKey(outcome *services.ShuffleOutcome) string {
	return fmt.Sprintf("tiered-leagues/%d/shuffles/%d-%s.json",
		outcome.TieredLeagueID, outcome.AfterRaceNumber, outcome.ShuffleID)
}

func (a *ShuffleArchive) ArchiveShuffle(ctx context.Context, outcome *services.ShuffleOutcome) error {
	if outcome == nil || outcome.ShuffleID == nil {
		return errors.New("shuffle report has no shuffle id")
	}
	body, err := json.MarshalIndent(outcome, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode shuffle report: %w", err)
	}
	if _, err := a.store.Put(ctx, ShuffleReportKey(outcome), "application/json", bytes.NewReader(body)); err != nil {
		return err
	}
	return nil
}
