package ingest

import (
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/models"
)

type Action string

const (
	ActionCreate        Action = "create"
	ActionMergeExisting Action = "merge_existing"
	ActionFold          Action = "fold"
)

// Outcome says what happened to one candidate. RecordIndex points into
// Resolution.Records.
type Outcome struct {
	Index       int    `json:"index"`
	Action      Action `json:"action"`
	RecordIndex int    `json:"recordIndex"`
	ExistingID  string `json:"existingId,omitempty"`
}

type Resolution struct {
	Records  []models.Scholarship
	Outcomes []Outcome
}

// Resolve turns classified candidates into the records to write. Catalog
// duplicates are merged into their existing record and keep its id; batch
// duplicates are folded into the record of their first occurrence; every
// other candidate becomes a new record. Each existing id yields exactly one
// record: later candidates matching the same catalog entry are folded into
// it.
func Resolve(candidates []models.Scholarship, det *Detection, merger *dedup.Merger) Resolution {
	byIndex := make(map[int]models.DuplicateMatch, len(det.Matches))
	for _, m := range det.Matches {
		byIndex[m.Index] = m
	}

	byExisting := make(map[string]int)
	res := Resolution{
		Records:  make([]models.Scholarship, 0, len(candidates)),
		Outcomes: make([]Outcome, len(candidates)),
	}
	for i, c := range candidates {
		m, dup := byIndex[i]
		switch {
		case dup && m.Source == models.DuplicateSourceBatch && m.BatchIndex != nil:
			target := res.Outcomes[*m.BatchIndex].RecordIndex
			res.Records[target] = merger.Merge(res.Records[target], c)
			res.Outcomes[i] = Outcome{Index: i, Action: ActionFold, RecordIndex: target}
			continue
		case dup && m.Source == models.DuplicateSourceCatalog:
			if target, ok := byExisting[m.ExistingID]; ok {
				res.Records[target] = merger.Merge(res.Records[target], c)
				res.Outcomes[i] = Outcome{Index: i, Action: ActionFold, RecordIndex: target, ExistingID: m.ExistingID}
				continue
			}
			if existing, ok := det.Existing(m.ExistingID); ok {
				byExisting[m.ExistingID] = len(res.Records)
				res.Records = append(res.Records, merger.Merge(existing, c))
				res.Outcomes[i] = Outcome{Index: i, Action: ActionMergeExisting, RecordIndex: len(res.Records) - 1, ExistingID: m.ExistingID}
				continue
			}
		}
		res.Records = append(res.Records, c)
		res.Outcomes[i] = Outcome{Index: i, Action: ActionCreate, RecordIndex: len(res.Records) - 1}
	}
	return res
}

// Count tallies outcomes per action.
func (r Resolution) Count(a Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == a {
			n++
		}
	}
	return n
}
