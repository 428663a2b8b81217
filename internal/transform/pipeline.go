package transform

// Report accumulates counts and row-level diagnostics for one transform run.
// It is returned by Run rather than held in package state, so concurrent or
// repeated runs never share counters.
type Report struct {
	InputCount        int
	RejectedCount     int
	PriceWarningCount int
	DuplicateCount    int
	OutputCount       int

	Rejected []RejectedRow
	Warnings []Warning
}

// Run executes the full transform over a raw batch: per-row normalization,
// rarity classification and generation resolution, then batch-wide
// de-duplication.
//
// Row-level problems never abort the batch: rejected rows are recorded on
// the report and skipped, price warnings keep the row with the default
// substituted. Run fails only when the input batch is empty (ErrEmptyBatch)
// or every row was rejected (ErrAllRejected).
func Run(in []RawRecord) ([]CleanCard, *Report, error) {
	rep := &Report{InputCount: len(in)}
	if len(in) == 0 {
		return nil, rep, ErrEmptyBatch
	}

	cleaned := make([]CleanCard, 0, len(in))
	for _, raw := range in {
		card, warns, err := Normalize(raw)
		if err != nil {
			ve, _ := err.(*ValidationError)
			reason := err.Error()
			if ve != nil {
				reason = ve.Reason
			}
			rep.RejectedCount++
			rep.Rejected = append(rep.Rejected, RejectedRow{Line: raw.Line, Raw: raw, Reason: reason})
			continue
		}
		for _, w := range warns {
			if w.Kind == WarnPriceParse {
				rep.PriceWarningCount++
			}
		}
		rep.Warnings = append(rep.Warnings, warns...)

		card.RarityLevel, card.RarityScore, card.IsRare = ClassifyRarity(raw.Rarity, card.Price)
		card.Generation = ResolveGeneration(card.ExpansionName)
		cleaned = append(cleaned, card)
	}

	if len(cleaned) == 0 {
		return nil, rep, ErrAllRejected
	}

	out, dropped := Dedup(cleaned)
	rep.DuplicateCount = dropped
	rep.OutputCount = len(out)
	return out, rep, nil
}
