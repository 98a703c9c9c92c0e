package shortlink

// recentEntryCount is how many ledger entries a summary exposes.
const recentEntryCount = 5

// Summary is the aggregated view of a record's click ledger.
type Summary struct {
	TotalClicks    int64
	UniqueVisitors int
	// RecentEntries holds the last entries in ledger insertion order, i.e.
	// the most recently first-seen IPs, not the most recently incremented.
	RecentEntries []LedgerEntry
}

// Summarize aggregates a record's ledger into totals and a short tail of
// recent entries.
func Summarize(record *Record) Summary {
	var total int64
	for _, entry := range record.Ledger {
		total += entry.Count
	}

	recent := record.Ledger
	if len(recent) > recentEntryCount {
		recent = recent[len(recent)-recentEntryCount:]
	}

	return Summary{
		TotalClicks:    total,
		UniqueVisitors: len(record.Ledger),
		RecentEntries:  recent,
	}
}
