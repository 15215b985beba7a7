package matching

// RunOptions configures one orchestrated evaluation run.
type RunOptions struct {
	// PageSize bounds how many entities are pulled from the catalog at
	// a time. Zero means the configured default.
	PageSize int

	// Resume skips entities that already have persisted results.
	Resume bool

	// Rebuild clears all prior results before starting. Takes
	// precedence over Resume.
	Rebuild bool
}

// DefaultRunOptions returns the options for a plain resumable run.
func DefaultRunOptions() RunOptions {
	return RunOptions{Resume: true}
}

// RunSummary reports the outcome of one evaluation run.
type RunSummary struct {
	// TotalEntities is the catalog size at run start.
	TotalEntities int

	// Processed counts entities evaluated this run.
	Processed int

	// Skipped counts entities excluded by the resume skip-set.
	Skipped int

	// Failed counts entities whose evaluation failed (embed failure,
	// integrity rejection, or no matches above threshold).
	Failed int
}
