package models

// ConflictStrategy selects how divergent local and remote copies of the same
// entity are reconciled.
type ConflictStrategy string

const (
	// StrategyLastWriteWins keeps whichever side has the later UpdatedAt,
	// wholesale. The default; lossy for the older side.
	StrategyLastWriteWins ConflictStrategy = "last_write_wins"

	// StrategyLocalWins keeps the local copy unconditionally.
	StrategyLocalWins ConflictStrategy = "local_wins"

	// StrategyRemoteWins keeps the remote copy unconditionally.
	StrategyRemoteWins ConflictStrategy = "remote_wins"

	// StrategyMerge combines both copies field by field; exercise lists are
	// merged by name, sets by position.
	StrategyMerge ConflictStrategy = "merge"

	// StrategyManual defers the decision to a human. The resolver never
	// silently picks a side in this mode.
	StrategyManual ConflictStrategy = "manual"
)

// ValidStrategy reports whether s names a known conflict strategy.
func ValidStrategy(s ConflictStrategy) bool {
	switch s {
	case StrategyLastWriteWins, StrategyLocalWins, StrategyRemoteWins, StrategyMerge, StrategyManual:
		return true
	default:
		return false
	}
}

// FieldDiff reports one diverged field for diagnostics. Values are rendered
// as strings so the diff is loggable without further type switching.
type FieldDiff struct {
	Field  string `json:"field"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// ConflictCheck is the result of conflict detection for one local/remote
// pair.
type ConflictCheck struct {
	// InConflict is true only when both sides diverged from the last known
	// common state: the local copy has unsynced edits AND the remote copy
	// changed after the last sync.
	InConflict bool `json:"in_conflict"`

	// Fields lists the diverged fields, populated whenever the two copies
	// differ, conflicting or not.
	Fields []FieldDiff `json:"fields,omitempty"`
}

// ResolutionWinner records which side a resolution kept.
type ResolutionWinner string

const (
	WinnerLocal  ResolutionWinner = "local"
	WinnerRemote ResolutionWinner = "remote"
	WinnerMerged ResolutionWinner = "merged"
	WinnerNone   ResolutionWinner = "none"
)

// Resolution is the outcome of resolving one conflict.
type Resolution struct {
	// Entity is the copy to persist. Zero-valued when RequiresManual is set.
	Entity Entity `json:"entity"`

	Winner ResolutionWinner `json:"winner"`

	// RequiresManual is true under StrategyManual: both sides are returned
	// untouched and the entity stays pending until a human decides.
	RequiresManual bool `json:"requires_manual"`

	// Local and Remote carry both sides for a manual decision, and the
	// losing side otherwise so callers may keep an audit copy.
	Local  *Entity `json:"local,omitempty"`
	Remote *Entity `json:"remote,omitempty"`
}
