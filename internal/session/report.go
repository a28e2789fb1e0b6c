package session

import "github.com/vovakirdan/baseraid/internal/battle"

// Report is the persistent summary of a finished battle.
type Report struct {
	BattleID   BattleID
	AttackerID string
	LayoutID   string
	Reason     EndReason
	Result     battle.Result
}

// ReportSaver persists battle reports. Implementations must be safe for
// concurrent use; sessions call Save from their own goroutines.
type ReportSaver interface {
	Save(report Report) error
}
