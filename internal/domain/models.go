// Package domain defines the persistence model for tracked users and the
// canonical vocabulary the bot watches for. The TrackedUser type is mapped
// with GORM and forms the core data layer of the moderation bot.
package domain

import "time"

// DefaultDisplayName is the placeholder name given to a freshly registered
// user before any message from them has been observed.
const DefaultDisplayName = "Unknown"

// Canonical vocabulary terms. Historical deployments disagreed on the exact
// spelling of the last one ("ish"/"isha"/"ishh"); "ishh" is the single
// supported spelling and schema column.
const (
	TermKoot = "koot"
	TermUwu  = "uwu"
	TermOwo  = "owo"
	TermBoi  = "boi"
	TermNuu  = "nuu"
	TermNerd = "nerd"
	TermIshh = "ishh"
)

// vocabulary lists every watched term in display/column order. The order is
// fixed: it drives both the "show" command layout and the schema columns.
var vocabulary = []string{
	TermKoot, TermUwu, TermOwo, TermBoi, TermNuu, TermNerd, TermIshh,
}

// counterColumns maps each vocabulary term to its database column. Every
// term in vocabulary must have an entry here (checked by tests).
var counterColumns = map[string]string{
	TermKoot: "koot_count",
	TermUwu:  "uwu_count",
	TermOwo:  "owo_count",
	TermBoi:  "boi_count",
	TermNuu:  "nuu_count",
	TermNerd: "nerd_count",
	TermIshh: "ishh_count",
}

// Vocabulary returns a copy of the canonical term list. Handing out a copy
// keeps the package-level slice effectively immutable.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// CounterColumn returns the database column holding the tally for term,
// and whether term is part of the vocabulary.
func CounterColumn(term string) (string, bool) {
	col, ok := counterColumns[term]
	return col, ok
}

// TrackedUser represents one identity explicitly opted into moderation
// scanning, together with its per-term tallies.
//
// Fields:
//   - ID: the external platform user id, primary key. Immutable once
//     created; autoIncrement is disabled because ids are assigned by the
//     chat platform, never by the database.
//   - DisplayName: human-readable label, refreshed on every observed match.
//   - *Count: one non-negative tally per vocabulary term. Tallies never
//     decrease except by deleting the whole record.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type TrackedUser struct {
	ID          int64     `json:"id"           gorm:"primaryKey;autoIncrement:false"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(64);not null;default:'Unknown'"`
	KootCount   int64     `json:"koot_count"   gorm:"not null;default:0"`
	UwuCount    int64     `json:"uwu_count"    gorm:"not null;default:0"`
	OwoCount    int64     `json:"owo_count"    gorm:"not null;default:0"`
	BoiCount    int64     `json:"boi_count"    gorm:"not null;default:0"`
	NuuCount    int64     `json:"nuu_count"    gorm:"not null;default:0"`
	NerdCount   int64     `json:"nerd_count"   gorm:"not null;default:0"`
	IshhCount   int64     `json:"ishh_count"   gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for TrackedUser.
func (TrackedUser) TableName() string { return "tracked_users" }

// Count returns u's tally for the given term, or 0 when term is not part
// of the vocabulary.
func (u *TrackedUser) Count(term string) int64 {
	switch term {
	case TermKoot:
		return u.KootCount
	case TermUwu:
		return u.UwuCount
	case TermOwo:
		return u.OwoCount
	case TermBoi:
		return u.BoiCount
	case TermNuu:
		return u.NuuCount
	case TermNerd:
		return u.NerdCount
	case TermIshh:
		return u.IshhCount
	}
	return 0
}

// Counts returns a term→tally map covering the full vocabulary.
func (u *TrackedUser) Counts() map[string]int64 {
	out := make(map[string]int64, len(vocabulary))
	for _, term := range vocabulary {
		out[term] = u.Count(term)
	}
	return out
}
