package postgres

import "time"

type contestInsertModel struct {
	ContestID         int64      `db:"contest_id"`
	ContestName       string     `db:"contest_name"`
	Sport             string     `db:"sport"`
	EntryFee          float64    `db:"entry_fee"`
	MaxEntries        int        `db:"max_entries"`
	EntriesPerUser    int        `db:"entries_per_user"`
	DraftGroupID      int64      `db:"draft_group_id"`
	PrizePool         float64    `db:"po"`
	CrownAmount       int        `db:"crown_amount"`
	PayoutDescription string     `db:"pd"`
	ContestDate       string     `db:"contest_date"`
	StartTime         *time.Time `db:"start_time"`
	ContestURL        string     `db:"contest_url"`
	Guaranteed        bool       `db:"guaranteed"`
	Starred           bool       `db:"starred"`
	DoubleUp          bool       `db:"double_up"`
	FiftyFifty        bool       `db:"fifty_fifty"`
	League            bool       `db:"league"`
	Multiplier        bool       `db:"multiplier"`
	Qualifier         bool       `db:"qualifier"`
	ContestState      string     `db:"contest_state"`
	IsFinal           bool       `db:"is_final"`
	IsCancelled       bool       `db:"is_cancelled"`
	IsDownloaded      bool       `db:"is_downloaded"`
}

type contestIDRow struct {
	ContestID int64 `db:"contest_id"`
}
