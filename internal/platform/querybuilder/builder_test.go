package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("contest_id").
		From("contests").
		Where(Eq("sport", "NFL"), Expr("is_final = TRUE")).
		OrderBy("contest_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT contest_id FROM contests WHERE sport = $1 AND is_final = TRUE ORDER BY contest_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "NFL" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("game_types").
		Columns("game_type_id", "name").
		Values(int64(1), "Classic").
		Suffix("ON CONFLICT (game_type_id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO game_types (game_type_id, name) VALUES ($1, $2) ON CONFLICT (game_type_id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(1) || args[1] != "Classic" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("contests").
		Set("is_downloaded", true).
		SetExpr("updated_at", "NOW()").
		Where(Eq("contest_id", int64(100))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE contests SET is_downloaded = $1, updated_at = NOW() WHERE contest_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != true || args[1] != int64(100) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		DraftGroupID int64  `db:"draft_group_id"`
		Sport        string `db:"sport"`
		skipped      string
	}

	query, args, err := InsertModel("draft_groups", row{DraftGroupID: 7, Sport: "NFL", skipped: "x"}, "")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO draft_groups (draft_group_id, sport) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(7) || args[1] != "NFL" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
