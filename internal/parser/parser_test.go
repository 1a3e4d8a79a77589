package parser

import (
	"testing"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestParse_TickerSuffix(t *testing.T) {
	p := New(nil, nil)

	cases := []struct {
		name      string
		ticker    string
		groupType domain.GroupType
		wantSide  string
		wantLine  *float64
	}{
		{"spread team BAL", "KXNFLSPREAD-26JAN04BALPIT-BAL3", domain.GroupTypeSpread, "BAL", floatPtr(3)},
		{"spread team PIT", "KXNFLSPREAD-26JAN04BALPIT-PIT7", domain.GroupTypeSpread, "PIT", floatPtr(7)},
		{"total over", "KXNFLTOTAL-26JAN04BALPIT-O45", domain.GroupTypeTotal, "Over", floatPtr(45)},
		{"total under", "KXNFLTOTAL-26JAN04BALPIT-U42", domain.GroupTypeTotal, "Under", floatPtr(42)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := p.Parse(tc.ticker, "", tc.groupType, "game1")
			if res.Side != tc.wantSide {
				t.Fatalf("side = %q, want %q", res.Side, tc.wantSide)
			}
			if (res.Line == nil) != (tc.wantLine == nil) {
				t.Fatalf("line nilness mismatch: got %v want %v", res.Line, tc.wantLine)
			}
			if res.Line != nil && *res.Line != *tc.wantLine {
				t.Fatalf("line = %v, want %v", *res.Line, *tc.wantLine)
			}
			if res.ParseSource != domain.ParseSourceTicker {
				t.Fatalf("parse_source = %v, want ticker", res.ParseSource)
			}
		})
	}
}

func TestParse_EmptyTicker(t *testing.T) {
	p := New(nil, nil)
	res := p.Parse("", "", domain.GroupTypeTotal, "game1")
	if res.Side != "Unknown" {
		t.Fatalf("side = %q, want Unknown", res.Side)
	}
	if res.Line != nil {
		t.Fatalf("line = %v, want nil", res.Line)
	}
	if res.ParseSource != domain.ParseSourceUnknown {
		t.Fatalf("parse_source = %v, want unknown", res.ParseSource)
	}
}

func TestParse_ExpectedDirectionInputs(t *testing.T) {
	// Property #10: spread -> nonincreasing regardless of team; total/over
	// -> nonincreasing; total/under -> nondecreasing. The parser itself does
	// not compute direction (ladder builder does), but it must at least
	// produce the side values the direction table switches on.
	p := New(nil, nil)

	spread := p.Parse("KXNFLSPREAD-X-BAL3", "", domain.GroupTypeSpread, "g")
	if spread.Side != "BAL" {
		t.Fatalf("spread side = %q", spread.Side)
	}

	over := p.Parse("KXNFLTOTAL-X-O45", "", domain.GroupTypeTotal, "g")
	if over.Side != "Over" {
		t.Fatalf("total side = %q", over.Side)
	}

	under := p.Parse("KXNFLTOTAL-X-U45", "", domain.GroupTypeTotal, "g")
	if under.Side != "Under" {
		t.Fatalf("total side = %q", under.Side)
	}
}

func TestParse_TitleFallback(t *testing.T) {
	p := New(nil, []string{"Ravens", "Steelers"})

	res := p.Parse("KXNFLSPREAD-X-ZZ", "Ravens wins by over 3.5", domain.GroupTypeSpread, "g")
	if res.Side != "Ravens" {
		t.Fatalf("side = %q, want Ravens", res.Side)
	}
	if res.ParseSource != domain.ParseSourceTitle {
		t.Fatalf("parse_source = %v, want title", res.ParseSource)
	}
	if res.Line == nil || *res.Line != 3.5 {
		t.Fatalf("line = %v, want 3.5", res.Line)
	}
}

func TestParse_LadderKey(t *testing.T) {
	p := New(nil, nil)

	total := p.Parse("KXNFLTOTAL-X-U45", "", domain.GroupTypeTotal, "g1")
	if total.LadderKey != "g1|total|Under|total_under" {
		t.Fatalf("ladder key = %q", total.LadderKey)
	}

	spread := p.Parse("KXNFLSPREAD-X-BAL3", "", domain.GroupTypeSpread, "g1")
	if spread.LadderKey != "g1|spread|BAL|wins_by_over" {
		t.Fatalf("ladder key = %q", spread.LadderKey)
	}

	unknown := p.Parse("", "", domain.GroupTypeSpread, "g1")
	if unknown.LadderKey != "" {
		t.Fatalf("ladder key should be empty for Unknown side, got %q", unknown.LadderKey)
	}
}
