// Package parser implements the market parser (C1): extracting a numeric
// line, a side, and a canonical ladder key from a ticker string and its
// fallback title.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

var tickerSuffixRe = regexp.MustCompile(`^([A-Z]{2,3}|[OU]|OVER|UNDER)(\d+(?:\.\d+)?)?$`)
var titleFloatRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
var winsByRe = regexp.MustCompile(`(?i)wins?\s+by\s+(?:over\s+)?(\d+(?:\.\d+)?)`)

// Parser extracts parsed metadata from ticker/title pairs. TeamAbbrevs maps
// a 2-3 letter ticker-suffix prefix to a full team name; for an unmapped
// prefix the side comes from the title, and the prefix is used verbatim as
// the side only when the title resolves none. TeamNames is an ordered list
// of team-name substrings (case-insensitive) used to resolve side from a
// spread title when the ticker suffix does not resolve it.
type Parser struct {
	TeamAbbrevs map[string]string
	TeamNames   []string
}

// New returns a Parser with the given team-abbreviation table and ordered
// team-name list. Both may be nil/empty; unresolved prefixes fall back to the
// title and are used as-is only when the title resolves no side.
func New(teamAbbrevs map[string]string, teamNames []string) *Parser {
	return &Parser{TeamAbbrevs: teamAbbrevs, TeamNames: teamNames}
}

// Result is the parser's output for one market.
type Result struct {
	Line        *float64
	Side        string
	ParseSource domain.ParseSource
	LadderKey   string
	Predicate   domain.Predicate
}

// Parse runs the full C1 algorithm: ticker-suffix match, then team-
// abbreviation/over-under classification, then title fallback, then
// ladder-key construction. It never returns an error; a parse failure
// yields Side "Unknown" and ParseSource "unknown" (spec §4.1).
func (p *Parser) Parse(ticker, title string, groupType domain.GroupType, gameID string) Result {
	line, side, source, unmapped := p.parseTicker(ticker)
	if side == "" {
		line, side = p.parseTitle(title, groupType)
		if side != "" {
			source = domain.ParseSourceTitle
		}
	} else if unmapped {
		if tLine, tSide := p.parseTitle(title, groupType); tSide != "" {
			line, side, source = tLine, tSide, domain.ParseSourceTitle
		}
	}
	if side == "" {
		side = "Unknown"
		source = domain.ParseSourceUnknown
	}

	res := Result{Line: line, Side: side, ParseSource: source}
	if groupType == domain.GroupTypeSpread || groupType == domain.GroupTypeTotal {
		if side != "Unknown" {
			res.LadderKey, res.Predicate = buildLadderKey(gameID, groupType, side)
		}
	}
	return res
}

// parseTicker examines the final '-'-delimited segment of ticker. It
// returns side == "" when no suffix rule matched, and unmapped == true when
// the side is a prefix missing from TeamAbbrevs.
func (p *Parser) parseTicker(ticker string) (*float64, string, domain.ParseSource, bool) {
	if ticker == "" {
		return nil, "", domain.ParseSourceUnknown, false
	}
	segments := strings.Split(ticker, "-")
	last := segments[len(segments)-1]

	m := tickerSuffixRe.FindStringSubmatch(last)
	if m == nil {
		return nil, "", "", false
	}
	prefix, lineStr := m[1], m[2]

	var line *float64
	if lineStr != "" {
		v, err := strconv.ParseFloat(lineStr, 64)
		if err == nil {
			line = &v
		}
	}

	switch prefix {
	case "O", "OV", "OVER":
		return line, "Over", domain.ParseSourceTicker, false
	case "U", "UN", "UNDER":
		return line, "Under", domain.ParseSourceTicker, false
	default:
		if full, ok := p.TeamAbbrevs[prefix]; ok {
			return line, full, domain.ParseSourceTicker, false
		}
		return line, prefix, domain.ParseSourceTicker, true
	}
}

// parseTitle runs the title fallback for totals and spreads.
func (p *Parser) parseTitle(title string, groupType domain.GroupType) (*float64, string) {
	if title == "" {
		return nil, ""
	}

	switch groupType {
	case domain.GroupTypeTotal:
		var line *float64
		if m := titleFloatRe.FindString(title); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				line = &v
			}
		}
		lower := strings.ToLower(title)
		switch {
		case strings.Contains(lower, "over"):
			return line, "Over"
		case strings.Contains(lower, "under"):
			return line, "Under"
		default:
			return line, ""
		}

	case domain.GroupTypeSpread:
		var line *float64
		if m := winsByRe.FindStringSubmatch(title); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				line = &v
			}
		} else if m := titleFloatRe.FindString(title); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				line = &v
			}
		}

		lower := strings.ToLower(title)
		for _, name := range p.TeamNames {
			if strings.Contains(lower, strings.ToLower(name)) {
				return line, name
			}
		}
		switch {
		case strings.Contains(lower, "home"):
			return line, "Home"
		case strings.Contains(lower, "away"):
			return line, "Away"
		default:
			return line, ""
		}

	default:
		return nil, ""
	}
}

// buildLadderKey constructs the ladder key and predicate for a resolved
// spread/total side, per spec §4.1/§3.
func buildLadderKey(gameID string, groupType domain.GroupType, side string) (string, domain.Predicate) {
	var ladderType string
	var predicate domain.Predicate

	switch groupType {
	case domain.GroupTypeSpread:
		ladderType = "spread"
		predicate = domain.PredicateWinsByOver
	case domain.GroupTypeTotal:
		ladderType = "total"
		if strings.EqualFold(side, "Under") {
			predicate = domain.PredicateTotalUnder
		} else {
			predicate = domain.PredicateTotalOver
		}
	}

	key := fmt.Sprintf("%s|%s|%s|%s", gameID, ladderType, side, predicate)
	return key, predicate
}
