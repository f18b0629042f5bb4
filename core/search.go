package core

import (
	"slices"
)

// Searcher resolves one free-text term into calendar matches. Date-like terms
// are tried first; anything else is matched against titles and authors, exact
// before approximate.
type Searcher struct {
	repository Repository
	parser     *Parser
	delta      float64
}

func NewSearcher(repository Repository, parser *Parser, delta float64) *Searcher {
	return &Searcher{repository: repository, parser: parser, delta: delta}
}

func (s *Searcher) Search(text string) Matches {
	dateStart, dateEnd := s.parser.ParseDateRange(text)

	start, hasStart := dateStart.Get()
	end, hasEnd := dateEnd.Get()

	switch {
	case hasStart && hasEnd:
		if end.At(StartOfDay).Before(start.At(StartOfDay)) {
			start, end = end, start
		}

		return s.repository.ByRange(start.At(StartOfDay), end.At(EndOfDay))
	case hasStart:
		return s.repository.ByDate(start)
	}

	matches := union(s.repository.ByTitle(text), s.repository.ByAuthor(text))
	if len(matches) > 0 {
		return matches
	}

	return union(s.repository.ByTitleFuzzy(text, s.delta), s.repository.ByTitleSubstring(text))
}

func union(sets ...Matches) Matches {
	seen := make(map[uint64]struct{})
	merged := Matches{}

	for _, set := range sets {
		for _, match := range set {
			if _, ok := seen[match.Id]; ok {
				continue
			}

			seen[match.Id] = struct{}{}
			merged = append(merged, match)
		}
	}

	slices.SortFunc(merged, func(a, b Match) int { return a.Index - b.Index })

	return merged
}
