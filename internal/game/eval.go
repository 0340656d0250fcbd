package game

import "sort"

type HandCategory int

const (
	HighCard HandCategory = iota
	Pair
	TwoPair
	Trips
	Straight
	Flush
	FullHouse
	Quads
	StraightFlush
)

// HandRank orders five-card hands: category first, then the category-specific
// rank list (pair ranks before kickers, etc).
type HandRank struct {
	Category HandCategory
	Ranks    []int
}

func (h HandRank) BetterThan(o HandRank) bool {
	if h.Category != o.Category {
		return h.Category > o.Category
	}
	for i := 0; i < len(h.Ranks) && i < len(o.Ranks); i++ {
		if h.Ranks[i] != o.Ranks[i] {
			return h.Ranks[i] > o.Ranks[i]
		}
	}
	return false
}

// Evaluate7 returns the best five-card rank among the 21 subsets of the seven
// cards (two hole plus five community).
func Evaluate7(cards []Card) HandRank {
	best := HandRank{Category: -1}
	for a := 0; a < 7; a++ {
		for b := a + 1; b < 7; b++ {
			for c := b + 1; c < 7; c++ {
				for d := c + 1; d < 7; d++ {
					for e := d + 1; e < 7; e++ {
						h := eval5(cards[a], cards[b], cards[c], cards[d], cards[e])
						if h.BetterThan(best) {
							best = h
						}
					}
				}
			}
		}
	}
	return best
}

func eval5(c1, c2, c3, c4, c5 Card) HandRank {
	cards := []Card{c1, c2, c3, c4, c5}
	counts := map[int]int{}
	suits := map[Suit]int{}
	ranks := make([]int, 0, 5)
	for _, c := range cards {
		r := int(c.Rank)
		counts[r]++
		suits[c.Suit]++
		ranks = append(ranks, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	isFlush := false
	for _, n := range suits {
		if n == 5 {
			isFlush = true
		}
	}
	isStraight, straightTop := straightHigh(ranks)
	if isFlush && isStraight {
		return HandRank{Category: StraightFlush, Ranks: []int{straightTop}}
	}

	type group struct {
		rank  int
		count int
	}
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		return HandRank{Category: Quads, Ranks: append([]int{groups[0].rank}, topKickers(ranks, []int{groups[0].rank}, 1)...)}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Ranks: []int{groups[0].rank, groups[1].rank}}
	case isFlush:
		return HandRank{Category: Flush, Ranks: ranks}
	case isStraight:
		return HandRank{Category: Straight, Ranks: []int{straightTop}}
	case groups[0].count == 3:
		return HandRank{Category: Trips, Ranks: append([]int{groups[0].rank}, topKickers(ranks, []int{groups[0].rank}, 2)...)}
	case groups[0].count == 2 && groups[1].count == 2:
		hi, lo := groups[0].rank, groups[1].rank
		return HandRank{Category: TwoPair, Ranks: append([]int{hi, lo}, topKickers(ranks, []int{hi, lo}, 1)...)}
	case groups[0].count == 2:
		return HandRank{Category: Pair, Ranks: append([]int{groups[0].rank}, topKickers(ranks, []int{groups[0].rank}, 3)...)}
	}
	return HandRank{Category: HighCard, Ranks: ranks}
}

func straightHigh(ranks []int) (bool, int) {
	seen := map[int]bool{}
	unique := make([]int, 0, len(ranks))
	for _, r := range ranks {
		if !seen[r] {
			seen[r] = true
			unique = append(unique, r)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(unique)))
	if len(unique) < 5 {
		return false, 0
	}
	for i := 0; i+4 < len(unique); i++ {
		if unique[i]-unique[i+4] == 4 {
			return true, unique[i]
		}
	}
	// The wheel: A-2-3-4-5 plays as a five-high straight.
	if seen[14] && seen[2] && seen[3] && seen[4] && seen[5] {
		return true, 5
	}
	return false, 0
}

func topKickers(ranks []int, exclude []int, n int) []int {
	out := make([]int, 0, n)
	for _, r := range ranks {
		skip := false
		for _, e := range exclude {
			if r == e {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		out = append(out, r)
		if len(out) == n {
			break
		}
	}
	return out
}
