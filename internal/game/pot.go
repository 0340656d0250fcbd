package game

import "sort"

// PotLayer is one slice of the pot capped at an all-in contribution level.
// The first layer is the main pot; further layers are side pots open only to
// the players who contributed past the cap.
type PotLayer struct {
	Amount   int64
	Eligible []string
}

// BuildPotLayers splits total hand contributions into main and side pots.
// Folded players' chips stay in the layers they contributed to but folded
// players are never eligible to win one.
func BuildPotLayers(contrib map[string]int64, folded map[string]bool) []PotLayer {
	levels := make([]int64, 0, len(contrib))
	seen := map[int64]bool{}
	for _, c := range contrib {
		if c > 0 && !seen[c] {
			seen[c] = true
			levels = append(levels, c)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	layers := make([]PotLayer, 0, len(levels))
	var prev int64
	for _, level := range levels {
		layer := PotLayer{}
		for userID, c := range contrib {
			in := min64(c, level) - min64(c, prev)
			if in > 0 {
				layer.Amount += in
			}
			if c >= level && !folded[userID] {
				layer.Eligible = append(layer.Eligible, userID)
			}
		}
		prev = level
		if layer.Amount == 0 {
			continue
		}
		sort.Strings(layer.Eligible)
		layers = append(layers, layer)
	}
	return layers
}
