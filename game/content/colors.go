package content

import "math/rand"

// palette is the pool of player colors handed out on join.
var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

// AllocateColor picks a random color not already taken in the room. When
// the palette is exhausted it falls back to any palette color.
func AllocateColor(taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, c := range taken {
		used[c] = true
	}

	var free []string
	for _, c := range palette {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return palette[rand.Intn(len(palette))]
	}
	return free[rand.Intn(len(free))]
}
