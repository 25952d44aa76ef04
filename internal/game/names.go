package game

import "math/rand"

// namePool holds the short names agents draw from. Shuffled per game; the
// first N entries become that game's agents. Fifty names caps numAgents.
var namePool = []string{
	"ash", "bay", "birch", "briar", "brook",
	"cedar", "cliff", "clover", "cove", "dale",
	"dune", "elm", "fen", "fern", "flint",
	"forge", "frost", "gale", "glen", "grove",
	"hawk", "hazel", "heath", "holly", "ivy",
	"juniper", "lark", "laurel", "linden", "marsh",
	"moss", "north", "oak", "onyx", "pike",
	"pine", "quarry", "reed", "ridge", "rowan",
	"sage", "shale", "sloe", "spruce", "stone",
	"thorn", "vale", "wren", "yarrow", "yew",
}

// PoolSize returns the number of distinct agent names available.
func PoolSize() int {
	return len(namePool)
}

// PickNames returns n distinct agent names in shuffled order. The rng may be
// nil, in which case the global source is used; tests inject a seeded one.
func PickNames(n int, rng *rand.Rand) ([]string, error) {
	if n > len(namePool) {
		return nil, ErrTooManyAgents
	}
	pool := make([]string, len(namePool))
	copy(pool, namePool)
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n], nil
}
