package generator

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Stream ids keep the player, tournament and worker PRNGs independent for
// the same seed. Worker streams are offset by the worker id.
const (
	streamPlayers     = 1
	streamTournaments = 2
	streamWorkers     = 1 << 16
)

// source couples a PRNG with a deterministic UUID reader.
type source struct {
	*rand.Rand
	chacha *rand.ChaCha8
}

func newSource(seed int64, stream uint64) *source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], uint64(seed))
	binary.LittleEndian.PutUint64(key[8:16], stream)
	c := rand.NewChaCha8(key)
	return &source{Rand: rand.New(c), chacha: c}
}

// id returns a version 4 UUID drawn from the source.
func (s *source) id() string {
	u, err := uuid.NewRandomFromReader(s.chacha)
	if err != nil {
		// ChaCha8.Read never fails.
		return uuid.NewString()
	}
	return u.String()
}

// between returns an int in [lo, hi].
func (s *source) between(lo, hi int) int {
	return lo + s.IntN(hi-lo+1)
}

func pick[T any](s *source, items []T) T {
	return items[s.IntN(len(items))]
}
