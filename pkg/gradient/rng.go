package gradient

import (
	"encoding/binary"
	"fmt"
	"io"
	mrand "math/rand"
)

// reseedingRNG is a math/rand source that periodically reseeds itself from
// a cryptographic entropy source, mirroring the original engine's
// /dev/urandom-backed random() wrapper. It is not safe for concurrent use,
// matching the rest of the Engine.
type reseedingRNG struct {
	entropy        io.Reader
	reseedInterval int
	src            *mrand.Rand
	countdown      int
	reseeds        int
}

func newReseedingRNG(entropy io.Reader, reseedInterval int) (*reseedingRNG, error) {
	if reseedInterval <= 0 {
		reseedInterval = DefaultConfig().ReseedInterval
	}
	r := &reseedingRNG{entropy: entropy, reseedInterval: reseedInterval}
	if err := r.reseed(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reseedingRNG) reseed() error {
	var seed [8]byte
	if _, err := io.ReadFull(r.entropy, seed[:]); err != nil {
		return fmt.Errorf("gradient: read entropy source: %w", err)
	}

	seed0 := binary.LittleEndian.Uint32(seed[0:4])
	seed1 := binary.LittleEndian.Uint32(seed[4:8])

	r.src = mrand.New(mrand.NewSource(int64(seed0)))
	r.countdown = r.reseedInterval/2 + int(seed1%uint32(r.reseedInterval))
	r.reseeds++
	return nil
}

// Intn returns a non-negative pseudo-random number in [0, limit), reseeding
// from the entropy source first if the draw countdown has elapsed.
func (r *reseedingRNG) Intn(limit int) int {
	if r.countdown <= 0 {
		// Reseed failures here are not a documented fatal condition (only
		// construction-time entropy failure is); fall back to the current
		// source rather than panicking mid-search.
		if err := r.reseed(); err != nil {
			r.countdown = r.reseedInterval
		}
	}
	r.countdown--
	return r.src.Intn(limit)
}
