package assignment

import (
	"math/rand/v2"
	"time"

	"github.com/wkwkland69/piketeisd/internal/roster"
)

// DefaultCrewSize is the number of members assigned to one inspection day.
const DefaultCrewSize = 6

// Entry is one day's duty assignment: the crew on rotation and the member
// responsible for submitting inspection proof.
type Entry struct {
	Date           time.Time
	Crew           []roster.Member
	Representative roster.Member
}

// Generator produces duty assignments over a window of calendar days.
//
// The clock and the random source are injected so callers control the window
// origin and tests can pin the shuffle. Generation itself performs no I/O.
type Generator struct {
	crewSize int
	now      func() time.Time
	rng      *rand.Rand
}

// NewGenerator constructs a Generator. A nil now defaults to time.Now, a nil
// rng to a freshly seeded source, and a non-positive crewSize to
// DefaultCrewSize. Randomness does not need to be reproducible across runs;
// regeneration is expected to reshuffle.
func NewGenerator(crewSize int, now func() time.Time, rng *rand.Rand) *Generator {
	if crewSize <= 0 {
		crewSize = DefaultCrewSize
	}
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{crewSize: crewSize, now: now, rng: rng}
}

// Generate walks days consecutive calendar days starting today and returns
// one Entry per business day. Saturdays and Sundays yield no entry but still
// advance the day cursor. days <= 0 yields an empty result.
func (g *Generator) Generate(pool []roster.Member, days int) []Entry {
	return g.GenerateFrom(g.now(), pool, days)
}

// GenerateFrom behaves like Generate but starts the window at the calendar
// day containing start instead of today.
//
// Each business day draws an unbiased permutation of the pool, takes the
// first crewSize members as the crew (the whole pool when it is smaller) and
// picks the representative uniformly from the crew.
func (g *Generator) GenerateFrom(start time.Time, pool []roster.Member, days int) []Entry {
	entries := make([]Entry, 0, days)
	day := Day(start)

	for i := 0; i < days; i++ {
		date := day.AddDate(0, 0, i)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		shuffled := make([]roster.Member, len(pool))
		copy(shuffled, pool)
		g.rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		size := g.crewSize
		if size > len(shuffled) {
			size = len(shuffled)
		}
		if size == 0 {
			continue
		}
		crew := shuffled[:size:size]

		entries = append(entries, Entry{
			Date:           date,
			Crew:           crew,
			Representative: crew[g.rng.IntN(len(crew))],
		})
	}

	return entries
}

// Day normalizes t to midnight of its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
