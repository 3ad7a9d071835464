// Package testfixtures provides deterministic clocks, timers, identifier
// generators and storage fakes shared by the service tests.
package testfixtures

import (
	"math/rand/v2"
	"time"

	"github.com/wkwkland69/piketeisd/internal/roster"
)

// ReferenceTime returns the shared fixture instant: Monday 2025-03-03 08:00
// local time. Starting on a Monday keeps weekday arithmetic in tests easy to
// follow.
func ReferenceTime() time.Time {
	return time.Date(2025, time.March, 3, 8, 0, 0, 0, time.Local)
}

// NewRand returns a seeded random source so shuffle driven tests are
// reproducible.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// SamplePool returns a synthetic eight member roster for generator and
// schedule tests that should not depend on the production roster.
func SamplePool() []roster.Member {
	return []roster.Member{
		{NIM: "9900000001", Name: "Test Member One"},
		{NIM: "9900000002", Name: "Test Member Two"},
		{NIM: "9900000003", Name: "Test Member Three"},
		{NIM: "9900000004", Name: "Test Member Four"},
		{NIM: "9900000005", Name: "Test Member Five"},
		{NIM: "9900000006", Name: "Test Member Six"},
		{NIM: "9900000007", Name: "Test Member Seven"},
		{NIM: "9900000008", Name: "Test Member Eight"},
	}
}

// LookupIn builds a lookup function over an arbitrary pool, mirroring
// roster.Find for fixtures.
func LookupIn(pool []roster.Member) func(string) (roster.Member, bool) {
	return func(nim string) (roster.Member, bool) {
		for _, member := range pool {
			if member.NIM == nim {
				return member, true
			}
		}
		return roster.Member{}, false
	}
}
