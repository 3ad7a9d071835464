package roster

import "testing"

func TestFind(t *testing.T) {
	t.Parallel()

	t.Run("resolves a known NIM", func(t *testing.T) {
		t.Parallel()

		member, ok := Find("1202223063")
		if !ok {
			t.Fatalf("expected NIM 1202223063 to be on the roster")
		}
		if member.Name != "Charles Ricky Barnabas" {
			t.Fatalf("unexpected member resolved: %+v", member)
		}
	})

	t.Run("rejects an unknown NIM", func(t *testing.T) {
		t.Parallel()

		member, ok := Find("0000000000")
		if ok {
			t.Fatalf("expected lookup to fail, got %+v", member)
		}
		if member != (Member{}) {
			t.Fatalf("expected zero member on miss, got %+v", member)
		}
	})
}

func TestPool(t *testing.T) {
	t.Parallel()

	t.Run("matches the roster size", func(t *testing.T) {
		t.Parallel()

		if got := len(Pool()); got != Size() {
			t.Fatalf("expected %d members, got %d", Size(), got)
		}
	})

	t.Run("returns an isolated copy", func(t *testing.T) {
		t.Parallel()

		pool := Pool()
		pool[0] = Member{NIM: "tampered", Name: "tampered"}

		if member, ok := Find("tampered"); ok {
			t.Fatalf("mutating the returned pool leaked into the roster: %+v", member)
		}
		if fresh := Pool(); fresh[0].NIM == "tampered" {
			t.Fatalf("expected fresh pool to be unaffected by caller mutation")
		}
	})

	t.Run("contains no duplicate NIMs", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{})
		for _, member := range Pool() {
			if _, ok := seen[member.NIM]; ok {
				t.Fatalf("duplicate NIM in roster: %s", member.NIM)
			}
			seen[member.NIM] = struct{}{}
		}
	})
}
