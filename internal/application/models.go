package application

import (
	"time"

	"github.com/wkwkland69/piketeisd/internal/persistence"
	"github.com/wkwkland69/piketeisd/internal/roster"
)

// Schedule represents one duty day: the assigned crew and the member
// responsible for submitting inspection proof. Entries are immutable once
// generated.
type Schedule struct {
	Date           time.Time
	Crew           []roster.Member
	Representative roster.Member
}

// Proof represents a submitted inspection proof record.
type Proof struct {
	ID          string
	NIM         string
	Date        time.Time
	ImageURL    string
	ImageDigest string
	Notes       string
	SubmittedAt time.Time
}

// ProofInput captures caller provided proof fields. ID, digest and the
// submission timestamp are assigned by the service.
type ProofInput struct {
	NIM      string
	Date     time.Time
	ImageURL string
	Notes    string
}

func cloneSchedule(s Schedule) Schedule {
	crew := make([]roster.Member, len(s.Crew))
	copy(crew, s.Crew)
	return Schedule{Date: s.Date, Crew: crew, Representative: s.Representative}
}

func toStoredSchedule(s Schedule) persistence.StoredSchedule {
	students := make([]persistence.StoredMember, len(s.Crew))
	for i, m := range s.Crew {
		students[i] = persistence.StoredMember{NIM: m.NIM, Name: m.Name}
	}
	return persistence.StoredSchedule{
		Date:           s.Date,
		Students:       students,
		Representative: persistence.StoredMember{NIM: s.Representative.NIM, Name: s.Representative.Name},
	}
}

func fromStoredSchedule(s persistence.StoredSchedule) Schedule {
	crew := make([]roster.Member, len(s.Students))
	for i, m := range s.Students {
		crew[i] = roster.Member{NIM: m.NIM, Name: m.Name}
	}
	return Schedule{
		Date:           s.Date,
		Crew:           crew,
		Representative: roster.Member{NIM: s.Representative.NIM, Name: s.Representative.Name},
	}
}

func toStoredProof(p Proof) persistence.StoredProof {
	return persistence.StoredProof{
		ID:          p.ID,
		NIM:         p.NIM,
		Date:        p.Date,
		ImageURL:    p.ImageURL,
		ImageDigest: p.ImageDigest,
		Notes:       p.Notes,
		Timestamp:   p.SubmittedAt,
	}
}

func fromStoredProof(p persistence.StoredProof) Proof {
	return Proof{
		ID:          p.ID,
		NIM:         p.NIM,
		Date:        p.Date,
		ImageURL:    p.ImageURL,
		ImageDigest: p.ImageDigest,
		Notes:       p.Notes,
		SubmittedAt: p.Timestamp,
	}
}
