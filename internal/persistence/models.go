package persistence

import (
	"encoding/json"
	"time"
)

// StoredMember is the serialized form of a roster member. Field names match
// the legacy browser-storage format so previously exported state remains
// readable.
type StoredMember struct {
	NIM  string `json:"nim"`
	Name string `json:"name"`
}

// StoredSchedule is the serialized form of one duty-day assignment.
type StoredSchedule struct {
	Date           time.Time      `json:"date"`
	Students       []StoredMember `json:"students"`
	Representative StoredMember   `json:"representative"`
}

// StoredProof is the serialized form of one submitted inspection proof.
type StoredProof struct {
	ID          string    `json:"id"`
	NIM         string    `json:"nim"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	ImageDigest string    `json:"imageDigest,omitempty"`
	Notes       string    `json:"notes"`
	Timestamp   time.Time `json:"timestamp"`
}

// EncodeSchedules serializes schedules for the KeySchedules value.
func EncodeSchedules(schedules []StoredSchedule) (string, error) {
	return encode(schedules)
}

// DecodeSchedules parses a KeySchedules value.
func DecodeSchedules(value string) ([]StoredSchedule, error) {
	var schedules []StoredSchedule
	if err := json.Unmarshal([]byte(value), &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// EncodeProofs serializes proofs for the KeyProofs value.
func EncodeProofs(proofs []StoredProof) (string, error) {
	return encode(proofs)
}

// DecodeProofs parses a KeyProofs value.
func DecodeProofs(value string) ([]StoredProof, error) {
	var proofs []StoredProof
	if err := json.Unmarshal([]byte(value), &proofs); err != nil {
		return nil, err
	}
	return proofs, nil
}

func encode(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
