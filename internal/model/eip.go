package model

import (
	"encoding/json"
	"fmt"
)

// EIP is an Ethereum Improvement Proposal record as shipped in the EIP data files.
type EIP struct {
	ID                int                `json:"id"`
	Title             string             `json:"title"`
	Status            string             `json:"status,omitempty"`
	Author            string             `json:"author,omitempty"`
	Type              string             `json:"type,omitempty"`
	Category          string             `json:"category,omitempty"`
	CreatedDate       string             `json:"createdDate,omitempty"`
	Description       string             `json:"description,omitempty"`
	LaymanDescription string             `json:"laymanDescription,omitempty"`
	Benefits          []string           `json:"benefits,omitempty"`
	NorthStars        []string           `json:"northStars,omitempty"`
	ForkRelationships []ForkRelationship `json:"forkRelationships,omitempty"`
}

// ForkRelationship tracks an EIP's inclusion status for one network upgrade.
type ForkRelationship struct {
	ForkName      string        `json:"forkName"`
	StatusHistory []StatusEntry `json:"statusHistory"`
}

// StatusEntry is one step in a fork relationship's status history.
type StatusEntry struct {
	Status string `json:"status"`
	Call   string `json:"call,omitempty"`
	Date   string `json:"date,omitempty"`
}

// CurrentStatus returns the most recent status for the fork, or "".
func (f ForkRelationship) CurrentStatus() string {
	if len(f.StatusHistory) == 0 {
		return ""
	}
	return f.StatusHistory[len(f.StatusHistory)-1].Status
}

// legacyForkRelationship accepts both the deprecated single "status" field and
// the current statusHistory array.
type legacyForkRelationship struct {
	ForkName      string        `json:"forkName"`
	Status        string        `json:"status"`
	StatusHistory []StatusEntry `json:"statusHistory"`
}

// DecodeEIP parses one EIP file, migrating legacy fork status fields into
// statusHistory. migrated reports whether any legacy field was seen.
func DecodeEIP(data []byte) (eip EIP, migrated bool, err error) {
	var raw struct {
		EIP
		ForkRelationships []legacyForkRelationship `json:"forkRelationships"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return EIP{}, false, fmt.Errorf("unmarshal eip: %w", err)
	}
	if raw.EIP.ID <= 0 {
		return EIP{}, false, fmt.Errorf("missing required field id")
	}

	eip = raw.EIP
	eip.ForkRelationships = nil
	for _, fr := range raw.ForkRelationships {
		history := fr.StatusHistory
		if fr.Status != "" {
			migrated = true
			if len(history) == 0 {
				history = []StatusEntry{{Status: fr.Status}}
			}
		}
		if history == nil {
			history = []StatusEntry{}
		}
		eip.ForkRelationships = append(eip.ForkRelationships, ForkRelationship{
			ForkName:      fr.ForkName,
			StatusHistory: history,
		})
	}
	return eip, migrated, nil
}
