// JSON report emission: one self-contained file per run, including the
// full final lattice snapshot. Big integers and energies are serialized as
// strings so nothing is squeezed through float64 on the way to disk.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/talgya/cellview/internal/engine"
	"github.com/talgya/cellview/internal/harness"
	"github.com/talgya/cellview/internal/metrics"
)

type reportCell struct {
	Position int    `json:"position"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	Frozen   bool   `json:"frozen"`
	Origin   int    `json:"origin"`
	Energy   string `json:"energy"`
}

type reportCorridorEntry struct {
	Rank          int     `json:"rank"`
	Value         string  `json:"value"`
	Type          string  `json:"type"`
	Energy        string  `json:"energy"`
	Origin        int     `json:"origin"`
	FinalPosition int     `json:"final_position"`
	EpisodeShare  float64 `json:"episode_share"`
}

type reportCertResult struct {
	Rank      int    `json:"rank"`
	Value     string `json:"value"`
	Remainder string `json:"remainder"`
	Gcd       string `json:"gcd"`
	IsFactor  bool   `json:"is_factor"`
}

type reportPayload struct {
	RunID          string                `json:"run_id"`
	CreatedAt      string                `json:"created_at"`
	Modulus        string                `json:"modulus"`
	SeedHex        string                `json:"seed_hex"`
	CandidateCount int                   `json:"candidate_count"`
	State          string                `json:"state"`
	Sweeps         int                   `json:"sweeps"`
	TotalSwaps     int                   `json:"total_swaps"`
	History        []engine.HistoryEntry `json:"history"`
	Episodes       []metrics.Episode     `json:"episodes"`
	BacktrackIndex float64               `json:"backtrack_index"`
	Faults         []engine.EnergyFault  `json:"faults,omitempty"`
	Final          []reportCell          `json:"final_state"`
	Corridor       []reportCorridorEntry `json:"corridor"`
	Certification  []reportCertResult    `json:"certification"`
}

// WriteReport writes the run's JSON file into dir, creating it if needed,
// and returns the file path.
func WriteReport(dir string, o *harness.Outcome) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("report dir: %w", err)
	}

	now := time.Now().UTC()
	payload := reportPayload{
		RunID:          o.RunID,
		CreatedAt:      now.Format(time.RFC3339),
		Modulus:        o.Modulus.String(),
		SeedHex:        o.SeedHex,
		CandidateCount: o.CandidateCount,
		State:          o.Report.State.String(),
		Sweeps:         o.Report.Sweeps,
		TotalSwaps:     o.Report.TotalSwaps,
		History:        o.Report.History,
		Episodes:       o.Report.Episodes,
		BacktrackIndex: o.Report.BacktrackIndex,
		Faults:         o.Report.Faults,
	}

	payload.Final = make([]reportCell, len(o.Report.Final))
	for i, c := range o.Report.Final {
		payload.Final[i] = reportCell{
			Position: c.Position,
			Value:    c.Value.String(),
			Type:     c.Type,
			Frozen:   c.Frozen,
			Origin:   c.Origin,
			Energy:   c.Energy.Text('g', 30),
		}
	}
	payload.Corridor = make([]reportCorridorEntry, len(o.Corridor))
	for i, c := range o.Corridor {
		payload.Corridor[i] = reportCorridorEntry{
			Rank:          c.Rank,
			Value:         c.Value.String(),
			Type:          c.Type,
			Energy:        c.Energy.Text('g', 30),
			Origin:        c.Origin,
			FinalPosition: c.FinalPosition,
			EpisodeShare:  c.EpisodeShare,
		}
	}
	payload.Certification = make([]reportCertResult, len(o.Certification))
	for i, r := range o.Certification {
		payload.Certification[i] = reportCertResult{
			Rank:      r.Rank,
			Value:     r.Value.String(),
			Remainder: r.Remainder.String(),
			Gcd:       r.Gcd.String(),
			IsFactor:  r.IsFactor,
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s_%s.json", now.Format("20060102T150405"), shortID(o.RunID)))
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
