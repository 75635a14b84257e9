package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/forage/genetic"
)

// HallEntry records the best brain of one generation.
type HallEntry struct {
	Generation int       `json:"generation"`
	Fitness    float64   `json:"fitness"`
	Genes      []float64 `json:"genes"`
}

// HallOfFame keeps the fittest brains seen across all generations, best first.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize entries.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider offers a generation's best chromosome to the hall.
// Returns true if it was admitted.
func (hof *HallOfFame) Consider(generation int, stats genetic.Statistics) bool {
	if stats.Best.Len() == 0 {
		return false
	}
	if len(hof.entries) == hof.maxSize && stats.Max <= hof.entries[len(hof.entries)-1].Fitness {
		return false
	}

	entry := HallEntry{
		Generation: generation,
		Fitness:    stats.Max,
		Genes:      stats.Best.Clone().Genes,
	}

	// Insert keeping descending fitness; earlier generations win ties
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < entry.Fitness
	})
	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Len returns the number of entries.
func (hof *HallOfFame) Len() int {
	return len(hof.entries)
}

// TopFitness returns the best recorded fitness, or 0 for an empty hall.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// Entries returns a copy of the entries, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	return append([]HallEntry(nil), hof.entries...)
}

// Chromosomes returns the genes of every entry, best first.
func (hof *HallOfFame) Chromosomes() []genetic.Chromosome {
	out := make([]genetic.Chromosome, len(hof.entries))
	for i, e := range hof.entries {
		out[i] = genetic.Chromosome{Genes: append([]float64(nil), e.Genes...)}
	}
	return out
}

type hallOfFameJSON struct {
	MaxSize int         `json:"max_size"`
	Entries []HallEntry `json:"entries"`
}

// MarshalJSON exports the hall.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hallOfFameJSON{MaxSize: hof.maxSize, Entries: hof.entries}, "", "  ")
}

// LoadHallOfFameFromFile reads a hall previously written by OutputManager.
func LoadHallOfFameFromFile(path string) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw hallOfFameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame: %w", err)
	}

	hof := NewHallOfFame(raw.MaxSize)
	for _, e := range raw.Entries {
		if len(hof.entries) == hof.maxSize {
			break
		}
		hof.entries = append(hof.entries, e)
	}
	sort.SliceStable(hof.entries, func(i, j int) bool {
		return hof.entries[i].Fitness > hof.entries[j].Fitness
	})
	return hof, nil
}
