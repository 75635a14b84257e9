package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/forage/genetic"
)

func statsWithBest(max float64, genes ...float64) genetic.Statistics {
	return genetic.Statistics{Max: max, Best: genetic.Chromosome{Genes: genes}}
}

func TestHallOfFameOrderingAndCapacity(t *testing.T) {
	hof := NewHallOfFame(3)

	hof.Consider(0, statsWithBest(2, 0.2))
	hof.Consider(1, statsWithBest(5, 0.5))
	hof.Consider(2, statsWithBest(3, 0.3))
	if admitted := hof.Consider(3, statsWithBest(1, 0.1)); admitted {
		t.Error("expected weaker entry to be rejected from a full hall")
	}
	if admitted := hof.Consider(4, statsWithBest(4, 0.4)); !admitted {
		t.Error("expected stronger entry to be admitted")
	}

	entries := hof.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantGen := []int{1, 4, 2}
	for i, e := range entries {
		if e.Generation != wantGen[i] {
			t.Errorf("entry %d from generation %d, want %d", i, e.Generation, wantGen[i])
		}
	}
	if hof.TopFitness() != 5 {
		t.Errorf("TopFitness = %v, want 5", hof.TopFitness())
	}
}

func TestHallOfFameIgnoresEmptyChromosome(t *testing.T) {
	hof := NewHallOfFame(2)
	if hof.Consider(0, genetic.Statistics{Max: 10}) {
		t.Error("expected entry without genes to be rejected")
	}
	if hof.Len() != 0 {
		t.Errorf("expected empty hall, got %d", hof.Len())
	}
}

func TestHallOfFameCopiesGenes(t *testing.T) {
	hof := NewHallOfFame(2)
	genes := []float64{1, 2, 3}
	hof.Consider(0, statsWithBest(1, genes...))
	genes[0] = 99

	if got := hof.Chromosomes()[0].Genes[0]; got != 1 {
		t.Errorf("hall entry aliased caller genes: got %v", got)
	}
}

func TestHallOfFameFileRoundtrip(t *testing.T) {
	hof := NewHallOfFame(4)
	hof.Consider(0, statsWithBest(3, 0.1, 0.2))
	hof.Consider(1, statsWithBest(7, 0.3, 0.4))

	data, err := hof.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "hall_of_fame.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadHallOfFameFromFile(path)
	if err != nil {
		t.Fatalf("LoadHallOfFameFromFile: %v", err)
	}
	if loaded.Len() != 2 || loaded.TopFitness() != 7 {
		t.Errorf("loaded %d entries with top %v, want 2 and 7", loaded.Len(), loaded.TopFitness())
	}
	if c := loaded.Chromosomes()[1]; len(c.Genes) != 2 || c.Genes[0] != 0.1 {
		t.Errorf("unexpected second chromosome: %v", c.Genes)
	}
}
