package sim

import "testing"

func TestAnimalAtAndInspect(t *testing.T) {
	cfg := testConfig(t)
	cfg.GenerationLength = 5
	s := newTestSim(t, cfg, 42)
	s.Step()

	target := s.World().Animals[3]
	id, ok := s.AnimalAt(target.X, target.Y, 0.001)
	if !ok {
		t.Fatal("expected to find an animal at its own position")
	}

	detail, ok := s.Inspect(id)
	if !ok {
		t.Fatal("expected Inspect to find the animal")
	}
	if detail.X != target.X || detail.Y != target.Y || detail.Rotation != target.Rotation {
		t.Errorf("detail %+v does not match snapshot %+v", detail, target)
	}
	if len(detail.Vision) != cfg.Photoreceptors {
		t.Errorf("expected %d receptors, got %d", cfg.Photoreceptors, len(detail.Vision))
	}
	if len(detail.Activations) != 3 || len(detail.Activations[2]) != 2 {
		t.Errorf("unexpected activation shape: %d layers", len(detail.Activations))
	}
	if detail.Speed < cfg.SpeedMin || detail.Speed > cfg.SpeedMax {
		t.Errorf("speed %f out of bounds", detail.Speed)
	}

	s.FastForward()
	if _, ok := s.Inspect(id); ok {
		t.Error("animals from a finished generation must not be found")
	}
}

func TestAnimalAtMiss(t *testing.T) {
	cfg := testConfig(t)
	cfg.Animals = 1
	s := newTestSim(t, cfg, 42)

	a := s.World().Animals[0]
	x := a.X + 0.5
	if x > 1 {
		x -= 1
	}
	if _, ok := s.AnimalAt(x, a.Y, 0.01); ok {
		t.Error("expected no animal far from the only one")
	}
}
