package audio

import "testing"

func TestBuffer_Shape(t *testing.T) {
	b := New(2, 16)
	if b.NumChannels() != 2 || b.NumFrames() != 16 {
		t.Fatalf("got %s", b)
	}
	if len(b.Channel(1)) != 16 {
		t.Errorf("channel slice length = %d", len(b.Channel(1)))
	}
}

func TestBuffer_ClearAndGain(t *testing.T) {
	b := New(2, 4)
	for ch := 0; ch < 2; ch++ {
		for f := 0; f < 4; f++ {
			b.SetSample(ch, f, 2)
		}
	}

	b.ApplyGain(0.5)
	if got := b.Sample(1, 3); got != 1 {
		t.Errorf("after gain, sample = %v, want 1", got)
	}

	b.ClearChannel(0)
	if b.Sample(0, 0) != 0 || b.Sample(1, 0) != 1 {
		t.Error("ClearChannel touched the wrong channel")
	}

	b.Clear()
	for ch := 0; ch < 2; ch++ {
		for f := 0; f < 4; f++ {
			if b.Sample(ch, f) != 0 {
				t.Fatalf("Clear left sample (%d,%d) = %v", ch, f, b.Sample(ch, f))
			}
		}
	}
}

func TestBuffer_DegenerateSizes(t *testing.T) {
	b := New(0, 0)
	if b.NumChannels() != 0 || b.NumFrames() != 0 {
		t.Errorf("got %s", b)
	}
	b.Clear() // must not panic

	b = New(-1, -5)
	if b.NumChannels() != 0 || b.NumFrames() != 0 {
		t.Errorf("negative sizes should clamp to zero, got %s", b)
	}
}
