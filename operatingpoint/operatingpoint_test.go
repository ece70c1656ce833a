package operatingpoint

import (
	"math"
	"testing"
)

func sineSignal(n int, frequency float64) Signal {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	return Signal{Frequency: frequency, Samples: samples}
}

func dcSignal(n int, value, frequency float64) Signal {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = value
	}
	return Signal{Frequency: frequency, Samples: samples}
}

func Test_processSineHasLowTHDAndMatchesRMS(tst *testing.T) {
	s := sineSignal(64, 100e3)
	p, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	wantRMS := 1 / math.Sqrt2
	if math.Abs(p.RMS-wantRMS) > 0.01 {
		tst.Errorf("RMS = %v, want close to %v", p.RMS, wantRMS)
	}
	if p.THD > 0.05 {
		tst.Errorf("THD = %v, want < 0.05 for a pure sine", p.THD)
	}
	if p.Label != LabelSinusoidal {
		tst.Errorf("Label = %v, want LabelSinusoidal", p.Label)
	}
}

func Test_processDCSignal(tst *testing.T) {
	s := dcSignal(32, 5, 0)
	p, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	if p.Mean != 5 || p.Peak != 5 || p.Valley != 5 {
		tst.Errorf("Mean/Peak/Valley = %v/%v/%v, want all 5", p.Mean, p.Peak, p.Valley)
	}
	if p.Label != LabelDC {
		tst.Errorf("Label = %v, want LabelDC", p.Label)
	}
	if p.THD != 0 {
		tst.Errorf("THD = %v, want 0 for DC", p.THD)
	}
}

func Test_processIsIdempotent(tst *testing.T) {
	s := sineSignal(64, 100e3)
	a, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	b, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	if a != b {
		tst.Errorf("Process() not idempotent: %+v != %+v", a, b)
	}
}

func Test_processFailsOnEmptySignal(tst *testing.T) {
	if _, err := Process(Signal{Frequency: 100e3}); err == nil {
		tst.Errorf("Process() = nil error, want error for empty samples")
	}
}

func Test_harmonicsFundamentalMatchesSourceFrequency(tst *testing.T) {
	s := sineSignal(64, 50e3)
	harmonics, err := Harmonics(s, 5)
	if err != nil {
		tst.Fatalf("Harmonics() error: %v", err)
	}
	if len(harmonics) == 0 {
		tst.Fatalf("Harmonics() returned no terms")
	}
	if harmonics[0].Frequency != 50e3 {
		tst.Errorf("harmonics[0].Frequency = %v, want 50e3", harmonics[0].Frequency)
	}
	if harmonics[0].RMS < 0.5 {
		tst.Errorf("harmonics[0].RMS = %v, want close to 0.707 (fundamental dominates a pure sine)", harmonics[0].RMS)
	}
}

func Test_harmonicsFailsOnEmptySignal(tst *testing.T) {
	if _, err := Harmonics(Signal{Frequency: 100e3}, 5); err == nil {
		tst.Errorf("Harmonics() = nil error, want error for empty samples")
	}
}

// flybackRampSignal builds a current waveform that ramps linearly over
// rampLen samples and sits flat at zero for the remaining flatLen samples.
// descending reverses the ramp direction (secondary-side shape).
func flybackRampSignal(rampLen, flatLen int, peak float64, descending bool, frequency float64) Signal {
	n := rampLen + flatLen
	samples := make([]float64, n)
	for i := 0; i < rampLen; i++ {
		frac := 0.2 + 0.8*float64(i)/float64(rampLen-1)
		v := frac * peak
		if descending {
			samples[rampLen-1-i] = v
		} else {
			samples[i] = v
		}
	}
	return Signal{Frequency: frequency, Samples: samples}
}

func alternatingSignal(n int, high, low, frequency float64) Signal {
	samples := make([]float64, n)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = high
		} else {
			samples[i] = low
		}
	}
	return Signal{Frequency: frequency, Samples: samples}
}

func Test_processFlybackPrimaryRampsUpThenFlatZero(tst *testing.T) {
	s := flybackRampSignal(16, 24, 10, false, 100e3)
	p, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	if p.Label != LabelFlybackPrimary {
		tst.Errorf("Label = %v, want LabelFlybackPrimary", p.Label)
	}
}

func Test_processFlybackSecondaryFlatZeroThenRampsDown(tst *testing.T) {
	s := flybackRampSignal(16, 24, 10, true, 100e3)
	// flat-zero must come first for the secondary shape.
	samples := append(append([]float64{}, s.Samples[16:]...), s.Samples[:16]...)
	s.Samples = samples
	p, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	if p.Label != LabelFlybackSecondary {
		tst.Errorf("Label = %v, want LabelFlybackSecondary", p.Label)
	}
}

func Test_processUnipolarRectangular(tst *testing.T) {
	s := alternatingSignal(40, 5, 0, 100e3)
	p, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	if p.Label != LabelUnipolarRectangular {
		tst.Errorf("Label = %v, want LabelUnipolarRectangular", p.Label)
	}
}

func Test_processBipolarRectangular(tst *testing.T) {
	s := alternatingSignal(40, 5, -5, 100e3)
	p, err := Process(s)
	if err != nil {
		tst.Fatalf("Process() error: %v", err)
	}
	if p.Label != LabelBipolarRectangular {
		tst.Errorf("Label = %v, want LabelBipolarRectangular", p.Label)
	}
}
