package mediaconfig

import (
	"testing"

	"github.com/jmylchreest/codecrun/internal/codecerr"
)

func TestVideoDecoderConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     VideoDecoderConfig
		wantErr bool
	}{
		{"valid", VideoDecoderConfig{CodecString: "avc1.42001f", CodedWidth: 1280, CodedHeight: 720}, false},
		{"empty codec", VideoDecoderConfig{CodedWidth: 1280, CodedHeight: 720}, true},
		{"zero width", VideoDecoderConfig{CodecString: "avc1.42001f", CodedWidth: 0, CodedHeight: 720}, true},
		{"unpaired display aspect", VideoDecoderConfig{CodecString: "avc1.42001f", CodedWidth: 1280, CodedHeight: 720, DisplayAspectWidth: 16}, true},
		{"bad rotation", VideoDecoderConfig{CodecString: "avc1.42001f", CodedWidth: 1280, CodedHeight: 720, Rotation: 45}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !codecerr.Is(err, codecerr.InvalidConfig) {
				t.Fatalf("expected InvalidConfig, got %v", err)
			}
		})
	}
}

func TestVideoDecoderConfigNormalizedDefaultsHWAccel(t *testing.T) {
	cfg := VideoDecoderConfig{CodecString: "avc1.42001f", CodedWidth: 1280, CodedHeight: 720}
	n := cfg.Normalized()
	if n.HardwareAcceleration != HWNoPreference {
		t.Fatalf("expected no-preference, got %v", n.HardwareAcceleration)
	}
}

func TestVideoEncoderConfigNormalizedDefaults(t *testing.T) {
	cfg := VideoEncoderConfig{CodecString: "vp09.00.10.08", Width: 640, Height: 480}
	n := cfg.Normalized()
	if n.HardwareAcceleration != HWNoPreference {
		t.Fatalf("expected no-preference hwaccel")
	}
	if n.Alpha != AlphaDiscard {
		t.Fatalf("expected alpha=discard")
	}
	if n.BitrateMode != BitrateVariable {
		t.Fatalf("expected bitrate-mode=variable")
	}
	if n.LatencyMode != LatencyQuality {
		t.Fatalf("expected latency-mode=quality")
	}
	if n.DisplayWidth != 640 || n.DisplayHeight != 480 {
		t.Fatalf("expected display dims to default to coded dims, got %d x %d", n.DisplayWidth, n.DisplayHeight)
	}
}

func TestVideoEncoderConfigValidateUnpairedDisplay(t *testing.T) {
	cfg := VideoEncoderConfig{CodecString: "vp09.00.10.08", Width: 640, Height: 480, DisplayWidth: 640}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unpaired display dims")
	}
}

func TestAudioEncoderConfigNormalizedDefaultsBitrateMode(t *testing.T) {
	cfg := AudioEncoderConfig{CodecString: "mp4a.40.2", SampleRate: 48000, NumberOfChannels: 2}
	n := cfg.Normalized()
	if n.BitrateMode != BitrateVariable {
		t.Fatalf("expected bitrate-mode=variable, got %v", n.BitrateMode)
	}
}

func TestAudioDecoderConfigValidateZeroSampleRate(t *testing.T) {
	cfg := AudioDecoderConfig{CodecString: "mp4a.40.2", SampleRate: 0, NumberOfChannels: 2}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}
