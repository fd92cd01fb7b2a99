package supportprobe

import (
	"testing"

	"github.com/jmylchreest/codecrun/internal/codecerr"
	"github.com/jmylchreest/codecrun/internal/mediaconfig"
)

func TestProbeVideoDecoderSupported(t *testing.T) {
	res, err := ProbeVideoDecoder(mediaconfig.VideoDecoderConfig{
		CodecString: "avc1.42001f",
		CodedWidth:  1280,
		CodedHeight: 720,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Supported {
		t.Fatal("expected avc1 to be supported")
	}
	if res.Normalized.HardwareAcceleration != mediaconfig.HWNoPreference {
		t.Fatalf("expected normalized hwaccel default, got %v", res.Normalized.HardwareAcceleration)
	}
}

func TestProbeVideoDecoderUnsupportedCodecStillNormalizes(t *testing.T) {
	res, err := ProbeVideoDecoder(mediaconfig.VideoDecoderConfig{
		CodecString: "some.bogus.codec",
		CodedWidth:  1280,
		CodedHeight: 720,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Supported {
		t.Fatal("expected unsupported")
	}
	if res.Normalized.HardwareAcceleration != mediaconfig.HWNoPreference {
		t.Fatal("normalization must still occur for unsupported configs")
	}
}

func TestProbeVideoDecoderInvalidConfigIsDistinctFromUnsupported(t *testing.T) {
	_, err := ProbeVideoDecoder(mediaconfig.VideoDecoderConfig{
		CodecString: "",
		CodedWidth:  1280,
		CodedHeight: 720,
	})
	if err == nil {
		t.Fatal("expected invalid-config error")
	}
	if !codecerr.Is(err, codecerr.InvalidConfig) {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
}

func TestProbeVideoEncoderRestrictsToEncodableFamilies(t *testing.T) {
	res, err := ProbeVideoEncoder(mediaconfig.VideoEncoderConfig{
		CodecString: "vp8",
		Width:       640,
		Height:      480,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Supported {
		t.Fatal("vp8 is decode-only in this runtime; expected unsupported for encode")
	}
}

func TestProbeAudioEncoderSupported(t *testing.T) {
	res, err := ProbeAudioEncoder(mediaconfig.AudioEncoderConfig{
		CodecString:      "mp4a.40.2",
		SampleRate:       48000,
		NumberOfChannels: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Supported {
		t.Fatal("expected aac to be supported for encode")
	}
	if res.Normalized.BitrateMode != mediaconfig.BitrateVariable {
		t.Fatalf("expected bitrate-mode default, got %v", res.Normalized.BitrateMode)
	}
}
