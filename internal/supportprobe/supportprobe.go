// Package supportprobe implements the stateless Support Probe: given a
// configuration dictionary, report whether some available backend could
// support it and return the dictionary normalized with defaults filled.
// Probing never touches a worker or backend instance; it is pure
// classification against internal/codecstring's family registry, grounded
// on the teacher's codec.Match/VideoMatch/AudioMatch family-membership
// helpers in internal/codec/codec.go.
package supportprobe

import (
	"github.com/jmylchreest/codecrun/internal/codecstring"
	"github.com/jmylchreest/codecrun/internal/mediaconfig"
)

// supportedDecodeVideo and friends enumerate the families a backend in
// this runtime is assumed able to handle. A real deployment would derive
// this from the backends actually registered; the fake backend in
// internal/backend/fake does not consult these sets and accepts any
// non-nil config.
var (
	supportedDecodeVideo = map[codecstring.Family]bool{
		codecstring.FamilyAVC:  true,
		codecstring.FamilyHEVC: true,
		codecstring.FamilyVP8:  true,
		codecstring.FamilyVP9:  true,
		codecstring.FamilyAV1:  true,
	}
	supportedEncodeVideo = map[codecstring.Family]bool{
		codecstring.FamilyAVC: true,
		codecstring.FamilyVP9: true,
		codecstring.FamilyAV1: true,
	}
	supportedDecodeAudio = map[codecstring.Family]bool{
		codecstring.FamilyAAC:  true,
		codecstring.FamilyOpus: true,
		codecstring.FamilyMP3:  true,
		codecstring.FamilyFLAC: true,
	}
	supportedEncodeAudio = map[codecstring.Family]bool{
		codecstring.FamilyAAC:  true,
		codecstring.FamilyOpus: true,
	}
)

// Result is the return shape of every probe operation.
type Result[T any] struct {
	Supported  bool
	Normalized T
}

// ProbeVideoDecoder validates and classifies a video decoder config.
func ProbeVideoDecoder(cfg mediaconfig.VideoDecoderConfig) (Result[mediaconfig.VideoDecoderConfig], error) {
	if err := cfg.Validate(); err != nil {
		return Result[mediaconfig.VideoDecoderConfig]{}, err
	}
	normalized := cfg.Normalized()
	family := codecstring.Recognize(normalized.CodecString)
	return Result[mediaconfig.VideoDecoderConfig]{
		Supported:  supportedDecodeVideo[family],
		Normalized: normalized,
	}, nil
}

// ProbeVideoEncoder validates and classifies a video encoder config.
func ProbeVideoEncoder(cfg mediaconfig.VideoEncoderConfig) (Result[mediaconfig.VideoEncoderConfig], error) {
	if err := cfg.Validate(); err != nil {
		return Result[mediaconfig.VideoEncoderConfig]{}, err
	}
	normalized := cfg.Normalized()
	family := codecstring.Recognize(normalized.CodecString)
	return Result[mediaconfig.VideoEncoderConfig]{
		Supported:  supportedEncodeVideo[family],
		Normalized: normalized,
	}, nil
}

// ProbeAudioDecoder validates and classifies an audio decoder config.
func ProbeAudioDecoder(cfg mediaconfig.AudioDecoderConfig) (Result[mediaconfig.AudioDecoderConfig], error) {
	if err := cfg.Validate(); err != nil {
		return Result[mediaconfig.AudioDecoderConfig]{}, err
	}
	normalized := cfg.Normalized()
	family := codecstring.Recognize(normalized.CodecString)
	return Result[mediaconfig.AudioDecoderConfig]{
		Supported:  supportedDecodeAudio[family],
		Normalized: normalized,
	}, nil
}

// ProbeAudioEncoder validates and classifies an audio encoder config.
func ProbeAudioEncoder(cfg mediaconfig.AudioEncoderConfig) (Result[mediaconfig.AudioEncoderConfig], error) {
	if err := cfg.Validate(); err != nil {
		return Result[mediaconfig.AudioEncoderConfig]{}, err
	}
	normalized := cfg.Normalized()
	family := codecstring.Recognize(normalized.CodecString)
	return Result[mediaconfig.AudioEncoderConfig]{
		Supported:  supportedEncodeAudio[family],
		Normalized: normalized,
	}, nil
}
