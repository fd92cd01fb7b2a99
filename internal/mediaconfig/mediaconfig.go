// Package mediaconfig defines the configuration dictionaries accepted by
// the codec classes and their validation/normalization rules. It is
// grounded on the teacher's internal/config.ByteSize pattern of a small,
// self-validating value type per configuration knob, generalized here to
// whole configuration structs because WebCodecs configs are closed shapes
// with field-level defaults rather than a single scalar.
package mediaconfig

import (
	"strings"

	"github.com/jmylchreest/codecrun/internal/codecerr"
)

// HWAccel is the hardware-acceleration preference.
type HWAccel string

const (
	HWNoPreference HWAccel = "no-preference"
	HWPreferHW     HWAccel = "prefer-hardware"
	HWPreferSW     HWAccel = "prefer-software"
)

// Alpha controls whether an encoder preserves an alpha channel.
type Alpha string

const (
	AlphaDiscard Alpha = "discard"
	AlphaKeep    Alpha = "keep"
)

// BitrateMode selects the encoder's rate-control strategy.
type BitrateMode string

const (
	BitrateConstant  BitrateMode = "constant"
	BitrateVariable  BitrateMode = "variable"
	BitrateQuantizer BitrateMode = "quantizer"
)

// LatencyMode trades encode latency against quality.
type LatencyMode string

const (
	LatencyQuality  LatencyMode = "quality"
	LatencyRealtime LatencyMode = "realtime"
)

// VideoDecoderConfig configures a video decoder instance.
type VideoDecoderConfig struct {
	CodecString          string
	Description          []byte
	CodedWidth            int
	CodedHeight           int
	DisplayAspectWidth    int
	DisplayAspectHeight   int
	ColorSpace            string
	HardwareAcceleration  HWAccel
	OptimizeForLatency    bool
	Rotation              int
	Flip                  bool
}

// Validate checks invalid-config conditions: missing required fields, zero
// dimensions, an unpaired display-aspect pair, or an empty codec string.
func (c VideoDecoderConfig) Validate() error {
	if strings.TrimSpace(c.CodecString) == "" {
		return codecerr.New(codecerr.InvalidConfig, "video_decoder_config.validate", errEmptyCodecString)
	}
	if c.CodedWidth <= 0 || c.CodedHeight <= 0 {
		return codecerr.New(codecerr.InvalidConfig, "video_decoder_config.validate", errZeroDimension)
	}
	if (c.DisplayAspectWidth == 0) != (c.DisplayAspectHeight == 0) {
		return codecerr.New(codecerr.InvalidConfig, "video_decoder_config.validate", errUnpairedDisplayAspect)
	}
	if c.Rotation != 0 && c.Rotation != 90 && c.Rotation != 180 && c.Rotation != 270 {
		return codecerr.New(codecerr.InvalidConfig, "video_decoder_config.validate", errInvalidRotation)
	}
	return nil
}

// Normalized returns a copy with defaults filled per the probe's normalized
// form: hardware-acceleration defaults to no-preference.
func (c VideoDecoderConfig) Normalized() VideoDecoderConfig {
	n := c
	if n.HardwareAcceleration == "" {
		n.HardwareAcceleration = HWNoPreference
	}
	return n
}

// VideoEncoderConfig configures a video encoder instance.
type VideoEncoderConfig struct {
	CodecString          string
	Width                int
	Height               int
	DisplayWidth         int
	DisplayHeight        int
	Bitrate              int64
	Framerate            float64
	HardwareAcceleration HWAccel
	Alpha                Alpha
	ScalabilityMode      string
	BitrateMode          BitrateMode
	LatencyMode          LatencyMode
	ContentHint          string
}

// Validate checks invalid-config conditions per the video encoder shape.
func (c VideoEncoderConfig) Validate() error {
	if strings.TrimSpace(c.CodecString) == "" {
		return codecerr.New(codecerr.InvalidConfig, "video_encoder_config.validate", errEmptyCodecString)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return codecerr.New(codecerr.InvalidConfig, "video_encoder_config.validate", errZeroDimension)
	}
	if (c.DisplayWidth == 0) != (c.DisplayHeight == 0) {
		return codecerr.New(codecerr.InvalidConfig, "video_encoder_config.validate", errUnpairedDisplayAspect)
	}
	return nil
}

// Normalized returns a copy with every defaultable field filled per the
// probe's normalization rules.
func (c VideoEncoderConfig) Normalized() VideoEncoderConfig {
	n := c
	if n.HardwareAcceleration == "" {
		n.HardwareAcceleration = HWNoPreference
	}
	if n.Alpha == "" {
		n.Alpha = AlphaDiscard
	}
	if n.BitrateMode == "" {
		n.BitrateMode = BitrateVariable
	}
	if n.LatencyMode == "" {
		n.LatencyMode = LatencyQuality
	}
	if n.DisplayWidth == 0 && n.DisplayHeight == 0 {
		n.DisplayWidth = n.Width
		n.DisplayHeight = n.Height
	}
	return n
}

// AudioDecoderConfig configures an audio decoder instance.
type AudioDecoderConfig struct {
	CodecString      string
	SampleRate       int
	NumberOfChannels int
	Description      []byte
}

// Validate checks invalid-config conditions for the audio decoder shape.
func (c AudioDecoderConfig) Validate() error {
	if strings.TrimSpace(c.CodecString) == "" {
		return codecerr.New(codecerr.InvalidConfig, "audio_decoder_config.validate", errEmptyCodecString)
	}
	if c.SampleRate <= 0 || c.NumberOfChannels <= 0 {
		return codecerr.New(codecerr.InvalidConfig, "audio_decoder_config.validate", errZeroDimension)
	}
	return nil
}

// Normalized returns a copy of the config; audio decoder configs carry no
// defaultable fields beyond what Validate already requires.
func (c AudioDecoderConfig) Normalized() AudioDecoderConfig { return c }

// AudioEncoderConfig configures an audio encoder instance.
type AudioEncoderConfig struct {
	CodecString      string
	SampleRate       int
	NumberOfChannels int
	Bitrate          int64
	BitrateMode      BitrateMode
}

// Validate checks invalid-config conditions for the audio encoder shape.
func (c AudioEncoderConfig) Validate() error {
	if strings.TrimSpace(c.CodecString) == "" {
		return codecerr.New(codecerr.InvalidConfig, "audio_encoder_config.validate", errEmptyCodecString)
	}
	if c.SampleRate <= 0 || c.NumberOfChannels <= 0 {
		return codecerr.New(codecerr.InvalidConfig, "audio_encoder_config.validate", errZeroDimension)
	}
	return nil
}

// Normalized returns a copy with bitrate-mode defaulted to variable.
func (c AudioEncoderConfig) Normalized() AudioEncoderConfig {
	n := c
	if n.BitrateMode == "" {
		n.BitrateMode = BitrateVariable
	}
	return n
}
