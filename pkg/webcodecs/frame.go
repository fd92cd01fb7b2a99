// Package webcodecs is the public, driver-facing API: VideoFrame, AudioData,
// EncodedVideoChunk, EncodedAudioChunk, and the four codec classes
// (VideoEncoder, VideoDecoder, AudioEncoder, AudioDecoder). It is a thin,
// typed wrapper over internal/facade, internal/resource, and
// internal/chunk — the split mirrors the teacher's pkg/ffmpeg and
// pkg/xtream packages being the stable public surface over an internal/
// implementation.
package webcodecs

import (
	"github.com/jmylchreest/codecrun/internal/resource"
)

// VideoFrame wraps a refcounted Media Resource holding raw video pixels.
type VideoFrame struct {
	handle *resource.Handle
}

// NewVideoFrame constructs a VideoFrame over payload. When transfer is
// true, ownership of payload moves to the frame.
func NewVideoFrame(payload []byte, transfer bool, codedWidth, codedHeight int, format string, timestamp int64) (*VideoFrame, error) {
	h, err := resource.Construct(payload, transfer, resource.Init{
		Kind:      resource.KindVideo,
		Format:    resource.Format(format),
		Timestamp: timestamp,
		Video: resource.VideoGeometry{
			CodedWidth:  codedWidth,
			CodedHeight: codedHeight,
			VisibleRect: resource.Rect{Width: codedWidth, Height: codedHeight},
		},
		Layout: []resource.PlaneLayout{{Offset: 0, Stride: codedWidth * 4, Rows: codedHeight}},
	})
	if err != nil {
		return nil, err
	}
	return &VideoFrame{handle: h}, nil
}

// Clone returns an independent handle to the same backing buffer.
func (f *VideoFrame) Clone() (*VideoFrame, error) {
	h, err := f.handle.Clone()
	if err != nil {
		return nil, err
	}
	return &VideoFrame{handle: h}, nil
}

// Close releases this frame's reference to the backing buffer.
func (f *VideoFrame) Close() { f.handle.Close() }

// Closed reports whether Close has already been called on this handle.
func (f *VideoFrame) Closed() bool { return f.handle.Closed() }

// Timestamp returns the frame's presentation timestamp in microseconds.
func (f *VideoFrame) Timestamp() int64 { return f.handle.Timestamp() }

// CodedWidth and CodedHeight report the frame's storage dimensions.
func (f *VideoFrame) CodedWidth() int  { return f.handle.VideoGeometry().CodedWidth }
func (f *VideoFrame) CodedHeight() int { return f.handle.VideoGeometry().CodedHeight }

// AllocationSize reports the byte length CopyTo needs for the default
// (unconverted, full-frame) copy.
func (f *VideoFrame) AllocationSize() (int, error) {
	return f.handle.AllocationSize(resource.CopyOptions{})
}

// CopyTo copies the frame's pixel data into destination.
func (f *VideoFrame) CopyTo(destination []byte) error {
	_, err := f.handle.CopyTo(destination, resource.CopyOptions{})
	return err
}

// Handle exposes the underlying Media Resource for internal callers (the
// codec classes) without making it part of the frame's own API surface.
func (f *VideoFrame) Handle() *resource.Handle { return f.handle }

// AudioData wraps a refcounted Media Resource holding raw audio samples.
type AudioData struct {
	handle *resource.Handle
}

// NewAudioData constructs an AudioData over payload.
func NewAudioData(payload []byte, transfer bool, sampleRate, numberOfChannels, numberOfFrames int, interleaved bool, timestamp int64) (*AudioData, error) {
	h, err := resource.Construct(payload, transfer, resource.Init{
		Kind:      resource.KindAudio,
		Timestamp: timestamp,
		Audio: resource.AudioGeometry{
			SampleRate:       sampleRate,
			NumberOfChannels: numberOfChannels,
			NumberOfFrames:   numberOfFrames,
			Interleaved:      interleaved,
		},
		Layout: []resource.PlaneLayout{{Offset: 0, Stride: len(payload), Rows: 1}},
	})
	if err != nil {
		return nil, err
	}
	return &AudioData{handle: h}, nil
}

// Clone returns an independent handle to the same backing buffer.
func (a *AudioData) Clone() (*AudioData, error) {
	h, err := a.handle.Clone()
	if err != nil {
		return nil, err
	}
	return &AudioData{handle: h}, nil
}

// Close releases this handle's reference to the backing buffer.
func (a *AudioData) Close() { a.handle.Close() }

// Closed reports whether Close has already been called on this handle.
func (a *AudioData) Closed() bool { return a.handle.Closed() }

// Timestamp returns the presentation timestamp in microseconds.
func (a *AudioData) Timestamp() int64 { return a.handle.Timestamp() }

// Handle exposes the underlying Media Resource for internal callers.
func (a *AudioData) Handle() *resource.Handle { return a.handle }
