// Package resource implements the Media Resource: a reference-counted handle
// to a native raw-media buffer (video pixel planes or audio sample planes).
// It backs both VideoFrame and AudioData at the pkg/webcodecs boundary.
package resource

import (
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/codecrun/internal/codecerr"
)

// Kind distinguishes a video frame buffer from an audio sample buffer.
type Kind int

const (
	KindVideo Kind = iota
	KindAudio
)

// Format is a pixel format (video) or sample format (audio) name.
type Format string

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, Width, Height int
}

// PlaneLayout describes one plane's placement within the backing buffer.
type PlaneLayout struct {
	Offset int
	Stride int
	Rows   int
}

// VideoGeometry holds the video-specific attributes from the data model.
type VideoGeometry struct {
	CodedWidth, CodedHeight       int
	VisibleRect                   Rect
	DisplayWidth, DisplayHeight   int
	Rotation                      int // one of 0, 90, 180, 270
	Flip                          bool
	ColorSpace                    string
}

// AudioGeometry holds the audio-specific attributes from the data model.
type AudioGeometry struct {
	SampleRate       int
	NumberOfChannels int
	NumberOfFrames   int
	Interleaved      bool
}

// Metadata is the immutable dictionary returned by Metadata().
type Metadata struct {
	Rotation   int
	Flip       bool
	ColorSpace string
}

// Init describes a Media Resource at construction time.
type Init struct {
	Kind      Kind
	Format    Format
	Timestamp int64 // microseconds, signed
	Duration  *int64
	Video     VideoGeometry
	Audio     AudioGeometry
	Layout    []PlaneLayout
}

// FormatConverter performs pixel/sample format conversion for CopyTo when
// the requested output format differs from the source. It is an external
// collaborator (out of the engine's scope); a nil converter makes any
// cross-format CopyTo fail.
type FormatConverter interface {
	Convert(src []byte, srcLayout []PlaneLayout, srcFormat Format, dstFormat Format) ([]byte, []PlaneLayout, error)
}

// buffer is the shared, refcounted backing store. Once constructed its
// bytes never change; the refcount is the only mutable field and it is
// manipulated atomically so clone/close need no external lock.
type buffer struct {
	data []byte
	refs int32
}

// Handle is a single reference to a Media Resource. It is not safe for
// concurrent use by multiple goroutines without external synchronization
// beyond Clone/Close/Close, which are internally safe.
type Handle struct {
	mu       sync.Mutex
	closed   bool
	buf      *buffer
	init     Init
	converter FormatConverter
}

// CopyOptions parameterizes AllocationSize and CopyTo.
type CopyOptions struct {
	// PlaneIndex selects a channel plane for planar audio. For interleaved
	// audio it MUST be 0. Ignored for video (every plane in the layout is
	// copied).
	PlaneIndex int
	// Format requests an output pixel/sample format different from source.
	// Empty means "use the source format".
	Format Format
	Rect   *Rect // not consulted: AllocationSize and CopyTo always cover the full plane layout, uncropped
}

// validateLayout enforces the plane-bounds invariant from the data model:
// offsets are non-negative and offset+rows*stride <= len(payload) for every
// plane.
func validateLayout(payload []byte, layout []PlaneLayout) error {
	for _, p := range layout {
		if p.Offset < 0 || p.Stride < 0 || p.Rows < 0 {
			return codecerr.New(codecerr.InvalidLayout, "resource.construct", errNegativeLayout)
		}
		need := p.Offset + p.Rows*p.Stride
		if need > len(payload) {
			return codecerr.New(codecerr.InvalidLayout, "resource.construct", errLayoutOverflow)
		}
	}
	return nil
}

// Construct builds a new Media Resource. When transfer is true, the resource
// adopts payload as its backing store without copying; the caller's slice
// still refers to the same bytes and is not invalidated. When false, payload
// is copied.
func Construct(payload []byte, transfer bool, init Init) (*Handle, error) {
	if init.Kind == KindVideo {
		if init.Video.CodedWidth <= 0 || init.Video.CodedHeight <= 0 {
			return nil, codecerr.New(codecerr.InvalidLayout, "resource.construct", errZeroDimension)
		}
		vr := init.Video.VisibleRect
		if vr.Width > 0 || vr.Height > 0 {
			if vr.X < 0 || vr.Y < 0 ||
				vr.X+vr.Width > init.Video.CodedWidth ||
				vr.Y+vr.Height > init.Video.CodedHeight {
				return nil, codecerr.New(codecerr.InvalidLayout, "resource.construct", errVisibleRectOOB)
			}
		}
	}

	if err := validateLayout(payload, init.Layout); err != nil {
		return nil, err
	}

	var data []byte
	if transfer {
		data = payload
	} else {
		data = make([]byte, len(payload))
		copy(data, payload)
	}

	return &Handle{
		buf:  &buffer{data: data, refs: 1},
		init: init,
	}, nil
}

// SetFormatConverter injects the collaborator used by CopyTo when a
// cross-format conversion is requested.
func (h *Handle) SetFormatConverter(c FormatConverter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.converter = c
}

// Clone creates a new handle sharing the backing buffer, incrementing its
// refcount. Fails with Detached if the handle is already closed.
func (h *Handle) Clone() (*Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, codecerr.New(codecerr.Detached, "resource.clone", errDetached)
	}
	atomic.AddInt32(&h.buf.refs, 1)
	return &Handle{buf: h.buf, init: h.init, converter: h.converter}, nil
}

// Close decrements the refcount and, at zero, releases the backing buffer.
// Idempotent: a second Close is a no-op and causes no additional decrement.
func (h *Handle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	if atomic.AddInt32(&h.buf.refs, -1) == 0 {
		h.buf.data = nil
	}
}

// Closed reports whether this handle has been closed (detached).
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Kind returns the resource kind, even on a closed handle.
func (h *Handle) Kind() Kind { return h.init.Kind }

// Format returns the format, or ("", false) on a closed handle.
func (h *Handle) Format() (Format, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", false
	}
	return h.init.Format, true
}

// Timestamp returns the timestamp in microseconds, or 0 on a closed handle.
func (h *Handle) Timestamp() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return h.init.Timestamp
}

// Duration returns the optional duration in microseconds.
func (h *Handle) Duration() (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.init.Duration == nil {
		return 0, false
	}
	return *h.init.Duration, true
}

// VideoGeometry returns the video geometry, or the zero value on a closed
// or non-video handle.
func (h *Handle) VideoGeometry() VideoGeometry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return VideoGeometry{}
	}
	return h.init.Video
}

// AudioGeometry returns the audio geometry, or the zero value on a closed
// or non-audio handle.
func (h *Handle) AudioGeometry() AudioGeometry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return AudioGeometry{}
	}
	return h.init.Audio
}

// Metadata returns the immutable rotation/flip/color-space dictionary, or
// (_, false) on a closed handle.
func (h *Handle) Metadata() (Metadata, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return Metadata{}, false
	}
	return Metadata{
		Rotation:   h.init.Video.Rotation,
		Flip:       h.init.Video.Flip,
		ColorSpace: h.init.Video.ColorSpace,
	}, true
}

// AllocationSize returns the number of bytes CopyTo would write for the
// given options. It must not depend on mutable state: a closed handle still
// reports zero deterministically rather than failing, mirroring the numeric
// getters.
func (h *Handle) AllocationSize(opts CopyOptions) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil
	}
	layout, err := h.effectiveLayoutLocked(opts)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, p := range layout {
		total += p.Rows * p.Stride
	}
	return total, nil
}

// CopyTo copies bytes into destination per opts, returning the plane layout
// actually written. Fails with Detached on a closed handle and with
// BufferTooSmall if destination is undersized.
func (h *Handle) CopyTo(destination []byte, opts CopyOptions) ([]PlaneLayout, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, codecerr.New(codecerr.Detached, "resource.copy_to", errDetached)
	}

	srcFormat := h.init.Format
	layout, err := h.effectiveLayoutLocked(opts)
	if err != nil {
		return nil, err
	}

	data := h.buf.data
	outLayout := layout
	if h.init.Kind == KindVideo && opts.Format != "" && opts.Format != srcFormat {
		if h.converter == nil {
			return nil, codecerr.New(codecerr.InvalidConfig, "resource.copy_to", errNoConverter)
		}
		converted, convLayout, cErr := h.converter.Convert(data, layout, srcFormat, opts.Format)
		if cErr != nil {
			return nil, codecerr.New(codecerr.EncodingError, "resource.copy_to.convert", cErr)
		}
		data = converted
		outLayout = convLayout
	}

	needed := 0
	for _, p := range outLayout {
		needed += p.Rows * p.Stride
	}
	if len(destination) < needed {
		return nil, codecerr.New(codecerr.BufferTooSmall, "resource.copy_to", errBufferTooSmall)
	}

	off := 0
	for _, p := range outLayout {
		n := p.Rows * p.Stride
		copy(destination[off:off+n], data[p.Offset:p.Offset+n])
		off += n
	}
	return outLayout, nil
}

// effectiveLayoutLocked resolves the plane layout that applies to opts,
// selecting a single channel plane for planar audio when requested.
// Caller must hold h.mu.
func (h *Handle) effectiveLayoutLocked(opts CopyOptions) ([]PlaneLayout, error) {
	if h.init.Kind == KindAudio {
		if h.init.Audio.Interleaved {
			if opts.PlaneIndex != 0 {
				return nil, codecerr.New(codecerr.InvalidConfig, "resource.plane_index", errInterleavedPlaneIndex)
			}
			return h.init.Layout, nil
		}
		if opts.PlaneIndex < 0 || opts.PlaneIndex >= len(h.init.Layout) {
			return nil, codecerr.New(codecerr.InvalidConfig, "resource.plane_index", errPlaneIndexRange)
		}
		return h.init.Layout[opts.PlaneIndex : opts.PlaneIndex+1], nil
	}
	return h.init.Layout, nil
}
