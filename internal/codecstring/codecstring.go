// Package codecstring recognizes WebCodecs-style codec strings (e.g.
// "avc1.42001f", "vp09.00.10.08", "av01.0.04M.08", "mp4a.40.2") and
// classifies them against a small alias-indexed registry. It is a
// condensed, generalized adaptation of the teacher's internal/codec
// registry (aliases keyed by Video/Audio enum, MPEG-TS stream type table)
// narrowed to what the Support Probe needs: family recognition and
// profile/level/bit-depth parsing rather than FFmpeg encoder selection.
package codecstring

import (
	"strconv"
	"strings"
)

// Family identifies the codec family a codec string belongs to.
type Family string

const (
	FamilyUnknown Family = ""
	FamilyAVC     Family = "avc"
	FamilyHEVC    Family = "hevc"
	FamilyVP8     Family = "vp8"
	FamilyVP9     Family = "vp9"
	FamilyAV1     Family = "av1"
	FamilyAAC     Family = "aac"
	FamilyOpus    Family = "opus"
	FamilyMP3     Family = "mp3"
	FamilyFLAC    Family = "flac"
)

// familyInfo mirrors the teacher's videoInfo/audioInfo shape, narrowed to
// the prefixes the probe needs to recognize.
type familyInfo struct {
	family   Family
	prefixes []string
}

var registry = []familyInfo{
	{FamilyAVC, []string{"avc1.", "avc3.", "h264"}},
	{FamilyHEVC, []string{"hev1.", "hvc1.", "h265"}},
	{FamilyVP8, []string{"vp8"}},
	{FamilyVP9, []string{"vp09.", "vp9"}},
	{FamilyAV1, []string{"av01.", "av1"}},
	{FamilyAAC, []string{"mp4a.40", "mp4a.67", "aac"}},
	{FamilyOpus, []string{"opus"}},
	{FamilyMP3, []string{"mp4a.6b", "mp3"}},
	{FamilyFLAC, []string{"flac"}},
}

// Recognize returns the Family a codec string belongs to, or
// FamilyUnknown if no prefix matches. An unrecognized string is not an
// error; per the spec it simply yields supported=false from the probe.
func Recognize(codecString string) Family {
	s := strings.ToLower(strings.TrimSpace(codecString))
	for _, info := range registry {
		for _, p := range info.prefixes {
			if strings.HasPrefix(s, p) {
				return info.family
			}
		}
	}
	return FamilyUnknown
}

// AVCParams is the parsed form of an "avc1.PPCCLL" codec string.
type AVCParams struct {
	ProfileIDC  int
	Constraints int
	LevelIDC    int
}

// ParseAVC parses an AVC/H.264 codec string of the form
// "avc1.PPCCLL" (profile_idc, constraint flags, level_idc as hex bytes).
func ParseAVC(codecString string) (AVCParams, bool) {
	lower := strings.ToLower(strings.TrimSpace(codecString))
	s := lower
	switch {
	case strings.HasPrefix(lower, "avc1."):
		s = strings.TrimPrefix(lower, "avc1.")
	case strings.HasPrefix(lower, "avc3."):
		s = strings.TrimPrefix(lower, "avc3.")
	default:
		return AVCParams{}, false
	}
	if len(s) != 6 {
		return AVCParams{}, false
	}
	profile, err1 := strconv.ParseInt(s[0:2], 16, 32)
	constraints, err2 := strconv.ParseInt(s[2:4], 16, 32)
	level, err3 := strconv.ParseInt(s[4:6], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return AVCParams{}, false
	}
	return AVCParams{ProfileIDC: int(profile), Constraints: int(constraints), LevelIDC: int(level)}, true
}

// VP9Params is the parsed form of a "vp09.PP.LL.DD[...]" codec string.
type VP9Params struct {
	Profile  int
	Level    int
	BitDepth int
}

// ParseVP9 parses a VP9 codec string of the form
// "vp09.<profile>.<level>.<bitDepth>" (remaining dot-separated fields are
// optional and ignored).
func ParseVP9(codecString string) (VP9Params, bool) {
	s := strings.ToLower(strings.TrimSpace(codecString))
	if !strings.HasPrefix(s, "vp09.") {
		return VP9Params{}, false
	}
	parts := strings.Split(strings.TrimPrefix(s, "vp09."), ".")
	if len(parts) < 3 {
		return VP9Params{}, false
	}
	profile, err1 := strconv.Atoi(parts[0])
	level, err2 := strconv.Atoi(parts[1])
	bitDepth, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return VP9Params{}, false
	}
	return VP9Params{Profile: profile, Level: level, BitDepth: bitDepth}, true
}

// AV1Params is the parsed form of an "av01.P.LLT.DD[...]" codec string.
type AV1Params struct {
	Profile  int
	Level    int
	Tier     string
	BitDepth int
}

// ParseAV1 parses an AV1 codec string of the form
// "av01.<profile>.<level><tier>.<bitDepth>" where tier is "M" (main) or
// "H" (high).
func ParseAV1(codecString string) (AV1Params, bool) {
	s := strings.ToLower(strings.TrimSpace(codecString))
	if !strings.HasPrefix(s, "av01.") {
		return AV1Params{}, false
	}
	parts := strings.Split(strings.TrimPrefix(s, "av01."), ".")
	if len(parts) < 3 || len(parts[1]) < 1 {
		return AV1Params{}, false
	}
	profile, err1 := strconv.Atoi(parts[0])
	levelTier := parts[1]
	tier := levelTier[len(levelTier)-1:]
	levelDigits := levelTier[:len(levelTier)-1]
	level, err2 := strconv.Atoi(levelDigits)
	bitDepth, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return AV1Params{}, false
	}
	return AV1Params{Profile: profile, Level: level, Tier: strings.ToUpper(tier), BitDepth: bitDepth}, true
}

// AACParams is the parsed form of an "mp4a.40.OO" codec string.
type AACParams struct {
	ObjectType int
}

// ParseAAC parses an AAC codec string of the form "mp4a.40.<objectType>".
func ParseAAC(codecString string) (AACParams, bool) {
	s := strings.ToLower(strings.TrimSpace(codecString))
	if !strings.HasPrefix(s, "mp4a.40.") {
		return AACParams{}, false
	}
	ot, err := strconv.Atoi(strings.TrimPrefix(s, "mp4a.40."))
	if err != nil {
		return AACParams{}, false
	}
	return AACParams{ObjectType: ot}, true
}
