package codecstring

import (
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mpegts"
)

// mpegtsDemuxable tracks, per family, whether mediacommon's MPEG-TS demuxer
// actually supports the codec on this build. Detected at init time via
// type assertion against mediacommon's CodecUnsupported sentinel, the same
// approach the teacher's codec registry uses so this adapts automatically
// when upstream mediacommon adds codecs.
var mpegtsDemuxable = map[Family]bool{}

func init() {
	mpegtsDemuxable[FamilyAVC] = supportsCodec(&mpegts.CodecH264{})
	mpegtsDemuxable[FamilyHEVC] = supportsCodec(&mpegts.CodecH265{})
	mpegtsDemuxable[FamilyAAC] = supportsCodec(&mpegts.CodecMPEG4Audio{})
	mpegtsDemuxable[FamilyMP3] = supportsCodec(&mpegts.CodecMPEG1Audio{})
	mpegtsDemuxable[FamilyOpus] = supportsCodec(&mpegts.CodecOpus{})
	// VP8/VP9/AV1/FLAC have no MPEG-TS mapping in mediacommon; left absent
	// so MPEGTSDemuxable reports false for them without a registry entry.
}

// MPEGTSDemuxable reports whether mediacommon's MPEG-TS demuxer can
// currently demux the given family on this build.
func MPEGTSDemuxable(f Family) bool {
	return mpegtsDemuxable[f]
}

func supportsCodec(c mpegts.Codec) bool {
	_, unsupported := c.(*mpegts.CodecUnsupported)
	return !unsupported
}
