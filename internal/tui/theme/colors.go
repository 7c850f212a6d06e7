package theme

import "github.com/HaiFongPan/minas-cli/internal/media"

// Terminal-compatible color constants using ANSI standard colors
const (
	ColorWhite        = "#FFFFFF" // primary text
	ColorBrightBlack  = "#808080" // secondary text
	ColorBrightBlue   = "#5C7CFA" // primary accent
	ColorBrightCyan   = "#66D9E8" // secondary accent
	ColorBrightGreen  = "#51CF66" // success/links
	ColorBrightYellow = "#FFD43B" // warning
	ColorBrightRed    = "#FF6B6B" // error
	ColorDim          = "#666666"
	ColorDialogBg     = "#1a1a1a"

	ColorDirectory = "#FFA94D"
	ColorFileImage = "#74C0FC"
	ColorFileVideo = "#FF8787"
	ColorFileAudio = "#DA77F2"
	ColorFileOther = ColorWhite
)

// EntryColor returns the listing color for an entry.
func EntryColor(kind media.Kind, isDir bool) string {
	if isDir {
		return ColorDirectory
	}
	switch kind {
	case media.Image:
		return ColorFileImage
	case media.Video:
		return ColorFileVideo
	case media.Audio:
		return ColorFileAudio
	default:
		return ColorFileOther
	}
}
