package processor

import (
	"path"
	"strings"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

var mediaTypeByExtension = map[string]enums.MediaType{
	".jpg":  enums.MediaTypeImage,
	".jpeg": enums.MediaTypeImage,
	".png":  enums.MediaTypeImage,
	".gif":  enums.MediaTypeImage,
	".webp": enums.MediaTypeImage,

	".mp4":  enums.MediaTypeVideo,
	".mov":  enums.MediaTypeVideo,
	".avi":  enums.MediaTypeVideo,
	".webm": enums.MediaTypeVideo,

	".wav":  enums.MediaTypeAudio,
	".mp3":  enums.MediaTypeAudio,
	".m4a":  enums.MediaTypeAudio,
	".flac": enums.MediaTypeAudio,
	".ogg":  enums.MediaTypeAudio,
}

// Classify maps an object name to a media type by extension. Total over
// strings: anything unrecognized is unsupported.
func Classify(objectName string) enums.MediaType {
	ext := strings.ToLower(path.Ext(objectName))
	if mediaType, ok := mediaTypeByExtension[ext]; ok {
		return mediaType
	}
	return enums.MediaTypeUnsupported
}
