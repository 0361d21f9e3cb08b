package processor

import (
	"testing"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		objectName string
		want       enums.MediaType
	}{
		{"photo.jpg", enums.MediaTypeImage},
		{"products/42/photo.PNG", enums.MediaTypeImage},
		{"clip.mp4", enums.MediaTypeVideo},
		{"uploads/demo.mov", enums.MediaTypeVideo},
		{"clip.wav", enums.MediaTypeAudio},
		{"voice.mp3", enums.MediaTypeAudio},
		{"notes.txt", enums.MediaTypeUnsupported},
		{"archive.tar.gz", enums.MediaTypeUnsupported},
		{"no-extension", enums.MediaTypeUnsupported},
		{"", enums.MediaTypeUnsupported},
		{".jpg", enums.MediaTypeImage},
	}

	for _, tt := range tests {
		if got := Classify(tt.objectName); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.objectName, got, tt.want)
		}
	}
}

func TestClassify_AlwaysReturnsValidType(t *testing.T) {
	inputs := []string{"a.xyz", "weird..", "...", "a/b/c", "\x00", "file.JPG.bak"}
	for _, in := range inputs {
		if got := Classify(in); !got.IsValid() {
			t.Errorf("Classify(%q) returned invalid media type %q", in, got)
		}
	}
}
