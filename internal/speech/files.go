package speech

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var (
	notSlug    = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// FileName turns a word or phrase into the base name its audio is stored
// under: "Good Morning!" becomes "good-morning".
func FileName(text string) string {
	s := notSlug.ReplaceAllString(strings.ToLower(text), "")
	return whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
}

// ToMP3 transcodes WAV bytes with the ffmpeg binary on PATH.
func ToMP3(wav []byte) ([]byte, error) {
	var out, stderr bytes.Buffer
	err := ffmpeg.Input("pipe:", ffmpeg.KwArgs{"f": "wav"}).
		Output("pipe:", ffmpeg.KwArgs{"f": "mp3", "b:a": "64k"}).
		WithInput(bytes.NewReader(wav)).
		WithOutput(&out, &stderr).
		Run()
	if err != nil {
		return nil, errors.Wrapf(err, "ffmpeg: %s", strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
