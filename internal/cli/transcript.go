package cli

import (
	"errors"

	"github.com/mgpai22/kalign/internal/logging"
	"github.com/mgpai22/kalign/internal/subtitle"
	"github.com/mgpai22/kalign/internal/textio"
)

// readTranscript loads transcript text from a plain text or subtitle file.
func readTranscript(path string, logger *logging.Logger) (string, error) {
	if subtitle.IsSubtitleFile(path) {
		return subtitle.Transcript(path)
	}

	text, enc, err := textio.ReadFile(path)
	var de *textio.DecodeError
	if errors.As(err, &de) {
		logger.Warnw("transcript encoding not recognized, invalid bytes replaced",
			"path", path,
			"tried", de.Tried,
		)
		return text, nil
	}
	if err != nil {
		return "", err
	}
	logger.Debugw("transcript decoded", "path", path, "encoding", enc)
	return text, nil
}
