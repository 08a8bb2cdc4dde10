package transcription

import (
	stderrors "errors"
	"strings"
)

// Word is a word-level timing inside a segment.
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// Segment is one normalized transcript segment.
type Segment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Result is the normalized transcription returned to callers.
type Result struct {
	Text             string    `json:"text"`
	DetectedLanguage string    `json:"detected_language"`
	Segments         []Segment `json:"segments"`
}

var errNoOutput = stderrors.New("engine returned no output")

// Normalize reshapes engine output into a Result. It is pure: the same raw
// output always yields an equal Result. Segments keep emission order and
// ids; words are never nil.
func Normalize(raw *RawOutput) (*Result, error) {
	if raw == nil {
		return nil, errNoOutput
	}

	segments := make([]Segment, len(raw.Segments))
	for i, s := range raw.Segments {
		words := make([]Word, len(s.Words))
		for j, w := range s.Words {
			words[j] = Word(w)
		}
		segments[i] = Segment{
			ID:    s.ID,
			Text:  strings.TrimSpace(s.Text),
			Start: s.Start,
			End:   s.End,
			Words: words,
		}
	}

	lang := strings.TrimSpace(raw.Language)
	if lang == "" {
		lang = UnknownLanguage
	}
	return &Result{
		Text:             raw.Text,
		DetectedLanguage: lang,
		Segments:         segments,
	}, nil
}
