package whispercpp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kbukum/whisperdesk/transcription"
)

// cliOutput is the subset of whisper-cli's full JSON output (-ojf) we read.
type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []cliSegment `json:"transcription"`
}

type cliSegment struct {
	Offsets cliOffsets `json:"offsets"`
	Text    string     `json:"text"`
	Tokens  []cliToken `json:"tokens"`
}

type cliToken struct {
	Text    string     `json:"text"`
	Offsets cliOffsets `json:"offsets"`
	P       float64    `json:"p"`
}

// cliOffsets are milliseconds from the start of the audio.
type cliOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

func parseOutput(data []byte, words bool) (*transcription.RawOutput, error) {
	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper-cli output: %w", err)
	}

	raw := &transcription.RawOutput{
		Language: out.Result.Language,
		Segments: make([]transcription.RawSegment, 0, len(out.Transcription)),
	}
	var text strings.Builder
	for i, s := range out.Transcription {
		text.WriteString(s.Text)
		seg := transcription.RawSegment{
			ID:    i,
			Text:  s.Text,
			Start: seconds(s.Offsets.From),
			End:   seconds(s.Offsets.To),
		}
		if words {
			seg.Words = groupWords(s.Tokens)
		}
		raw.Segments = append(raw.Segments, seg)
	}
	raw.Text = text.String()
	return raw, nil
}

func seconds(ms int64) float64 { return float64(ms) / 1000 }

// isSpecial matches control tokens such as [_BEG_], [_TT_150] and <|en|>.
func isSpecial(text string) bool {
	return strings.HasPrefix(text, "[_") || strings.HasPrefix(text, "<|")
}

// groupWords merges sub-word tokens into words. A token that starts with a
// space opens a new word; word probability is the mean over its tokens.
func groupWords(tokens []cliToken) []transcription.RawWord {
	var (
		words []transcription.RawWord
		cur   *transcription.RawWord
		count int
	)
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Word) != "" {
			cur.Probability /= float64(count)
			words = append(words, *cur)
		}
		cur, count = nil, 0
	}
	for _, tok := range tokens {
		if tok.Text == "" || isSpecial(tok.Text) {
			continue
		}
		if cur == nil || strings.HasPrefix(tok.Text, " ") {
			flush()
			cur = &transcription.RawWord{Start: seconds(tok.Offsets.From)}
		}
		cur.Word += tok.Text
		cur.End = seconds(tok.Offsets.To)
		cur.Probability += tok.P
		count++
	}
	flush()
	return words
}
