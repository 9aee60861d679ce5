package navigator

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Snippet is the source text of one chain function.
type Snippet struct {
	Function     string `json:"function_name"`
	FilePath     string `json:"file_path"`
	StartLine    int    `json:"start_line"`
	EndLine      int    `json:"end_line"`
	CodeContents string `json:"code_contents"`
}

// ErrNothingExtracted is returned when no function of a result could be read.
var ErrNothingExtracted = errors.New("no function source could be extracted")

// Extract reads the source lines of every function of a successful result.
// Functions whose file is unreadable or whose span lies outside the file
// are logged and skipped.
func Extract(r *Result, log zerolog.Logger) ([]Snippet, error) {
	if r.Error != "" {
		return nil, errors.New(r.Error)
	}
	if len(r.Functions) == 0 {
		return nil, fmt.Errorf("result for %q has no functions", r.StartPoint)
	}

	files := make(map[string][]string)
	var out []Snippet
	for _, f := range r.Functions {
		name := f.Name
		if f.ClassName != "" {
			name = f.ClassName + "." + f.Name
		}
		if f.FilePath == "" || f.StartLine <= 0 || f.EndLine <= 0 {
			log.Warn().Str("function", name).Msg("missing location; skipped")
			continue
		}

		lines, ok := files[f.FilePath]
		if !ok {
			var err error
			lines, err = readLines(f.FilePath)
			if err != nil {
				log.Warn().Err(err).Str("function", name).Msg("cannot read source; skipped")
			}
			files[f.FilePath] = lines
		}
		if f.StartLine > f.EndLine || f.EndLine > len(lines) {
			log.Warn().Str("function", name).Int("start", f.StartLine).Int("end", f.EndLine).
				Int("file_lines", len(lines)).Msg("span outside file; skipped")
			continue
		}

		out = append(out, Snippet{
			Function:     name,
			FilePath:     f.FilePath,
			StartLine:    f.StartLine,
			EndLine:      f.EndLine,
			CodeContents: strings.Join(lines[f.StartLine-1:f.EndLine], "\n") + "\n",
		})
	}
	if len(out) == 0 {
		return nil, ErrNothingExtracted
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}
