package pdf

import (
	"strings"

	"rsc.io/pdf"
)

// ExtractText concatenates the text runs of every page.
func ExtractText(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, t := range p.Content().Text {
			sb.WriteString(t.S)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Sanitize strips NUL bytes that pdf text runs occasionally carry; they make
// Postgres reject the row.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// ChunkByWords splits text into word windows of size words with overlap words
// shared between neighbours.
func ChunkByWords(text string, size, overlap int) []string {
	if size <= 0 || overlap >= size {
		return nil
	}
	words := strings.Fields(text)
	var parts []string
	for i := 0; i < len(words); i += size - overlap {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		parts = append(parts, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return parts
}
