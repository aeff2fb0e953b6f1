package vault

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// frontMatter is the machine-readable block at the top of a highlight file.
type frontMatter struct {
	DocumentID string `yaml:"hypothesis-id"`
	URI        string `yaml:"uri,omitempty"`
}

// composeFile renders front matter followed by the body.
func composeFile(meta frontMatter, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fmDelim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close front matter encoder: %w", err)
	}
	buf.WriteString(fmDelim + "\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// splitFile separates front matter (between leading --- delimiters) from the
// body. Files without front matter, or with YAML that does not parse, are
// treated as body-only: the engine then sees no embedded identifier.
func splitFile(data []byte) (frontMatter, string) {
	var meta frontMatter

	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(fmDelim)) {
		return meta, string(data)
	}

	rest := trimmed[len(fmDelim):]
	idx := bytes.Index(rest, []byte("\n"+fmDelim))
	if idx < 0 {
		return meta, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(fmDelim):]
	body := strings.TrimLeft(string(afterDelim), "\n")

	if err := yaml.Unmarshal(yamlBlock, &meta); err != nil {
		return frontMatter{}, string(data)
	}
	return meta, body
}
