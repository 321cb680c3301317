package vault

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// splitFrontmatter separates a note's YAML frontmatter from its body.
// Notes without a leading "---" block have nil frontmatter and the raw
// content as body. A malformed YAML block is treated as body text rather
// than failing the read, matching how vault editors behave.
func splitFrontmatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, frontmatterDelim+"\n") {
		return nil, content
	}

	rest := strings.TrimPrefix(content, frontmatterDelim+"\n")

	// The closing delimiter must be a whole "---" line. Lines that merely
	// start with "---", like a "----" rule, belong to the block or body.
	var block, body string
	if idx := strings.Index(rest, "\n"+frontmatterDelim+"\n"); idx >= 0 {
		block = rest[:idx]
		body = rest[idx+len("\n"+frontmatterDelim+"\n"):]
	} else if strings.HasSuffix(rest, "\n"+frontmatterDelim) {
		block = rest[:len(rest)-len("\n"+frontmatterDelim)]
	} else {
		return nil, content
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, content
	}
	return fm, strings.TrimSpace(body)
}

// renderNote assembles frontmatter and body into note file content.
func renderNote(fm map[string]any, body string) (string, error) {
	var sb strings.Builder
	if len(fm) > 0 {
		data, err := yaml.Marshal(fm)
		if err != nil {
			return "", fmt.Errorf("marshal frontmatter: %w", err)
		}
		sb.WriteString(frontmatterDelim + "\n")
		sb.Write(data)
		sb.WriteString(frontmatterDelim + "\n\n")
	}
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
