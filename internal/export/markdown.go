// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// frontMatter is the metadata header of a Markdown export.
type frontMatter struct {
	Title        string `yaml:"title"`
	Conversation string `yaml:"conversation"`
	Partner      string `yaml:"partner"`
	Customer     string `yaml:"customer,omitempty"`
	Channel      int    `yaml:"slack_channel_index"`
	Updated      string `yaml:"updated"`
	Messages     int    `yaml:"messages"`
	Exported     string `yaml:"exported"`
	Generator    string `yaml:"generator"`
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t Transcript) ([]byte, error) {
	conv := t.Conversation
	if len(conv.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	title := "Conversation with " + t.Partner
	var sb strings.Builder

	if e.options.IncludeMetadata {
		header, err := yaml.Marshal(frontMatter{
			Title:        title,
			Conversation: conv.ID,
			Partner:      t.Partner,
			Customer:     t.CustomerName,
			Channel:      conv.SlackChannelIndex,
			Updated:      conv.UpdatedAt.Format(time.RFC3339),
			Messages:     len(conv.Messages),
			Exported:     e.options.now().Format(time.RFC3339),
			Generator:    "freecom",
		})
		if err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(header)
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))

	for i, m := range conv.Messages {
		name := escapeMarkdown(senderName(t, m))
		if e.options.IncludeTimestamps && !m.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", name, m.CreatedAt.Format("2006-01-02 15:04"))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", name)
		}
		sb.WriteString(strings.TrimSpace(m.Text))
		sb.WriteString("\n\n")
		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns the Markdown MIME type.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// escapeMarkdown escapes characters that would change heading rendering.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`, "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
