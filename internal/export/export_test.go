// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/freecom-tui/internal/model"
)

var fixedNow = time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

func testOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func sampleTranscript() Transcript {
	agent := &model.Agent{ID: "a1", DisplayName: "Sam"}
	return Transcript{
		Conversation: model.Conversation{
			ID:                "conv-1",
			UpdatedAt:         fixedNow.Add(-time.Hour),
			SlackChannelIndex: 1,
			Agent:             agent,
			Messages: []model.Message{
				{ID: "m1", Text: "Where is my *order*?", CreatedAt: fixedNow.Add(-2 * time.Hour)},
				{ID: "m2", Text: "It ships tomorrow.", CreatedAt: fixedNow.Add(-time.Hour), Agent: &model.Agent{ID: "a1"}},
			},
		},
		Partner:      "Sam",
		CustomerName: "Brave Otter",
		CompanyName:  "Acme",
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		err    bool
	}{
		{"markdown", ".md", false},
		{"MD", ".md", false},
		{"", ".md", false},
		{"json", ".json", false},
		{"html", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := ForFormat(tt.format, nil)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, exp.FileExtension())
			assert.NotEmpty(t, exp.MimeType())
		})
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions(t.TempDir())).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)

	require.True(t, strings.HasPrefix(md, "---\n"))
	parts := strings.SplitN(md[4:], "---\n", 2)
	require.Len(t, parts, 2)

	var fm frontMatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[0]), &fm))
	assert.Equal(t, "conv-1", fm.Conversation)
	assert.Equal(t, "Sam", fm.Partner)
	assert.Equal(t, 2, fm.Messages)
	assert.Equal(t, fixedNow.Format(time.RFC3339), fm.Exported)

	assert.Contains(t, md, "# Conversation with Sam")
	assert.Contains(t, md, "### Brave Otter (you) <sub>2025-03-04 08:30</sub>")
	assert.Contains(t, md, "### Sam <sub>2025-03-04 09:30</sub>")
	assert.Contains(t, md, "Where is my *order*?")
}

func TestMarkdownWithoutMetadata(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	tr := sampleTranscript()
	tr.CustomerName = ""
	tr.Conversation.Agent = nil
	tr.Conversation.Messages[1].Agent = &model.Agent{ID: "a9"}

	out, err := NewMarkdownExporter(opts).Export(tr)
	require.NoError(t, err)
	md := string(out)
	assert.False(t, strings.HasPrefix(md, "---"))
	assert.Contains(t, md, "### You\n")
	assert.Contains(t, md, "### Acme\n", "unnamed agents fall back to the company")
}

func TestEmptyTranscript(t *testing.T) {
	tr := sampleTranscript()
	tr.Conversation.Messages = nil

	_, err := NewMarkdownExporter(nil).Export(tr)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
	_, err = NewJSONExporter(nil).Export(tr)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter(testOptions(t.TempDir())).Export(sampleTranscript())
	require.NoError(t, err)

	var doc jsonDocument
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "Sam", doc.Partner)
	assert.Equal(t, "conv-1", doc.Conversation.ID)
	require.Len(t, doc.Conversation.Messages, 2)
	assert.True(t, doc.Conversation.Messages[1].FromAgent())
	assert.True(t, doc.ExportedAt.Equal(fixedNow))
}

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	opts := testOptions(dir)

	path, err := ExportToFile(sampleTranscript(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "freecom_Sam_conv-1_20250304_103000.md"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = ExportToFile(Transcript{}, NewJSONExporter(opts), opts)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sam_conv-1", "Sam_conv-1"},
		{"a/b\\c:d", "a-b-c-d"},
		{"two words", "two_words"},
		{"ctl\x01x", "ctl-x"},
		{"", "conversation"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
	assert.LessOrEqual(t, len([]rune(sanitizeFilename(strings.Repeat("x", 80)))), 50)
}
