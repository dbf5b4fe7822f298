// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/freecom-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON. The conversation is written as
// the backend returned it, so exports can be re-read with model types.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// jsonDocument is the exported file layout.
type jsonDocument struct {
	Partner      string             `json:"partner"`
	CustomerName string             `json:"customerName,omitempty"`
	ExportedAt   time.Time          `json:"exportedAt"`
	Conversation model.Conversation `json:"conversation"`
}

// Export converts a transcript to JSON.
func (e *JSONExporter) Export(t Transcript) ([]byte, error) {
	if len(t.Conversation.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}
	return json.MarshalIndent(jsonDocument{
		Partner:      t.Partner,
		CustomerName: t.CustomerName,
		ExportedAt:   e.options.now().UTC(),
		Conversation: t.Conversation,
	}, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType returns the JSON MIME type.
func (e *JSONExporter) MimeType() string { return "application/json" }
