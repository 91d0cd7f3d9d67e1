package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardmat/cardscan/internal/ocr"
)

// Field is one recognized text field of a card.
type Field struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// Record accumulates recognized fields for one scanning session. Merging is
// non-destructive: once a field holds text, later recognitions for the same
// field are ignored until the record is cleared.
type Record struct {
	SessionID uuid.UUID        `json:"session_id"`
	Fields    map[string]Field `json:"fields"`
}

// NewRecord returns an empty record with a fresh session identifier.
func NewRecord() *Record {
	return &Record{
		SessionID: uuid.New(),
		Fields:    make(map[string]Field),
	}
}

// Merge stores a recognition under name unless that field already holds
// text. It reports whether the field was stored.
func (r *Record) Merge(name string, rec ocr.Recognition, at time.Time) bool {
	if rec.Text == "" {
		return false
	}
	if existing, ok := r.Fields[name]; ok && existing.Text != "" {
		return false
	}
	r.Fields[name] = Field{Text: rec.Text, Confidence: rec.Confidence, ScannedAt: at}
	return true
}

// Clear discards all fields and rotates the session identifier, so a rescan
// of the same physical card produces a distinct record.
func (r *Record) Clear() {
	r.SessionID = uuid.New()
	r.Fields = make(map[string]Field)
}

// Snapshot returns a copy that later merges will not mutate.
func (r *Record) Snapshot() Record {
	out := Record{SessionID: r.SessionID, Fields: make(map[string]Field, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// Complete reports whether every named band has recognized text.
func (r *Record) Complete(bands []string) bool {
	for _, name := range bands {
		if f, ok := r.Fields[name]; !ok || f.Text == "" {
			return false
		}
	}
	return true
}
