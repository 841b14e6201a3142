// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package recover

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventSessionStart  = "SESSION_START"
	EventFileDetected  = "FILE_DETECTED"
	EventFileRecovered = "FILE_RECOVERED"
	EventHashCalc      = "HASH_CALCULATED"
	EventHashFailed    = "HASH_FAILED"
	EventSessionEnd    = "SESSION_END"
	EventCancelled     = "CANCELLATION_REQUESTED"

	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityError = "ERROR"
)

// AuditRecord is one append-only JSON-line entry in the forensic audit log.
type AuditRecord struct {
	ID        uint64            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	SessionID uuid.UUID         `json:"session_id"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Severity  string            `json:"severity"`
}

// AuditLog writes newline-delimited JSON audit records with strictly
// monotonic ids, serialized even if the caller writes from multiple
// goroutines during parallel writeback.
type AuditLog struct {
	mu        sync.Mutex
	w         io.Writer
	nextID    uint64
	sessionID uuid.UUID
}

// NewAuditLog returns a log writing to w, numbering records from 1.
func NewAuditLog(w io.Writer, sessionID uuid.UUID) *AuditLog {
	return &AuditLog{w: w, nextID: 1, sessionID: sessionID}
}

// Append writes one record and returns its assigned id.
func (a *AuditLog) Append(eventType, message string, metadata map[string]string, severity string) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := AuditRecord{
		ID:        a.nextID,
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SessionID: a.sessionID,
		Message:   message,
		Metadata:  metadata,
		Severity:  severity,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	line = append(line, '\n')
	if _, err := a.w.Write(line); err != nil {
		return 0, err
	}
	a.nextID++
	return rec.ID, nil
}
