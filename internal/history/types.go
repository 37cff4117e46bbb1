// Package history persists analysis results with mandatory session
// isolation. Records are append-only and scoped to one session id and one
// tool domain; cross-session reads are impossible through this API.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sagehill-systems/repohealth/internal/engine"
)

// Domain identifies this tool in shared stores. Every record carries it.
const Domain = "repohealth"

// ErrIsolation is returned when a request is constructed without both
// isolation identifiers. It fires before any I/O happens.
var ErrIsolation = errors.New("history: session id and domain are required")

// Record is one persisted analysis result. Records are never mutated.
type Record struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Project       string    `json:"project"`
	HealthScore   int       `json:"health_score"`
	IssuesFound   int       `json:"issues_found"`
	TotalPatterns int       `json:"total_patterns"`

	// Detections is a JSON summary of the positive detections: rule id,
	// severity, and priority. Enough for trend display without holding
	// full evidence.
	Detections string `json:"detections"`

	SessionID string `json:"session_id"`
	DomainTag string `json:"domain"`
}

// detectionSummary is the per-detection slice stored in Record.Detections.
type detectionSummary struct {
	RuleID   string  `json:"rule_id"`
	Severity string  `json:"severity"`
	Priority float64 `json:"priority"`
}

// NewRecord builds the in-memory record for one finished analysis.
// Persistence identity (ID, SessionID, DomainTag) is filled in by the sink.
func NewRecord(rep *engine.Report) Record {
	summaries := make([]detectionSummary, 0, len(rep.Detections))
	for _, d := range rep.Detections {
		summaries = append(summaries, detectionSummary{
			RuleID:   d.RuleID,
			Severity: string(d.Severity),
			Priority: d.Priority,
		})
	}
	detections, _ := json.Marshal(summaries)

	return Record{
		CreatedAt:     time.Now().UTC(),
		Project:       rep.Project,
		HealthScore:   rep.HealthScore,
		IssuesFound:   rep.IssuesFound,
		TotalPatterns: rep.TotalPatterns,
		Detections:    string(detections),
	}
}

// PutRequest carries one record plus its isolation identity. The fields
// are unexported: the only way to obtain a usable value is NewPutRequest,
// which makes an unisolated write a construction-time error.
type PutRequest struct {
	sessionID string
	domain    string
	record    Record
}

// NewPutRequest validates the isolation identity up front.
func NewPutRequest(sessionID, domain string, rec Record) (PutRequest, error) {
	if sessionID == "" || domain == "" {
		return PutRequest{}, ErrIsolation
	}
	return PutRequest{sessionID: sessionID, domain: domain, record: rec}, nil
}

// Query scopes a history read to one session, domain, and project.
type Query struct {
	sessionID string
	domain    string
	project   string
	limit     int
}

// NewQuery validates the isolation identity up front. A limit of 0 means
// the sink's default.
func NewQuery(sessionID, domain, project string, limit int) (Query, error) {
	if sessionID == "" || domain == "" {
		return Query{}, ErrIsolation
	}
	return Query{sessionID: sessionID, domain: domain, project: project, limit: limit}, nil
}

// Sink is the narrow contract the engine side needs from a history store.
type Sink interface {
	Put(ctx context.Context, req PutRequest) error
	History(ctx context.Context, q Query) ([]Record, error)
}
