package engine

import "time"

// Kind discriminates the frames that cross the wire to the client.
type Kind string

const (
	KindAccepted Kind = "accepted"
	KindStart    Kind = "start"
	KindPhase    Kind = "phase"
	KindDelta    Kind = "delta"
	KindError    Kind = "error"
	KindDone     Kind = "done"
)

// Phase lifecycle statuses.
const (
	StatusBegin = "begin"
	StatusEnd   = "end"
)

// Event is the only artifact that leaves the process. Kind selects the SSE
// event name; the remaining fields are the data frame.
type Event struct {
	Kind      Kind   `json:"-"`
	RequestID string `json:"request_id,omitempty"`
	Label     string `json:"label,omitempty"`
	Status    string `json:"status,omitempty"`
	Hits      *int   `json:"hits,omitempty"`
	Text      string `json:"text,omitempty"`
	Message   string `json:"message,omitempty"`
	Personas  int    `json:"personas,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	OK        *bool  `json:"ok,omitempty"`
	TS        string `json:"ts"`
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func Accepted(requestID string) Event {
	return Event{Kind: KindAccepted, RequestID: requestID, TS: now()}
}

// StartDebate carries the resolved strategy as request metadata.
func StartDebate(strategy string) Event {
	return Event{Kind: KindStart, Strategy: strategy, TS: now()}
}

// StartBoardroom carries the resolved persona count.
func StartBoardroom(personas int) Event {
	return Event{Kind: KindStart, Personas: personas, TS: now()}
}

func PhaseBegin(label string) Event {
	return Event{Kind: KindPhase, Label: label, Status: StatusBegin, TS: now()}
}

func PhaseEnd(label string) Event {
	return Event{Kind: KindPhase, Label: label, Status: StatusEnd, TS: now()}
}

// PhaseEndHits is a phase end that also reports how many snippets the
// retrieval produced.
func PhaseEndHits(label string, hits int) Event {
	return Event{Kind: KindPhase, Label: label, Status: StatusEnd, Hits: &hits, TS: now()}
}

func Delta(label, text string) Event {
	return Event{Kind: KindDelta, Label: label, Text: text, TS: now()}
}

func Error(message string) Event {
	return Event{Kind: KindError, Message: message, TS: now()}
}

// PersonaError is a non-terminal error attributed to one persona.
func PersonaError(label, message string) Event {
	return Event{Kind: KindError, Label: label, Message: message, TS: now()}
}

func Done() Event {
	ok := true
	return Event{Kind: KindDone, OK: &ok, TS: now()}
}
