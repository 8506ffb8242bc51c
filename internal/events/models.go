package events

type EventType string

const (
	EventStageUpdate     EventType = "stage_update"
	EventPromptSnippet   EventType = "prompt_snippet"
	EventResponseSnippet EventType = "response_snippet"
	EventComplete        EventType = "complete"
	EventError           EventType = "error"
)

// ProgressEvent is one frame on the progress stream. Constructors leave the
// timestamp zero; the emitter stamps it when the frame actually goes out.
type ProgressEvent struct {
	Type             EventType   `json:"type"`
	Stage            string      `json:"stage,omitempty"`
	StageDescription string      `json:"stageDescription,omitempty"`
	Data             interface{} `json:"data,omitempty"`
	Error            string      `json:"error,omitempty"`
	Timestamp        int64       `json:"timestamp"`
}

type snippetData struct {
	Snippet string `json:"snippet"`
}

func StageUpdate(stage, description string) ProgressEvent {
	return ProgressEvent{Type: EventStageUpdate, Stage: stage, StageDescription: description}
}

func PromptSnippet(stage, snippet string) ProgressEvent {
	return ProgressEvent{Type: EventPromptSnippet, Stage: stage, Data: snippetData{Snippet: snippet}}
}

func ResponseSnippet(stage, snippet string) ProgressEvent {
	return ProgressEvent{Type: EventResponseSnippet, Stage: stage, Data: snippetData{Snippet: snippet}}
}

func Complete(data interface{}) ProgressEvent {
	return ProgressEvent{Type: EventComplete, Data: data}
}

// Error builds the terminal error frame. Errors without a message fall back
// to a generic one so the client never renders an empty string.
func Error(err error) ProgressEvent {
	msg := "something went wrong, please try again"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return ProgressEvent{Type: EventError, Error: msg}
}
