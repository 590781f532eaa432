package workspace

import (
	"sync"
	"time"

	"transparency-backend/internal/chat"
	"transparency-backend/internal/documents"
	"transparency-backend/internal/llm"
	"transparency-backend/internal/rubric"
	"transparency-backend/internal/toasts"
)

// Status is the processing state shown to the user.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusOCR       Status = "ocr"
	StatusAnalyzing Status = "analyzing"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Busy reports whether a load or analysis is in flight.
func (s Status) Busy() bool {
	return s == StatusLoading || s == StatusOCR || s == StatusAnalyzing
}

// Tab is the active result panel.
type Tab string

const (
	TabResults Tab = "results"
	TabChat    Tab = "chat"
)

const initialStatusText = "Waiting for document..."

// Workspace is one session's application state.
type Workspace struct {
	mu sync.Mutex

	sessionID    string
	status       Status
	statusText   string
	progress     int
	model        string
	activeTab    Tab
	settingsOpen bool
	document     *documents.Document
	result       *rubric.Result
	resultModel  string
	resultAt     time.Time

	conversation *chat.Conversation
	toasts       *toasts.Set
}

func newWorkspace(sessionID, model string, settingsOpen bool, now func() time.Time) *Workspace {
	return &Workspace{
		sessionID:    sessionID,
		status:       StatusIdle,
		statusText:   initialStatusText,
		model:        model,
		activeTab:    TabResults,
		settingsOpen: settingsOpen,
		conversation: chat.NewConversation(),
		toasts:       toasts.NewSetWithClock(now),
	}
}

// setStatus must be called with mu held.
func (w *Workspace) setStatus(status Status, text string, progress int) {
	w.status = status
	w.statusText = text
	if progress >= 0 {
		w.progress = progress
	}
}

func (w *Workspace) toast(severity toasts.Severity, text string) {
	w.toasts.Push(severity, text)
}

// Snapshot is the read model returned by GET /state.
type Snapshot struct {
	SessionID    string                      `json:"sessionId"`
	Status       Status                      `json:"status"`
	StatusText   string                      `json:"statusText"`
	Progress     int                         `json:"progress"`
	Model        string                      `json:"model"`
	Provider     llm.Tag                     `json:"provider"`
	ActiveTab    Tab                         `json:"activeTab"`
	SettingsOpen bool                        `json:"settingsOpen"`
	Document     *documents.DocumentResponse `json:"document"`
	Result       *rubric.Result              `json:"result"`
	ResultModel  string                      `json:"resultModel,omitempty"`
	Messages     []chat.Message              `json:"messages"`
	ChatPending  bool                        `json:"chatPending"`
	Toasts       []toasts.Toast              `json:"toasts"`
}

func (w *Workspace) snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		SessionID:    w.sessionID,
		Status:       w.status,
		StatusText:   w.statusText,
		Progress:     w.progress,
		Model:        w.model,
		Provider:     llm.ProviderForModel(w.model),
		ActiveTab:    w.activeTab,
		SettingsOpen: w.settingsOpen,
		Document:     documents.ToResponse(w.document),
		Result:       w.result,
		ResultModel:  w.resultModel,
		Messages:     w.conversation.Messages(),
		ChatPending:  w.conversation.Pending(),
		Toasts:       w.toasts.Active(),
	}
}
