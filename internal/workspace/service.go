package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"transparency-backend/internal/chat"
	"transparency-backend/internal/credentials"
	"transparency-backend/internal/documents"
	"transparency-backend/internal/exports"
	"transparency-backend/internal/llm"
	"transparency-backend/internal/ocr"
	"transparency-backend/internal/rubric"
	"transparency-backend/internal/shared/metrics"
	"transparency-backend/internal/shared/telemetry"
	"transparency-backend/internal/toasts"
)

const defaultAnalysisTimeout = 10 * time.Minute

// Deps are the collaborators of Service.
type Deps struct {
	Credentials     *credentials.Store
	Documents       *documents.Service
	OCR             *ocr.Fallback
	Providers       llm.Registry
	DefaultModel    string
	AnalysisTimeout time.Duration

	// Go runs background analyses; tests replace it to run synchronously.
	Go  func(func())
	Now func() time.Time
}

// Service owns every session's Workspace and drives its state machine.
type Service struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Workspace
	jobs     sync.WaitGroup
}

func NewService(deps Deps) *Service {
	if deps.Credentials == nil {
		deps.Credentials = credentials.NewStore(nil)
	}
	if strings.TrimSpace(deps.DefaultModel) == "" {
		deps.DefaultModel = llm.DefaultModel(llm.TagGemini)
	}
	if deps.AnalysisTimeout <= 0 {
		deps.AnalysisTimeout = defaultAnalysisTimeout
	}
	if deps.Go == nil {
		deps.Go = func(fn func()) { go fn() }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps, sessions: make(map[string]*Workspace)}
}

// Workspace returns the session's workspace, creating it on first use. New
// workspaces open settings when no provider key is saved.
func (s *Service) Workspace(sessionID string) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.sessions[sessionID]
	if !ok {
		w = newWorkspace(sessionID, s.deps.DefaultModel, s.deps.Credentials.Empty(), s.deps.Now)
		s.sessions[sessionID] = w
	}
	return w
}

// State returns the session's snapshot.
func (s *Service) State(sessionID string) Snapshot {
	return s.Workspace(sessionID).snapshot()
}

// Toasts returns the session's live toasts.
func (s *Service) Toasts(sessionID string) []toasts.Toast {
	return s.Workspace(sessionID).toasts.Active()
}

// Wait blocks until background analyses finish.
func (s *Service) Wait() {
	s.jobs.Wait()
}

// Upload replaces the session's document. A non-PDF upload only raises a
// toast; the rest of the state is left untouched.
func (s *Service) Upload(ctx context.Context, sessionID, fileName string, r io.Reader) (*documents.Document, error) {
	w := s.Workspace(sessionID)

	data, err := s.deps.Documents.Read(r)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrUnsupportedType):
			w.toast(toasts.Error, "Please upload a PDF file")
		case errors.Is(err, documents.ErrTooLarge):
			w.toast(toasts.Error, "File is too large")
		}
		return nil, err
	}

	w.mu.Lock()
	if w.status.Busy() {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	previous := w.document
	w.document = nil
	w.result = nil
	w.resultModel = ""
	w.setStatus(StatusLoading, "Loading document...", 0)
	w.mu.Unlock()

	s.deps.Documents.Discard(ctx, previous)

	doc, err := s.deps.Documents.Load(ctx, sessionID, fileName, data)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.setStatus(StatusIdle, "Failed to load document", 0)
		w.toast(toasts.Error, "Error: "+err.Error())
		return nil, err
	}
	w.document = doc
	w.setStatus(StatusIdle, `Document ready. Click "Analyze" to start.`, 0)
	w.toast(toasts.Success, "PDF loaded successfully")
	return doc, nil
}

// Analyze validates preconditions and starts the OCR and coding pipeline in
// the background. No provider call is made when a precondition fails.
func (s *Service) Analyze(ctx context.Context, sessionID string) error {
	w := s.Workspace(sessionID)

	w.mu.Lock()
	if w.status.Busy() {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.document == nil {
		w.toast(toasts.Error, "No document loaded")
		w.mu.Unlock()
		return ErrNoDocument
	}
	model := w.model
	tag := llm.ProviderForModel(model)
	key := s.deps.Credentials.Get(tag)
	if key == "" {
		w.settingsOpen = true
		w.toast(toasts.Warning, fmt.Sprintf("Please enter your %s API Key first", tag.Label()))
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMissingCredential, tag.KeyName())
	}
	provider, err := s.deps.Providers.Provider(tag, key)
	if err != nil {
		w.toast(toasts.Error, "Error: "+err.Error())
		w.mu.Unlock()
		return err
	}
	doc := w.document
	w.setStatus(StatusOCR, "Checking for OCR needs...", 10)
	w.mu.Unlock()

	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.started", map[string]any{
		"session_id":  sessionID,
		"document_id": doc.ID,
		"model":       model,
		"provider":    string(tag),
	})

	s.jobs.Add(1)
	s.deps.Go(func() {
		defer s.jobs.Done()
		s.runAnalysis(w, doc, model, provider)
	})
	return nil
}

func (s *Service) runAnalysis(w *Workspace, doc *documents.Document, model string, provider llm.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deps.AnalysisTimeout)
	defer cancel()
	start := time.Now()

	var ocrText string
	if pages := doc.PDF(); pages != nil {
		ocrText, _ = s.deps.OCR.Run(ctx, pages, func(progress int, text string) {
			w.mu.Lock()
			w.setStatus(StatusOCR, text, progress)
			w.mu.Unlock()
		})
	}

	w.mu.Lock()
	doc.OCRText = ocrText
	text := doc.CombinedText()
	w.setStatus(StatusAnalyzing, fmt.Sprintf("Sending to %s...", model), 75)
	w.mu.Unlock()

	result, err := llm.Analyze(ctx, provider, model, text)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.failed", map[string]any{
			"session_id":  w.sessionID,
			"document_id": doc.ID,
			"model":       model,
			"error":       err,
		})
		w.setStatus(StatusError, "Failed to analyze", -1)
		w.toast(toasts.Error, "Error: "+err.Error())
		return
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(metrics.SinceMillis(start))
	telemetry.Info("analysis.complete", map[string]any{
		"session_id":  w.sessionID,
		"document_id": doc.ID,
		"model":       model,
		"total":       result.TotalScore,
		"category":    result.Category,
		"warnings":    len(result.Warnings),
	})

	w.result = &result
	w.resultModel = model
	w.resultAt = s.deps.Now().UTC()
	w.setStatus(StatusComplete, "Analysis complete", 100)
	w.toast(toasts.Success, "Coding completed!")
	if !result.FoundDisclosure {
		msg := strings.TrimSpace(result.MessageEN)
		if msg == "" {
			msg = "No GenAI disclosure found"
		}
		w.toast(toasts.Warning, msg)
	}
}

// Result returns the latest coding result.
func (s *Service) Result(sessionID string) (*rubric.Result, error) {
	w := s.Workspace(sessionID)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return nil, ErrNoResult
	}
	return w.result, nil
}

// Chat sends a message about the loaded document. Provider failures are
// recorded in the transcript as a fallback reply rather than returned.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (chat.Message, error) {
	w := s.Workspace(sessionID)

	w.mu.Lock()
	if w.document == nil {
		w.mu.Unlock()
		return chat.Message{}, ErrNoDocument
	}
	model := w.model
	tag := llm.ProviderForModel(model)
	key := s.deps.Credentials.Get(tag)
	if key == "" {
		w.settingsOpen = true
		w.toast(toasts.Warning, fmt.Sprintf("Please enter your %s API Key first", tag.Label()))
		w.mu.Unlock()
		return chat.Message{}, fmt.Errorf("%w: %s", ErrMissingCredential, tag.KeyName())
	}
	docText := w.document.CombinedText()
	conv := w.conversation
	w.mu.Unlock()

	provider, err := s.deps.Providers.Provider(tag, key)
	if err != nil {
		return chat.Message{}, err
	}

	msg, err := conv.Send(ctx, message, func(ctx context.Context, history []llm.Turn, text string) (string, error) {
		return llm.Chat(ctx, provider, model, docText, history, text)
	})
	switch {
	case errors.Is(err, chat.ErrBusy):
		return chat.Message{}, ErrBusy
	case errors.Is(err, chat.ErrEmptyMessage):
		return chat.Message{}, err
	case err != nil:
		metrics.IncChatTurn(true)
		telemetry.Warn("chat.failed", map[string]any{"session_id": sessionID, "model": model, "error": err})
		return msg, nil
	}
	metrics.IncChatTurn(false)
	return msg, nil
}

// Messages returns the chat transcript.
func (s *Service) Messages(sessionID string) []chat.Message {
	return s.Workspace(sessionID).conversation.Messages()
}

// SetModel selects the model used by the next analysis or chat turn.
func (s *Service) SetModel(sessionID, model string) error {
	model = strings.TrimSpace(model)
	if !knownModel(model) {
		return fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	w := s.Workspace(sessionID)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.model = model
	return nil
}

func knownModel(model string) bool {
	for _, m := range llm.Models() {
		if m.ID == model {
			return true
		}
	}
	return false
}

func (s *Service) SetTab(sessionID string, tab Tab) error {
	if tab != TabResults && tab != TabChat {
		return ErrInvalidTab
	}
	w := s.Workspace(sessionID)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeTab = tab
	return nil
}

func (s *Service) SetSettingsOpen(sessionID string, open bool) {
	w := s.Workspace(sessionID)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settingsOpen = open
}

// SaveCredential stores or, for an empty secret, clears a provider key.
func (s *Service) SaveCredential(ctx context.Context, sessionID string, tag llm.Tag, secret string) error {
	if err := s.deps.Credentials.Save(ctx, tag, secret); err != nil {
		return err
	}
	w := s.Workspace(sessionID)
	if strings.TrimSpace(secret) == "" {
		w.toast(toasts.Info, tag.Label()+" API Key cleared")
		return nil
	}
	w.toast(toasts.Success, tag.Label()+" API Key saved!")
	return nil
}

func (s *Service) ClearCredential(ctx context.Context, sessionID string, tag llm.Tag) error {
	if err := s.deps.Credentials.Clear(ctx, tag); err != nil {
		return err
	}
	s.Workspace(sessionID).toast(toasts.Info, tag.Label()+" API Key cleared")
	return nil
}

func (s *Service) CredentialStatus() []credentials.Status {
	return s.deps.Credentials.Status()
}

// ModelOption is a catalog entry annotated with key availability.
type ModelOption struct {
	llm.Model
	HasKey bool `json:"hasKey"`
}

func (s *Service) Models() []ModelOption {
	models := llm.Models()
	out := make([]ModelOption, 0, len(models))
	for _, m := range models {
		out = append(out, ModelOption{Model: m, HasKey: s.deps.Credentials.Get(m.Provider) != ""})
	}
	return out
}

var exportToasts = map[exports.Format]string{
	exports.FormatJSON:    "JSON exported",
	exports.FormatCSV:     "CSV exported",
	exports.FormatHTML:    "Report exported",
	exports.FormatXLSX:    "Spreadsheet exported",
	exports.FormatSummary: "Copied to clipboard",
}

// Export renders the current result. Without a result nothing happens.
func (s *Service) Export(sessionID string, format exports.Format) (exports.File, error) {
	w := s.Workspace(sessionID)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil || w.document == nil {
		return exports.File{}, ErrNoResult
	}
	file, err := exports.Render(format, exports.Subject{
		FileName: w.document.FileName,
		Model:    w.resultModel,
		Result:   w.result,
		Date:     s.deps.Now(),
	})
	if err != nil {
		return exports.File{}, err
	}
	w.toast(toasts.Success, exportToasts[format])
	return file, nil
}

// RenderPage rasterizes a page of the loaded document.
func (s *Service) RenderPage(ctx context.Context, sessionID string, page int, scale float64) ([]byte, error) {
	w := s.Workspace(sessionID)
	w.mu.Lock()
	doc := w.document
	w.mu.Unlock()
	if doc == nil || doc.PDF() == nil {
		return nil, ErrNoDocument
	}
	return doc.PDF().RenderPage(ctx, page, scale)
}
