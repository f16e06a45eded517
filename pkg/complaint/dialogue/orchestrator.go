package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cybot-be/internal/pkg/logger"
	"cybot-be/pkg/complaint/extract"
	"cybot-be/pkg/complaint/intent"
	"cybot-be/pkg/complaint/state"
	"cybot-be/pkg/ticketing"
)

// Action is what the orchestrator decided to do with a turn.
type Action string

const (
	ActionContinueFiling Action = "CONTINUE_FILING"
	ActionStartFiling    Action = "START_FILING"
	ActionSubmit         Action = "SUBMIT"
	ActionCancelFiling   Action = "CANCEL_FILING"
	ActionRetrieve       Action = "RETRIEVE"
	ActionDocument       Action = "DOCUMENT"
)

// DocumentAnswer is a generated reply and the document context retrieved
// for it.
type DocumentAnswer struct {
	Text    string
	Context string
}

// DocumentAnswerer answers free-form questions from indexed documents.
// Context is set even when generation fails, as long as retrieval ran.
type DocumentAnswerer interface {
	Answer(ctx context.Context, sessionID, query string) (DocumentAnswer, error)
}

// FilingListener is told how a complaint submission went. Implementations
// must not block for long; the turn waits for them.
type FilingListener interface {
	ComplaintFiled(ctx context.Context, sessionID string, receipt ticketing.Receipt, s ticketing.Submission)
	ComplaintSubmitFailed(ctx context.Context, sessionID string, s ticketing.Submission, err error)
}

// Turn is one user message. Refined, when set, is a rewrite of Utterance
// that takes the conversation so far into account; it drives intent
// detection and document lookup, while field values and complaint ids
// are always read from the original Utterance.
type Turn struct {
	SessionID string
	Utterance string
	Refined   string
}

func (t Turn) query() string {
	if strings.TrimSpace(t.Refined) != "" {
		return t.Refined
	}
	return t.Utterance
}

// Reply is the answer to one turn.
type Reply struct {
	Text        string         `json:"text"`
	Action      Action         `json:"action"`
	Field       state.Field    `json:"field,omitempty"`
	ComplaintID string         `json:"complaint_id,omitempty"`
	Filing      *intent.Signal `json:"filing,omitempty"`
	Retrieval   *intent.Signal `json:"retrieval,omitempty"`
	// Context is the document context behind a DOCUMENT reply, from this
	// turn only.
	Context string `json:"context,omitempty"`
}

var cancelWords = map[string]struct{}{
	"cancel":  {},
	"discard": {},
	"stop":    {},
	"abort":   {},
}

func isCancel(utterance string) bool {
	_, ok := cancelWords[strings.ToLower(strings.Trim(strings.TrimSpace(utterance), ".!"))]
	return ok
}

// Orchestrator routes each turn to complaint filing, complaint lookup or
// document Q&A, and drives the filing form one field at a time.
type Orchestrator struct {
	drafts     *state.Store
	classifier *intent.Classifier
	tickets    ticketing.Service
	documents  DocumentAnswerer
	listener   FilingListener
	logger     logger.ILogger
}

type Option func(*Orchestrator)

func WithFilingListener(l FilingListener) Option {
	return func(o *Orchestrator) {
		o.listener = l
	}
}

func NewOrchestrator(
	drafts *state.Store,
	classifier *intent.Classifier,
	tickets ticketing.Service,
	documents DocumentAnswerer,
	log logger.ILogger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		drafts:     drafts,
		classifier: classifier,
		tickets:    tickets,
		documents:  documents,
		logger:     log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Filing reports whether the session has a complaint form in progress.
func (o *Orchestrator) Filing(sessionID string) bool {
	return o.drafts.Active(sessionID)
}

// Draft exposes the session's in-progress complaint, if any.
func (o *Orchestrator) Draft(sessionID string) (state.Draft, bool) {
	return o.drafts.Draft(sessionID)
}

// Discard drops the session's in-progress complaint.
func (o *Orchestrator) Discard(sessionID string) {
	o.drafts.Clear(sessionID)
}

// HandleTurn produces the reply to one user message. Failures of the
// ticketing service or the document answerer are reported in the reply
// text; the only error returned is a done context.
func (o *Orchestrator) HandleTurn(ctx context.Context, turn Turn) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// An open form owns the conversation until it is submitted or dropped.
	if draft, ok := o.drafts.Draft(turn.SessionID); ok {
		return o.continueFiling(ctx, turn, draft), nil
	}

	q := turn.query()
	retrieval := o.classifier.Classify(q, intent.KindRetrieval)

	if _, ok := extract.ComplaintID(turn.Utterance); ok &&
		(retrieval.Matched || strings.Contains(strings.ToLower(q), "complaint")) {
		reply := o.retrieve(ctx, turn)
		reply.Retrieval = &retrieval
		return reply, nil
	}

	filing := o.classifier.Classify(q, intent.KindFiling)
	if filing.Matched {
		reply := o.startFiling(turn)
		reply.Filing, reply.Retrieval = &filing, &retrieval
		return reply, nil
	}

	if retrieval.Matched {
		reply := o.retrieve(ctx, turn)
		reply.Filing, reply.Retrieval = &filing, &retrieval
		return reply, nil
	}

	reply := o.answerDocument(ctx, turn)
	reply.Filing, reply.Retrieval = &filing, &retrieval
	return reply, nil
}

func (o *Orchestrator) startFiling(turn Turn) *Reply {
	o.drafts.StartFiling(turn.SessionID)

	found := extract.Extract(turn.Utterance)
	if found.Phone != "" && extract.ValidatePhone(found.Phone) {
		o.update(turn.SessionID, state.FieldPhone, found.Phone)
	}
	if found.Email != "" && extract.ValidateEmail(found.Email) {
		o.update(turn.SessionID, state.FieldEmail, found.Email)
	}

	o.logger.Info("DIALOGUE", "Complaint filing started", map[string]interface{}{
		"session_id":      turn.SessionID,
		"prefilled_phone": found.Phone != "",
		"prefilled_email": found.Email != "",
	})

	return &Reply{Text: msgAskName, Action: ActionStartFiling, Field: state.FieldName}
}

func (o *Orchestrator) update(sessionID string, field state.Field, value string) {
	if _, err := o.drafts.UpdateField(sessionID, field, value); err != nil {
		o.logger.Error("DIALOGUE", "Failed to update complaint field", map[string]interface{}{
			"session_id": sessionID,
			"field":      field,
			"error":      err.Error(),
		})
	}
}

func (o *Orchestrator) continueFiling(ctx context.Context, turn Turn, draft state.Draft) *Reply {
	sid := turn.SessionID

	if isCancel(turn.Utterance) {
		o.drafts.Clear(sid)
		o.logger.Info("DIALOGUE", "Complaint filing canceled", map[string]interface{}{"session_id": sid})
		return &Reply{Text: msgFilingCanceled, Action: ActionCancelFiling, Field: state.FieldNone}
	}

	current := draft.CurrentField
	if current == "" {
		current = draft.Next()
		draft, _ = o.drafts.SetCurrentField(sid, current)
	}

	// A complete draft is one whose last submission failed.
	if current == state.FieldNone {
		if draft.Complete() {
			return o.submit(ctx, sid, draft)
		}
		current = draft.Next()
	}

	text := strings.TrimSpace(turn.Utterance)
	found := extract.Extract(turn.Utterance)

	switch current {
	case state.FieldName:
		if !looksLikeName(text) {
			return &Reply{Text: msgInvalidName, Action: ActionContinueFiling, Field: state.FieldName}
		}
		o.update(sid, state.FieldName, text)

	case state.FieldPhone:
		switch {
		case found.Phone != "" && extract.ValidatePhone(found.Phone):
			o.update(sid, state.FieldPhone, found.Phone)
		case extract.ValidatePhone(text):
			o.update(sid, state.FieldPhone, text)
		default:
			return &Reply{Text: msgInvalidPhone, Action: ActionContinueFiling, Field: state.FieldPhone}
		}

	case state.FieldEmail:
		switch {
		case found.Email != "" && extract.ValidateEmail(found.Email):
			o.update(sid, state.FieldEmail, found.Email)
		case extract.ValidateEmail(text):
			o.update(sid, state.FieldEmail, text)
		default:
			return &Reply{Text: msgInvalidEmail, Action: ActionContinueFiling, Field: state.FieldEmail}
		}

	case state.FieldDetails:
		o.update(sid, state.FieldDetails, text)

	default:
		return &Reply{Text: msgStillFiling, Action: ActionContinueFiling, Field: current}
	}

	draft, ok := o.drafts.Draft(sid)
	if !ok {
		return &Reply{Text: msgStillFiling, Action: ActionContinueFiling}
	}

	next := draft.Next()
	if next == state.FieldNone {
		return o.submit(ctx, sid, draft)
	}

	o.drafts.SetCurrentField(sid, next)
	return &Reply{Text: promptFor(next), Action: ActionContinueFiling, Field: next}
}

// looksLikeName accepts one to three words with no "@" and no digit.
func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	return !strings.ContainsAny(s, "@0123456789")
}

func promptFor(f state.Field) string {
	switch f {
	case state.FieldName:
		return msgAskName
	case state.FieldPhone:
		return msgAskPhone
	case state.FieldEmail:
		return msgAskEmail
	case state.FieldDetails:
		return msgAskDetails
	}
	return msgStillFiling
}

func (o *Orchestrator) submit(ctx context.Context, sid string, draft state.Draft) *Reply {
	sub := ticketing.Submission{
		Name:    draft.Name,
		Phone:   draft.Phone,
		Email:   draft.Email,
		Details: draft.Details,
	}

	receipt, err := o.tickets.Create(ctx, sub)
	if err != nil {
		// Keep the form so the user can retry without re-typing it.
		o.drafts.SetCurrentField(sid, state.FieldNone)
		o.logger.Error("DIALOGUE", "Complaint submission failed", map[string]interface{}{
			"session_id": sid,
			"error":      err.Error(),
		})
		if o.listener != nil {
			o.listener.ComplaintSubmitFailed(ctx, sid, sub, err)
		}
		return &Reply{Text: fmt.Sprintf(msgSubmitFailed, err), Action: ActionSubmit, Field: state.FieldNone}
	}

	o.drafts.Clear(sid)
	o.logger.Info("DIALOGUE", "Complaint registered", map[string]interface{}{
		"session_id":   sid,
		"complaint_id": receipt.ID,
	})
	if o.listener != nil {
		o.listener.ComplaintFiled(ctx, sid, *receipt, sub)
	}

	return &Reply{
		Text:        fmt.Sprintf(msgRegistered, receipt.ID),
		Action:      ActionSubmit,
		ComplaintID: receipt.ID,
	}
}

func (o *Orchestrator) retrieve(ctx context.Context, turn Turn) *Reply {
	id, ok := extract.ComplaintID(turn.Utterance)
	if !ok {
		return &Reply{Text: msgNoComplaintID, Action: ActionRetrieve}
	}

	complaint, err := o.tickets.Fetch(ctx, id)
	if err != nil {
		details := map[string]interface{}{"complaint_id": id, "error": err.Error()}
		if errors.Is(err, ticketing.ErrNotFound) {
			o.logger.Info("DIALOGUE", "Complaint not found", details)
		} else {
			o.logger.Warn("DIALOGUE", "Complaint lookup failed", details)
		}
		return &Reply{Text: fmt.Sprintf(msgComplaintNotFound, id), Action: ActionRetrieve, ComplaintID: id}
	}

	return &Reply{Text: FormatComplaint(*complaint), Action: ActionRetrieve, ComplaintID: id}
}

func (o *Orchestrator) answerDocument(ctx context.Context, turn Turn) *Reply {
	if o.documents == nil {
		return &Reply{Text: msgDocumentUnavailable, Action: ActionDocument}
	}

	answer, err := o.documents.Answer(ctx, turn.SessionID, turn.query())
	if err != nil {
		o.logger.Error("DIALOGUE", "Document answer failed", map[string]interface{}{
			"session_id": turn.SessionID,
			"error":      err.Error(),
		})
		return &Reply{Text: msgDocumentUnavailable, Action: ActionDocument, Context: answer.Context}
	}
	return &Reply{Text: answer.Text, Action: ActionDocument, Context: answer.Context}
}
