package dialogue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cybot-be/internal/pkg/logger"
	"cybot-be/pkg/complaint/intent"
	"cybot-be/pkg/complaint/state"
	"cybot-be/pkg/ticketing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTickets struct {
	created    []ticketing.Submission
	createErrs []error
	complaints map[string]ticketing.Complaint
	fetchErr   error
}

func (f *fakeTickets) Create(_ context.Context, s ticketing.Submission) (*ticketing.Receipt, error) {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.created = append(f.created, s)
	return &ticketing.Receipt{ID: fmt.Sprintf("CMP%03d", len(f.created))}, nil
}

func (f *fakeTickets) Fetch(_ context.Context, id string) (*ticketing.Complaint, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	c, ok := f.complaints[id]
	if !ok {
		return nil, ticketing.ErrNotFound
	}
	return &c, nil
}

type fakeDocuments struct {
	queries []string
	err     error
}

func (f *fakeDocuments) Answer(_ context.Context, _ string, query string) (DocumentAnswer, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return DocumentAnswer{Context: "ctx: " + query}, f.err
	}
	return DocumentAnswer{Text: "answer: " + query, Context: "ctx: " + query}, nil
}

type recordingListener struct {
	filed  []string
	failed int
}

func (l *recordingListener) ComplaintFiled(_ context.Context, _ string, r ticketing.Receipt, _ ticketing.Submission) {
	l.filed = append(l.filed, r.ID)
}

func (l *recordingListener) ComplaintSubmitFailed(_ context.Context, _ string, _ ticketing.Submission, _ error) {
	l.failed++
}

type harness struct {
	o        *Orchestrator
	drafts   *state.Store
	tickets  *fakeTickets
	docs     *fakeDocuments
	listener *recordingListener
}

func newHarness() *harness {
	h := &harness{
		drafts:   state.NewStore(0, 0),
		tickets:  &fakeTickets{complaints: map[string]ticketing.Complaint{}},
		docs:     &fakeDocuments{},
		listener: &recordingListener{},
	}
	h.o = NewOrchestrator(h.drafts, intent.NewClassifier(), h.tickets, h.docs, logger.NewNopLogger(),
		WithFilingListener(h.listener))
	return h
}

func (h *harness) say(t *testing.T, sessionID, utterance string) *Reply {
	t.Helper()
	reply, err := h.o.HandleTurn(context.Background(), Turn{SessionID: sessionID, Utterance: utterance})
	require.NoError(t, err)
	return reply
}

func TestHandleTurn_FilingConversation(t *testing.T) {
	h := newHarness()

	reply := h.say(t, "s1", "I want to file a complaint")
	assert.Equal(t, msgAskName, reply.Text)
	assert.Equal(t, ActionStartFiling, reply.Action)
	require.NotNil(t, reply.Filing)
	assert.Equal(t, intent.MethodPattern, reply.Filing.Method)

	d, ok := h.drafts.Draft("s1")
	require.True(t, ok)
	assert.Equal(t, state.FieldName, d.CurrentField)

	steps := []struct {
		say   string
		reply string
		field state.Field
	}{
		{"Jane Doe", msgAskPhone, state.FieldPhone},
		{"1234567890", msgAskEmail, state.FieldEmail},
		{"jane@example.com", msgAskDetails, state.FieldDetails},
	}
	for _, st := range steps {
		reply = h.say(t, "s1", st.say)
		assert.Equal(t, st.reply, reply.Text)
		assert.Equal(t, ActionContinueFiling, reply.Action)

		d, _ = h.drafts.Draft("s1")
		assert.Equal(t, st.field, d.CurrentField)
	}

	reply = h.say(t, "s1", "  My parcel arrived damaged.  ")
	assert.Equal(t, "Your complaint has been registered with ID: CMP001. You'll hear back from us soon.", reply.Text)
	assert.Equal(t, ActionSubmit, reply.Action)
	assert.Equal(t, "CMP001", reply.ComplaintID)

	_, ok = h.drafts.Draft("s1")
	assert.False(t, ok)

	require.Len(t, h.tickets.created, 1)
	assert.Equal(t, ticketing.Submission{
		Name:    "Jane Doe",
		Phone:   "1234567890",
		Email:   "jane@example.com",
		Details: "My parcel arrived damaged.",
	}, h.tickets.created[0])
	assert.Equal(t, []string{"CMP001"}, h.listener.filed)
}

func TestHandleTurn_InvalidInputKeepsState(t *testing.T) {
	tests := []struct {
		name   string
		before []string
		say    string
		want   string
		field  state.Field
	}{
		{"long name", nil, "well my name is Jane Doe", msgInvalidName, state.FieldName},
		{"name with digits", nil, "Jane 2", msgInvalidName, state.FieldName},
		{"name with email", nil, "jane@example.com", msgInvalidName, state.FieldName},
		{"bad phone", []string{"Jane Doe"}, "abc", msgInvalidPhone, state.FieldPhone},
		{"short phone", []string{"Jane Doe"}, "12345", msgInvalidPhone, state.FieldPhone},
		{"bad email", []string{"Jane Doe", "1234567890"}, "not-an-email", msgInvalidEmail, state.FieldEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.say(t, "s1", "I want to file a complaint")
			for _, u := range tt.before {
				h.say(t, "s1", u)
			}
			before, _ := h.drafts.Draft("s1")

			reply := h.say(t, "s1", tt.say)
			assert.Equal(t, tt.want, reply.Text)
			assert.Equal(t, tt.field, reply.Field)

			after, ok := h.drafts.Draft("s1")
			require.True(t, ok)
			assert.Equal(t, tt.field, after.CurrentField)
			assert.Empty(t, after.Value(tt.field))
			assert.Equal(t, before.Name, after.Name)
			assert.Equal(t, before.Phone, after.Phone)
		})
	}
}

func TestHandleTurn_FormattedPhoneAccepted(t *testing.T) {
	h := newHarness()
	h.say(t, "s1", "I want to file a complaint")
	h.say(t, "s1", "Jane")

	reply := h.say(t, "s1", "my number is (123) 456-7890")
	assert.Equal(t, msgAskEmail, reply.Text)

	d, _ := h.drafts.Draft("s1")
	assert.Equal(t, "(123) 456-7890", d.Phone)
}

func TestHandleTurn_PrefillSkipsKnownFields(t *testing.T) {
	h := newHarness()

	reply := h.say(t, "s1", "I want to file a complaint, reach me at jane@example.com")
	assert.Equal(t, msgAskName, reply.Text)

	d, _ := h.drafts.Draft("s1")
	assert.Equal(t, "jane@example.com", d.Email)
	assert.Equal(t, state.FieldName, d.CurrentField)

	assert.Equal(t, msgAskPhone, h.say(t, "s1", "Jane Doe").Text)
	assert.Equal(t, msgAskDetails, h.say(t, "s1", "1234567890").Text)
}

func TestHandleTurn_DraftPreemptsIntent(t *testing.T) {
	h := newHarness()
	h.tickets.complaints["ABC123"] = ticketing.Complaint{ComplaintID: "ABC123"}
	h.say(t, "s1", "I want to file a complaint")

	// Would be a retrieval request without an open form.
	reply := h.say(t, "s1", "show complaint ABC123")
	assert.Equal(t, msgInvalidName, reply.Text)
	assert.Equal(t, ActionContinueFiling, reply.Action)
	assert.Empty(t, h.docs.queries)
}

func TestHandleTurn_SubmitFailureKeepsDraft(t *testing.T) {
	h := newHarness()
	h.tickets.createErrs = []error{errors.New("API error: status 500")}

	for _, u := range []string{"I want to file a complaint", "Jane Doe", "1234567890", "jane@example.com"} {
		h.say(t, "s1", u)
	}

	reply := h.say(t, "s1", "Broken screen")
	assert.Contains(t, reply.Text, "There was an issue registering your complaint: API error: status 500")
	assert.Equal(t, 1, h.listener.failed)

	d, ok := h.drafts.Draft("s1")
	require.True(t, ok)
	assert.Equal(t, state.FieldNone, d.CurrentField)
	assert.Equal(t, "Broken screen", d.Details)

	// Any next message resubmits the stored form unchanged.
	reply = h.say(t, "s1", "please try again")
	assert.Equal(t, "CMP001", reply.ComplaintID)
	require.Len(t, h.tickets.created, 1)
	assert.Equal(t, "Broken screen", h.tickets.created[0].Details)
	assert.False(t, h.o.Filing("s1"))
}

func TestHandleTurn_Cancel(t *testing.T) {
	h := newHarness()
	h.say(t, "s1", "I want to file a complaint")
	h.say(t, "s1", "Jane Doe")

	reply := h.say(t, "s1", "Cancel.")
	assert.Equal(t, msgFilingCanceled, reply.Text)
	assert.Equal(t, ActionCancelFiling, reply.Action)
	assert.False(t, h.o.Filing("s1"))
	assert.Empty(t, h.tickets.created)
}

func TestHandleTurn_Retrieval(t *testing.T) {
	h := newHarness()
	h.tickets.complaints["7B3K9Q1Z"] = ticketing.Complaint{
		ComplaintID:      "7B3K9Q1Z",
		Name:             "Jane Doe",
		PhoneNumber:      "1234567890",
		Email:            "jane@example.com",
		ComplaintDetails: "Late delivery",
		CreatedAt:        "2024-03-01T10:20:30.123Z",
	}

	tests := []struct {
		name      string
		utterance string
		want      string
	}{
		{
			name:      "id with complaint word",
			utterance: "What is the status of complaint 7B3K9Q1Z",
			want:      "**Complaint ID**: 7B3K9Q1Z\n**Name**: Jane Doe\n**Phone**: 1234567890\n**Email**: jane@example.com\n**Details**: Late delivery\n**Created At**: 2024-03-01 10:20:30",
		},
		{
			name:      "unknown id",
			utterance: "My complaint ID is ZZZ999",
			want:      "I couldn't find any complaint with ID: ZZZ999. Please verify the ID and try again.",
		},
		{
			name:      "retrieval intent without id",
			utterance: "where is my ticket",
			want:      msgNoComplaintID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := h.say(t, "s1", tt.utterance)
			assert.Equal(t, tt.want, reply.Text)
			assert.Equal(t, ActionRetrieve, reply.Action)
		})
	}
	assert.False(t, h.o.Filing("s1"))
}

func TestHandleTurn_RetrievalBackendErrorReportsNotFound(t *testing.T) {
	h := newHarness()
	h.tickets.fetchErr = errors.New("API error: timeout")

	reply := h.say(t, "s1", "complaint ABC123")
	assert.Equal(t, "I couldn't find any complaint with ID: ABC123. Please verify the ID and try again.", reply.Text)
}

func TestHandleTurn_DocumentFallback(t *testing.T) {
	h := newHarness()

	reply := h.say(t, "s1", "hello there")
	assert.Equal(t, "answer: hello there", reply.Text)
	assert.Equal(t, "ctx: hello there", reply.Context)
	assert.Equal(t, ActionDocument, reply.Action)
	require.NotNil(t, reply.Filing)
	assert.False(t, reply.Filing.Matched)

	// An id-shaped token alone is not enough to trigger a lookup.
	reply = h.say(t, "s1", "hello 7QX91Z")
	assert.Equal(t, ActionDocument, reply.Action)

	reply, err := h.o.HandleTurn(context.Background(), Turn{
		SessionID: "s1",
		Utterance: "and the second one?",
		Refined:   "what is the second refund policy?",
	})
	require.NoError(t, err)
	assert.Equal(t, "answer: what is the second refund policy?", reply.Text)
}

func TestHandleTurn_DocumentFailure(t *testing.T) {
	h := newHarness()
	h.docs.err = errors.New("llm down")

	reply := h.say(t, "s1", "hello there")
	assert.Equal(t, msgDocumentUnavailable, reply.Text)
	assert.Equal(t, "ctx: hello there", reply.Context)
}

func TestHandleTurn_RefinedQueryDrivesIntent(t *testing.T) {
	h := newHarness()

	reply, err := h.o.HandleTurn(context.Background(), Turn{
		SessionID: "s1",
		Utterance: "yes, that one",
		Refined:   "I want to file a complaint about the late delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, ActionStartFiling, reply.Action)
}

func TestHandleTurn_SessionsAreIndependent(t *testing.T) {
	h := newHarness()
	h.say(t, "a", "I want to file a complaint")

	reply := h.say(t, "b", "hello there")
	assert.Equal(t, ActionDocument, reply.Action)
	assert.True(t, h.o.Filing("a"))
	assert.False(t, h.o.Filing("b"))
}

func TestHandleTurn_ContextDone(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.o.HandleTurn(ctx, Turn{SessionID: "s1", Utterance: "hello"})
	assert.ErrorIs(t, err, context.Canceled)
}
