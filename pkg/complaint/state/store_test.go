package state

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore() *Store {
	return NewStore(0, 0)
}

var ignoreTimes = cmpopts.IgnoreFields(Draft{}, "StartedAt", "UpdatedAt")

func TestStore_StartFiling(t *testing.T) {
	s := newTestStore()

	d := s.StartFiling("s1")
	assert.Equal(t, FieldName, d.CurrentField)
	assert.False(t, d.StartedAt.IsZero())

	next, ok := s.NextField("s1")
	require.True(t, ok)
	assert.Equal(t, FieldName, next)

	// Restarting discards collected values.
	_, err := s.UpdateField("s1", FieldName, "Jane Doe")
	require.NoError(t, err)
	d = s.StartFiling("s1")
	assert.Empty(t, d.Name)
}

func TestStore_UpdateFieldProgression(t *testing.T) {
	s := newTestStore()
	s.StartFiling("s1")

	steps := []struct {
		field Field
		value string
		next  Field
	}{
		{FieldName, "Jane Doe", FieldPhone},
		{FieldPhone, "1234567890", FieldEmail},
		{FieldEmail, "jane@example.com", FieldDetails},
		{FieldDetails, "The package never arrived.", FieldNone},
	}

	for _, st := range steps {
		t.Run(string(st.field), func(t *testing.T) {
			_, err := s.UpdateField("s1", st.field, st.value)
			require.NoError(t, err)
			next, ok := s.NextField("s1")
			require.True(t, ok)
			assert.Equal(t, st.next, next)
		})
	}

	got, ok := s.Draft("s1")
	require.True(t, ok)
	want := Draft{
		Name:         "Jane Doe",
		Phone:        "1234567890",
		Email:        "jane@example.com",
		Details:      "The package never arrived.",
		CurrentField: FieldName,
	}
	if diff := cmp.Diff(want, got, ignoreTimes); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.Complete())
}

func TestStore_UpdateFieldStartsDraft(t *testing.T) {
	s := newTestStore()

	d, err := s.UpdateField("s1", FieldEmail, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", d.Email)
	assert.Equal(t, FieldName, d.CurrentField)
	assert.True(t, s.Active("s1"))
}

func TestStore_UpdateFieldUnknown(t *testing.T) {
	s := newTestStore()

	_, err := s.UpdateField("s1", Field("address"), "Main St")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.False(t, s.Active("s1"))
}

func TestStore_SetCurrentField(t *testing.T) {
	s := newTestStore()

	_, ok := s.SetCurrentField("missing", FieldPhone)
	assert.False(t, ok)

	s.StartFiling("s1")
	d, ok := s.SetCurrentField("s1", FieldPhone)
	require.True(t, ok)
	assert.Equal(t, FieldPhone, d.CurrentField)
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore()
	s.StartFiling("s1")

	s.Clear("s1")
	s.Clear("s1")
	s.Clear("never-started")

	_, ok := s.Draft("s1")
	assert.False(t, ok)
	_, ok = s.NextField("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := newTestStore()
	s.StartFiling("s1")

	snap, _ := s.Draft("s1")
	snap.Name = "Mallory"

	fresh, _ := s.Draft("s1")
	assert.Empty(t, fresh.Name)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	s := newTestStore()
	s.StartFiling("a")
	_, err := s.UpdateField("a", FieldName, "Alice")
	require.NoError(t, err)

	assert.False(t, s.Active("b"))
	s.StartFiling("b")

	a, _ := s.Draft("a")
	b, _ := s.Draft("b")
	assert.Equal(t, "Alice", a.Name)
	assert.Empty(t, b.Name)
}

func TestStore_Expiry(t *testing.T) {
	s := NewStore(20*time.Millisecond, 0)
	s.StartFiling("s1")
	require.True(t, s.Active("s1"))

	assert.Eventually(t, func() bool { return !s.Active("s1") }, time.Second, 10*time.Millisecond)
}

func TestStore_ConcurrentSessions(t *testing.T) {
	s := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			s.StartFiling(id)
			for _, f := range RequiredFields {
				if _, err := s.UpdateField(id, f, fmt.Sprintf("%s-%d", f, i)); err != nil {
					t.Errorf("update %s: %v", f, err)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
	for i := 0; i < 50; i++ {
		d, ok := s.Draft(fmt.Sprintf("session-%d", i))
		require.True(t, ok)
		assert.True(t, d.Complete())
		assert.Equal(t, fmt.Sprintf("name-%d", i), d.Name)
	}
}
