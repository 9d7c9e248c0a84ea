package hooks_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/helpdesk-stripe/internal/hooks"
)

func newRegistry() *hooks.Registry {
	return hooks.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func appendFilter(s string) hooks.FilterFunc {
	return func(_ context.Context, value any) any {
		list, _ := value.([]string)
		return append(list, s)
	}
}

func TestApplyFilters_UnknownNameReturnsValue(t *testing.T) {
	r := newRegistry()
	assert.Equal(t, []string{"a"}, r.ApplyFilters(context.Background(), "missing", []string{"a"}))
}

func TestApplyFilters_PriorityOrder(t *testing.T) {
	r := newRegistry()
	r.AddFilter("list", 30, appendFilter("late"))
	r.AddFilter("list", hooks.DefaultPriority, appendFilter("first-default"))
	r.AddFilter("list", 10, appendFilter("early"))
	r.AddFilter("list", hooks.DefaultPriority, appendFilter("second-default"))

	got := r.ApplyFilters(context.Background(), "list", []string{})
	assert.Equal(t, []string{"early", "first-default", "second-default", "late"}, got)
}

func TestDoAction_WritesInPriorityOrder(t *testing.T) {
	r := newRegistry()
	r.AddAction("page", 50, func(_ context.Context, w io.Writer, _ any) error {
		_, err := io.WriteString(w, "B")
		return err
	})
	r.AddAction("page", 5, func(_ context.Context, w io.Writer, arg any) error {
		_, err := fmt.Fprintf(w, "A%v", arg)
		return err
	})

	var buf bytes.Buffer
	require.NoError(t, r.DoAction(context.Background(), "page", &buf, 1))
	assert.Equal(t, "A1B", buf.String())
	assert.True(t, r.HasAction("page"))
	assert.False(t, r.HasAction("other"))
}

func TestDoAction_FailingActionDoesNotStopOthers(t *testing.T) {
	r := newRegistry()
	boom := errors.New("boom")
	r.AddAction("page", 10, func(context.Context, io.Writer, any) error { return boom })
	r.AddAction("page", 20, func(context.Context, io.Writer, any) error { panic("kaput") })
	r.AddAction("page", 30, func(_ context.Context, w io.Writer, _ any) error {
		_, err := io.WriteString(w, "still rendered")
		return err
	})

	var buf bytes.Buffer
	err := r.DoAction(context.Background(), "page", &buf, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "kaput")
	assert.Equal(t, "still rendered", buf.String())
}

func TestDoAction_NoActions(t *testing.T) {
	r := newRegistry()
	var buf bytes.Buffer
	require.NoError(t, r.DoAction(context.Background(), "nothing", &buf, nil))
	assert.Empty(t, buf.String())
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := newRegistry()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.AddFilter("list", i, appendFilter(fmt.Sprint(i)))
		}()
		go func() {
			defer wg.Done()
			_ = r.ApplyFilters(context.Background(), "list", []string{})
		}()
	}
	wg.Wait()

	got, ok := r.ApplyFilters(context.Background(), "list", []string{}).([]string)
	require.True(t, ok)
	assert.Len(t, got, 20)
	assert.Equal(t, "0", got[0])
	assert.Equal(t, "19", got[19])
}
