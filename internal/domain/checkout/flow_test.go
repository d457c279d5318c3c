package checkout

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hiddenPane struct{ id string }

func (p hiddenPane) ID() string                                   { return p.id }
func (hiddenPane) IsVisible(Customer, *order.Order) bool          { return false }
func (hiddenPane) Submit(Customer, *order.Order, PaneInput) error { return nil }

func authenticated() Customer {
	id := uuid.New()
	return Customer{ID: &id, Email: "member@example.com"}
}

func TestNewFlow(t *testing.T) {
	t.Run("requires steps", func(t *testing.T) {
		_, err := NewFlow("x")
		assert.Error(t, err)
	})

	t.Run("rejects duplicate step", func(t *testing.T) {
		_, err := NewFlow("x", Step{ID: "a"}, Step{ID: "a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "defined twice")
	})
}

func TestFlow_Navigation(t *testing.T) {
	f := DefaultFlow()

	assert.Equal(t, "login", f.FirstStep().ID)
	assert.Equal(t, "complete", f.LastStep().ID)
	assert.True(t, f.IsLast("complete"))

	next, ok := f.NextStep("login")
	require.True(t, ok)
	assert.Equal(t, "review", next.ID)

	_, ok = f.NextStep("complete")
	assert.False(t, ok)

	prev, ok := f.PreviousStep("review")
	require.True(t, ok)
	assert.Equal(t, "login", prev.ID)

	_, ok = f.PreviousStep("login")
	assert.False(t, ok)

	_, ok = f.NextStep("payment")
	assert.False(t, ok)

	assert.Equal(t, 1, f.Index("review"))
	assert.Equal(t, -1, f.Index("payment"))
}

func TestFlow_Actions(t *testing.T) {
	f := DefaultFlow()

	assert.Equal(t, Actions{Previous: false, Next: true}, f.Actions("login"))
	assert.Equal(t, Actions{Previous: true, Next: true}, f.Actions("review"))
	assert.Equal(t, Actions{Previous: false, Next: false}, f.Actions("complete"))
	assert.Equal(t, Actions{}, f.Actions("unknown"))
}

func TestFlow_ResolveStep(t *testing.T) {
	o := order.NewCart(nil)

	t.Run("anonymous visitor sees login", func(t *testing.T) {
		step, panes, err := DefaultFlow().ResolveStep("login", Customer{}, o)
		require.NoError(t, err)
		assert.Equal(t, "login", step.ID)
		require.Len(t, panes, 1)
		assert.Equal(t, PaneLogin, panes[0].ID())
	})

	t.Run("authenticated customer skips login", func(t *testing.T) {
		step, _, err := DefaultFlow().ResolveStep("login", authenticated(), o)
		require.NoError(t, err)
		assert.Equal(t, "review", step.ID)
	})

	t.Run("skips several empty steps without recursion", func(t *testing.T) {
		steps := []Step{{ID: "start", Panes: []Pane{ReviewPane{}}}}
		for i := 0; i < 10000; i++ {
			steps = append(steps, Step{ID: uuid.NewString(), Panes: []Pane{hiddenPane{id: "h"}}})
		}
		steps = append(steps, Step{ID: "done", Panes: []Pane{CompletePane{}}})
		f, err := NewFlow("long", steps...)
		require.NoError(t, err)

		step, _, err := f.ResolveStep(steps[1].ID, Customer{}, o)
		require.NoError(t, err)
		assert.Equal(t, "done", step.ID)

		prev, err := f.ResolvePreviousStep("done", Customer{}, o)
		require.NoError(t, err)
		assert.Equal(t, "start", prev.ID)
	})

	t.Run("falls back to the last step", func(t *testing.T) {
		f, err := NewFlow("hidden", Step{ID: "a", Panes: []Pane{hiddenPane{id: "x"}}}, Step{ID: "b"})
		require.NoError(t, err)
		step, panes, err := f.ResolveStep("a", Customer{}, o)
		require.NoError(t, err)
		assert.Equal(t, "b", step.ID)
		assert.Empty(t, panes)
	})

	t.Run("unknown step", func(t *testing.T) {
		_, _, err := DefaultFlow().ResolveStep("payment", Customer{}, o)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("previous from review for authenticated customer is the first step", func(t *testing.T) {
		prev, err := DefaultFlow().ResolvePreviousStep("review", authenticated(), o)
		require.NoError(t, err)
		assert.Equal(t, "login", prev.ID)
	})
}

func TestPanes(t *testing.T) {
	t.Run("login requires email", func(t *testing.T) {
		o := order.NewCart(nil)
		err := LoginPane{}.Submit(Customer{}, o, PaneInput{})
		require.Error(t, err)

		require.NoError(t, LoginPane{}.Submit(Customer{}, o, PaneInput{"email": " guest@example.com "}))
		assert.Equal(t, "guest@example.com", o.Email)
	})

	t.Run("login hidden for authenticated customers", func(t *testing.T) {
		assert.False(t, LoginPane{}.IsVisible(authenticated(), order.NewCart(nil)))
	})

	t.Run("review requires items", func(t *testing.T) {
		o := order.NewCart(nil)
		require.NoError(t, o.SetEmail("guest@example.com"))
		err := ReviewPane{}.Submit(Customer{}, o, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("complete accepts no input", func(t *testing.T) {
		err := CompletePane{}.Submit(Customer{}, order.NewCart(nil), nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}
