package browser

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietActions() *Actions {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewActions(logger)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "page", KindPage.String())
	assert.Equal(t, "frame", KindFrame.String())
	assert.Equal(t, "element", KindElement.String())
	assert.Equal(t, "kind(0)", Kind(0).String())
}

func TestContextKinds(t *testing.T) {
	assert.Equal(t, KindPage, PageContext{}.Kind())
	assert.Equal(t, KindFrame, FrameContext{}.Kind())
	assert.Equal(t, KindElement, ElementContext{}.Kind())
}

func TestEmptyContextsAreUnsupported(t *testing.T) {
	for _, c := range []Context{PageContext{}, FrameContext{}, ElementContext{}} {
		t.Run(c.Kind().String(), func(t *testing.T) {
			_, err := c.Locate("#anything")
			assert.ErrorIs(t, err, ErrUnsupportedContext)

			_, err = c.Keyboard()
			assert.ErrorIs(t, err, ErrUnsupportedContext)
		})
	}
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "#name", Sel("#name").String())
	assert.Equal(t, "", Ref{}.String())
}

func TestResolve_NilContext(t *testing.T) {
	_, err := resolve(nil, Sel("#name"))
	assert.ErrorIs(t, err, ErrUnsupportedContext)
}

func TestTypeText_UnsupportedContext(t *testing.T) {
	actions := quietActions()
	ctx := context.Background()

	err := actions.TypeText(ctx, nil, "#formula", "=TODAY()", time.Second)
	assert.ErrorIs(t, err, ErrUnsupportedContext)

	err = actions.TypeText(ctx, ElementContext{}, "", "=TODAY()", time.Second)
	assert.ErrorIs(t, err, ErrUnsupportedContext)
	assert.Contains(t, err.Error(), "typeText")
}

func TestActions_UnresolvableTargets(t *testing.T) {
	actions := quietActions()
	ctx := context.Background()

	assert.False(t, actions.WaitVisible(ctx, nil, Sel("#x"), time.Millisecond))
	assert.ErrorIs(t, actions.Click(ctx, PageContext{}, Sel("#x"), time.Millisecond), ErrUnsupportedContext)
	assert.ErrorIs(t, actions.Fill(ctx, FrameContext{}, Sel("#x"), "v", time.Millisecond), ErrUnsupportedContext)
	assert.ErrorIs(t, actions.Press(ctx, ElementContext{}, Sel(""), time.Millisecond, "Enter"), ErrUnsupportedContext)
}

func TestActions_CanceledContext(t *testing.T) {
	actions := quietActions()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, actions.WaitVisible(ctx, PageContext{}, Sel("#x"), time.Second))
	assert.False(t, actions.HasPageLoaded(ctx, nil, time.Second))
	assert.ErrorIs(t, actions.Click(ctx, PageContext{}, Sel("#x"), time.Second), context.Canceled)

	failure := assert.AnError
	assert.ErrorIs(t, actions.RequireVisible(ctx, PageContext{}, Sel("#x"), time.Second, failure), context.Canceled)
	assert.ErrorIs(t, actions.RequireVisible(context.Background(), nil, Sel("#x"), time.Millisecond, failure), failure)
}
