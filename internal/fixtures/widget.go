package fixtures

import (
	"errors"
	"fmt"
	"math/rand"

	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const WidgetContract = "widget-inner"

// WidgetsView is an object derived from a widget receiver. It has no identity
// of its own and is compared only through GetWidgets.
type WidgetsView interface {
	GetWidgets() int
}

// InnerSource is what every widget implementation exposes to verification.
type InnerSource interface {
	GetInner(widgets int) WidgetsView
}

// Widget is the reference receiver.
type Widget struct{}

// DoNothing is the entry point; it leaves the receiver untouched.
func (w *Widget) DoNothing(_ int) {}

func (w *Widget) GetInner(widgets int) WidgetsView {
	return NamedInner{owner: w, widgets: widgets}
}

// Generate builds fresh reference receivers.
func (Widget) Generate(_ int, _ *rand.Rand) any {
	return Widget{}
}

// NamedInner keeps a back-reference to the widget that produced it. The owner
// is for lookup only.
type NamedInner struct {
	owner   *Widget
	widgets int
}

func (n NamedInner) GetWidgets() int {
	return n.widgets
}

type candidateWidget struct {
	skew int
}

func (w *candidateWidget) DoNothing(_ int) {}

func (w *candidateWidget) GetInner(widgets int) WidgetsView {
	return candidateInner{owner: w, stored: widgets + w.skew}
}

type candidateInner struct {
	owner  *candidateWidget
	stored int
}

func (c candidateInner) GetWidgets() int {
	return c.stored
}

// Widgets declares a void instance entry point whose verification inspects a
// view derived from each receiver.
func Widgets() domain.Declaration {
	newCandidate := func(skew int) func(int, *rand.Rand) *candidateWidget {
		return func(int, *rand.Rand) *candidateWidget {
			return &candidateWidget{skew: skew}
		}
	}
	return domain.Declaration{
		Name:        WidgetContract,
		Description: "void instance entry point verified through a receiver-derived view",
		Reference:   adapt.VoidMethod1("doNothing", (*Widget).DoNothing),
		Candidates: map[string]domain.Unit{
			"correct":    adapt.WithReceiver(adapt.VoidMethod1("doNothing", (*candidateWidget).DoNothing), newCandidate(0)),
			"mismatched": adapt.WithReceiver(adapt.VoidMethod1("doNothing", (*candidateWidget).DoNothing), newCandidate(1)),
		},
		Verify: verifyWidgets,
	}
}

func verifyWidgets(ours, theirs domain.TestOutput) error {
	ourWidget, ok := ours.Receiver().(InnerSource)
	if !ok {
		return errors.New("reference receiver exposes no inner view")
	}
	theirWidget, ok := theirs.Receiver().(InnerSource)
	if !ok {
		return fmt.Errorf("candidate receiver %T exposes no inner view", theirs.Receiver())
	}
	widgets, ok := ours.Args()[0].(int)
	if !ok {
		return fmt.Errorf("unexpected argument %T", ours.Args()[0])
	}
	want := ourWidget.GetInner(widgets).GetWidgets()
	got := theirWidget.GetInner(widgets).GetWidgets()
	if want != got {
		return fmt.Errorf("getInner(%d).getWidgets(): reference %d, candidate %d", widgets, want, got)
	}
	return nil
}
