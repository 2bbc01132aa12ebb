// Package flow drives one reflection through the four-stage logging dialogue.
package flow

import (
	"fmt"
	"strings"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/chat"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
)

// Stage is the flow's position in the dialogue.
type Stage int

const (
	StageAskActivity Stage = iota
	StageAwaitActivity
	StageAwaitPleasure
	StageAwaitValue
	StageDone
)

// Sink receives a completed reflection for write-back.
type Sink interface {
	Submit(r *reflection.Reflection)
}

const rateTemplate = "${RATE}"

const (
	msgAskActivity  = "What did you do in this period?"
	msgRatePleasure = "Rate the pleasure"
	msgRateValue    = "Rate the value"
	msgShowPleasure = "Pleasure rating: " + rateTemplate
	msgShowValue    = "Value rating: " + rateTemplate
	msgConfirmation = "*** Saved ***\nActivity: %s\nPleasure: %s\nValue: %s"
)

// Flow owns exactly one reflection for its lifetime. Each stage consumes only
// its matching input; everything else leaves the flow where it is. The flow
// is not locked: the dispatcher delivers updates to it one at a time.
type Flow struct {
	stage      Stage
	messenger  chat.Messenger
	sink       Sink
	reflection *reflection.Reflection
	finished   bool
}

// New binds a flow to a reflection. Call Start to issue the first prompt.
func New(messenger chat.Messenger, sink Sink, r *reflection.Reflection) *Flow {
	return &Flow{
		stage:      StageAskActivity,
		messenger:  messenger,
		sink:       sink,
		reflection: r,
	}
}

// Start emits the activity prompt and advances to awaiting the answer. This
// first transition is unconditional.
func (f *Flow) Start() {
	f.stage = StageAskActivity
	f.HandleUpdate(nil)
}

// Refresh re-drives the current stage with no input, re-issuing its prompt
// where the stage emits one unconditionally.
func (f *Flow) Refresh() {
	f.HandleUpdate(nil)
}

// End force-terminates the flow; further updates are ignored.
func (f *Flow) End() {
	f.finished = true
}

// Finished reports whether the flow reached its terminal state.
func (f *Flow) Finished() bool {
	return f.finished
}

// Stage returns the current stage.
func (f *Flow) Stage() Stage {
	return f.stage
}

// HandleUpdate feeds one inbound update into the current stage. Inputs that
// don't match the stage are ignored without side effects.
func (f *Flow) HandleUpdate(u *chat.Update) {
	if f.finished {
		return
	}

	switch f.stage {
	case StageAskActivity:
		f.messenger.SendText(f.reflection.Banner(msgAskActivity))
		f.stage = StageAwaitActivity

	case StageAwaitActivity:
		if !u.IsText() {
			return
		}
		f.reflection.Activity = u.Text
		f.messenger.SendMenu(f.reflection.Banner(msgRatePleasure), chat.RateMenu())
		f.stage = StageAwaitPleasure

	case StageAwaitPleasure:
		rate, ok := rateFrom(u)
		if !ok {
			return
		}
		f.reflection.PleasureRating = rate
		f.messenger.EditMessage(u.Ref, f.reflection.Banner(showRate(msgShowPleasure, rate)))
		f.messenger.AckCallback(u.Ref)
		f.messenger.SendMenu(f.reflection.Banner(msgRateValue), chat.RateMenu())
		f.stage = StageAwaitValue

	case StageAwaitValue:
		rate, ok := rateFrom(u)
		if !ok {
			return
		}
		f.reflection.ValueRating = rate
		f.messenger.EditMessage(u.Ref, f.reflection.Banner(showRate(msgShowValue, rate)))
		f.messenger.AckCallback(u.Ref)

		f.sink.Submit(f.reflection)
		f.messenger.SendText(f.reflection.Banner(fmt.Sprintf(msgConfirmation,
			f.reflection.Activity,
			f.reflection.PleasureRating,
			f.reflection.ValueRating)))

		f.stage = StageDone
		f.finished = true

	case StageDone:
		// terminal; nothing consumes input here
	}
}

// rateFrom extracts the rating value from a rate-menu callback. Callbacks
// tagged for other menus are not consumed.
func rateFrom(u *chat.Update) (string, bool) {
	if !u.IsCallback() || u.Payload.Purpose != chat.PurposeRate {
		return "", false
	}
	return u.Payload.Data, true
}

func showRate(template, rate string) string {
	return strings.Replace(template, rateTemplate, rate, 1)
}
