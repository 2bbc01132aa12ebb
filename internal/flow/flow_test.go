package flow

import (
	"strings"
	"testing"
	"time"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/chat"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
)

type fakeMessenger struct {
	texts []string
	menus []string
	edits []string
	acked int
}

func (m *fakeMessenger) SendText(text string)                       { m.texts = append(m.texts, text) }
func (m *fakeMessenger) SendMenu(text string, _ chat.Menu)          { m.menus = append(m.menus, text) }
func (m *fakeMessenger) EditMessage(_ chat.MessageRef, text string) { m.edits = append(m.edits, text) }
func (m *fakeMessenger) AckCallback(_ chat.MessageRef)              { m.acked++ }

type fakeSink struct {
	submitted []*reflection.Reflection
}

func (s *fakeSink) Submit(r *reflection.Reflection) { s.submitted = append(s.submitted, r) }

func textUpdate(text string) *chat.Update {
	return &chat.Update{Kind: chat.UpdateText, Text: text}
}

func rateUpdate(value string) *chat.Update {
	return &chat.Update{
		Kind:    chat.UpdateCallback,
		Payload: chat.Payload{Purpose: chat.PurposeRate, ID: value, Data: value},
	}
}

func TestFullDialogue(t *testing.T) {
	messenger := &fakeMessenger{}
	sink := &fakeSink{}
	r := reflection.New(time.Date(2026, 3, 14, 14, 5, 0, 0, time.UTC))
	f := New(messenger, sink, r)

	f.Start()
	if f.Stage() != StageAwaitActivity {
		t.Fatalf("after Start: stage = %v, want StageAwaitActivity", f.Stage())
	}
	if len(messenger.texts) != 1 {
		t.Fatalf("after Start: %d texts sent, want 1", len(messenger.texts))
	}

	f.Refresh() // no input: AwaitActivity must stay put
	if f.Stage() != StageAwaitActivity {
		t.Fatalf("after Refresh: stage = %v, want StageAwaitActivity", f.Stage())
	}

	f.HandleUpdate(textUpdate("Read"))
	if r.Activity != "Read" {
		t.Errorf("activity = %q, want %q", r.Activity, "Read")
	}
	if f.Stage() != StageAwaitPleasure {
		t.Fatalf("after activity: stage = %v, want StageAwaitPleasure", f.Stage())
	}

	f.HandleUpdate(rateUpdate("4"))
	if r.PleasureRating != "4" {
		t.Errorf("pleasure = %q, want %q", r.PleasureRating, "4")
	}
	if f.Stage() != StageAwaitValue {
		t.Fatalf("after pleasure: stage = %v, want StageAwaitValue", f.Stage())
	}

	f.HandleUpdate(rateUpdate("7"))
	if r.ValueRating != "7" {
		t.Errorf("value = %q, want %q", r.ValueRating, "7")
	}
	if !f.Finished() || f.Stage() != StageDone {
		t.Fatalf("flow not finished: stage = %v, finished = %v", f.Stage(), f.Finished())
	}

	if len(sink.submitted) != 1 || sink.submitted[0] != r {
		t.Fatalf("sink received %d reflections, want the flow's own", len(sink.submitted))
	}
	if !r.Complete() {
		t.Error("reflection should be write-eligible after the dialogue")
	}
	last := messenger.texts[len(messenger.texts)-1]
	for _, want := range []string{"Read", "4", "7"} {
		if !strings.Contains(last, want) {
			t.Errorf("confirmation %q missing %q", last, want)
		}
	}
	if messenger.acked != 2 {
		t.Errorf("acked %d callbacks, want 2", messenger.acked)
	}
}

func TestOutOfStageInputIgnored(t *testing.T) {
	messenger := &fakeMessenger{}
	sink := &fakeSink{}
	r := reflection.New(time.Now())
	f := New(messenger, sink, r)
	f.Start()

	// A rating callback while awaiting activity text must change nothing.
	f.HandleUpdate(rateUpdate("9"))
	if f.Stage() != StageAwaitActivity {
		t.Errorf("stage = %v, want StageAwaitActivity", f.Stage())
	}
	if r.Activity != "" || r.PleasureRating != "" {
		t.Errorf("fields changed: activity=%q pleasure=%q", r.Activity, r.PleasureRating)
	}

	// A text message during a rating stage is also ignored.
	f.HandleUpdate(textUpdate("Read"))
	f.HandleUpdate(textUpdate("not a rating"))
	if f.Stage() != StageAwaitPleasure {
		t.Errorf("stage = %v, want StageAwaitPleasure", f.Stage())
	}

	// A callback for a different menu is not consumed.
	f.HandleUpdate(&chat.Update{
		Kind:    chat.UpdateCallback,
		Payload: chat.Payload{Purpose: chat.PurposeQuestion, ID: "x", Data: chat.AnswerYes},
	})
	if f.Stage() != StageAwaitPleasure || r.PleasureRating != "" {
		t.Errorf("question callback consumed by rating stage")
	}
}

func TestDoneIsTerminal(t *testing.T) {
	messenger := &fakeMessenger{}
	sink := &fakeSink{}
	r := reflection.New(time.Now())
	f := New(messenger, sink, r)

	f.Start()
	f.HandleUpdate(textUpdate("Read"))
	f.HandleUpdate(rateUpdate("4"))
	f.HandleUpdate(rateUpdate("7"))

	sent := len(messenger.texts) + len(messenger.menus)
	f.HandleUpdate(rateUpdate("10"))
	f.HandleUpdate(textUpdate("more"))
	f.Refresh()

	if got := len(messenger.texts) + len(messenger.menus); got != sent {
		t.Errorf("finished flow still sent messages: %d -> %d", sent, got)
	}
	if len(sink.submitted) != 1 {
		t.Errorf("finished flow submitted again: %d", len(sink.submitted))
	}
	if r.ValueRating != "7" {
		t.Errorf("value overwritten after DONE: %q", r.ValueRating)
	}
}

func TestEndStopsFlow(t *testing.T) {
	messenger := &fakeMessenger{}
	f := New(messenger, &fakeSink{}, reflection.New(time.Now()))
	f.Start()
	f.End()

	f.HandleUpdate(textUpdate("Read"))
	if len(messenger.menus) != 0 {
		t.Error("ended flow still reacted to input")
	}
	if !f.Finished() {
		t.Error("ended flow must report finished")
	}
}
