// Package bot routes inbound updates to the poll-response handler, the
// active conversation flow, and the debug command table.
package bot

import (
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/chat"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/flow"
	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
)

const (
	msgOfferRating     = "Time to rate your behaviour. Shall we?"
	msgRequestNotFound = "[Removed: request not found. Requests are kept for 7 days]"
	msgRequestAccepted = "Logging request accepted ✅"
	msgRequestSkipped  = "Logging request skipped ❌"
)

// Bot is the dispatch layer. It owns the single optional active flow:
// starting a new flow is an explicit replace-and-discard operation.
type Bot struct {
	messenger chat.Messenger
	queue     *reflection.Queue
	sink      flow.Sink
	log       zerolog.Logger
	targetID  string
	debugMode bool
	clock     func() time.Time
	current   *flow.Flow
	commands  map[string]func()
}

// New wires the dispatcher. targetID is the only user whose updates are
// processed.
func New(messenger chat.Messenger, queue *reflection.Queue, sink flow.Sink, targetID string, logger zerolog.Logger) *Bot {
	b := &Bot{
		messenger: messenger,
		queue:     queue,
		sink:      sink,
		log:       logger.With().Str("component", "bot").Logger(),
		targetID:  targetID,
		clock:     time.Now,
	}
	b.commands = map[string]func(){
		"/poll":       b.simulatePoll,
		"/randompoll": b.simulateRandomPoll,
		"/daypoll":    b.simulateDayPoll,
		"/queue":      b.printQueue,
	}
	return b
}

// EnableDebugMode toggles the debug command table.
func (b *Bot) EnableDebugMode(enabled bool) {
	b.debugMode = enabled
}

// SetClock overrides the time source.
func (b *Bot) SetClock(clock func() time.Time) {
	b.clock = clock
}

// AddPoll offers a reflection to the user and parks it in the pending queue.
func (b *Bot) AddPoll(r *reflection.Reflection) {
	b.log.Debug().Str("period", r.TargetPeriod).Str("id", r.ID).Msg("new poll added to the queue")
	b.messenger.SendMenu(r.Banner(msgOfferRating), chat.QuestionMenu(r.ID))
	b.queue.Enqueue(r)
}

// HandleUpdate processes one inbound update. Authorship is checked once,
// then all three handlers run in fixed order. A handler failure must never
// take down the listener, so panics are contained here.
func (b *Bot) HandleUpdate(u chat.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("update handler panic contained")
		}
	}()

	if u.AuthorID != b.targetID {
		b.log.Warn().Str("author", u.AuthorID).Msg("update from unknown user dropped")
		return
	}

	b.dispatchPoll(&u)
	b.dispatchFlow(&u)
	b.dispatchCommand(&u)
}

// dispatchPoll handles accept/decline callbacks for pending polls.
func (b *Bot) dispatchPoll(u *chat.Update) {
	if !u.IsCallback() || u.Payload.Purpose != chat.PurposeQuestion {
		return
	}

	var newText string
	target := b.queue.FindByID(u.Payload.ID)
	if target == nil {
		// Already handled, expired, or never existed: an expected outcome
		// reachable through stale buttons.
		newText = msgRequestNotFound
	} else {
		if u.Payload.Data == chat.AnswerYes {
			newText = target.Banner(msgRequestAccepted)
			if b.current != nil {
				b.current.End()
			}
			b.current = flow.New(b.messenger, b.sink, target)
			b.current.Start()
		} else {
			newText = target.Banner(msgRequestSkipped)
		}
		// Either way the entry is no longer pending.
		b.queue.RemoveByID(u.Payload.ID)
	}

	b.messenger.EditMessage(u.Ref, newText)
	b.messenger.AckCallback(u.Ref)
}

// dispatchFlow forwards the update into the active flow, discarding it first
// if it already finished.
func (b *Bot) dispatchFlow(u *chat.Update) {
	if b.current == nil {
		return
	}
	if b.current.Finished() {
		b.current = nil
		return
	}
	b.current.HandleUpdate(u)
}

// dispatchCommand runs slash-commands against the debug command table.
// Unknown commands are logged and swallowed.
func (b *Bot) dispatchCommand(u *chat.Update) {
	if !u.IsText() || !strings.HasPrefix(u.Text, "/") {
		return
	}
	if !b.debugMode {
		return
	}

	cmd, ok := b.commands[u.Text]
	if !ok {
		b.log.Warn().Str("command", u.Text).Msg("unknown debug command")
		return
	}
	b.log.Debug().Str("command", u.Text).Msg("executing debug command")
	cmd()
}

func (b *Bot) simulatePoll() {
	b.AddPoll(reflection.New(b.clock()))
}

func (b *Bot) simulateRandomPoll() {
	hour := rand.Intn(10) + 9
	b.AddPoll(reflection.NewWithPeriod(b.clock(), reflection.PeriodLabel(hour)))
}

func (b *Bot) simulateDayPoll() {
	b.AddPoll(reflection.NewWithPeriod(b.clock(), reflection.WholeDayPeriod))
}

func (b *Bot) printQueue() {
	b.log.Debug().Msg(b.queue.Dump())
}
