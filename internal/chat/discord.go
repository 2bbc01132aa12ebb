package chat

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// DiscordConfig holds Discord connection settings.
type DiscordConfig struct {
	Token        string
	TargetUserID string
	// ChannelID is the channel prompts are sent to. Empty means a DM channel
	// with the target user is opened at Start.
	ChannelID string
}

// Discord implements Messenger over a discordgo session and forwards inbound
// updates (messages and button interactions) to a handler.
type Discord struct {
	session   *discordgo.Session
	channelID string
	targetID  string
	botID     string
	log       zerolog.Logger
	onUpdate  func(Update)

	mu      sync.Mutex
	pending map[string]*discordgo.Interaction
}

// NewDiscord creates the session and registers handlers. The update handler
// must be set with OnUpdate before Start.
func NewDiscord(cfg DiscordConfig, logger zerolog.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create Discord session: %w", err)
	}

	d := &Discord{
		session:   session,
		channelID: cfg.ChannelID,
		targetID:  cfg.TargetUserID,
		log:       logger.With().Str("component", "discord").Logger(),
		pending:   make(map[string]*discordgo.Interaction),
	}

	session.AddHandler(d.handleMessage)
	session.AddHandler(d.handleInteraction)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	return d, nil
}

// OnUpdate sets the inbound update handler.
func (d *Discord) OnUpdate(fn func(Update)) {
	d.onUpdate = fn
}

// Start connects to Discord and resolves the prompt channel.
func (d *Discord) Start() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("open Discord connection: %w", err)
	}

	d.botID = d.session.State.User.ID
	d.log.Info().Str("user", d.session.State.User.Username).Msg("connected")

	if d.channelID == "" {
		ch, err := d.session.UserChannelCreate(d.targetID)
		if err != nil {
			return fmt.Errorf("open DM channel with target user: %w", err)
		}
		d.channelID = ch.ID
	}

	return nil
}

// Stop disconnects from Discord.
func (d *Discord) Stop() error {
	return d.session.Close()
}

// SendText sends a plain text message to the prompt channel.
func (d *Discord) SendText(text string) {
	if _, err := d.session.ChannelMessageSend(d.channelID, text); err != nil {
		d.log.Error().Err(err).Msg("couldn't send text")
	}
}

// SendMenu sends a message with the menu's buttons attached.
func (d *Discord) SendMenu(text string, menu Menu) {
	components := make([]discordgo.MessageComponent, 0, len(menu.Rows))
	for _, row := range menu.Rows {
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, discordgo.Button{
				Label:    b.Label,
				Style:    discordgo.SecondaryButton,
				CustomID: b.Payload,
			})
		}
		components = append(components, discordgo.ActionsRow{Components: buttons})
	}

	_, err := d.session.ChannelMessageSendComplex(d.channelID, &discordgo.MessageSend{
		Content:    text,
		Components: components,
	})
	if err != nil {
		d.log.Error().Err(err).Msg("couldn't send menu")
	}
}

// EditMessage replaces a message's text and strips its buttons, so a consumed
// menu can't be pressed again.
func (d *Discord) EditMessage(ref MessageRef, text string) {
	empty := []discordgo.MessageComponent{}
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.ChannelID,
		ID:         ref.MessageID,
		Content:    &text,
		Components: &empty,
	})
	if err != nil {
		d.log.Error().Err(err).Str("message", ref.MessageID).Msg("couldn't edit message")
	}
}

// AckCallback closes out a button interaction. Unknown callback ids (e.g.
// after a restart) are a no-op.
func (d *Discord) AckCallback(ref MessageRef) {
	d.mu.Lock()
	interaction, ok := d.pending[ref.CallbackID]
	if ok {
		delete(d.pending, ref.CallbackID)
	}
	d.mu.Unlock()
	if !ok {
		return
	}

	err := d.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		d.log.Error().Err(err).Str("callback", ref.CallbackID).Msg("couldn't answer callback")
	}
}

func (d *Discord) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == d.botID {
		return
	}
	if d.onUpdate == nil {
		return
	}

	d.onUpdate(Update{
		Kind:     UpdateText,
		AuthorID: m.Author.ID,
		Text:     m.Content,
		Ref: MessageRef{
			ChannelID: m.ChannelID,
			MessageID: m.ID,
		},
	})
}

func (d *Discord) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	user := i.User
	if user == nil && i.Member != nil {
		user = i.Member.User
	}
	if user == nil || d.onUpdate == nil {
		return
	}

	d.mu.Lock()
	d.pending[i.ID] = i.Interaction
	d.mu.Unlock()

	data := i.MessageComponentData()
	d.onUpdate(Update{
		Kind:     UpdateCallback,
		AuthorID: user.ID,
		Payload:  ParsePayload(data.CustomID),
		Ref: MessageRef{
			ChannelID:  i.ChannelID,
			MessageID:  i.Message.ID,
			CallbackID: i.ID,
		},
	})
}
