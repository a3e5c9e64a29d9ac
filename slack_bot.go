package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

const slotActionPrefix = "slot_chosen_"

// slackAPI is the part of *slack.Client the bot uses.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
}

// SlackMessenger delivers workflow messages as Slack DMs.
type SlackMessenger struct {
	api slackAPI
}

func NewSlackMessenger(api slackAPI) *SlackMessenger {
	return &SlackMessenger{api: api}
}

func (m *SlackMessenger) PostMessage(ctx context.Context, targetID, text string, choices ...Choice) error {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(choices) > 0 {
		options = append(options, slack.MsgOptionBlocks(choiceBlocks(choices)...))
	}
	if _, _, err := m.api.PostMessageContext(ctx, targetID, options...); err != nil {
		return classifySlackError(err)
	}
	printVerbosely(3, "slotbot: delivered message to %s\n", targetID)
	return nil
}

func choiceBlocks(choices []Choice) []slack.Block {
	buttons := make([]slack.BlockElement, 0, len(choices))
	for _, c := range choices {
		buttons = append(buttons, slack.NewButtonBlockElement(c.ID, c.Value,
			slack.NewTextBlockObject(slack.PlainTextType, c.Label, true, false)))
	}
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Choose your preferred interview slot:*", false, false),
			nil, nil),
		slack.NewActionBlock("slot_choice", buttons...),
	}
}

func classifySlackError(err error) *DeliveryError {
	code := err.Error()
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		code = slackErr.Err
	}

	reason := ReasonOther
	switch code {
	case "not_in_channel", "channel_not_found", "cannot_dm_bot", "user_not_found", "user_not_visible":
		reason = ReasonUnreachable
	case "invalid_blocks", "invalid_blocks_format":
		reason = ReasonMalformedPayload
	}
	return &DeliveryError{Reason: reason, Code: code, Err: err}
}

// socketAcker acknowledges Socket Mode envelopes.
type socketAcker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

// Bot receives slash commands and button clicks over Socket Mode.
type Bot struct {
	api        slackAPI
	socketMode *socketmode.Client
	acker      socketAcker
	scheduler  *Scheduler
	command    string
	botUserID  string
}

func newSlackClient(cfg SlackConfig) (*slack.Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if !strings.HasPrefix(cfg.AppToken, "xapp-") {
		return nil, fmt.Errorf("app token must start with xapp-")
	}
	return slack.New(
		cfg.BotToken,
		slack.OptionDebug(cfg.Debug),
		slack.OptionAppLevelToken(cfg.AppToken),
	), nil
}

func NewBot(client *slack.Client, cfg SlackConfig, scheduler *Scheduler) *Bot {
	socketMode := socketmode.New(client, socketmode.OptionDebug(cfg.Debug))
	return &Bot{
		api:        client,
		socketMode: socketMode,
		acker:      socketMode,
		scheduler:  scheduler,
		command:    cfg.Command,
	}
}

// Run starts the bot event loop. Blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	authResp, err := b.api.AuthTestContext(ctx)
	if err != nil {
		log.Printf("slotbot: warning: failed to get bot user ID: %v", err)
	} else {
		b.botUserID = authResp.UserID
		log.Printf("slotbot: bot user ID: %s", b.botUserID)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-b.socketMode.Events:
				if !ok {
					return
				}
				go b.handleEvent(ctx, evt)
			}
		}
	}()

	return b.socketMode.RunContext(ctx)
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Println("slotbot: connecting to Socket Mode...")

	case socketmode.EventTypeConnected:
		log.Println("slotbot: connected to Socket Mode")

	case socketmode.EventTypeConnectionError:
		log.Printf("slotbot: connection error: %v", evt.Data)

	case socketmode.EventTypeSlashCommand:
		b.ack(evt)
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			log.Printf("slotbot: unexpected slash command payload %T", evt.Data)
			return
		}
		b.handleSlashCommand(ctx, cmd)

	case socketmode.EventTypeInteractive:
		b.ack(evt)
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			log.Printf("slotbot: unexpected interaction payload %T", evt.Data)
			return
		}
		b.handleInteraction(ctx, callback)
	}
}

// ack confirms the envelope before any handling so Slack does not redeliver it.
func (b *Bot) ack(evt socketmode.Event) {
	if evt.Request != nil {
		b.acker.Ack(*evt.Request)
	}
}

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	if cmd.Command != b.command {
		b.respond(ctx, cmd.ChannelID, cmd.ResponseURL, fmt.Sprintf("Unknown command: %s", cmd.Command))
		return
	}
	reply := b.scheduler.HandleScheduleCommand(ctx, CommandEvent{
		RequesterID: cmd.UserID,
		Text:        cmd.Text,
	})
	b.respond(ctx, cmd.ChannelID, cmd.ResponseURL, reply)
}

func (b *Bot) handleInteraction(ctx context.Context, callback slack.InteractionCallback) {
	for _, action := range callback.ActionCallback.BlockActions {
		if !strings.HasPrefix(action.ActionID, slotActionPrefix) {
			continue
		}
		index, err := strconv.Atoi(action.Value)
		if err != nil {
			b.respond(ctx, callback.Channel.ID, callback.ResponseURL, "❌ Invalid action value")
			continue
		}
		reply := b.scheduler.HandleSelection(ctx, SelectionEvent{
			ActorID: callback.User.ID,
			Index:   index,
		})
		b.respond(ctx, callback.Channel.ID, callback.ResponseURL, reply)
	}
}

// respond replies to the user who triggered an event, through the event's
// response URL when Slack provided one.
func (b *Bot) respond(ctx context.Context, channelID, responseURL, text string) {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if responseURL != "" {
		options = append(options, slack.MsgOptionResponseURL(responseURL, slack.ResponseTypeEphemeral))
	}
	if _, _, err := b.api.PostMessageContext(ctx, channelID, options...); err != nil {
		log.Printf("slotbot: error posting reply: %v", err)
	}
}
