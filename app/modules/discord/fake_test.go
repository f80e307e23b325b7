package discord

import (
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
)

// ------------------------
// Fake Session
// ------------------------

type FakeSession struct {
	mu    sync.Mutex
	trace []string

	Responses []*discordgo.InteractionResponse
	Edits     []*discordgo.WebhookEdit
	EditedFor []*discordgo.Interaction

	InteractionRespondFunc              func(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	InteractionResponseEditFunc         func(i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error)
	ApplicationCommandBulkOverwriteFunc func(appID, guildID string, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error)
}

func (f *FakeSession) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeSession) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	f.record("InteractionRespond")
	f.Responses = append(f.Responses, resp)
	f.mu.Unlock()
	if f.InteractionRespondFunc != nil {
		return f.InteractionRespondFunc(i, resp)
	}
	return nil
}

func (f *FakeSession) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	f.record("InteractionResponseEdit")
	f.Edits = append(f.Edits, edit)
	f.EditedFor = append(f.EditedFor, i)
	f.mu.Unlock()
	if f.InteractionResponseEditFunc != nil {
		return f.InteractionResponseEditFunc(i, edit)
	}
	return &discordgo.Message{}, nil
}

func (f *FakeSession) ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	f.record("ApplicationCommandBulkOverwrite")
	f.mu.Unlock()
	if f.ApplicationCommandBulkOverwriteFunc != nil {
		return f.ApplicationCommandBulkOverwriteFunc(appID, guildID, cmds)
	}
	return cmds, nil
}

// ------------------------
// Fake Publisher
// ------------------------

type published struct {
	topic string
	msg   *message.Message
}

type FakePublisher struct {
	mu       sync.Mutex
	Messages []published

	PublishFunc func(topic string, msgs ...*message.Message) error
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if f.PublishFunc != nil {
		if err := f.PublishFunc(topic, msgs...); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.Messages = append(f.Messages, published{topic: topic, msg: m})
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }
