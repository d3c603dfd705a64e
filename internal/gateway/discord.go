package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rahul/samvad/internal/agent"
)

type DiscordGateway struct {
	Session *discordgo.Session
	Runtime agent.Responder
}

func NewDiscordGateway(token string, runtime agent.Responder) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages

	dg := &DiscordGateway{
		Session: session,
		Runtime: runtime,
	}
	session.AddHandler(dg.onMessage)
	return dg, nil
}

func (dg *DiscordGateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	log.Printf("[%s] %s", m.Author.Username, m.Content)

	ctx := context.Background()
	chatID := "dc:" + m.ChannelID
	response, err := dg.Runtime.Respond(ctx, chatID, m.Content)
	if err != nil {
		log.Printf("Error handling turn: %v", err)
		response = "Something went wrong on my side. Could you say that again?"
	}
	if response == "" {
		return
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, response); err != nil {
		log.Printf("Error sending discord message: %v", err)
	}
}

func (dg *DiscordGateway) Start() error {
	return dg.Session.Open()
}

func (dg *DiscordGateway) Send(chatID string, text string) error {
	channelID := strings.TrimPrefix(chatID, "dc:")
	if channelID == chatID {
		return fmt.Errorf("invalid discord chat ID: %s", chatID)
	}
	_, err := dg.Session.ChannelMessageSend(channelID, text)
	return err
}

func (dg *DiscordGateway) Stop() error {
	return dg.Session.Close()
}
