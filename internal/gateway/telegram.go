package gateway

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/samvad/internal/agent"
)

type TelegramGateway struct {
	Bot     *tgbotapi.BotAPI
	Runtime agent.Responder
}

func NewTelegramGateway(token string, runtime agent.Responder) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:     bot,
		Runtime: runtime,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		ctx := context.Background()
		chatID := fmt.Sprintf("tg:%d", update.Message.Chat.ID)
		response, err := tg.Runtime.Respond(ctx, chatID, update.Message.Text)
		if err != nil {
			log.Printf("Error handling turn: %v", err)
			response = "Something went wrong on my side. Could you say that again?"
		}
		if response == "" {
			continue
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, response)
		tg.Bot.Send(msg)
	}
	return nil
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id := int64(0)
	if _, err := fmt.Sscanf(chatID, "tg:%d", &id); err != nil || id == 0 {
		return fmt.Errorf("invalid telegram chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = "Markdown" // Enable markdown for better alerts
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
