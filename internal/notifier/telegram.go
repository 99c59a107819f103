package notifier

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wilayah-id/crawler/internal/entities"
)

// Telegram sends the crawl summary to a chat once a run finishes. Crawls of
// the full hierarchy take hours, nobody watches the terminal that long.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) NotifyCrawlCompleted(run entities.CrawlRun) error {

	text := fmt.Sprintf(
		"crawl finished in %v\nprovinces: %d\ncities/regencies: %d\ndistricts: %d\nvillages: %d\nfailed fetches: %d\nsaved to: %s",
		run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
		run.Provinces, run.Cities, run.Districts, run.Villages, run.FailedFetches, run.OutputFile)

	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	return err
}
