package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"carport-configurator/internal/configuration"
)

// Notifier dispatches the post-persistence notifications: a confirmation to
// the customer, a lead alert to the admin mailbox and, when configured, a
// short message to a Telegram channel. Every failure here is logged and
// reported to the caller only as a degraded email-sent flag; nothing ever
// undoes the persisted configuration.
type Notifier struct {
	mailer     Mailer
	resolver   NameResolver
	adminEmail string
	logger     *zap.Logger

	tgBot     *tgbotapi.BotAPI
	channelID int64
}

func New(mailer Mailer, resolver NameResolver, adminEmail string, logger *zap.Logger) *Notifier {
	return &Notifier{
		mailer:     mailer,
		resolver:   resolver,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// WithTelegram enables the optional channel alert. A broken token disables
// it rather than failing construction.
func (n *Notifier) WithTelegram(token string, channelID int64) *Notifier {
	if token == "" || channelID == 0 {
		return n
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		n.logger.Warn("Telegram notifications disabled", zap.Error(err))
		return n
	}

	n.tgBot = bot
	n.channelID = channelID
	return n
}

// Dispatch sends both emails (concurrently, they are independent) plus the
// optional channel alert. The returned error aggregates email failures so
// the caller can report an "email sent" flag; it must never influence the
// submission outcome.
func (n *Notifier) Dispatch(ctx context.Context, rec *configuration.Record, id int64) error {
	view := buildView(ctx, n.resolver, rec, id)

	customerHTML, err := renderCustomerEmail(view)
	if err != nil {
		n.logger.Error("Failed to render customer email", zap.Int64("id", id), zap.Error(err))
		return err
	}
	adminHTML, err := renderAdminEmail(view)
	if err != nil {
		n.logger.Error("Failed to render admin email", zap.Int64("id", id), zap.Error(err))
		return err
	}

	adminMsg := Message{
		To:      n.adminEmail,
		Subject: fmt.Sprintf("New %s lead #%d — %s", view.ProductLine, id, view.Customer.Name),
		HTML:    adminHTML,
	}
	if summary, err := buildExcelSummary(view); err == nil {
		adminMsg.Attachments = append(adminMsg.Attachments, Attachment{
			Filename: fmt.Sprintf("configuration_%d.xlsx", id),
			Data:     summary,
		})
	} else {
		n.logger.Warn("Failed to build Excel summary", zap.Int64("id", id), zap.Error(err))
	}

	customerMsg := Message{
		To:      rec.Customer.Email,
		Subject: fmt.Sprintf("Your configuration #%d is confirmed", id),
		HTML:    customerHTML,
	}

	errCh := make(chan error, 2)
	for _, msg := range []Message{customerMsg, adminMsg} {
		go func(msg Message) {
			if err := n.mailer.Send(ctx, msg); err != nil {
				n.logger.Error("Failed to send notification email",
					zap.Int64("id", id),
					zap.String("to", msg.To),
					zap.Error(err))
				errCh <- err
				return
			}
			errCh <- nil
		}(msg)
	}

	var sendErrs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			sendErrs = append(sendErrs, err)
		}
	}

	n.notifyChannel(view)

	return errors.Join(sendErrs...)
}

// notifyChannel posts a short lead summary to the configured Telegram
// channel. Best effort only.
func (n *Notifier) notifyChannel(view View) {
	if n.tgBot == nil {
		return
	}

	text := fmt.Sprintf(
		"New %s lead #%d\nModel: %s\nSize: %.0fx%.0f cm\nPrice: %.2f EUR\nCustomer: %s (%s)",
		view.ProductLine, view.ID,
		view.Model,
		view.WidthCM, view.DepthCM,
		view.TotalPrice,
		view.Customer.Name, view.Customer.Phone,
	)

	msg := tgbotapi.NewMessage(n.channelID, text)
	if _, err := n.tgBot.Send(msg); err != nil {
		n.logger.Error("Failed to send channel notification",
			zap.Int64("id", view.ID),
			zap.Error(err))
	}
}
