// Package telegram is a thin chat front-end: every Telegram chat maps to
// one conversation session, and each text message runs a full
// conversational turn.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/Hkishore1/ClaimsRAG/internal/config"
	"github.com/Hkishore1/ClaimsRAG/internal/entity"
	"github.com/Hkishore1/ClaimsRAG/internal/telegram/middleware"
)

const welcomeText = "Hi! Ask me about your insurance policies. Use /clear to start over."

type ChatUsecase interface {
	HandleTurn(ctx context.Context, sessionID, message string, k int) (*entity.ChatTurnOutcome, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

type bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	chatUC      ChatUsecase
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(cfg *config.TelegramConfig, chatUC ChatUsecase, logger *zap.Logger) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	b := &bot{
		api:      api,
		cfg:      cfg,
		chatUC:   chatUC,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	b.loggingMW = middleware.NewLoggingMiddleware(logger)
	b.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	b.rateLimitMW = middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, logger, api)

	return b, nil
}

// Start starts the update polling loop
func (b *bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

func (b *bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

func (b *bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	sessionID := sessionForChat(message.Chat.ID)
	outcome, err := b.chatUC.HandleTurn(ctx, sessionID, message.Text, 0)
	if err != nil {
		ctxzap.Error(ctx, "chat turn failed",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		b.send(message.Chat.ID, "Sorry, I could not process that. Please try again.")
		return
	}

	b.send(message.Chat.ID, outcome.Reply)
}

func (b *bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start", "help":
		b.send(message.Chat.ID, welcomeText)
	case "clear":
		if err := b.chatUC.ClearHistory(ctx, sessionForChat(message.Chat.ID)); err != nil {
			ctxzap.Error(ctx, "failed to clear history", zap.Error(err))
			b.send(message.Chat.ID, "Could not clear the conversation. Please try again.")
			return
		}
		b.send(message.Chat.ID, "Conversation cleared.")
	default:
		b.send(message.Chat.ID, "Unknown command. Use /start, /clear or just ask a question.")
	}
}

func (b *bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func sessionForChat(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}
