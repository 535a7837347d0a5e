// Package bot adapts the dialog engine to the Telegram transport: command
// handlers, menu-label dispatch, and reply keyboards.
package bot

import (
	"log/slog"

	"github.com/m3rciful/weatherbot/core/logger"
	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/weatherbot/core/telegram/helpers"
	"github.com/m3rciful/weatherbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// Module wires the dialog engine into telegram routing.
type Module struct {
	engine *dialog.Engine
}

// New builds the transport module around a dialog engine.
func New(engine *dialog.Engine) *Module {
	return &Module{engine: engine}
}

// Register adds commands and the menu-label fallback to the registry.
func (m *Module) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     m.handleStart,
		Description: "Начать работу с ботом",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     m.handleHelp,
		Description: "Помощь",
	})
	reg.SetTextFallback(m.dispatchMenu)
}

// InProgress satisfies the router FSM interface.
func (m *Module) InProgress(userID int64) bool {
	return m.engine.InProgress(userID)
}

// HandleText feeds free text into the active dialog step. The back button
// escapes a pending step instead of being consumed as its answer.
func (m *Module) HandleText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if c.Text() == btnBack {
		reply, err := m.engine.HandleAction(ctx, c.Sender().ID, dialog.ActionBack)
		return m.sendReply(c, reply, err)
	}
	reply, handled, err := m.engine.HandleText(ctx, c.Sender().ID, c.Text())
	if !handled {
		return nil
	}
	return m.sendReply(c, reply, err)
}

func (m *Module) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	reply, err := m.engine.Start(ctx, sender.ID, sender.FirstName)
	return m.sendReply(c, reply, err)
}

func (m *Module) handleHelp(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := m.engine.HandleAction(ctx, c.Sender().ID, dialog.ActionHelp)
	return m.sendReply(c, reply, err)
}

// dispatchMenu handles free text outside a dialog: recognized menu labels
// trigger their action, anything else is ignored.
func (m *Module) dispatchMenu(c tele.Context) error {
	action, ok := menuActions[c.Text()]
	if !ok {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "tg", "text.unmatched",
			slog.String("payload", logger.SanitizeLimit(c.Text(), 64)),
		)
		return nil
	}
	ctx := tghelpers.WithHandler(c, string(action))
	reply, err := m.engine.HandleAction(ctx, c.Sender().ID, action)
	return m.sendReply(c, reply, err)
}

// sendReply delivers the engine's reply and then surfaces the underlying
// operation error for handler summary logging.
func (m *Module) sendReply(c tele.Context, reply dialog.Reply, opErr error) error {
	if reply.Text != "" {
		if sendErr := tghelpers.SendMD(c, reply.Text, markupFor(reply.Menu)); sendErr != nil {
			return sendErr
		}
	}
	return opErr
}
