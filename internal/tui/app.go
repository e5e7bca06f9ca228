// Package tui renders one support conversation: the thread, a composer and
// a status line. It observes the sync core through the bus and reads the
// thread back from the session; it never mutates sync state directly.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pvictorino/supportchat/internal/bus"
	"github.com/pvictorino/supportchat/internal/session"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// App is the terminal conversation view.
type App struct {
	app      *tview.Application
	thread   *tview.TextView
	composer *tview.InputField
	status   *tview.TextView

	sess   *session.Session
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc

	online bool
	flash  string
}

// NewApp builds the view for an open session.
func NewApp(sess *session.Session, b *bus.Bus, logger *zap.Logger) *App {
	thread := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	thread.SetBorder(true)
	thread.SetTitle(" " + sess.Scope() + " ")

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)

	status := tview.NewTextView().SetDynamicColors(true)

	a := &App{
		app:      tview.NewApplication(),
		thread:   thread,
		composer: composer,
		status:   status,
		sess:     sess,
		bus:      b,
		logger:   logger,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			text := composer.GetText()
			if text != "" {
				sess.Send(text, nil)
				composer.SetText("")
			}
		}
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(thread, 0, 1, false).
		AddItem(composer, 3, 0, true).
		AddItem(status, 1, 0, false)
	a.app.SetRoot(layout, true)

	return a
}

// Run starts the event watcher and blocks until the user quits.
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)
	go a.watch(ctx)
	a.render()
	return a.app.Run()
}

// Stop tears the view down.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.app.Stop()
}

// watch re-renders on every core event the view cares about.
func (a *App) watch(ctx context.Context) {
	ch, unsub := a.bus.Subscribe("", 64)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			a.handleEvent(evt)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindNetOnline:
		a.online = true
	case bus.KindNetOffline:
		a.online = false
	case bus.KindMessageQueued:
		a.setFlash("message queued, will retry automatically")
	case bus.KindMessageFailed:
		a.setFlash("send failed, resend manually")
	case bus.KindQueueDrained:
		if report, ok := evt.Payload.(bus.DrainReport); ok && report.Succeeded > 0 {
			a.setFlash("queued messages delivered")
		}
	case bus.KindThreadUpdated, bus.KindThreadLoaded:
	default:
		return
	}
	a.app.QueueUpdateDraw(a.render)
}

// setFlash shows a transient status notice.
func (a *App) setFlash(text string) {
	a.flash = text
	go func() {
		time.Sleep(5 * time.Second)
		a.app.QueueUpdateDraw(func() {
			a.flash = ""
			a.render()
		})
	}()
}

func (a *App) render() {
	a.thread.SetText(renderThread(a.sess.Messages(), a.sess.Loading()))
	a.thread.ScrollToEnd()
	a.status.SetText(renderStatus(a.online, a.flash))
}
