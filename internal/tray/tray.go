// Package tray shows the soundboard in the system tray.
package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-soundboard/internal/config"
	"github.com/PixPMusic/gopher-soundboard/internal/startup"
)

const title = "Gopher Soundboard"

// Callbacks for tray menu actions
type Callbacks struct {
	OnReload  func()
	OnStopAll func()
	OnQuit    func()
}

// Setup installs the tray menu. It reports false when the driver has no
// system tray, in which case nothing is shown.
func Setup(app fyne.App, settings *config.Settings, entry startup.Entry, callbacks Callbacks, log *zap.Logger) bool {
	desk, ok := app.(desktop.App)
	if !ok {
		return false
	}
	if log == nil {
		log = zap.NewNop()
	}

	reloadItem := fyne.NewMenuItem("Reload Sound Bank", callbacks.OnReload)
	stopItem := fyne.NewMenuItem("Stop All Sounds", callbacks.OnStopAll)
	startupItem := fyne.NewMenuItem("Open at Startup", nil)
	startupItem.Checked = settings.OpenAtStartup
	quitItem := fyne.NewMenuItem("Quit", callbacks.OnQuit)

	menu := fyne.NewMenu(title,
		reloadItem,
		stopItem,
		fyne.NewMenuItemSeparator(),
		startupItem,
		fyne.NewMenuItemSeparator(),
		quitItem,
	)

	startupItem.Action = func() {
		enabled := !startupItem.Checked
		if err := startup.Apply(enabled, entry); err != nil {
			log.Warn("could not change launch at login", zap.Bool("enabled", enabled), zap.Error(err))
			Notify(app, "Could not change launch at login")
			return
		}
		startupItem.Checked = enabled
		settings.OpenAtStartup = enabled
		if err := settings.Save(); err != nil {
			log.Warn("could not save settings", zap.Error(err))
		}
		menu.Refresh()
	}

	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(theme.MediaMusicIcon())
	return true
}

// Notify shows a desktop notification
func Notify(app fyne.App, message string) {
	app.SendNotification(fyne.NewNotification(title, message))
}
