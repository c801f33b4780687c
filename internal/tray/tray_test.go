package tray

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

func TestNotify(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	want := fyne.NewNotification(title, "MIDI input unavailable")
	test.AssertNotificationSent(t, want, func() {
		Notify(app, "MIDI input unavailable")
	})
}
