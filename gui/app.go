// Package gui is the Fyne presentation layer. It implements
// player.Sink; every Sink method wraps its widget mutation in fyne.Do
// so notifications coming from render goroutines land on the single
// event-loop thread.
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"tunebox/player"
)

var audioExtensions = []string{".mp3", ".wav"}

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	player  *player.Player

	fileLabel   *widget.Label
	statusLabel *widget.Label
	gainValue   *widget.Label
	slider      *widget.Slider
}

func New() *App {
	return newApp(app.NewWithID("io.tunebox.app"))
}

func newApp(fyneApp fyne.App) *App {
	a := &App{fyneApp: fyneApp}
	a.fyneApp.Settings().SetTheme(&darkTheme{})
	a.window = a.fyneApp.NewWindow("Tunebox")

	title := widget.NewLabelWithStyle("Tunebox", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	a.fileLabel = widget.NewLabel("No file loaded")
	a.fileLabel.Alignment = fyne.TextAlignCenter
	a.fileLabel.Wrapping = fyne.TextWrapWord

	loadBtn := widget.NewButton("Load File", a.onLoad)
	playBtn := widget.NewButton("Play", a.onPlay)
	stopBtn := widget.NewButton("Stop", a.onStop)
	buttons := container.NewHBox(layout.NewSpacer(), loadBtn, playBtn, stopBtn, layout.NewSpacer())

	a.slider = widget.NewSlider(player.MinGainDB, player.MaxGainDB)
	a.slider.Step = 1
	a.slider.Value = player.DefaultGainDB
	a.slider.OnChanged = func(v float64) {
		if a.player != nil {
			a.player.SetGain(int(v))
		}
	}
	a.gainValue = widget.NewLabel(formatGain(player.DefaultGainDB))
	gainRow := container.NewBorder(nil, nil, widget.NewLabel("Volume:"), a.gainValue, a.slider)

	a.statusLabel = widget.NewLabel("Status: " + player.StatusIdle.String())
	a.statusLabel.Alignment = fyne.TextAlignCenter

	footer := widget.NewLabel("Supported formats: MP3, WAV")
	footer.Alignment = fyne.TextAlignCenter

	content := container.NewVBox(title, a.fileLabel, buttons, gainRow, a.statusLabel, footer)
	a.window.SetContent(container.NewPadded(content))
	a.window.Resize(fyne.NewSize(420, 320))
	a.window.SetFixedSize(true)
	return a
}

// SetPlayer wires the controller in after construction; the controller
// needs this App as its Sink, so neither can be built first with both
// in hand.
func (a *App) SetPlayer(p *player.Player) {
	a.player = p
}

// Run blocks until the window is closed.
func (a *App) Run() {
	a.window.ShowAndRun()
}

func (a *App) Quit() {
	fyne.Do(func() {
		a.fyneApp.Quit()
	})
}

func (a *App) onLoad() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return // dialog cancelled
		}
		path := reader.URI().Path()
		reader.Close()
		go a.player.Load(path)
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter(audioExtensions))
	fd.Show()
}

func (a *App) onPlay() {
	go a.player.Play()
}

func (a *App) onStop() {
	go a.player.Stop()
}

// player.Sink implementation

func (a *App) TrackLoaded(name string) {
	fyne.Do(func() {
		a.fileLabel.SetText("File: " + name)
	})
}

func (a *App) LoadFailed(err error) {
	fyne.Do(func() {
		dialog.ShowError(fmt.Errorf("could not load file: %w", err), a.window)
	})
}

func (a *App) NoTrackLoaded() {
	fyne.Do(func() {
		dialog.ShowInformation("Warning", "No file loaded yet.\nClick 'Load File' first.", a.window)
	})
}

func (a *App) GainChanged(db int) {
	fyne.Do(func() {
		a.gainValue.SetText(formatGain(db))
		if int(a.slider.Value) != db {
			a.slider.SetValue(float64(db))
		}
	})
}

func (a *App) StatusChanged(s player.Status) {
	fyne.Do(func() {
		a.statusLabel.SetText("Status: " + s.String())
	})
}

func formatGain(db int) string {
	return fmt.Sprintf("%+d dB", db)
}
