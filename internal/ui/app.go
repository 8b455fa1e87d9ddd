package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
)

func RunApp() {
	// preferences need a stable app ID to persist
	myApp := app.NewWithID("io.inkslate.board")
	myWindow := myApp.NewWindow("InkSlate")
	myWindow.Resize(fyne.NewSize(1280, 800))

	settings := NewSettings(myApp.Preferences())
	board := NewBoardWidget(settings, myApp.Preferences())
	board.SetWindow(myWindow)

	toolbar := NewToolbar(board, settings, myWindow)

	content := container.NewBorder(toolbar, nil, nil, nil, board)
	myWindow.SetContent(content)
	myWindow.Canvas().Focus(board)

	// flush the active slot on close so the debounce window never loses
	// the last edits
	myWindow.SetCloseIntercept(func() {
		board.flushNow()
		myWindow.Close()
	})
	myWindow.ShowAndRun()
}
