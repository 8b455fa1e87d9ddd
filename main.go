package main

import "InkSlate/internal/ui"

func main() {
	ui.RunApp()
}
