package main

import "github.com/dmorgan81/stickerbot/internal/cli"

func main() {
	cli.Execute()
}
