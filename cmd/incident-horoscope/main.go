package main

import (
	"incident-horoscope/internal/cli"
)

func main() {
	cli.Execute()
}
