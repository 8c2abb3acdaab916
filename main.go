package main

import (
	"fmt"

	"github.com/segin/webchess-sub002/ui"
)

func main() {
	if err := ui.RunApp(); err != nil {
		fmt.Println(err)
	}
}
