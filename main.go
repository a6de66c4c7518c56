package main

import (
	"log"

	"github.com/yuzhii/p115gate/cmd/p115gate"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	p115gate.Execute()
}
