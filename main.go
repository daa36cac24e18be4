package main

import (
	"github.com/nocturnal-narratives/nocturnal-go/nocturnal"
)

func main() {
	nocturnal.InitAndServe()
}
