package main

import (
	"context"
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker <validate|assess|stats> ...")
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = RunValidate(os.Stdout, os.Args[2:])
	case "assess":
		err = RunAssess(os.Stdout, os.Args[2:])
	case "stats":
		err = RunStatsFromEnv(context.Background(), os.Stdout, os.Args[2:])
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}
