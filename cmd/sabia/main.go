package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present so SABIA_API_URL etc. can live next to the
	// working directory.
	_ = godotenv.Load()

	ctx := context.Background()

	args := os.Args[1:]
	cmd := "chat"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	var err error
	switch cmd {
	case "login":
		err = runLogin(ctx, args)
	case "register":
		err = runRegister(ctx, args)
	case "logout":
		err = runLogout(args)
	case "whoami":
		err = runWhoami(args)
	case "chat":
		err = runChat(ctx, args)
	case "ask":
		err = runAsk(ctx, args)
	case "history":
		err = runHistory(ctx, args)
	case "stats":
		err = runStats(ctx, args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

func usage() {
	fmt.Print(`sabia - terminal client for the Sabiá chatbot

Usage:
  sabia login      [-email addr]            sign in
  sabia register   [-name n] [-email addr]  create an account and sign in
  sabia logout                              sign out
  sabia whoami                              show the current identity
  sabia chat                                interactive chat (default)
  sabia ask <question...>                   one-shot question
  sabia history    [-pages n] [-all]        browse past conversations
  sabia history    -search <query>          keyword search
  sabia history    -show <id>               full conversation
  sabia history    -delete <id>             delete one conversation
  sabia history    -clear                   delete everything
  sabia history    -export                  mirror history into the local archive
  sabia stats                               usage dashboard
`)
}
