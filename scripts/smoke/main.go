package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/core"
	"github.com/vovakirdan/msgboard/internal/relay"
)

func main() {
	webURL := flag.String("web", "http://localhost:3000", "web server base URL")
	ingestAddr := flag.String("ingest", "", "send straight to this ingest host:port instead of the web form")
	user := flag.String("user", "tester", "username to submit")
	text := flag.String("text", "hello from smoke test", "message text to submit")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *ingestAddr != "" {
		logger := zerolog.Nop()
		client := relay.NewClient(*ingestAddr, *timeout, &logger)
		if err := client.Send(ctx, core.NewMessage(*user, *text)); err != nil {
			log.Fatalf("send: %v", err)
		}
		fmt.Println("payload delivered to", *ingestAddr)
		return
	}

	for _, page := range []string{"/", "/message.html", "/style.css", "/logo.png", "/nonexistent"} {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, *webURL+page, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatalf("get %s: %v", page, err)
		}
		resp.Body.Close()
		fmt.Printf("GET %-14s %d %s\n", page, resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	form := url.Values{"username": {*user}, "message": {*text}}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, *webURL+"/message", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("POST /message      %d %s\n", resp.StatusCode, body)
}
