// chaski-cli asks a running chaski daemon one question from the command
// line, printing either the whole answer or the token stream as it arrives.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/vigilaperu/chaski/pkg/models"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "chaski daemon base URL")
	sessionID := flag.String("session", "", "session id to continue a conversation")
	stream := flag.Bool("stream", false, "print tokens as they arrive")
	flag.Parse()

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "usage: chaski-cli [-url URL] [-session ID] [-stream] <pregunta>")
		os.Exit(2)
	}

	if err := ask(*baseURL, *sessionID, question, *stream); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func ask(baseURL, sessionID, question string, stream bool) error {
	payload, err := json.Marshal(map[string]string{
		"query":      question,
		"session_id": sessionID,
	})
	if err != nil {
		return err
	}

	path := "/api/ask"
	if stream {
		path = "/api/ask/stream"
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Post(strings.TrimSuffix(baseURL, "/")+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if !stream {
		var answer struct {
			Response  string `json:"response"`
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
			return err
		}
		fmt.Println(answer.Response)
		fmt.Fprintln(os.Stderr, "session:", answer.SessionID)
		return nil
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var last models.StreamChunk
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var chunk models.StreamChunk
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.IsComplete {
			last = chunk
			continue
		}
		fmt.Print(chunk.Token)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Println()
	if last.SessionID != "" {
		fmt.Fprintln(os.Stderr, "session:", last.SessionID)
	}
	return nil
}
