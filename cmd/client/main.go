// Demo websocket client: creates a session, runs a voice translation
// round trip, and optionally uploads a video for dubbing.
//
// Usage:
//
//	go run ./cmd/client [audio-file] [video-file]
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
)

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientID  string    `json:"client_id"`
}

func main() {
	token, clientID, err := createSession()
	if err != nil {
		log.Fatal("Failed to create session:", err)
	}
	log.Printf("Session created: %s", clientID)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	log.Printf("connecting to %s", u.Host+u.Path)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	done := make(chan struct{})
	go handleIncomingMessage(c, done)

	testVoiceTranslation(c)

	if len(os.Args) > 2 {
		testVideoDubbing(c, os.Args[2])
	}

	select {
	case <-done:
		return
	case <-interrupt:
		log.Println("interrupt")
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("write close:", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return
	}
}

func createSession() (string, string, error) {
	resp, err := http.Post("http://localhost:8080/api/v1/sessions", "application/json", nil)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("session creation failed: %s", string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", "", err
	}
	return session.Token, session.ClientID, nil
}

// testVoiceTranslation taps the mic, streams an audio file as capture
// chunks, and finishes the recording.
func testVoiceTranslation(c *websocket.Conn) {
	audioFilePath := filepath.Join(".", "sample_audio.wav")
	if len(os.Args) > 1 {
		audioFilePath = os.Args[1]
	}
	audioFileData, err := os.ReadFile(audioFilePath)
	if err != nil {
		log.Printf("Error reading audio file: %v", err)
		return
	}
	log.Printf("Read audio file: %s (%d bytes)", audioFilePath, len(audioFileData))

	log.Printf("Tapping mic to start recording")
	if err := sendJSONMessage(c, map[string]interface{}{"type": "mic_tap"}); err != nil {
		log.Printf("Error sending mic tap: %v", err)
		return
	}
	time.Sleep(500 * time.Millisecond)

	chunkSize := 4096
	totalChunks := (len(audioFileData) + chunkSize - 1) / chunkSize
	log.Printf("Streaming %d capture chunks (chunk size: %d bytes)", totalChunks, chunkSize)

	for i := 0; i < totalChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(audioFileData) {
			end = len(audioFileData)
		}
		if err := c.WriteMessage(websocket.BinaryMessage, audioFileData[start:end]); err != nil {
			log.Printf("Error sending capture chunk %d: %v", i, err)
			return
		}
		time.Sleep(20 * time.Millisecond)
	}

	log.Printf("Finishing recording")
	if err := sendJSONMessage(c, map[string]interface{}{"type": "capture_end"}); err != nil {
		log.Printf("Error sending capture end: %v", err)
	}
}

// testVideoDubbing uploads a video file and requests a Hindi dub.
func testVideoDubbing(c *websocket.Conn, videoPath string) {
	videoData, err := os.ReadFile(videoPath)
	if err != nil {
		log.Printf("Error reading video file: %v", err)
		return
	}
	log.Printf("Read video file: %s (%d bytes)", videoPath, len(videoData))

	meta := map[string]interface{}{
		"type":         "video_meta",
		"mime_type":    "video/mp4",
		"size_bytes":   len(videoData),
		"duration_sec": 30.0,
	}
	if err := sendJSONMessage(c, meta); err != nil {
		log.Printf("Error sending video meta: %v", err)
		return
	}
	if err := c.WriteMessage(websocket.BinaryMessage, videoData); err != nil {
		log.Printf("Error uploading video: %v", err)
		return
	}

	time.Sleep(time.Second)
	log.Printf("Requesting Hindi dub")
	if err := sendJSONMessage(c, map[string]interface{}{"type": "generate_dub", "language": "hi"}); err != nil {
		log.Printf("Error requesting dub: %v", err)
	}
}

func sendJSONMessage(c *websocket.Conn, message map[string]interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func handleIncomingMessage(c *websocket.Conn, done chan struct{}) {
	defer close(done)
	var audioFile *os.File
	var audioChunkCount int

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			return
		}

		if messageType == websocket.BinaryMessage {
			audioChunkCount++
			if audioFile != nil {
				if _, err := audioFile.Write(message); err != nil {
					log.Printf("Error writing PCM chunk to file: %v", err)
				}
			}
			continue
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Println("unmarshal error:", err)
			continue
		}

		switch msg["type"] {
		case "languages":
			log.Printf("Language catalog received (default %v)", msg["default_code"])
		case "state":
			log.Printf("Session state: %v", msg["state"])
		case "translation":
			log.Printf("Translation [%v]: %v -> %v", msg["detected_language"], msg["source_text"], msg["translated_text"])
		case "audio_start":
			audioChunkCount = 0
			audioDir := "audio_responses"
			if err := os.MkdirAll(audioDir, 0755); err != nil {
				log.Printf("Error creating audio response directory: %v", err)
				return
			}
			name := filepath.Join(audioDir, fmt.Sprintf("%d.pcm", time.Now().Unix()))
			audioFile, err = os.Create(name)
			if err != nil {
				log.Printf("Error creating PCM file: %v", err)
				return
			}
			log.Printf("Receiving PCM at %v Hz into %s", msg["sample_rate"], name)
		case "audio_end":
			log.Printf("Audio finished, %d PCM chunks received", audioChunkCount)
			if audioFile != nil {
				audioFile.Close()
				audioFile = nil
			}
		case "video_accepted":
			log.Printf("Video accepted: preview %v, duration %vs", msg["preview_url"], msg["duration_sec"])
		case "dub_progress":
			log.Printf("Dub stage: %v", msg["stage"])
		case "dub_ready":
			log.Printf("Dub ready, original track muted: %v", msg["original_muted"])
		case "error":
			log.Printf("Server error [%v]: %v", msg["error_code"], msg["message"])
		default:
			log.Printf("Received message: %s", string(message))
		}
	}
}
