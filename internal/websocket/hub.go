package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shubhammaske12000-sudo/Translator/adapters/media"
	"github.com/shubhammaske12000-sudo/Translator/domain/entities"
	"github.com/shubhammaske12000-sudo/Translator/domain/repositories"
	"github.com/shubhammaske12000-sudo/Translator/internal/config"
	"github.com/shubhammaske12000-sudo/Translator/internal/transcode"
	"github.com/shubhammaske12000-sudo/Translator/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Outbound PCM is framed in chunks of this size.
	audioFrameBytes = 32 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients and owns the shared adapters.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	gateway  repositories.TranslationGateway
	previews *media.MemoryPreviewStore
	cfg      config.Config

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(
	gateway repositories.TranslationGateway,
	previews *media.MemoryPreviewStore,
	cfg config.Config,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		gateway:    gateway,
		previews:   previews,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.clientID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.clientID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.clientID]; ok {
				delete(h.clients, client.clientID)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.clientID))
		}
	}
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the
// per-session controllers.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Session ID for this client
	clientID string

	// Logger
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	device  *media.MemoryCaptureDevice
	prober  *media.MemoryProber
	voice   *usecase.VoiceSessionController
	dubbing *usecase.DubbingController

	validator *MessageValidator

	mutex        sync.Mutex
	sendClosed   bool
	pendingVideo *VideoMetaMessage
	lastActive   time.Time
}

var _ repositories.EventSink = (*Client)(nil)

// HandleWebSocketWithAuth handles websocket requests with a pre-authenticated client ID
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, clientID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(hub, conn, clientID, logger)
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	client.sendLanguageCatalog()
	return nil
}

func newClient(hub *Hub, conn *websocket.Conn, clientID string, logger *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan WriteData, 256),
		clientID:   clientID,
		logger:     logger.With(zap.String("clientID", clientID)),
		ctx:        ctx,
		cancel:     cancel,
		device:     media.NewMemoryCaptureDevice(),
		prober:     media.NewMemoryProber(),
		validator:  NewMessageValidator(),
		lastActive: time.Now(),
	}

	opener := media.NewMemoryOutputOpener()
	opener.Sink = client.streamAudio

	// The voice and dubbing flows share one engine: at most one playback
	// is live per client, and starting either flow retires the other's.
	playback := usecase.NewPlaybackEngine(opener, hub.cfg.SampleRate, client.logger)

	capture := usecase.NewCaptureSession(client.device, client.logger)
	client.voice = usecase.NewVoiceSessionController(
		capture,
		playback,
		hub.gateway,
		client,
		usecase.VoiceConfig{
			SampleRate:     hub.cfg.SampleRate,
			TargetLanguage: config.DefaultVoiceTarget(),
		},
		client.logger,
	)
	client.dubbing = usecase.NewDubbingController(
		hub.gateway,
		client.prober,
		hub.previews,
		playback,
		client,
		usecase.DubbingConfig{
			MaxUploadBytes: int(hub.cfg.MaxUploadBytes()),
			MaxDuration:    time.Duration(hub.cfg.MaxVideoDurationSec) * time.Second,
			SampleRate:     hub.cfg.SampleRate,
		},
		client.logger,
	)
	return client
}

// readPump pumps messages from the websocket connection to the controllers.
func (c *Client) readPump() {
	defer func() {
		c.voice.Abandon()
		c.dubbing.ClearAsset()
		c.cancel()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// Uploads arrive as a single binary frame, so the read limit must
	// admit a full-size video.
	c.conn.SetReadLimit(c.hub.cfg.MaxUploadBytes() + 1024*1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		c.touch()

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processBinary(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the controllers to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage dispatches a control message to the controllers
func (c *Client) processMessage(message []byte) {
	parsed, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("bad_message", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *BaseMessage:
		c.handleBare(msg.Type)
	case *SetLanguageMessage:
		c.handleSetLanguage(msg)
	case *VideoMetaMessage:
		c.handleVideoMeta(msg)
	case *VideoEventMessage:
		c.handleVideoEvent(msg)
	case *GenerateDubMessage:
		c.handleGenerateDub(msg)
	}
}

func (c *Client) handleBare(msgType MessageType) {
	switch msgType {
	case MessageTypeMicTap, MessageTypeCaptureEnd:
		// A tap while recording finalizes the capture and blocks on the
		// remote gateway, so it runs off the read loop.
		go func() {
			if err := c.voice.HandleMicTap(c.ctx); err != nil {
				c.logger.Warn("Mic tap not processed", zap.Error(err))
			}
		}()
	case MessageTypeReplay:
		go func() {
			if err := c.voice.Replay(c.ctx); err != nil {
				c.logger.Warn("Replay failed", zap.Error(err))
			}
		}()
	case MessageTypeDiscardDub:
		c.dubbing.DiscardDub()
	case MessageTypeClearAsset:
		c.dubbing.ClearAsset()
	case MessageTypePing:
		c.sendJSON(CreatePongMessage())
	}
}

func (c *Client) handleSetLanguage(msg *SetLanguageMessage) {
	lang, ok := config.LanguageByCode(msg.Language)
	if !ok {
		c.sendJSON(CreateErrorMessage("unknown_language", "unknown language code: "+msg.Language))
		return
	}
	if err := c.voice.SetTargetLanguage(lang); err != nil {
		c.sendJSON(CreateErrorMessage("not_idle", "language can only be changed while idle"))
	}
}

func (c *Client) handleVideoMeta(msg *VideoMetaMessage) {
	if msg.SizeBytes > c.hub.cfg.MaxUploadBytes() {
		c.SessionError(&entities.ValidationError{
			Message: fmt.Sprintf("file too large: max size is %dMB", c.hub.cfg.MaxUploadMB),
		})
		return
	}

	c.mutex.Lock()
	c.pendingVideo = msg
	c.mutex.Unlock()
}

func (c *Client) handleVideoEvent(msg *VideoEventMessage) {
	position := time.Duration(msg.PositionSec * float64(time.Second))

	switch msg.Action {
	case VideoActionPlay:
		if err := c.dubbing.OnVideoPlay(position); err != nil {
			c.logger.Warn("Failed to start dub playback", zap.Error(err))
		}
	case VideoActionPause:
		c.dubbing.OnVideoPause()
	case VideoActionSeekStart:
		c.dubbing.OnSeekStart()
	case VideoActionSeekEnd:
		if err := c.dubbing.OnSeekEnd(position, msg.Playing); err != nil {
			c.logger.Warn("Failed to resync dub playback", zap.Error(err))
		}
	}
}

func (c *Client) handleGenerateDub(msg *GenerateDubMessage) {
	lang, ok := config.LanguageByCode(msg.Language)
	if !ok {
		c.sendJSON(CreateErrorMessage("unknown_language", "unknown language code: "+msg.Language))
		return
	}

	go func() {
		err := c.dubbing.GenerateDub(c.ctx, lang)
		// Pipeline failures reach the client through the event sink;
		// only precondition failures need a direct reply.
		if errors.Is(err, usecase.ErrNoAsset) {
			c.sendJSON(CreateErrorMessage("no_asset", "no video selected"))
		} else if errors.Is(err, usecase.ErrDubInProgress) {
			c.sendJSON(CreateErrorMessage("dub_in_progress", "a dub is already being generated"))
		}
	}()
}

// processBinary routes a binary frame to the pending video upload or to
// the live microphone stream.
func (c *Client) processBinary(data []byte) {
	c.mutex.Lock()
	meta := c.pendingVideo
	c.pendingVideo = nil
	c.mutex.Unlock()

	if meta != nil {
		c.handleVideoUpload(meta, data)
		return
	}

	if c.voice.State() == entities.StateRecording {
		c.device.PushChunk(data)
		return
	}

	c.logger.Warn("Dropped unexpected binary frame", zap.Int("size", len(data)))
}

func (c *Client) handleVideoUpload(meta *VideoMetaMessage, data []byte) {
	c.prober.SetNextDuration(time.Duration(meta.DurationSec * float64(time.Second)))

	asset, err := c.dubbing.SelectVideo(c.ctx, data, meta.MimeType)
	if err != nil {
		// Validation errors already reached the client via the sink.
		c.logger.Warn("Video rejected", zap.Error(err))
		return
	}

	c.sendJSON(&VideoAcceptedMessage{
		BaseMessage: BaseMessage{Type: MessageTypeVideoAccepted, Timestamp: timestamp()},
		PreviewURL:  asset.PreviewURL,
		DurationSec: asset.Duration.Seconds(),
	})
}

// streamAudio bridges a started playback buffer to the client as an
// audio_start frame, a run of binary PCM frames, and an audio_end frame.
func (c *Client) streamAudio(buffer *entities.PlayableBuffer, offset time.Duration) {
	c.sendJSON(&AudioStartMessage{
		BaseMessage: BaseMessage{Type: MessageTypeAudioStart, Timestamp: timestamp()},
		SampleRate:  buffer.SampleRate,
		OffsetSec:   offset.Seconds(),
	})

	pcm := transcode.EncodeSamples(buffer.Samples[buffer.SliceFrom(offset):])
	for start := 0; start < len(pcm); start += audioFrameBytes {
		end := start + audioFrameBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		c.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: pcm[start:end]})
	}

	c.sendJSON(&BaseMessage{Type: MessageTypeAudioEnd, Timestamp: timestamp()})
}

func (c *Client) sendLanguageCatalog() {
	toEntries := func(langs []entities.LanguageOption) []LanguageEntry {
		entries := make([]LanguageEntry, len(langs))
		for i, lang := range langs {
			entries[i] = LanguageEntry{Code: lang.Code, Name: lang.Name, NativeName: lang.NativeName}
		}
		return entries
	}

	c.sendJSON(&LanguagesMessage{
		BaseMessage: BaseMessage{Type: MessageTypeLanguages, Timestamp: timestamp()},
		Voice:       toEntries(config.VoiceLanguages()),
		Dubbing:     toEntries(config.DubbingLanguages()),
		DefaultCode: config.DefaultVoiceTarget().Code,
	})
}

// StateChanged implements the event sink.
func (c *Client) StateChanged(state entities.SessionState) {
	c.sendJSON(&StateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeState, Timestamp: timestamp()},
		State:       string(state),
	})
}

// TranslationReady implements the event sink.
func (c *Client) TranslationReady(result entities.TranslationResult) {
	c.sendJSON(&TranslationMessage{
		BaseMessage:      BaseMessage{Type: MessageTypeTranslation, Timestamp: timestamp()},
		DetectedLanguage: result.DetectedLanguage,
		SourceText:       result.SourceText,
		TranslatedText:   result.TranslatedText,
	})
}

// DubProgress implements the event sink.
func (c *Client) DubProgress(stage entities.DubStage) {
	c.sendJSON(&DubProgressMessage{
		BaseMessage: BaseMessage{Type: MessageTypeDubProgress, Timestamp: timestamp()},
		Stage:       string(stage),
	})
}

// DubReady implements the event sink.
func (c *Client) DubReady() {
	c.sendJSON(&DubReadyMessage{
		BaseMessage:   BaseMessage{Type: MessageTypeDubReady, Timestamp: timestamp()},
		OriginalMuted: c.dubbing.OriginalMuted(),
	})
}

// SessionError implements the event sink. Errors are notifications on
// their own channel, never a state.
func (c *Client) SessionError(err error) {
	c.sendJSON(CreateErrorMessage(errorCode(err), err.Error()))
}

func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	c.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload})
}

func (c *Client) enqueue(data WriteData) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.sendClosed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("Send buffer full, dropping message")
	}
}

func (c *Client) closeSend() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) touch() {
	c.mutex.Lock()
	c.lastActive = time.Now()
	c.mutex.Unlock()
}

func (c *Client) idleSince() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lastActive
}

func errorCode(err error) string {
	var (
		permErr       *entities.PermissionError
		validationErr *entities.ValidationError
		transcription *entities.TranscriptionError
		synthesis     *entities.SynthesisError
		transport     *entities.TransportError
	)
	switch {
	case errors.As(err, &permErr):
		return "permission_denied"
	case errors.As(err, &validationErr):
		return "validation_failed"
	case errors.As(err, &transcription):
		return "transcription_failed"
	case errors.As(err, &synthesis):
		return "synthesis_failed"
	case errors.As(err, &transport):
		return "transport_failed"
	default:
		return "internal_error"
	}
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}
