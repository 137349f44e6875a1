package remote

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/internal/adaptor"
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

var _ adaptor.Adaptor = (*Client)(nil)

// initializeTimeout bounds how long Initialize waits for the remote's
// synchronous result frame; Initialize is the one synchronous op in the
// Adaptor contract.
const initializeTimeout = 5 * time.Second

// Client implements adaptor.Adaptor by proxying every call over a
// websocket connection to a Server, and dispatching inbound callback
// frames to the vda.Client supplied to Initialize.
type Client struct {
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	client   vda.Client
	initDone chan initializeResultPayload
}

// Dial connects to a remote Server at url (e.g. "ws://host:port/decode").
func Dial(url string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, codec.NewError(codec.PlatformFailure, "remote.Dial", err)
	}
	c := &Client{conn: conn, logger: logger}
	go c.readLoop()
	return c, nil
}

func (c *Client) send(t MessageType, payload any) {
	env, err := encode(t, payload)
	if err != nil {
		c.logger.Error("remote client: encode failed", zap.Error(err))
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(env); err != nil {
		c.logger.Warn("remote client: write failed", zap.Error(err))
	}
}

// Initialize implements adaptor.Adaptor's one synchronous op: it blocks
// for the server's initialize_result frame.
func (c *Client) Initialize(profile codec.Profile, secure bool, client vda.Client) error {
	c.mu.Lock()
	c.client = client
	done := make(chan initializeResultPayload, 1)
	c.initDone = done
	c.mu.Unlock()

	c.send(MsgInitialize, initializePayload{Profile: int(profile), Secure: secure})

	select {
	case result := <-done:
		if result.ErrorKind != 0 {
			return codec.NewError(codec.ErrorKind(result.ErrorKind), "remote.Client.Initialize", errString(result.Message))
		}
		return nil
	case <-time.After(initializeTimeout):
		return codec.NewError(codec.PlatformFailure, "remote.Client.Initialize: timed out", nil)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func (c *Client) Decode(id int32, fd int, offset, size int) {
	c.send(MsgDecode, decodePayload{ID: id, FD: fd, Offset: offset, Size: size})
}

func (c *Client) AssignPictureBuffers(n int) {
	c.send(MsgAssignPictureBuffers, assignPictureBuffersPayload{Count: n})
}

func (c *Client) ImportBufferForPicture(id int32, format codec.PixelFormat, fd int, planes []codec.VideoFramePlane) {
	wirePlanes := make([]videoFramePlane, len(planes))
	for i, p := range planes {
		wirePlanes[i] = videoFramePlane{Offset: p.Offset, Stride: p.Stride, Size: p.Size}
	}
	c.send(MsgImportBufferForPicture, importBufferForPicturePayload{
		ID: id, Format: int(format), FD: fd, Planes: wirePlanes,
	})
}

func (c *Client) ReusePictureBuffer(id int32) {
	c.send(MsgReusePictureBuffer, pictureIDPayload{ID: id})
}

func (c *Client) Flush()   { c.send(MsgFlush, struct{}{}) }
func (c *Client) Reset()   { c.send(MsgReset, struct{}{}) }
func (c *Client) Destroy() { c.send(MsgDestroy, struct{}{}) }

// Close shuts down the underlying websocket connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) readLoop() {
	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		c.dispatch(env)
	}
}

func (c *Client) dispatch(env Envelope) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	switch env.Type {
	case MsgInitializeResult:
		var p initializeResultPayload
		json.Unmarshal(env.Payload, &p)
		c.mu.Lock()
		done := c.initDone
		c.mu.Unlock()
		if done != nil {
			done <- p
		}

	case MsgProvidePictureBuffers:
		if client == nil {
			return
		}
		var p providePictureBuffersPayload
		json.Unmarshal(env.Payload, &p)
		client.ProvidePictureBuffers(p.Count, codec.PixelFormat(p.Format), codec.CodedSize{Width: p.Width, Height: p.Height})

	case MsgDismissPictureBuffer:
		if client == nil {
			return
		}
		var p pictureIDPayload
		json.Unmarshal(env.Payload, &p)
		client.DismissPictureBuffer(p.ID)

	case MsgPictureReady:
		if client == nil {
			return
		}
		var p pictureReadyPayload
		json.Unmarshal(env.Payload, &p)
		client.PictureReady(codec.Picture{
			PictureID: p.PictureID, BitstreamID: p.BitstreamID,
			VisibleRect: codec.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height},
		})

	case MsgNotifyEndOfBitstreamBuffer:
		if client == nil {
			return
		}
		var p bitstreamIDPayload
		json.Unmarshal(env.Payload, &p)
		client.NotifyEndOfBitstreamBuffer(p.ID)

	case MsgNotifyFlushDone:
		if client != nil {
			client.NotifyFlushDone()
		}

	case MsgNotifyResetDone:
		if client != nil {
			client.NotifyResetDone()
		}

	case MsgNotifyError:
		if client == nil {
			return
		}
		var p errorPayload
		json.Unmarshal(env.Payload, &p)
		client.NotifyError(codec.ErrorKind(p.Kind))

	default:
		c.logger.Warn("remote client: unknown frame", zap.String("type", string(env.Type)))
	}
}
