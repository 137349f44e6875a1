package remote

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/internal/adaptor"
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server hosts one real adaptor.Adaptor (normally an adaptor.Local wrapping
// a VDA) per connection and proxies its calls/callbacks over a websocket.
type Server struct {
	newAdaptor func() adaptor.Adaptor
	logger     *zap.Logger
}

// NewServer constructs a Server; newAdaptor is called once per incoming
// connection to build the backing local adaptor (and, transitively, its
// VDA instance).
func NewServer(newAdaptor func() adaptor.Adaptor, logger *zap.Logger) *Server {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Server{newAdaptor: newAdaptor, logger: logger}
}

// ServeHTTP upgrades the connection and runs the per-session dispatch loop
// until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("remote adaptor: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	sess := &session{conn: conn, logger: s.logger.With(zap.String("session_id", sessionID))}
	sess.backend = s.newAdaptor()
	sess.logger.Info("remote adaptor session started")
	sess.run()
	sess.logger.Info("remote adaptor session ended")
}

// session pairs one websocket connection with the adaptor it proxies to.
// writes are serialized since callbacks and RPC responses may race.
type session struct {
	conn    *websocket.Conn
	backend adaptor.Adaptor
	logger  *zap.Logger
	writeMu sync.Mutex
}

func (sess *session) send(t MessageType, payload any) {
	env, err := encode(t, payload)
	if err != nil {
		sess.logger.Error("remote adaptor: encode failed", zap.Error(err))
		return
	}
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if err := sess.conn.WriteJSON(env); err != nil {
		sess.logger.Warn("remote adaptor: write failed", zap.Error(err))
	}
}

// ProvidePictureBuffers and the methods below implement vda.Client by
// forwarding each callback as an outbound frame.
func (sess *session) ProvidePictureBuffers(count int, format codec.PixelFormat, coded codec.CodedSize) {
	sess.send(MsgProvidePictureBuffers, providePictureBuffersPayload{
		Count: count, Format: int(format), Width: coded.Width, Height: coded.Height,
	})
}

func (sess *session) DismissPictureBuffer(pictureID int32) {
	sess.send(MsgDismissPictureBuffer, pictureIDPayload{ID: pictureID})
}

func (sess *session) PictureReady(pic codec.Picture) {
	sess.send(MsgPictureReady, pictureReadyPayload{
		PictureID: pic.PictureID, BitstreamID: pic.BitstreamID,
		X: pic.VisibleRect.X, Y: pic.VisibleRect.Y,
		Width: pic.VisibleRect.Width, Height: pic.VisibleRect.Height,
	})
}

func (sess *session) NotifyEndOfBitstreamBuffer(bitstreamID int32) {
	sess.send(MsgNotifyEndOfBitstreamBuffer, bitstreamIDPayload{ID: bitstreamID})
}

func (sess *session) NotifyFlushDone() { sess.send(MsgNotifyFlushDone, struct{}{}) }
func (sess *session) NotifyResetDone() { sess.send(MsgNotifyResetDone, struct{}{}) }

func (sess *session) NotifyError(kind codec.ErrorKind) {
	sess.send(MsgNotifyError, errorPayload{Kind: int(kind)})
}

var _ vda.Client = (*session)(nil)

func (sess *session) run() {
	for {
		var env Envelope
		if err := sess.conn.ReadJSON(&env); err != nil {
			return
		}
		sess.dispatch(env)
	}
}

func (sess *session) dispatch(env Envelope) {
	switch env.Type {
	case MsgInitialize:
		var p initializePayload
		json.Unmarshal(env.Payload, &p)
		err := sess.backend.Initialize(codec.Profile(p.Profile), p.Secure, sess)
		result := initializeResultPayload{}
		if err != nil {
			if ce, ok := err.(*codec.Error); ok {
				result.ErrorKind = int(ce.Kind)
			}
			result.Message = err.Error()
		}
		sess.send(MsgInitializeResult, result)

	case MsgDecode:
		var p decodePayload
		json.Unmarshal(env.Payload, &p)
		sess.backend.Decode(p.ID, p.FD, p.Offset, p.Size)

	case MsgAssignPictureBuffers:
		var p assignPictureBuffersPayload
		json.Unmarshal(env.Payload, &p)
		sess.backend.AssignPictureBuffers(p.Count)

	case MsgImportBufferForPicture:
		var p importBufferForPicturePayload
		json.Unmarshal(env.Payload, &p)
		planes := make([]codec.VideoFramePlane, len(p.Planes))
		for i, pl := range p.Planes {
			planes[i] = codec.VideoFramePlane{Offset: pl.Offset, Stride: pl.Stride, Size: pl.Size}
		}
		sess.backend.ImportBufferForPicture(p.ID, codec.PixelFormat(p.Format), p.FD, planes)

	case MsgReusePictureBuffer:
		var p pictureIDPayload
		json.Unmarshal(env.Payload, &p)
		sess.backend.ReusePictureBuffer(p.ID)

	case MsgFlush:
		sess.backend.Flush()

	case MsgReset:
		sess.backend.Reset()

	case MsgDestroy:
		sess.backend.Destroy()

	default:
		sess.logger.Warn("remote adaptor: unknown frame", zap.String("type", string(env.Type)))
	}
}
