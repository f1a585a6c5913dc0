// Package mazeapi exposes the running maze over HTTP and websockets.
package mazeapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-drift/api/i"
	"github.com/beka-birhanu/vinom-drift/encoder"
	"github.com/beka-birhanu/vinom-drift/game"
	"github.com/beka-birhanu/vinom-drift/maze"
	si "github.com/beka-birhanu/vinom-drift/service/i"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = time.Second

var (
	ErrAmbiguousTarget = errors.New("give either row and col or x and y")
)

// MazeController serves snapshots and accepts the pilot's intents.
type MazeController struct {
	session  i.MazeSession
	json     encoder.Encoder
	protobuf encoder.Encoder
	upgrader websocket.Upgrader
	logger   si.Logger
}

// NewMazeController initializes a MazeController.
func NewMazeController(session i.MazeSession, logger si.Logger) (*MazeController, error) {
	if session == nil {
		return nil, errors.New("maze session is required")
	}
	return &MazeController{
		session:  session,
		json:     &encoder.JSON{},
		protobuf: &encoder.Protobuf{},
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
	}, nil
}

// RegisterPublic registers public routes.
func (mc *MazeController) RegisterPublic(route *gin.RouterGroup) {
	mazeRoutes := route.Group("/maze")
	{
		mazeRoutes.GET("", mc.snapshot)
		mazeRoutes.GET("/path", mc.path)
		mazeRoutes.GET("/ascii", mc.ascii)
		mazeRoutes.GET("/stream", mc.stream)
	}
}

// RegisterProtected registers protected routes.
func (mc *MazeController) RegisterProtected(route *gin.RouterGroup) {
	mazeRoutes := route.Group("/maze")
	{
		mazeRoutes.POST("/moves", mc.move)
		mazeRoutes.POST("/teleport", mc.teleport)
		mazeRoutes.POST("/regenerate", mc.regenerate)
		mazeRoutes.PUT("/mutation", mc.mutation)
	}
}

// snapshot writes the current state as JSON, or protobuf when asked for.
func (mc *MazeController) snapshot(ctx *gin.Context) {
	enc := mc.json
	if strings.Contains(ctx.GetHeader("Accept"), encoder.ContentTypeProtobuf) {
		enc = mc.protobuf
	}

	payload, err := enc.MarshalSnapshot(mc.session.Snapshot())
	if err != nil {
		mc.logger.Error("encoding snapshot: " + err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while encoding snapshot"})
		return
	}
	ctx.Data(http.StatusOK, enc.ContentType(), payload)
}

// path writes the cached route from the agent to the destination.
func (mc *MazeController) path(ctx *gin.Context) {
	snap := mc.session.Snapshot()
	ctx.JSON(http.StatusOK, &PathResponse{
		Version:     snap.Version,
		Agent:       snap.Agent,
		Destination: snap.Destination,
		Path:        snap.Path,
		Length:      len(snap.Path),
	})
}

// ascii draws the current maze with the agent and path marked.
func (mc *MazeController) ascii(ctx *gin.Context) {
	art, err := mc.session.Snapshot().Render()
	if err != nil {
		mc.logger.Error("rendering snapshot: " + err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while rendering maze"})
		return
	}
	ctx.String(http.StatusOK, "%s", art)
}

// stream upgrades to a websocket and pushes every new snapshot as JSON.
func (mc *MazeController) stream(ctx *gin.Context) {
	conn, err := mc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		mc.logger.Warning("websocket upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	updates, unsubscribe := mc.session.Subscribe()
	defer unsubscribe()

	// The client only ever closes; reading notices it.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := mc.writeFrame(conn, mc.session.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case snap, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"), time.Now().Add(writeWait))
				return
			}
			if err := mc.writeFrame(conn, snap); err != nil {
				mc.logger.Debug("websocket write failed: " + err.Error())
				return
			}
		}
	}
}

func (mc *MazeController) writeFrame(conn *websocket.Conn, snap game.Snapshot) error {
	payload, err := mc.json.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// move queues a one-cell step of the agent.
func (mc *MazeController) move(ctx *gin.Context) {
	var request MoveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	direction, err := maze.ParseDirection(request.Direction)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mc.submit(ctx, game.Move(direction))
}

// teleport queues moving the agent to a cell or to the cell under a pixel.
func (mc *MazeController) teleport(ctx *gin.Context) {
	var request TeleportRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := mc.teleportTarget(request)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mc.submit(ctx, game.Teleport(target))
}

func (mc *MazeController) teleportTarget(request TeleportRequest) (maze.CellPosition, error) {
	byCell := request.Row != nil && request.Col != nil
	byPixel := request.X != nil && request.Y != nil
	if byCell == byPixel {
		return maze.CellPosition{}, ErrAmbiguousTarget
	}
	if byCell {
		return maze.CellPosition{Row: *request.Row, Col: *request.Col}, nil
	}
	return mc.session.Geometry().CellAt(*request.X, *request.Y)
}

// regenerate queues building a brand new maze.
func (mc *MazeController) regenerate(ctx *gin.Context) {
	mc.submit(ctx, game.Regenerate())
}

// mutation changes the per-tick mutation probability.
func (mc *MazeController) mutation(ctx *gin.Context) {
	var request MutationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := mc.session.SetMutationProbability(*request.Probability); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, &MutationResponse{Probability: *request.Probability})
}

func (mc *MazeController) submit(ctx *gin.Context, in game.Intent) {
	err := mc.session.Submit(in)
	switch {
	case err == nil:
		ctx.JSON(http.StatusAccepted, &AcceptedResponse{Intent: in.Kind.String()})
	case errors.Is(err, game.ErrIntentQueueFull):
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrSessionStopped):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
