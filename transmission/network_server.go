package transmission

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Artiqlate/lyra/comm"
	"github.com/Artiqlate/lyra/models"
	"github.com/Artiqlate/lyra/utils"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

const DefaultPort = 8000

type NetworkTransmissionServer struct {
	logf           func(string, ...interface{})
	port           int
	moduleInitChan chan []string
	context        context.Context
	httpServer     *http.Server
	serveMux       http.ServeMux
	wsConn         *websocket.Conn
	writeChannel   chan models.Message
	commChannels   *comm.CommChannels
}

func NewNetworkTransmissionServer(
	port int,
	writeChannel chan models.Message,
	moduleInitChan chan []string,
	commChannels *comm.CommChannels,
) *NetworkTransmissionServer {
	if port == 0 {
		port = DefaultPort
	}
	newNT := &NetworkTransmissionServer{
		logf:           utils.ModuleLogf("nt"),
		port:           port,
		moduleInitChan: moduleInitChan,
		commChannels:   commChannels,
		writeChannel:   writeChannel,
	}
	newNT.serveMux.HandleFunc("/", newNT.WebsocketHandler)
	return newNT
}

// -- COROUTINE FOR SERVER
func (nt *NetworkTransmissionServer) Coroutine(errChan chan error) {
	nt.logf("Attempting to start server")
	errChan <- nt.Serve()
}

// -- DATA DECODE AND PARSING
func (nt *NetworkTransmissionServer) decodeData(data []byte) error {
	// Initialize the decoder object
	decoder := msgpack.NewDecoder(bytes.NewReader(data))

	// Decode length of the array. If it's less than 2, error out.
	arrLen, arrLenErr := decoder.DecodeArrayLen()
	if arrLenErr != nil {
		return arrLenErr
	}
	if arrLen < 2 {
		nt.logf("WARN: Method only, no arguments")
	}

	// Command must be the first element
	methodAndSubsystem, msDecodeErr := decoder.DecodeString()
	if msDecodeErr != nil {
		return msDecodeErr
	}

	// Parse subsystem and method. Assign method as subsystem, if
	// subsystem isn't there. Consider "ping" and "mp:playpause": the
	// first cuts to ("ping", "") with no separator, the second to
	// ("mp", "playpause").
	subsystem, method, subsystemMethodExists := strings.Cut(methodAndSubsystem, ":")

	switch subsystem {
	// Add all subsystem-based methods here
	case "mp":
		if !subsystemMethodExists {
			nt.logf("mp: method missing")
			return nil
		}
		// Pass the data directly as the decoder has internal state we
		// don't want to work with
		nt.commChannels.MPChannel.InChannel <- data
	case "ping":
		ping, pingErr := models.DecodePingFrom(decoder)
		if pingErr != nil {
			nt.logf("Ping err: %v", pingErr)
			return nil
		}
		// Capabilities drive which modules the bridge brings up.
		nt.moduleInitChan <- ping.Capabilities
	default:
		nt.logf("subsystem %q unimplemented (method %q)", subsystem, method)
	}
	return nil
}

// websocketWriter is the slice of *websocket.Conn the write path
// needs.
type websocketWriter interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
}

// -- HTTP SPECIFIC --

// -- Start Server
func (nt *NetworkTransmissionServer) Serve() error {
	if availableIPs, ipErr := getAvailableIPAddresses(); ipErr == nil {
		nt.logf("Reachable on %v port %d", availableIPs, nt.port)
	}
	nt.httpServer = &http.Server{
		Handler:      &nt.serveMux,
		Addr:         fmt.Sprintf(":%d", nt.port),
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	}

	return nt.httpServer.ListenAndServe()
}

// -- Shutdown Server
func (nt *NetworkTransmissionServer) Shutdown(ctx context.Context) error {
	return nt.httpServer.Shutdown(ctx)
}

// -- WEBSOCKET-SPECIFIC --

// - UPGRADE TO WS
func (nt *NetworkTransmissionServer) upgradeToWebsockets(w http.ResponseWriter, req *http.Request) error {
	if nt.wsConn != nil {
		http.Error(w, "Server already connected, cannot accept more connections.", http.StatusLocked)
		return fmt.Errorf("connection already established")
	}
	wsConn, wsConnAcceptErr := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if wsConnAcceptErr != nil {
		return fmt.Errorf("wsConnAcceptErr %v", wsConnAcceptErr)
	}
	nt.wsConn = wsConn
	return nil
}

// - WEBSOCKET CLOSE
func (nt *NetworkTransmissionServer) wsClose(statusCode websocket.StatusCode, reason string) {
	if nt.wsConn != nil {
		nt.logf("WS Connection Closing")
		nt.wsConn.Close(statusCode, reason)
		nt.wsConn = nil
	}
}

// - WS REQUEST HANDLER
func (nt *NetworkTransmissionServer) WebsocketHandler(w http.ResponseWriter, req *http.Request) {
	// Upgrade to websockets if possible
	wsUpgrdErr := nt.upgradeToWebsockets(w, req)
	if wsUpgrdErr != nil {
		nt.logf("WS Upgrade Error: %v", wsUpgrdErr)
		return
	}
	// Make sure to close the connecction if something goes wrong
	defer nt.wsClose(websocket.StatusInternalError, "SERVER ERROR")

	// Setup function context
	nt.context = context.Background()

	// Run the write loop on the connection we just accepted
	go nt.writeLoop(nt.wsConn)

	readErr := nt.readLoop()
	if readErr != nil {
		nt.logf("Read Error: %v", readErr)
	} else {
		nt.wsClose(websocket.StatusNormalClosure, "THANK YOU")
	}
}

// -- READ AND WRITE LOOPS

func (nt *NetworkTransmissionServer) readLoop() error {
	for {
		_, data, readErr := nt.wsConn.Read(nt.context)
		if readErr != nil {
			if websocket.CloseStatus(readErr) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(readErr) == websocket.StatusGoingAway {
				break
			}
			return readErr
		}
		decodeErr := nt.decodeData(data)
		if decodeErr != nil {
			return decodeErr
		}
	}
	return nil
}

// writeLoop pushes outgoing messages onto one connection. It holds its
// own reference so a concurrent disconnect cannot clear it mid-write; a
// failed write means the peer is gone and ends the loop.
func (nt *NetworkTransmissionServer) writeLoop(wsConn websocketWriter) {
	for {
		writeObject := <-nt.writeChannel
		encodedData, marshalErr := writeObject.Encode()
		if marshalErr != nil {
			nt.logf("marshal: %v", marshalErr)
			continue
		}
		if writeErr := wsConn.Write(nt.context, websocket.MessageBinary, encodedData); writeErr != nil {
			nt.logf("write: %v", writeErr)
			return
		}
	}
}
