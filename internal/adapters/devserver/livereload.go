package devserver

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// clientScript connects to the server's websocket and reloads the page on every reload command.
// Stylesheet changes swap <link> hrefs instead of reloading the whole page.
const clientScript = `(function () {
  var url = (location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/livereload';
  function connect() {
    var ws = new WebSocket(url);
    ws.onmessage = function (event) {
      var msg = JSON.parse(event.data);
      if (msg.command !== 'reload') { return; }
      if (/\.css$/.test(msg.path || '')) {
        var links = document.querySelectorAll('link[rel="stylesheet"]');
        for (var i = 0; i < links.length; i++) {
          links[i].href = links[i].href.replace(/[?&]livereload=\d+/, '') +
            (links[i].href.indexOf('?') < 0 ? '?' : '&') + 'livereload=' + Date.now();
        }
        return;
      }
      location.reload();
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
`

const scriptTag = `<script src="/livereload.js"></script>`

const writeTimeout = 5 * time.Second

// Message is the JSON frame exchanged with live reload clients.
type Message struct {
	Command    string   `json:"command"`
	Path       string   `json:"path,omitempty"`
	LiveCSS    bool     `json:"liveCSS,omitempty"`
	Protocols  []string `json:"protocols,omitempty"`
	ServerName string   `json:"serverName,omitempty"`
}

var helloMessage = Message{
	Command:    "hello",
	Protocols:  []string{"http://livereload.com/protocols/official-7"},
	ServerName: "swig",
}

// hub tracks connected live reload clients.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	onCount func(int)
}

func newHub(onCount func(int)) *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{}), onCount: onCount}
}

// add registers conn and greets it. The write happens under the hub lock so that
// a concurrent broadcast never interleaves with the greeting.
func (h *hub) add(conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(helloMessage); err != nil {
		return err
	}
	h.clients[conn] = struct{}{}
	h.onCount(len(h.clients))
	return nil
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
		h.onCount(len(h.clients))
	}
}

// broadcast sends msg to every client, dropping clients that cannot be written to.
func (h *hub) broadcast(msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			delete(h.clients, conn)
			_ = conn.Close()
			continue
		}
		sent++
	}
	h.onCount(len(h.clients))
	return sent
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		delete(h.clients, conn)
	}
	h.onCount(0)
}
