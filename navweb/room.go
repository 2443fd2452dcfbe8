package navweb

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Room fans incoming state messages out to every connected web client.
type Room struct {
	// forward holds incoming messages that should be forwarded to all
	// connected clients.
	forward chan []byte
	// join is a channel for clients wishing to join the room.
	join chan *client
	// leave is a channel for clients wishing to leave the room.
	leave chan *client
	// clients holds all current clients in this room.
	clients map[*client]bool
}

// NewRoom makes a new room that is ready to go.
func NewRoom() *Room {
	return &Room{
		forward: make(chan []byte),
		join:    make(chan *client),
		leave:   make(chan *client),
		clients: make(map[*client]bool),
	}
}

// Forward queues a message for delivery to all connected clients.
func (r *Room) Forward(msg []byte) {
	r.forward <- msg
}

func (r *Room) Run() {
	for {
		select {
		case client := <-r.join:
			r.clients[client] = true
			log.Println("NavWeb: New client joined")
		case client := <-r.leave:
			delete(r.clients, client)
			close(client.send)
			log.Println("NavWeb: Client left")
		case msg := <-r.forward:
			for client := range r.clients {
				select {
				case client.send <- msg:
				default:
					log.Println("NavWeb: couldn't send to client")
				}
			}
		}
	}
}

const (
	socketBufferSize  = 1024
	messageBufferSize = 10
)

var upgrader = &websocket.Upgrader{ReadBufferSize: socketBufferSize, WriteBufferSize: socketBufferSize}

func (r *Room) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	socket, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Println("NavWeb: upgrade failed:", err)
		return
	}
	client := &client{
		socket: socket,
		send:   make(chan []byte, messageBufferSize),
		room:   r,
	}
	r.join <- client
	defer func() { r.leave <- client }()
	go client.write()
	client.read()
}
