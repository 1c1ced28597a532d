package multiplayer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-zeromq/zmq4"
)

// ClusterFanout republishes accepted transactions to the rest of a
// multi-instance deployment, so a room whose members are split across
// processes still sees a single total order per file. Grounded in the
// teacher's kernel.go, which opens its IOPub channel as a zmq4.Pub socket
// bound at startup; here a Pub socket publishes across instances instead
// of to Jupyter frontends, and every peer instance subscribes.
type ClusterFanout interface {
	Publish(fileId string, msg TransactionMessage)
}

// ClusterMessage is the wire shape published on the Pub socket: one JSON
// frame carrying the file id and the transaction payload. Subscribers
// subscribe to every message, so each receives all files' transactions.
type ClusterMessage struct {
	FileId string              `json:"file_id"`
	Tx     TransactionMessage  `json:"tx"`
}

// Cluster owns one Pub socket (this instance's outbound fanout) and one Sub
// socket per configured peer, delivering received transactions to
// onRemote.
type Cluster struct {
	pub  zmq4.Socket
	subs []zmq4.Socket
}

// NewCluster binds a Pub socket at bindAddr (e.g. "tcp://0.0.0.0:5600") and
// dials a Sub socket to every peer address, invoking onRemote for every
// transaction received from a peer.
func NewCluster(ctx context.Context, bindAddr string, peerAddrs []string, onRemote func(ClusterMessage)) (*Cluster, error) {
	pub := zmq4.NewPub(ctx)
	if err := pub.Listen(bindAddr); err != nil {
		return nil, err
	}
	c := &Cluster{pub: pub}
	for _, addr := range peerAddrs {
		sub := zmq4.NewSub(ctx)
		if err := sub.Dial(addr); err != nil {
			log.Printf("multiplayer: cluster dial %s: %v", addr, err)
			continue
		}
		if err := sub.SetOption(zmq4.OptionSubscribe, ""); err != nil {
			log.Printf("multiplayer: cluster subscribe %s: %v", addr, err)
			continue
		}
		c.subs = append(c.subs, sub)
		go c.readLoop(sub, onRemote)
	}
	return c, nil
}

func (c *Cluster) readLoop(sub zmq4.Socket, onRemote func(ClusterMessage)) {
	for {
		zmsg, err := sub.Recv()
		if err != nil {
			log.Printf("multiplayer: cluster recv: %v", err)
			return
		}
		for _, frame := range zmsg.Frames {
			var cm ClusterMessage
			if err := json.Unmarshal(frame, &cm); err != nil {
				continue
			}
			onRemote(cm)
		}
	}
}

// Publish implements ClusterFanout.
func (c *Cluster) Publish(fileId string, msg TransactionMessage) {
	payload, err := json.Marshal(ClusterMessage{FileId: fileId, Tx: msg})
	if err != nil {
		log.Printf("multiplayer: marshal cluster message: %v", err)
		return
	}
	if err := c.pub.Send(zmq4.NewMsgFrom(payload)); err != nil {
		log.Printf("multiplayer: cluster publish: %v", err)
	}
}

func (c *Cluster) Close() {
	_ = c.pub.Close()
	for _, s := range c.subs {
		_ = s.Close()
	}
}
