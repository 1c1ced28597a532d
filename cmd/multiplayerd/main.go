// Command multiplayerd runs the multiplayer room server described in spec
// §4.9: one process per deployment instance, serving WebSocket upgrades and
// fanning out transactions to its peers over the cluster bus.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"vellum/multiplayer"
)

func main() {
	cfg, err := multiplayer.ConfigFromOSEnv()
	if err != nil {
		log.Fatal(err)
	}

	var jwks *multiplayer.JWKSet
	if cfg.AuthenticateJWT {
		jwks, err = multiplayer.FetchJWKS(cfg.Auth0JWKSURI)
		if err != nil {
			log.Fatalf("multiplayerd: fetch JWKS: %v", err)
		}
	}

	var store multiplayer.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := multiplayer.NewPgStore(context.Background(), dsn)
		if err != nil {
			log.Fatalf("multiplayerd: %v", err)
		}
		defer pg.Close()
		store = pg
	}

	var fanout multiplayer.ClusterFanout
	if bindAddr := os.Getenv("CLUSTER_BIND"); bindAddr != "" {
		var peers []string
		if raw := os.Getenv("CLUSTER_PEERS"); raw != "" {
			peers = strings.Split(raw, ",")
		}
		cluster, err := multiplayer.NewCluster(context.Background(), bindAddr, peers, func(multiplayer.ClusterMessage) {
			// Remote transactions are already persisted by the instance that
			// accepted them; this instance only needs to know a room's
			// sequence number advanced, which the next ReplaySince call
			// picks up from the shared store.
		})
		if err != nil {
			log.Fatalf("multiplayerd: cluster: %v", err)
		}
		defer cluster.Close()
		fanout = cluster
	}

	srv := multiplayer.NewServer(cfg, jwks, store, fanout)
	stop := make(chan struct{})
	go srv.SweepIdle(stop)
	defer close(stop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleWebSocket)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Printf("multiplayerd: listening on %s (env=%s)", addr, cfg.Environment)
	log.Fatal(http.ListenAndServe(addr, mux))
}
