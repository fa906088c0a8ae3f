package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Currently connected websocket clients",
		},
	)
	roomsAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lobby_rooms_available",
			Help: "Rooms currently advertised as awaiting an opponent",
		},
	)
	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_sessions_created_total",
			Help: "Total game sessions created",
		},
	)
	gamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Total games that reached a terminal state",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(connectionsActive, roomsAvailable, sessionsCreated, gamesFinished)
}
