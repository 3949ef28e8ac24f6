package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TournamentReader supplies the tournament queries the pushers need.
// Implemented by database.TournamentStats.
type TournamentReader interface {
	ActiveTournamentCount() (int64, error)
	TournamentExists(id uint) (bool, error)
}

// TournamentStatusPusher periodically broadcasts the active-tournament
// count to every connection.
type TournamentStatusPusher struct {
	Hub      *Hub
	Store    TournamentReader
	Interval time.Duration
	Log      *zap.Logger
}

// Run ticks until ctx is cancelled. A store failure skips the tick and is
// retried on the next one; it never terminates the loop.
func (p *TournamentStatusPusher) Run(ctx context.Context) {
	t := time.NewTicker(p.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			count, err := p.Store.ActiveTournamentCount()
			if err != nil {
				p.log().Error("tournament status tick", zap.Error(err))
				continue
			}
			p.Hub.Broadcast(&Message{
				Type:              TypeTournamentStatus,
				ActiveTournaments: count,
				Timestamp:         now(),
			}, nil)
		}
	}
}

func (p *TournamentStatusPusher) log() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

// SystemStatsPusher periodically sends process and hub statistics to
// members of the reserved admin room.
type SystemStatsPusher struct {
	Hub      *Hub
	Sampler  ResourceSampler
	Interval time.Duration
	Log      *zap.Logger
}

// Run ticks until ctx is cancelled, tolerating sampler failures.
func (p *SystemStatsPusher) Run(ctx context.Context) {
	t := time.NewTicker(p.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap, err := p.Sampler.Snapshot()
			if err != nil {
				p.log().Error("system stats tick", zap.Error(err))
				continue
			}
			p.Hub.SendToRoom(RoomAdmin, &Message{
				Type:        TypeSystemStats,
				OnlineUsers: p.Hub.OnlineUserCount(),
				CPUUsage:    snap.CPUPercent,
				MemoryUsage: snap.MemoryPercent,
				ActiveRooms: p.Hub.RoomCount(),
				Timestamp:   now(),
			}, nil)
		}
	}
}

func (p *SystemStatsPusher) log() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
