package game

import (
	"context"
	"encoding/json"
	"time"

	"blockyard.gg/internal/game/event"
	"blockyard.gg/internal/game/session"
	"blockyard.gg/internal/protocol"
)

// Run drives the tick loop. Requests arriving between ticks are buffered
// and applied as one batch at the tick boundary; nothing outside this
// loop mutates the grid or sessions.
func (g *Game) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(g.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var batch event.Batch

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.stop:
			return nil
		case req := <-g.join:
			pendingJoins = append(pendingJoins, req)
			batch.Added = append(batch.Added, event.ClientAdded{Session: req.Session})
		case id := <-g.leave:
			batch.Removed = append(batch.Removed, event.ClientRemoved{Client: id})
		case ev := <-g.inbox:
			batch.Add(ev)
		case <-ticker.C:
			start := time.Now()
			deltas := g.Step(&batch)
			g.afterStep(deltas)
			for _, req := range pendingJoins {
				if req.Resp != nil {
					req.Resp <- g.welcomeFor(req.Session)
				}
			}
			pendingJoins = pendingJoins[:0]
			batch.Reset()
			g.stepMS.Store(time.Since(start).Microseconds())
			g.tick.Add(1)
		}
	}
}

// Stop terminates the Run loop.
func (g *Game) Stop() { close(g.stop) }

// afterStep fans the tick's outputs out to the protocol layer: block
// deltas to every connected session, queued chat to its owner, and the
// delta log.
func (g *Game) afterStep(deltas []Delta) {
	tick := g.tick.Load()

	if len(deltas) > 0 {
		blocks := make([]protocol.BlockDelta, 0, len(deltas))
		for _, d := range deltas {
			blocks = append(blocks, protocol.BlockDelta{
				Pos:   [3]int{d.Pos.X, d.Pos.Y, d.Pos.Z},
				Kind:  d.State.Kind().String(),
				Props: d.State.Props(),
			})
		}

		if g.deltaLog != nil {
			if err := g.deltaLog.WriteTick(tick, blocks); err != nil {
				g.log.Printf("delta log: %v", err)
			}
		}

		msg, err := json.Marshal(protocol.DeltaMsg{
			Type:            protocol.TypeDelta,
			ProtocolVersion: protocol.Version,
			Tick:            tick,
			Blocks:          blocks,
		})
		if err == nil {
			g.sessions.Each(func(s *session.Session) {
				if s.Out != nil {
					sendLatest(s.Out, msg)
				}
			})
		}
	}

	g.sessions.Each(func(s *session.Session) {
		for _, text := range s.TakeMessages() {
			if s.Out == nil {
				continue
			}
			msg, err := json.Marshal(protocol.ChatMsg{
				Type:            protocol.TypeChat,
				ProtocolVersion: protocol.Version,
				Text:            text,
			})
			if err == nil {
				sendLatest(s.Out, msg)
			}
		}
	})
}

// sendLatest delivers without blocking the tick loop: if the client's
// queue is full, the oldest entry is dropped to make room.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
