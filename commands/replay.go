package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/settings"
	"github.com/mobile-next/gesturecli/surfaces"
	"github.com/mobile-next/gesturecli/types"
	"github.com/mobile-next/gesturecli/utils"
)

// maxReplayLine bounds one jsonl record; multi-touch frames can be long.
const maxReplayLine = 1024 * 1024

// ReplayRequest represents the parameters for replaying a recorded input file
type ReplayRequest struct {
	Path     string         `json:"path"`
	Settings settings.Paths `json:"settings"`
}

// ReplayEvent is one event emitted during a replay
type ReplayEvent struct {
	AtMs    float64     `json:"at"`
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
}

// replayLine is one jsonl record: a raw input event, a batch of target
// nodes, or a scroll offset.
type replayLine struct {
	types.RawEvent
	Targets []gesture.TargetNode `json:"targets,omitempty"`
	ScrollY *float64             `json:"scrollY,omitempty"`
}

// Replay feeds recorded raw events through an engine running on a virtual
// clock, calling emit for every gesture or semantic event. Each event's
// timestamp drives the clock, so timer-based gestures fire exactly as they
// would have live. Pending timers are flushed at the end of input.
func Replay(r io.Reader, paths settings.Paths, emit func(ReplayEvent)) error {
	snap, err := settings.Load(paths)
	if err != nil {
		return err
	}

	sched := gesture.NewVirtualScheduler(time.Unix(0, 0))
	registry, err := surfaces.NewRegistry(1,
		surfaces.WithSchedulerFactory(func() gesture.Scheduler { return sched }),
		surfaces.WithHostTimestamps(),
	)
	if err != nil {
		return err
	}
	defer registry.CleanupAll()
	registry.ApplySettings(snap)

	surface := registry.Get("replay")
	origin := sched.Now()
	started := false
	sub := surface.Subscribe(func(ev gesture.Event) {
		emit(ReplayEvent{
			AtMs:    float64(sched.Now().Sub(origin)) / float64(time.Millisecond),
			Name:    ev.Name,
			Payload: ev.Payload,
		})
	})
	defer surface.Unsubscribe(sub)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReplayLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var line replayLine
		if err := json.Unmarshal(data, &line); err != nil {
			return fmt.Errorf("line %d: invalid json: %w", lineNo, err)
		}

		switch {
		case line.Targets != nil:
			surface.Targets.Put(line.Targets...)
		case line.ScrollY != nil:
			surface.Scroll.SetScrollY(*line.ScrollY)
		default:
			if line.Timestamp > 0 {
				at := time.Unix(0, int64(line.Timestamp*float64(time.Millisecond)))
				if !started {
					origin, started = at, true
				}
				sched.AdvanceTo(at)
			}
			if _, err := surface.Input(line.RawEvent); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read replay input: %w", err)
	}

	flushTimers(sched, surface.Engine.Configs())
	utils.Verbose("Replayed %d lines", lineNo)
	return nil
}

// flushTimers advances past the longest configured timeout until no timer
// is left, so a trailing tap or long press is emitted.
func flushTimers(sched *gesture.VirtualScheduler, configs *gesture.ConfigStore) {
	step := time.Millisecond
	for _, c := range configs.Snapshot() {
		if c.Timeout > step {
			step = c.Timeout
		}
	}
	for i := 0; i < 16 && sched.Pending() > 0; i++ {
		sched.Advance(step)
	}
}

// ReplayCommand replays a jsonl file and returns every emitted event
func ReplayCommand(req ReplayRequest) *CommandResponse {
	if req.Path == "" {
		return NewErrorResponse(fmt.Errorf("replay file is required"))
	}

	f, err := os.Open(req.Path)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to open replay file: %w", err))
	}
	defer f.Close()

	events := []ReplayEvent{}
	err = Replay(f, req.Settings, func(ev ReplayEvent) {
		events = append(events, ev)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"events": events,
	})
}
