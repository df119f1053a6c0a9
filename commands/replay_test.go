package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mobile-next/gesturecli/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const swipeRecording = `{"targets":[{"id":"card","tag":"talent-card"}]}
{"family":"touch","type":"touchstart","touches":[{"identifier":1,"x":100,"y":100}],"target":"card","timestamp":1000}
{"family":"touch","type":"touchmove","touches":[{"identifier":1,"x":130,"y":100}],"target":"card","timestamp":1050}
{"family":"touch","type":"touchmove","touches":[{"identifier":1,"x":180,"y":100}],"target":"card","timestamp":1100}
{"family":"touch","type":"touchend","changedTouches":[{"identifier":1,"x":180,"y":100}],"target":"card","timestamp":1120}
`

func replayNames(t *testing.T, input string, paths settings.Paths) ([]string, []ReplayEvent) {
	var events []ReplayEvent
	err := Replay(strings.NewReader(input), paths, func(ev ReplayEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	return names, events
}

func TestReplay_Swipe(t *testing.T) {
	names, events := replayNames(t, swipeRecording, settings.Paths{})

	assert.Equal(t, []string{"swipe", "talent:shortlist"}, names)
	assert.InDelta(t, 100, events[0].AtMs, 1e-9)
}

func TestReplay_TrailingTapIsFlushed(t *testing.T) {
	input := `{"family":"pointer","type":"pointerdown","pointerId":1,"x":10,"y":10,"timestamp":500}
{"family":"pointer","type":"pointerup","pointerId":1,"x":10,"y":10,"timestamp":560}
`
	names, events := replayNames(t, input, settings.Paths{})

	require.Equal(t, []string{"tap"}, names)
	assert.InDelta(t, 360, events[0].AtMs, 1e-9)
}

func TestReplay_LongPressFiresOnVirtualClock(t *testing.T) {
	input := `{"family":"touch","type":"touchstart","touches":[{"identifier":1,"x":10,"y":10}],"timestamp":0.5}
{"family":"touch","type":"touchend","changedTouches":[{"identifier":1,"x":10,"y":10}],"timestamp":900.5}
`
	names, _ := replayNames(t, input, settings.Paths{})
	assert.Equal(t, []string{"longPress"}, names)
}

func TestReplay_UsesTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gestures.ini")
	require.NoError(t, os.WriteFile(path, []byte("[swipe]\nthreshold = 200\n"), 0o644))

	names, _ := replayNames(t, swipeRecording, settings.Paths{Tunables: path})
	assert.NotContains(t, names, "swipe")
}

func TestReplay_Errors(t *testing.T) {
	err := Replay(strings.NewReader("{not json}\n"), settings.Paths{}, func(ReplayEvent) {})
	assert.ErrorContains(t, err, "line 1")

	err = Replay(strings.NewReader(`{"family":"gamepad","type":"press"}`+"\n"), settings.Paths{}, func(ReplayEvent) {})
	assert.ErrorContains(t, err, "unknown input family")
}

func TestReplayCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swipe.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(swipeRecording), 0o644))

	resp := ReplayCommand(ReplayRequest{Path: path})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Len(t, resp.Data.(map[string]interface{})["events"], 2)

	resp = ReplayCommand(ReplayRequest{})
	assert.Equal(t, "error", resp.Status)
}
