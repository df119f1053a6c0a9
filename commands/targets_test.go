package commands

import (
	"testing"
	"time"

	"github.com/mobile-next/gesturecli/gesture"
	"github.com/mobile-next/gesturecli/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetsRegisterCommand(t *testing.T) {
	setupRegistry(t)

	resp := TargetsRegisterCommand(TargetsRegisterRequest{
		SurfaceID: "s",
		Targets: []gesture.TargetNode{
			{ID: "list", Markers: []string{gesture.PullToRefreshMarker}},
			{ID: "row", Parent: "list"},
		},
	})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, 2, resp.Data.(map[string]interface{})["registered"])

	resp = TargetsRegisterCommand(TargetsRegisterRequest{Targets: []gesture.TargetNode{{Tag: "x"}}})
	assert.Equal(t, "error", resp.Status)
}

func TestPullToRefreshHonoursScroll(t *testing.T) {
	sched := setupRegistry(t)

	TargetsRegisterCommand(TargetsRegisterRequest{
		SurfaceID: "feed",
		Targets:   []gesture.TargetNode{{ID: "list", Markers: []string{gesture.PullToRefreshMarker}}},
	})

	pull := func() []string {
		raw := func(typ string, y float64) InputRequest {
			ev := types.RawEvent{Family: types.FamilyPointer, Type: typ, PointerID: 1, X: 100, Y: y, Target: "list"}
			return InputRequest{SurfaceID: "feed", RawEvent: ev}
		}
		InputCommand(raw("pointerdown", 0))
		sched.Advance(400 * time.Millisecond)
		InputCommand(raw("pointermove", 40))
		sched.Advance(100 * time.Millisecond)
		InputCommand(raw("pointermove", 120))
		InputCommand(raw("pointerup", 120))
		sched.Advance(time.Second)

		var names []string
		for _, ev := range EventsCommand(SurfaceRequest{SurfaceID: "feed"}).Data.(EventsResponse).Events {
			names = append(names, ev.Name)
		}
		return names
	}

	assert.Equal(t, []string{"pullToRefresh", "content:refresh"}, pull())

	resp := ScrollCommand(ScrollRequest{SurfaceID: "feed", ScrollY: 300})
	require.Equal(t, "ok", resp.Status)
	assert.NotContains(t, pull(), "pullToRefresh")
}
