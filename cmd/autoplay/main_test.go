package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/rams/internal/game"
)

func TestRoundPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := roundPrinter{out: &buf}

	var view game.View
	for i := range view.Players {
		view.Players[i].Pile = 10 + i
	}
	require.NoError(t, p.Publish(context.Background(), game.Update{
		Event: game.Event{Type: game.EventRoundFinished, Payload: map[string]interface{}{"round": 3, "reason": "tricks"}},
		State: view,
	}))
	assert.Equal(t, "  round 3: 10 11 12 13 (tricks)\n", buf.String())

	buf.Reset()
	w := 2
	view.Game.Winner = &w
	view.Game.ActionCount = 41
	require.NoError(t, p.Publish(context.Background(), game.Update{Event: game.Event{Type: game.EventGameFinished}, State: view}))
	assert.Equal(t, "  winner: seat 2 after 41 actions\n", buf.String())

	buf.Reset()
	require.NoError(t, p.Publish(context.Background(), game.Update{Event: game.Event{Type: game.EventCardPlayed}, State: view}))
	assert.Empty(t, buf.String())
}

func TestRunPlaysSeededGamesToTheEnd(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.ErrorLevel)

	var first, second bytes.Buffer
	require.NoError(t, run(context.Background(), &first, logger, 2, 7, 5))
	require.NoError(t, run(context.Background(), &second, logger, 2, 7, 5))

	out := first.String()
	assert.Equal(t, 2, strings.Count(out, "winner: seat"))
	assert.Contains(t, out, "round 1:")

	// game ids differ between runs, the rest is fixed by the seed
	stripIDs := func(s string) []string {
		var lines []string
		for _, l := range strings.Split(s, "\n") {
			if !strings.HasPrefix(l, "game ") {
				lines = append(lines, l)
			}
		}
		return lines
	}
	assert.Equal(t, stripIDs(out), stripIDs(second.String()))
}
