package upscale

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grokfaves/pkg/config"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/models"
)

type mockRequester struct {
	calls   []string
	respond func(itemID string) (bool, error)
}

func (m *mockRequester) RequestUpscale(ctx context.Context, itemID string) (bool, error) {
	m.calls = append(m.calls, itemID)
	if m.respond != nil {
		return m.respond(itemID)
	}
	return true, nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Upscale.Pacing = time.Millisecond
	return cfg
}

func video(id string) models.MediaItem {
	return models.MediaItem{
		ID:   id,
		URL:  "https://assets.example.com/" + id + ".mp4",
		Type: models.MediaTypeVideo,
	}
}

func image(id string) models.MediaItem {
	return models.MediaItem{
		ID:   id,
		URL:  "https://assets.example.com/" + id + ".jpg",
		Type: models.MediaTypeImage,
	}
}

func TestCandidates(t *testing.T) {
	items := []models.MediaItem{
		video("a"),
		image("b"),
		// ID-less videos can't be addressed by the API.
		{URL: "https://assets.example.com/c.mp4", Type: models.MediaTypeVideo},
		video("d"),
	}

	candidates := Candidates(items)
	require.Len(t, candidates, 2)
	assert.Equal(t, "a", candidates[0].ID)
	assert.Equal(t, "d", candidates[1].ID)
}

func TestRunRequestsEveryCandidate(t *testing.T) {
	requester := &mockRequester{}
	flow := NewFlow(requester, testConfig())

	result, err := flow.Run(context.Background(), []models.MediaItem{
		video("a"), image("x"), video("b"), video("c"),
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Requested: 3, Succeeded: 3, Failed: 0}, result)
	assert.Equal(t, []string{"a", "b", "c"}, requester.calls)
}

func TestRunCountsFailuresWithoutAborting(t *testing.T) {
	requester := &mockRequester{
		respond: func(itemID string) (bool, error) {
			switch itemID {
			case "b":
				return false, fmt.Errorf("server error")
			case "c":
				// Request delivered but declined.
				return false, nil
			}
			return true, nil
		},
	}
	flow := NewFlow(requester, testConfig())

	result, err := flow.Run(context.Background(), []models.MediaItem{
		video("a"), video("b"), video("c"), video("d"),
	})
	require.NoError(t, err)
	assert.Equal(t, Result{Requested: 4, Succeeded: 2, Failed: 2}, result)
}

func TestRunNoCandidatesIsNotFound(t *testing.T) {
	flow := NewFlow(&mockRequester{}, testConfig())

	_, err := flow.Run(context.Background(), []models.MediaItem{image("a"), image("b")})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRunCancellationReturnsPartialCounts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	requester := &mockRequester{
		respond: func(itemID string) (bool, error) {
			if itemID == "b" {
				cancel()
			}
			return true, nil
		},
	}
	flow := NewFlow(requester, testConfig())

	result, err := flow.Run(ctx, []models.MediaItem{video("a"), video("b"), video("c")})
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Succeeded)
}
