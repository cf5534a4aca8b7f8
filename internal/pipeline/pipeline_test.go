package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vero-group/fleet-cli/internal/fetcher"
	"github.com/vero-group/fleet-cli/internal/model"
)

// mockSource is a scriptable authoritative source.
type mockSource struct {
	vehicles    []model.Vehicle
	vehiclesErr error
	colors      map[string]string
	labelCalls  map[string]int
}

func (m *mockSource) ActiveVehicles(_ context.Context) ([]model.Vehicle, error) {
	return m.vehicles, m.vehiclesErr
}

func (m *mockSource) LabelColor(_ context.Context, labelID string) (string, error) {
	if m.labelCalls == nil {
		m.labelCalls = make(map[string]int)
	}
	m.labelCalls[labelID]++
	return m.colors[labelID], nil
}

func newPipeline(source *mockSource) *Pipeline {
	return New(source, fetcher.CSVOptions{}, model.FillMissing)
}

func TestProcessEndToEnd(t *testing.T) {
	source := &mockSource{
		vehicles: []model.Vehicle{
			{"kurzname": "A", "hu": "2023-01-01", "labelIds": "7,8"},
			{"kurzname": "B", "hu": ""},
		},
		colors: map[string]string{"7": "#00ff00"},
	}

	csv := "kurzname;labelIds;other\nA;;x\nB;;\n"
	got, err := newPipeline(source).Process(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	// Only A survives: B's hu is empty in the authoritative data.
	require.Len(t, got, 1)
	rec := got[0]
	assert.Equal(t, "A", rec["kurzname"])
	assert.Equal(t, "2023-01-01", rec["hu"])
	assert.Equal(t, "7,8", rec["labelIds"], "empty user value filled from authoritative data")
	assert.Equal(t, "x", rec["other"], "user-only fields survive")
	assert.Equal(t, "#00ff00", rec[model.KeyLabelColor], "color of the first label id")
	assert.Equal(t, 1, source.labelCalls["7"])
	assert.Zero(t, source.labelCalls["8"])
}

func TestProcessUnmatchedRecordDropped(t *testing.T) {
	source := &mockSource{
		vehicles: []model.Vehicle{
			{"kurzname": "A", "hu": "2023-01-01"},
		},
	}

	csv := "kurzname\nA\nGHOST\n"
	got, err := newPipeline(source).Process(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	// GHOST has no authoritative match, never gains hu, and is filtered out.
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0]["kurzname"])
}

func TestProcessUserValueWins(t *testing.T) {
	source := &mockSource{
		vehicles: []model.Vehicle{
			{"kurzname": "A", "hu": "2023-01-01", "gruppe": "Sued"},
		},
	}

	csv := "kurzname;gruppe\nA;Nord\n"
	got, err := newPipeline(source).Process(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "Nord", got[0]["gruppe"])
}

func TestProcessNoInput(t *testing.T) {
	source := &mockSource{vehicles: []model.Vehicle{{"kurzname": "A", "hu": "2023-01-01"}}}

	_, err := newPipeline(source).Process(context.Background(), strings.NewReader("kurzname;hu\n"))
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestProcessNoActive(t *testing.T) {
	source := &mockSource{}

	csv := "kurzname\nA\n"
	_, err := newPipeline(source).Process(context.Background(), strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrNoActive)
}

func TestProcessNoSurvivors(t *testing.T) {
	source := &mockSource{
		vehicles: []model.Vehicle{
			{"kurzname": "A", "hu": ""},
		},
	}

	csv := "kurzname\nA\n"
	_, err := newPipeline(source).Process(context.Background(), strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrNoSurvivors)
}

func TestProcessMalformedInput(t *testing.T) {
	source := &mockSource{vehicles: []model.Vehicle{{"kurzname": "A"}}}

	csv := "kurzname;hu\n\"A;x\n"
	_, err := newPipeline(source).Process(context.Background(), strings.NewReader(csv))
	assert.ErrorIs(t, err, fetcher.ErrMalformedInput)
}

func TestProcessSourceFailure(t *testing.T) {
	source := &mockSource{vehiclesErr: eris.New("baubuddy: unexpected status 503")}

	csv := "kurzname\nA\n"
	_, err := newPipeline(source).Process(context.Background(), strings.NewReader(csv))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoActive, "transport failure is not the zero-matches case")
}
