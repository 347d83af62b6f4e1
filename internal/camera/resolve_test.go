package camera

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picam-cli/pkg/models"
)

func TestResolveToggles(t *testing.T) {
	tests := []struct {
		cmd      models.LogicalCommand
		stopWhen []models.CameraStatus
		start    string
		stop     string
	}{
		{models.CommandPower, []models.CameraStatus{models.StatusHalted}, EndpointStop, EndpointStart},
		{models.CommandMotion, []models.CameraStatus{models.StatusMDVideo, models.StatusMDReady}, EndpointMotionStart, EndpointMotionStop},
		{models.CommandTimelapse, []models.CameraStatus{models.StatusTLMDVideo, models.StatusTimelapse, models.StatusTLMDReady}, EndpointTimelapseStart, EndpointTimelapseStop},
		{models.CommandRecord, []models.CameraStatus{models.StatusVideo}, EndpointRecordStart, EndpointRecordStop},
	}

	for _, tt := range tests {
		t.Run(string(tt.cmd), func(t *testing.T) {
			for _, status := range models.AllStatuses {
				got, err := Resolve(tt.cmd, status)
				require.NoError(t, err)

				want := tt.start
				for _, s := range tt.stopWhen {
					if s == status {
						want = tt.stop
					}
				}
				assert.Equal(t, want, got, "status %s", status)
			}
		})
	}
}

func TestResolvePowerNaming(t *testing.T) {
	// power is the one toggle whose "matching" branch starts the camera
	got, err := Resolve(models.CommandPower, models.StatusHalted)
	require.NoError(t, err)
	assert.Equal(t, "start", got)

	got, err = Resolve(models.CommandPower, models.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, "stop", got)
}

func TestResolvePhotoIgnoresStatus(t *testing.T) {
	statuses := append([]models.CameraStatus{"", "bogus"}, models.AllStatuses...)
	for _, status := range statuses {
		got, err := Resolve(models.CommandPhoto, status)
		require.NoError(t, err)
		assert.Equal(t, EndpointPhotoTake, got)
	}
}

func TestResolveUnsetStatusTakesStartBranch(t *testing.T) {
	want := map[models.LogicalCommand]string{
		models.CommandPower:     EndpointStop,
		models.CommandMotion:    EndpointMotionStart,
		models.CommandTimelapse: EndpointTimelapseStart,
		models.CommandRecord:    EndpointRecordStart,
		models.CommandPhoto:     EndpointPhotoTake,
	}
	for cmd, endpoint := range want {
		got, err := Resolve(cmd, "")
		require.NoError(t, err)
		assert.Equal(t, endpoint, got, string(cmd))
	}
}

func TestResolveMatchesWholeStatus(t *testing.T) {
	got, err := Resolve(models.CommandRecord, "md_video")
	require.NoError(t, err)
	assert.Equal(t, EndpointRecordStart, got)

	got, err = Resolve(models.CommandMotion, "tl_md_ready")
	require.NoError(t, err)
	assert.Equal(t, EndpointMotionStart, got)
}

func TestResolveUnknownCommand(t *testing.T) {
	_, err := Resolve("zoom", models.StatusReady)
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("record")
	require.NoError(t, err)
	assert.Equal(t, models.CommandRecord, cmd)

	_, err = ParseCommand("Record")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
