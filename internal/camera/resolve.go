package camera

import (
	"fmt"

	"picam-cli/pkg/models"
)

// Command endpoints, relative to /api/camera/.
const (
	EndpointStart          = "start"
	EndpointStop           = "stop"
	EndpointMotionStart    = "motion_detect/start"
	EndpointMotionStop     = "motion_detect/stop"
	EndpointTimelapseStart = "timelapse/start"
	EndpointTimelapseStop  = "timelapse/stop"
	EndpointRecordStart    = "record/start"
	EndpointRecordStop     = "record/stop"
	EndpointPhotoTake      = "photo/take"
)

// Resolve maps a command to the endpoint that toggles it from the given status.
// Any status that does not match a "stop" condition, including the empty
// status, resolves to the start branch.
func Resolve(cmd models.LogicalCommand, status models.CameraStatus) (string, error) {
	switch cmd {
	case models.CommandPower:
		if status == models.StatusHalted {
			return EndpointStart, nil
		}
		return EndpointStop, nil

	case models.CommandMotion:
		switch status {
		case models.StatusMDVideo, models.StatusMDReady:
			return EndpointMotionStop, nil
		}
		return EndpointMotionStart, nil

	case models.CommandTimelapse:
		switch status {
		case models.StatusTLMDVideo, models.StatusTimelapse, models.StatusTLMDReady:
			return EndpointTimelapseStop, nil
		}
		return EndpointTimelapseStart, nil

	case models.CommandRecord:
		if status == models.StatusVideo {
			return EndpointRecordStop, nil
		}
		return EndpointRecordStart, nil

	case models.CommandPhoto:
		return EndpointPhotoTake, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

// ParseCommand validates a command name typed by the user.
func ParseCommand(name string) (models.LogicalCommand, error) {
	for _, cmd := range models.AllCommands {
		if string(cmd) == name {
			return cmd, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}
